package termio

import (
	"github.com/dshills/termcore/internal/block"
)

// blockHost adapts the widget to block.Host. Its methods run with the
// widget lock held.
type blockHost struct {
	w *Widget
}

func (h blockHost) Write(p []byte) {
	if _, err := h.w.buf.Write(p); err != nil {
		h.w.logger.Debug("block write", "err", err)
	}
}

func (h blockHost) ExpectBlock(repch rune, b *block.Block) {
	h.w.buf.ExpectBlock(repch, b)
}

func (h blockHost) SetBlockMode(on bool) {
	h.w.buf.SetBlockMode(on)
}

func (h blockHost) GridSize() (cols, rows int) {
	return h.w.cols, h.w.rows
}

func (h blockHost) CellSize() (w, ht int) {
	return h.w.cellW, h.w.cellH
}
