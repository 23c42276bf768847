package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/termcore/internal/block"
	"github.com/dshills/termcore/internal/compositor"
)

var (
	_ compositor.Observer = (*Metrics)(nil)
	_ block.Observer      = (*Metrics)(nil)
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestFrameComposed(t *testing.T) {
	m := New("")
	m.FrameComposed(3, 40, 2*time.Millisecond)
	m.FrameComposed(1, 2, time.Millisecond)

	out := scrape(t, m)
	assert.Contains(t, out, "termcore_frame_composed_total 2")
	assert.Contains(t, out, "termcore_frame_dirty_spans_total 4")
	assert.Contains(t, out, "termcore_frame_dirty_cells_total 42")
	assert.Contains(t, out, "termcore_frame_compose_seconds_count 2")
}

func TestBlockObjects(t *testing.T) {
	m := New("tv")
	m.ObjectCreated(block.KindThumb)
	m.ObjectCreated(block.KindThumb)
	m.ObjectCreated(block.KindInteractive)
	m.ObjectDestroyed(block.KindThumb)

	out := scrape(t, m)
	assert.Contains(t, out, `tv_block_objects_created_total{kind="thumb"} 2`)
	assert.Contains(t, out, `tv_block_objects_destroyed_total{kind="thumb"} 1`)
	assert.Contains(t, out, `tv_block_objects_active{kind="thumb"} 1`)
	assert.Contains(t, out, `tv_block_objects_active{kind="interactive"} 1`)
}

func TestEnvelopesAndInput(t *testing.T) {
	m := New("")
	m.EnvelopeSent("signal")
	m.EnvelopeSent("drag")
	m.EnvelopeSent("signal")
	m.MouseReported("down")
	m.BytesFed(128)

	out := scrape(t, m)
	assert.Contains(t, out, `termcore_block_envelopes_sent_total{type="signal"} 2`)
	assert.Contains(t, out, `termcore_block_envelopes_sent_total{type="drag"} 1`)
	assert.Contains(t, out, `termcore_input_mouse_reports_total{kind="down"} 1`)
	assert.Contains(t, out, "termcore_buffer_bytes_fed_total 128")
}

func TestSeparateRegistries(t *testing.T) {
	a, b := New(""), New("")
	a.BytesFed(5)

	assert.Contains(t, scrape(t, a), "termcore_buffer_bytes_fed_total 5")
	assert.Contains(t, scrape(t, b), "termcore_buffer_bytes_fed_total 0")

	families, err := b.Registry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
