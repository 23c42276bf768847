package block

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Command applies a terminal command envelope payload (the bytes between
// ESC } and NUL). It reports whether the command was fully consumed;
// unconsumed commands are passed on to the embedding application.
//
// Recognized payloads:
//
//	i{s,c,f,t}<repch>W;H;PATH         register a media block
//	i{s,c,f,t}<repch>W;H;LINK\nPATH   ... with a click-through link
//	ij<repch>W;H;FILE\nGROUP[\nTOKEN...]
//	iC<chid>\nTOKEN...                 forward tokens to a bound block
//	ib / ie                            block replacement mode on / off
//	qs                                 reply "cols;rows;cellw;cellh\n"
//	qj+<chid> / qj-<chid> / qj         subscribe / unsubscribe / clear
func (m *Manager) Command(cmd string) (bool, error) {
	if len(cmd) < 2 {
		return false, nil
	}
	switch cmd[0] {
	case 'i':
		if _, ok := kindFromOpcode(cmd[1]); ok {
			if err := m.register(cmd); err != nil {
				return true, &CommandError{Cmd: cmd, Err: err}
			}
			return true, nil
		}
		switch cmd[1] {
		case 'C':
			if err := m.channelCommand(cmd[2:]); err != nil {
				return false, &CommandError{Cmd: cmd, Err: err}
			}
		case 'b':
			m.host.SetBlockMode(true)
		case 'e':
			m.host.SetBlockMode(false)
		}
	case 'q':
		switch cmd[1] {
		case 's':
			cols, rows := m.host.GridSize()
			cw, ch := m.host.CellSize()
			m.host.Write([]byte(fmt.Sprintf("%d;%d;%d;%d\n", cols, rows, cw, ch)))
			return true, nil
		case 'j':
			m.subscription(cmd[2:])
			return true, nil
		}
	}
	return false, nil
}

// register parses a block registration and tells the host to expect the
// block's replacement character.
func (m *Manager) register(cmd string) error {
	kind, _ := kindFromOpcode(cmd[1])
	repch, size := utf8.DecodeRuneInString(cmd[2:])
	if size == 0 || repch == 0 || repch == utf8.RuneError {
		return fmt.Errorf("replacement character: %w", ErrMalformed)
	}
	rest := cmd[2+size:]

	w, rest := leadingField(rest)
	h, rest := leadingField(rest)

	var path, link, group string
	var cmds []string
	if kind == KindInteractive {
		items := splitItems(rest)
		if len(items) == 0 {
			return fmt.Errorf("graphic file: %w", ErrMalformed)
		}
		path = items[0]
		if len(items) > 1 {
			group = items[1]
		}
		if len(items) > 2 {
			cmds = items[2:]
		}
	} else {
		path = rest
		if i := strings.IndexByte(path, '\n'); i >= 0 {
			link = path[:i]
			path = path[i+1:]
			if path != "" && isSpace(path[0]) {
				path = path[1:]
			}
			if j := strings.IndexByte(link, '\r'); j >= 0 {
				link = link[:j]
			}
		}
	}

	if w >= MaxSize || h >= MaxSize {
		return fmt.Errorf("%dx%d: %w", w, h, ErrTooLarge)
	}
	if w < 1 || h < 1 {
		return fmt.Errorf("%dx%d: %w", w, h, ErrBadSize)
	}

	b := m.reg.New(kind, w, h, path, link)
	b.Group = group
	b.Cmds = cmds
	m.host.ExpectBlock(repch, b)
	m.logger.Debug("block registered",
		"id", b.ID, "kind", kind.String(), "w", w, "h", h, "path", path, "repch", string(repch))
	return nil
}

// channelCommand runs forward tokens against the block bound to the first
// item.
func (m *Manager) channelCommand(payload string) error {
	items := splitItems(payload)
	if len(items) == 0 {
		return fmt.Errorf("channel id: %w", ErrMalformed)
	}
	b, ok := m.reg.ByChid(items[0])
	if !ok {
		return fmt.Errorf("chid %q: %w", items[0], ErrBlockNotFound)
	}
	return m.RunCommands(b, items[1:], false)
}

func (m *Manager) subscription(arg string) {
	if arg == "" {
		m.ClearSubscriptions()
		return
	}
	switch arg[0] {
	case '+':
		m.Subscribe(arg[1:])
	case '-':
		m.Unsubscribe(arg[1:])
	}
}

// tokenReader walks a forward token list.
type tokenReader struct {
	toks []string
	pos  int
}

func (r *tokenReader) next() (string, bool) {
	if r.pos >= len(r.toks) {
		return "", false
	}
	s := r.toks[r.pos]
	r.pos++
	return s, true
}

func (r *tokenReader) nextInt() (int, bool) {
	s, ok := r.next()
	return atoi(s), ok
}

func (r *tokenReader) nextFixed() (float64, bool) {
	s, ok := r.next()
	return fromFixed(s), ok
}

// RunCommands applies forward tokens to b. created is true when the
// tokens run right after the block's graphic object was created.
//
// A record that runs out of tokens aborts the rest of the list; records
// applied before it stay in effect. Unknown tokens are skipped. Records
// other than chid are dropped while the block has no graphic object.
func (m *Manager) RunCommands(b *Block, tokens []string, created bool) error {
	g, _ := b.Graphic()
	r := &tokenReader{toks: tokens}
	short := func(rec string) error {
		return fmt.Errorf("%s: %w", rec, ErrShortRecord)
	}

	for {
		rec, ok := r.next()
		if !ok {
			return nil
		}
		switch rec {
		case "text":
			part, ok1 := r.next()
			text, ok2 := r.next()
			if !ok1 || !ok2 {
				return short(rec)
			}
			if g != nil {
				g.SetText(part, text)
			}

		case "emit":
			sig, ok1 := r.next()
			src, ok2 := r.next()
			if !ok1 || !ok2 {
				return short(rec)
			}
			if g != nil {
				g.Emit(sig, src)
			}

		case "drag":
			part, ok1 := r.next()
			what, ok2 := r.next()
			if !ok1 || !ok2 {
				return short(rec)
			}
			v1, ok1 := r.nextFixed()
			v2, ok2 := r.nextFixed()
			if !ok1 || !ok2 {
				return short(rec)
			}
			kind, known := parseDragKind(what)
			if g != nil && known {
				g.SetDrag(part, kind, v1, v2)
			}

		case "message":
			id, ok1 := r.nextInt()
			typ, ok2 := r.next()
			if !ok1 || !ok2 {
				return short(rec)
			}
			mt, known := ParseMessageType(typ)
			if !known {
				continue
			}
			msg, ok := readMessage(r, mt)
			if !ok {
				return short(rec)
			}
			if g != nil {
				g.Send(id, msg)
			}

		case "chid":
			chid, ok := r.next()
			if !ok {
				return short(rec)
			}
			first := m.reg.BindChid(b, chid)
			if g != nil && !b.wired && (created || first) {
				m.wire(b, g)
			}
		}
	}
}

// readMessage reads the payload of a message record.
func readMessage(r *tokenReader, mt MessageType) (Message, bool) {
	msg := Message{Type: mt}
	var ok bool
	switch mt {
	case MsgString:
		msg.Str, ok = r.next()
	case MsgInt:
		msg.Int, ok = r.nextInt()
	case MsgFloat:
		msg.Float, ok = r.nextFixed()
	case MsgStringSet:
		var n int
		if n, ok = r.nextInt(); !ok {
			break
		}
		for i := 0; i < n && ok; i++ {
			var s string
			s, ok = r.next()
			msg.Strs = append(msg.Strs, s)
		}
	case MsgIntSet:
		var n int
		if n, ok = r.nextInt(); !ok {
			break
		}
		for i := 0; i < n && ok; i++ {
			var v int
			v, ok = r.nextInt()
			msg.Ints = append(msg.Ints, v)
		}
	case MsgFloatSet:
		var n int
		if n, ok = r.nextInt(); !ok {
			break
		}
		for i := 0; i < n && ok; i++ {
			var v float64
			v, ok = r.nextFixed()
			msg.Floats = append(msg.Floats, v)
		}
	case MsgStringInt:
		if msg.Str, ok = r.next(); ok {
			msg.Int, ok = r.nextInt()
		}
	case MsgStringFloat:
		if msg.Str, ok = r.next(); ok {
			msg.Float, ok = r.nextFixed()
		}
	case MsgStringIntSet:
		var n int
		if n, ok = r.nextInt(); !ok {
			break
		}
		if msg.Str, ok = r.next(); !ok {
			break
		}
		for i := 0; i < n && ok; i++ {
			var v int
			v, ok = r.nextInt()
			msg.Ints = append(msg.Ints, v)
		}
	case MsgStringFloatSet:
		var n int
		if n, ok = r.nextInt(); !ok {
			break
		}
		if msg.Str, ok = r.next(); !ok {
			break
		}
		for i := 0; i < n && ok; i++ {
			var v float64
			v, ok = r.nextFixed()
			msg.Floats = append(msg.Floats, v)
		}
	}
	return msg, ok
}

// splitItems splits s on '\n' and '\r', dropping empty items.
func splitItems(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '\n' || r == '\r'
	})
}

// leadingField consumes "N;" from s the way strtol would read it. Without
// a ';' the whole string is consumed and the value is 0.
func leadingField(s string) (int, string) {
	i := strings.IndexByte(s, ';')
	if i < 0 {
		return 0, ""
	}
	return atoi(s[:i]), s[i+1:]
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
