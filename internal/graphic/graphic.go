package graphic

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/termcore/internal/block"
)

// Graphic is a scripted interactive object. It implements block.Graphic.
type Graphic struct {
	L       *lua.LState
	self    *lua.LTable
	group   string
	timeout time.Duration
	logger  *slog.Logger

	x, y, w, h int

	texts map[string]string
	drags map[string]*[4][2]float64

	onSignal  block.SignalFunc
	onMessage block.MessageFunc

	closed bool
}

var _ block.Graphic = (*Graphic)(nil)

func newGraphic(group string, timeout time.Duration, logger *slog.Logger) *Graphic {
	g := &Graphic{
		group:   group,
		timeout: timeout,
		logger:  logger,
		texts:   make(map[string]string),
		drags:   make(map[string]*[4][2]float64),
	}
	g.L = newState(func(msg string) {
		g.logger.Debug("graphic print", "group", g.group, "msg", msg)
	})
	g.self = g.L.NewTable()
	g.L.SetFuncs(g.self, map[string]lua.LGFunction{
		"emit":     g.luaEmit,
		"send":     g.luaSend,
		"text":     g.luaText,
		"set_text": g.luaSetText,
		"drag":     g.luaDrag,
		"set_drag": g.luaSetDrag,
		"geometry": g.luaGeometry,
	})
	return g
}

// Group returns the group the graphic was built from.
func (g *Graphic) Group() string {
	return g.group
}

// Geometry returns the graphic's placement in cells.
func (g *Graphic) Geometry() (x, y, w, h int) {
	return g.x, g.y, g.w, g.h
}

// Text returns the text of a part.
func (g *Graphic) Text(part string) string {
	return g.texts[part]
}

// Place implements block.Object.
func (g *Graphic) Place(x, y, w, h int) {
	if g.x == x && g.y == y && g.w == w && g.h == h {
		return
	}
	g.x, g.y, g.w, g.h = x, y, w, h
	g.callback("on_place", lua.LNumber(x), lua.LNumber(y), lua.LNumber(w), lua.LNumber(h))
}

// Destroy implements block.Object.
func (g *Graphic) Destroy() {
	if g.closed {
		return
	}
	g.closed = true
	g.L.Close()
}

// SetText implements block.Graphic.
func (g *Graphic) SetText(part, text string) {
	g.texts[part] = text
	g.callback("on_text", lua.LString(part), lua.LString(text))
}

// Emit implements block.Graphic.
func (g *Graphic) Emit(signal, source string) {
	g.callback("on_signal", lua.LString(signal), lua.LString(source))
}

// SetDrag implements block.Graphic.
func (g *Graphic) SetDrag(part string, kind block.DragKind, v1, v2 float64) {
	if int(kind) >= 4 {
		return
	}
	g.drag(part)[kind] = [2]float64{v1, v2}
	g.callback("on_drag", lua.LString(part), lua.LString(kind.String()), lua.LNumber(v1), lua.LNumber(v2))
}

// DragValue implements block.Graphic.
func (g *Graphic) DragValue(part string) (v1, v2 float64) {
	d, ok := g.drags[part]
	if !ok {
		return 0, 0
	}
	return d[block.DragValue][0], d[block.DragValue][1]
}

// Send implements block.Graphic.
func (g *Graphic) Send(id int, msg block.Message) {
	if g.closed {
		return
	}
	g.callback("on_message", lua.LNumber(id), messageTable(g.L, msg))
}

// OnSignal implements block.Graphic.
func (g *Graphic) OnSignal(fn block.SignalFunc) {
	g.onSignal = fn
}

// OnMessage implements block.Graphic.
func (g *Graphic) OnMessage(fn block.MessageFunc) {
	g.onMessage = fn
}

func (g *Graphic) drag(part string) *[4][2]float64 {
	d, ok := g.drags[part]
	if !ok {
		d = new([4][2]float64)
		g.drags[part] = d
	}
	return d
}

func (g *Graphic) signal(signal, source string) {
	if g.onSignal != nil {
		g.onSignal(signal, source)
	}
}

// callback runs a script callback if the script defined one. Script
// errors are logged and dropped.
func (g *Graphic) callback(name string, args ...lua.LValue) {
	if g.closed {
		return
	}
	fn := g.self.RawGetString(name)
	if fn.Type() != lua.LTFunction {
		return
	}
	if err := g.call(fn, args...); err != nil {
		g.logger.Debug("graphic callback failed", "group", g.group, "callback", name, "err", err)
	}
}

// call runs fn with the graphic's time limit.
func (g *Graphic) call(fn lua.LValue, args ...lua.LValue) (err error) {
	if g.closed {
		return ErrClosed
	}
	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	defer cancel()
	g.L.SetContext(ctx)
	defer g.L.RemoveContext()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return g.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, args...)
}

func (g *Graphic) luaEmit(L *lua.LState) int {
	g.signal(L.CheckString(2), L.OptString(3, ""))
	return 0
}

func (g *Graphic) luaSend(L *lua.LState) int {
	id := L.CheckInt(2)
	msg, err := luaMessage(L.CheckString(3), L.Get(4), L.Get(5))
	if err != nil {
		L.ArgError(4, err.Error())
		return 0
	}
	if g.onMessage != nil {
		g.onMessage(id, msg)
	}
	return 0
}

func (g *Graphic) luaText(L *lua.LState) int {
	L.Push(lua.LString(g.texts[L.CheckString(2)]))
	return 1
}

func (g *Graphic) luaSetText(L *lua.LState) int {
	g.texts[L.CheckString(2)] = L.CheckString(3)
	return 0
}

func (g *Graphic) luaDrag(L *lua.LState) int {
	v1, v2 := g.DragValue(L.CheckString(2))
	L.Push(lua.LNumber(v1))
	L.Push(lua.LNumber(v2))
	return 2
}

func (g *Graphic) luaSetDrag(L *lua.LState) int {
	part := L.CheckString(2)
	v1 := float64(L.CheckNumber(3))
	v2 := float64(L.OptNumber(4, 0))
	g.drag(part)[block.DragValue] = [2]float64{v1, v2}
	g.signal("drag,set", part)
	return 0
}

func (g *Graphic) luaGeometry(L *lua.LState) int {
	L.Push(lua.LNumber(g.x))
	L.Push(lua.LNumber(g.y))
	L.Push(lua.LNumber(g.w))
	L.Push(lua.LNumber(g.h))
	return 4
}
