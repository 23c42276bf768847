package graphic

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/termcore/internal/block"
)

// messageTable converts msg to its Lua form.
func messageTable(L *lua.LState, msg block.Message) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("type", lua.LString(msg.Type.String()))

	switch msg.Type {
	case block.MsgString:
		t.RawSetString("value", lua.LString(msg.Str))
	case block.MsgInt:
		t.RawSetString("value", lua.LNumber(msg.Int))
	case block.MsgFloat:
		t.RawSetString("value", lua.LNumber(msg.Float))
	case block.MsgStringSet:
		t.RawSetString("values", stringList(L, msg.Strs))
	case block.MsgIntSet:
		t.RawSetString("values", intList(L, msg.Ints))
	case block.MsgFloatSet:
		t.RawSetString("values", floatList(L, msg.Floats))
	case block.MsgStringInt:
		t.RawSetString("str", lua.LString(msg.Str))
		t.RawSetString("value", lua.LNumber(msg.Int))
	case block.MsgStringFloat:
		t.RawSetString("str", lua.LString(msg.Str))
		t.RawSetString("value", lua.LNumber(msg.Float))
	case block.MsgStringIntSet:
		t.RawSetString("str", lua.LString(msg.Str))
		t.RawSetString("values", intList(L, msg.Ints))
	case block.MsgStringFloatSet:
		t.RawSetString("str", lua.LString(msg.Str))
		t.RawSetString("values", floatList(L, msg.Floats))
	}
	return t
}

// luaMessage builds a message of the named type from the script arguments
// a and b. String-keyed types take the string in a and the value in b.
func luaMessage(typ string, a, b lua.LValue) (block.Message, error) {
	mt, ok := block.ParseMessageType(typ)
	if !ok {
		return block.Message{}, fmt.Errorf("type %q: %w", typ, ErrBadMessage)
	}
	msg := block.Message{Type: mt}

	switch mt {
	case block.MsgStringInt, block.MsgStringFloat, block.MsgStringIntSet, block.MsgStringFloatSet:
		s, ok := a.(lua.LString)
		if !ok {
			return msg, fmt.Errorf("%s wants a string first: %w", typ, ErrBadMessage)
		}
		msg.Str = string(s)
		a = b
	}

	var err error
	switch mt {
	case block.MsgString:
		s, ok := a.(lua.LString)
		if !ok {
			return msg, fmt.Errorf("%s wants a string: %w", typ, ErrBadMessage)
		}
		msg.Str = string(s)
	case block.MsgInt, block.MsgStringInt:
		var n float64
		n, err = number(a)
		msg.Int = int(n)
	case block.MsgFloat, block.MsgStringFloat:
		msg.Float, err = number(a)
	case block.MsgStringSet:
		msg.Strs, err = stringsOf(a)
	case block.MsgIntSet, block.MsgStringIntSet:
		var fs []float64
		fs, err = numbers(a)
		for _, f := range fs {
			msg.Ints = append(msg.Ints, int(f))
		}
	case block.MsgFloatSet, block.MsgStringFloatSet:
		msg.Floats, err = numbers(a)
	}
	if err != nil {
		return msg, fmt.Errorf("%s: %w", typ, err)
	}
	return msg, nil
}

func number(v lua.LValue) (float64, error) {
	n, ok := v.(lua.LNumber)
	if !ok {
		return 0, fmt.Errorf("want a number, got %s: %w", v.Type(), ErrBadMessage)
	}
	return float64(n), nil
}

func list(v lua.LValue) (*lua.LTable, error) {
	t, ok := v.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("want a table, got %s: %w", v.Type(), ErrBadMessage)
	}
	return t, nil
}

func numbers(v lua.LValue) ([]float64, error) {
	t, err := list(v)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, t.Len())
	for i := 1; i <= t.Len(); i++ {
		n, err := number(t.RawGetInt(i))
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func stringsOf(v lua.LValue) ([]string, error) {
	t, err := list(v)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, t.Len())
	for i := 1; i <= t.Len(); i++ {
		out = append(out, lua.LVAsString(t.RawGetInt(i)))
	}
	return out, nil
}

func stringList(L *lua.LState, vs []string) *lua.LTable {
	t := L.CreateTable(len(vs), 0)
	for _, v := range vs {
		t.Append(lua.LString(v))
	}
	return t
}

func intList(L *lua.LState, vs []int) *lua.LTable {
	t := L.CreateTable(len(vs), 0)
	for _, v := range vs {
		t.Append(lua.LNumber(v))
	}
	return t
}

func floatList(L *lua.LState, vs []float64) *lua.LTable {
	t := L.CreateTable(len(vs), 0)
	for _, v := range vs {
		t.Append(lua.LNumber(v))
	}
	return t
}
