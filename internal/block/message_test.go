package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageEnvelope(t *testing.T) {
	tests := []struct {
		msg  Message
		want string
	}{
		{Message{Type: MsgString, Str: "hi"}, "string\nhi"},
		{Message{Type: MsgInt, Int: -4}, "int\n-4"},
		{Message{Type: MsgFloat, Float: 0.25}, "float\n250"},
		{Message{Type: MsgStringSet, Strs: []string{"a", "b"}}, "string_set\n2\na\nb"},
		{Message{Type: MsgIntSet, Ints: []int{1, 2, 3}}, "int_set\n3\n1\n2\n3"},
		{Message{Type: MsgStringInt, Str: "n", Int: 9}, "string_int\nn\n9"},
		{Message{Type: MsgStringFloat, Str: "n", Float: 2}, "string_float\nn\n2000"},
		{Message{Type: MsgStringIntSet, Str: "s", Ints: []int{4}}, "string_int_set\n1\ns\n4"},
		{Message{Type: MsgStringFloatSet, Str: "s"}, "string_float_set\n0\ns"},
	}

	for _, tt := range tests {
		t.Run(tt.msg.Type.String(), func(t *testing.T) {
			got := string(messageEnvelope("c", 5, tt.msg))
			assert.Equal(t, "\x1b}message;c\n5\n"+tt.want+"\x00", got)
		})
	}
}

func TestAtoi(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"42", 42},
		{"  -7", -7},
		{"+3x", 3},
		{"abc", 0},
		{"", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, atoi(tt.in), tt.in)
	}
}

func TestParseMessageType(t *testing.T) {
	for i, name := range messageTypeNames {
		mt, ok := ParseMessageType(name)
		assert.True(t, ok)
		assert.Equal(t, MessageType(i), mt)
	}
	_, ok := ParseMessageType("blob")
	assert.False(t, ok)
}
