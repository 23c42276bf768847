package block

import (
	"strconv"
	"strings"
)

// MessageType is the payload shape of a graphic message.
type MessageType uint8

// Message types, in wire order.
const (
	MsgString MessageType = iota
	MsgInt
	MsgFloat
	MsgStringSet
	MsgIntSet
	MsgFloatSet
	MsgStringInt
	MsgStringFloat
	MsgStringIntSet
	MsgStringFloatSet
)

var messageTypeNames = [...]string{
	MsgString:         "string",
	MsgInt:            "int",
	MsgFloat:          "float",
	MsgStringSet:      "string_set",
	MsgIntSet:         "int_set",
	MsgFloatSet:       "float_set",
	MsgStringInt:      "string_int",
	MsgStringFloat:    "string_float",
	MsgStringIntSet:   "string_int_set",
	MsgStringFloatSet: "string_float_set",
}

// String returns the wire name of the type.
func (t MessageType) String() string {
	if int(t) < len(messageTypeNames) {
		return messageTypeNames[t]
	}
	return "unknown"
}

// ParseMessageType returns the type with the given wire name.
func ParseMessageType(s string) (MessageType, bool) {
	for i, name := range messageTypeNames {
		if name == s {
			return MessageType(i), true
		}
	}
	return 0, false
}

// Message is a typed message exchanged with a graphic. Only the fields
// of its Type are meaningful.
type Message struct {
	Type MessageType

	Str    string
	Int    int
	Float  float64
	Strs   []string
	Ints   []int
	Floats []float64
}

// fixedScale is the fixed-point scale of floats on the wire.
const fixedScale = 1000.0

// toFixed converts a float to its wire integer, truncating like a C cast.
func toFixed(v float64) int {
	return int(v * fixedScale)
}

// fromFixed decodes a wire integer; unparsable text decodes as 0.
func fromFixed(s string) float64 {
	return float64(atoi(s)) / fixedScale
}

// atoi parses a leading decimal integer the way C atoi does: leading
// spaces and a sign are accepted, parsing stops at the first non-digit,
// and text without digits is 0.
func atoi(s string) int {
	s = strings.TrimLeft(s, " \t\n\v\f\r")
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// signalEnvelope formats a signal back-channel envelope.
func signalEnvelope(chid, signal, source string) []byte {
	return envelope("signal", chid, signal, source)
}

// dragEnvelope formats a drag back-channel envelope.
func dragEnvelope(chid, signal, source string, v1, v2 float64) []byte {
	return envelope("drag", chid, signal, source,
		strconv.Itoa(toFixed(v1)), strconv.Itoa(toFixed(v2)))
}

// messageEnvelope formats a message back-channel envelope.
func messageEnvelope(chid string, id int, msg Message) []byte {
	fields := []string{strconv.Itoa(id), msg.Type.String()}
	switch msg.Type {
	case MsgString:
		fields = append(fields, msg.Str)
	case MsgInt:
		fields = append(fields, strconv.Itoa(msg.Int))
	case MsgFloat:
		fields = append(fields, strconv.Itoa(toFixed(msg.Float)))
	case MsgStringSet:
		fields = append(fields, strconv.Itoa(len(msg.Strs)))
		fields = append(fields, msg.Strs...)
	case MsgIntSet:
		fields = append(fields, strconv.Itoa(len(msg.Ints)))
		for _, v := range msg.Ints {
			fields = append(fields, strconv.Itoa(v))
		}
	case MsgFloatSet:
		fields = append(fields, strconv.Itoa(len(msg.Floats)))
		for _, v := range msg.Floats {
			fields = append(fields, strconv.Itoa(toFixed(v)))
		}
	case MsgStringInt:
		fields = append(fields, msg.Str, strconv.Itoa(msg.Int))
	case MsgStringFloat:
		fields = append(fields, msg.Str, strconv.Itoa(toFixed(msg.Float)))
	case MsgStringIntSet:
		fields = append(fields, strconv.Itoa(len(msg.Ints)), msg.Str)
		for _, v := range msg.Ints {
			fields = append(fields, strconv.Itoa(v))
		}
	case MsgStringFloatSet:
		fields = append(fields, strconv.Itoa(len(msg.Floats)), msg.Str)
		for _, v := range msg.Floats {
			fields = append(fields, strconv.Itoa(toFixed(v)))
		}
	}
	return envelope("message", chid, fields...)
}

// envelope builds ESC } kind;chid\nf1\nf2... NUL.
func envelope(kind, chid string, fields ...string) []byte {
	var b strings.Builder
	b.WriteString("\x1b}")
	b.WriteString(kind)
	b.WriteByte(';')
	b.WriteString(chid)
	for _, f := range fields {
		b.WriteByte('\n')
		b.WriteString(f)
	}
	b.WriteByte(0)
	return []byte(b.String())
}
