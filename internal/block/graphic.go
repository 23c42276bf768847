package block

// DragKind selects which drag property a drag record sets.
type DragKind uint8

const (
	// DragValue sets the drag position.
	DragValue DragKind = iota
	// DragSize sets the draggable's size relative to its confinement.
	DragSize
	// DragStep sets the step increment.
	DragStep
	// DragPage sets the page increment.
	DragPage
)

// String returns a string representation of the drag kind.
func (d DragKind) String() string {
	switch d {
	case DragValue:
		return "value"
	case DragSize:
		return "size"
	case DragStep:
		return "step"
	case DragPage:
		return "page"
	default:
		return "unknown"
	}
}

func parseDragKind(s string) (DragKind, bool) {
	switch s {
	case "value":
		return DragValue, true
	case "size":
		return DragSize, true
	case "step":
		return DragStep, true
	case "page":
		return DragPage, true
	default:
		return 0, false
	}
}

// SignalFunc receives a signal emitted by a graphic.
type SignalFunc func(signal, source string)

// MessageFunc receives a message sent by a graphic.
type MessageFunc func(id int, msg Message)

// Graphic is an interactive graphic object.
type Graphic interface {
	Object

	// SetText sets the text of a part.
	SetText(part, text string)
	// Emit delivers a signal to the graphic.
	Emit(signal, source string)
	// SetDrag sets a drag property of a part.
	SetDrag(part string, kind DragKind, v1, v2 float64)
	// DragValue returns the drag position of a part.
	DragValue(part string) (v1, v2 float64)
	// Send delivers a message to the graphic.
	Send(id int, msg Message)

	// OnSignal registers the handler for signals the graphic emits.
	OnSignal(fn SignalFunc)
	// OnMessage registers the handler for messages the graphic sends.
	OnMessage(fn MessageFunc)
}

// dragSignals are the signals reported with the source part's drag value.
var dragSignals = map[string]bool{
	"drag":       true,
	"drag,start": true,
	"drag,stop":  true,
	"drag,step":  true,
	"drag,set":   true,
}
