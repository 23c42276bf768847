// Package graphic implements interactive graphic objects for embedded
// blocks as sandboxed Lua scripts.
//
// A graphic file defines one or more groups:
//
//	group("slider", function(obj)
//	    obj.on_signal = function(sig, src)
//	        if sig == "reset" then obj:set_drag("knob", 0, 0) end
//	    end
//	    obj.on_message = function(id, msg)
//	        obj:send(id, "int", msg.value * 2)
//	    end
//	end)
//
// The object table passed to a group constructor carries these methods:
//
//	obj:emit(signal, source)      signal the program
//	obj:send(id, type, a [, b])   message the program
//	obj:text(part)                text of a part
//	obj:set_text(part, text)
//	obj:drag(part)                drag value of a part (v1, v2)
//	obj:set_drag(part, v1, v2)    move a draggable and signal "drag,set"
//	obj:geometry()                x, y, w, h in cells
//
// and these optional callbacks: on_signal(signal, source),
// on_message(id, msg), on_text(part, text), on_drag(part, kind, v1, v2)
// and on_place(x, y, w, h).
//
// Messages are tables with a "type" field naming the message type, plus
// "str" for the string-keyed types, "value" for scalars and "values" for
// sets.
//
// Each object owns its Lua state; objects are not safe for concurrent use.
package graphic
