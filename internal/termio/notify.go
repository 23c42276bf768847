package termio

import "strconv"

// Notification names.
const (
	NotifyChanged        = "changed"
	NotifyBell           = "bell"
	NotifyTitle          = "title,change"
	NotifyIcon           = "icon,change"
	NotifyPopup          = "popup"
	NotifyMiniviewShow   = "miniview,show"
	NotifyMiniviewToggle = "miniview,toggle"
	NotifyOptions        = "options"
	NotifyExited         = "exited"
	NotifyPrev           = "prev"
	NotifyNext           = "next"
	NotifySplitH         = "split,h"
	NotifySplitV         = "split,v"
	NotifyNew            = "new"
	NotifySelect         = "select"
	NotifyCmdbox         = "cmdbox"
	// NotifyCommand carries a terminal command the widget did not handle.
	NotifyCommand = "command"
)

// Notification is an event for the embedding application.
type Notification struct {
	Name    string
	Payload string
}

// TabNotification returns the name asking for tab n.
func TabNotification(n int) string {
	return "tab," + strconv.Itoa(n)
}

func (w *Widget) notify(name, payload string) {
	w.pending = append(w.pending, Notification{Name: name, Payload: payload})
}
