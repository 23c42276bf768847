package surface

import "errors"

// ErrClipboardUnsupported indicates no clipboard tool is available.
var ErrClipboardUnsupported = errors.New("clipboard unsupported")
