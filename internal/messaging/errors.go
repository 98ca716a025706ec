package messaging

import "errors"

// ErrBusClosed is returned by Notify after the bus has been closed.
var ErrBusClosed = errors.New("message bus closed")
