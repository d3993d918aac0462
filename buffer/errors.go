package buffer

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by operations on, or waiting on, a closed buffer.
	ErrClosed = errors.New("buffer: closed")
	// ErrDestroy is returned by Destroy while the buffer is still open.
	ErrDestroy = errors.New("buffer: destroy called on open buffer")
	// ErrBuffer is the generic failure all other errors wrap.
	ErrBuffer = errors.New("buffer: error")
	// ErrTooLarge is returned by Send for a message that can never be admitted.
	ErrTooLarge = fmt.Errorf("%w: message too large", ErrBuffer)
)

// Status qualifies a successful Receive.
type Status int

const (
	Success Status = iota
	SpecialMessage
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case SpecialMessage:
		return "special"
	default:
		return "unknown"
	}
}
