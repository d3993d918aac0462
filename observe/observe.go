// Package observe provides buffer.Observer building blocks: a no-op
// observer and a fan-out that forwards every event to several observers.
package observe

import (
	"time"

	"github.com/NetPo4ki/go-buffer/buffer"
)

// Nop is a no-op implementation of the buffer.Observer interface.
type Nop struct{}

// NewNop returns a no-op observer.
func NewNop() *Nop { return &Nop{} }

func (*Nop) BufferCreated(int)                        {}
func (*Nop) MessageSent(int, time.Duration)           {}
func (*Nop) MessageReceived(int, time.Duration, bool) {}
func (*Nop) Blocked(buffer.Op)                        {}
func (*Nop) OperationRejected(buffer.Op, error)       {}
func (*Nop) BufferClosed()                            {}
func (*Nop) BufferDestroyed(int)                      {}

// Multi forwards each event to every observer in order.
type Multi []buffer.Observer

// NewMulti drops nil entries and returns the remaining observers as one.
func NewMulti(obs ...buffer.Observer) Multi {
	m := make(Multi, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			m = append(m, o)
		}
	}
	return m
}

func (m Multi) BufferCreated(capacity int) {
	for _, o := range m {
		o.BufferCreated(capacity)
	}
}

func (m Multi) MessageSent(size int, wait time.Duration) {
	for _, o := range m {
		o.MessageSent(size, wait)
	}
}

func (m Multi) MessageReceived(size int, wait time.Duration, special bool) {
	for _, o := range m {
		o.MessageReceived(size, wait, special)
	}
}

func (m Multi) Blocked(op buffer.Op) {
	for _, o := range m {
		o.Blocked(op)
	}
}

func (m Multi) OperationRejected(op buffer.Op, err error) {
	for _, o := range m {
		o.OperationRejected(op, err)
	}
}

func (m Multi) BufferClosed() {
	for _, o := range m {
		o.BufferClosed()
	}
}

func (m Multi) BufferDestroyed(discarded int) {
	for _, o := range m {
		o.BufferDestroyed(discarded)
	}
}
