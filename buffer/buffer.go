package buffer

import (
	"fmt"
	"sync"
	"time"

	"github.com/NetPo4ki/go-buffer/fifo"
)

// Buffer is a bounded FIFO of string messages shared by any number of
// senders and receivers. A single mutex guards the open flag and the store;
// senders wait on notFull and receivers on notEmpty.
type Buffer struct {
	mu        sync.Mutex
	notEmpty  *sync.Cond
	notFull   *sync.Cond
	store     *fifo.Queue
	open      bool
	destroyed bool

	opts Options
	obs  Observer
}

// New creates an open buffer holding up to capacity bytes of records
// (see fifo.MessageSize).
func New(capacity int, optFns ...Option) (*Buffer, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be positive, got %d", ErrBuffer, capacity)
	}
	b := &Buffer{store: fifo.New(capacity), open: true, opts: defaultOptions()}
	for _, fn := range optFns {
		fn(&b.opts)
	}
	b.notEmpty = sync.NewCond(&b.mu)
	b.notFull = sync.NewCond(&b.mu)
	b.obs = b.opts.Observer
	if b.obs != nil {
		b.obs.BufferCreated(capacity)
	}
	return b, nil
}

// MustNew is like New but panics on error.
func MustNew(capacity int, optFns ...Option) *Buffer {
	b, err := New(capacity, optFns...)
	if err != nil {
		panic(err)
	}
	return b
}

// Send enqueues msg, blocking while the buffer lacks room for it. A message
// is admitted only when the available space is strictly greater than its
// size. Send returns ErrClosed if the buffer is closed on entry or while
// waiting, and ErrTooLarge if msg could never be admitted. Rejecting such a
// message up front is a deliberate departure from a plain closed-or-success
// contract: under the strict boundary it would otherwise block until Close.
func (b *Buffer) Send(msg string) error {
	size := fifo.MessageSize(msg)
	var start time.Time
	if b.obs != nil {
		start = time.Now()
	}

	b.mu.Lock()
	if !b.open {
		b.mu.Unlock()
		return b.reject(OpSend, ErrClosed)
	}
	if capacity := b.store.Cap(); size >= capacity {
		b.mu.Unlock()
		return b.reject(OpSend, fmt.Errorf("%w: %d bytes, capacity %d", ErrTooLarge, size, capacity))
	}
	blocked := false
	for b.store.Avail() <= size {
		blocked = true
		b.notFull.Wait()
		if !b.open {
			b.mu.Unlock()
			b.blocked(OpSend)
			return b.reject(OpSend, ErrClosed)
		}
	}
	b.store.Push(msg)
	b.notEmpty.Broadcast()
	b.mu.Unlock()

	if b.obs != nil {
		if blocked {
			b.obs.Blocked(OpSend)
		}
		b.obs.MessageSent(size, time.Since(start))
	}
	return nil
}

// Receive dequeues the oldest message, blocking while the buffer is empty.
// The status is SpecialMessage when the payload equals the sentinel and
// Success otherwise. Receive returns ErrClosed if the buffer is closed on
// entry or while waiting.
func (b *Buffer) Receive() (string, Status, error) {
	var start time.Time
	if b.obs != nil {
		start = time.Now()
	}

	b.mu.Lock()
	if !b.open {
		b.mu.Unlock()
		return "", Success, b.reject(OpReceive, ErrClosed)
	}
	blocked := false
	for b.store.Empty() {
		blocked = true
		b.notEmpty.Wait()
		if !b.open {
			b.mu.Unlock()
			b.blocked(OpReceive)
			return "", Success, b.reject(OpReceive, ErrClosed)
		}
	}
	msg, _ := b.store.Pop()
	b.notFull.Broadcast()
	b.mu.Unlock()

	status := Success
	if msg == b.opts.Sentinel {
		status = SpecialMessage
	}
	if b.obs != nil {
		if blocked {
			b.obs.Blocked(OpReceive)
		}
		b.obs.MessageReceived(fifo.MessageSize(msg), time.Since(start), status == SpecialMessage)
	}
	return msg, status, nil
}

// Close marks the buffer closed and wakes every blocked sender and receiver.
// Only the first call succeeds; later calls return ErrClosed.
func (b *Buffer) Close() error {
	b.mu.Lock()
	if !b.open {
		b.mu.Unlock()
		return b.reject(OpClose, ErrClosed)
	}
	b.open = false
	b.notFull.Broadcast()
	b.notEmpty.Broadcast()
	b.mu.Unlock()

	if b.obs != nil {
		b.obs.BufferClosed()
	}
	return nil
}

// Destroy releases the store of a closed buffer. It returns ErrDestroy and
// leaves the buffer untouched if it is still open.
//
// The caller must guarantee that no goroutine is blocked in, or will later
// call into, the buffer.
func (b *Buffer) Destroy() error {
	b.mu.Lock()
	if b.open {
		b.mu.Unlock()
		return b.reject(OpDestroy, ErrDestroy)
	}
	if b.destroyed {
		b.mu.Unlock()
		return b.reject(OpDestroy, fmt.Errorf("%w: already destroyed", ErrBuffer))
	}
	discarded := b.store.Used()
	b.store.Free()
	b.store = nil
	b.destroyed = true
	b.mu.Unlock()

	if b.obs != nil {
		b.obs.BufferDestroyed(discarded)
	}
	return nil
}

// IsOpen reports whether the buffer has not been closed yet.
func (b *Buffer) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}

// Cap returns the capacity in bytes, or 0 once destroyed.
func (b *Buffer) Cap() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.store == nil {
		return 0
	}
	return b.store.Cap()
}

// Len returns the number of buffered messages.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.store == nil {
		return 0
	}
	return b.store.Len()
}

// Used returns the number of bytes held by buffered messages.
func (b *Buffer) Used() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.store == nil {
		return 0
	}
	return b.store.Used()
}

// Avail returns the number of free bytes, or 0 once destroyed.
func (b *Buffer) Avail() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.store == nil {
		return 0
	}
	return b.store.Avail()
}

func (b *Buffer) blocked(op Op) {
	if b.obs != nil {
		b.obs.Blocked(op)
	}
}

func (b *Buffer) reject(op Op, err error) error {
	if b.obs != nil {
		b.obs.OperationRejected(op, err)
	}
	return err
}
