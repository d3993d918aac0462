package buffer

import "time"

// DefaultSentinel is the payload Receive reports as SpecialMessage.
const DefaultSentinel = "splmsg"

type Option func(*Options)

type Options struct {
	Observer Observer
	Sentinel string
}

func defaultOptions() Options { return Options{Sentinel: DefaultSentinel} }

func WithObserver(obs Observer) Option { return func(o *Options) { o.Observer = obs } }

// WithSentinel overrides the payload reported as SpecialMessage.
func WithSentinel(s string) Option { return func(o *Options) { o.Sentinel = s } }

// Op names a buffer operation in observer callbacks.
type Op int

const (
	OpSend Op = iota
	OpReceive
	OpClose
	OpDestroy
)

func (op Op) String() string {
	switch op {
	case OpSend:
		return "send"
	case OpReceive:
		return "receive"
	case OpClose:
		return "close"
	case OpDestroy:
		return "destroy"
	default:
		return "unknown"
	}
}

// Observer receives lifecycle and traffic events. Callbacks run on the
// calling goroutine after the buffer lock is released and must not call back
// into the buffer that emitted them.
type Observer interface {
	BufferCreated(capacity int)
	MessageSent(size int, wait time.Duration)
	MessageReceived(size int, wait time.Duration, special bool)
	Blocked(op Op)
	OperationRejected(op Op, err error)
	BufferClosed()
	// BufferDestroyed reports the bytes of undelivered messages dropped with the store.
	BufferDestroyed(discarded int)
}
