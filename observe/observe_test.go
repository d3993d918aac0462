package observe

import (
	"errors"
	"testing"
	"time"

	"github.com/NetPo4ki/go-buffer/buffer"
)

var (
	_ buffer.Observer = (*Nop)(nil)
	_ buffer.Observer = Multi(nil)
)

type recorder struct{ events []string }

func (r *recorder) BufferCreated(int)                        { r.events = append(r.events, "created") }
func (r *recorder) MessageSent(int, time.Duration)           { r.events = append(r.events, "sent") }
func (r *recorder) MessageReceived(int, time.Duration, bool) { r.events = append(r.events, "received") }
func (r *recorder) Blocked(buffer.Op)                        { r.events = append(r.events, "blocked") }
func (r *recorder) OperationRejected(op buffer.Op, _ error)  { r.events = append(r.events, "rejected:"+op.String()) }
func (r *recorder) BufferClosed()                            { r.events = append(r.events, "closed") }
func (r *recorder) BufferDestroyed(int)                      { r.events = append(r.events, "destroyed") }

func TestMultiForwardsToAll(t *testing.T) {
	t.Parallel()
	a, c := &recorder{}, &recorder{}
	m := NewMulti(a, nil, NewNop(), c)
	if len(m) != 3 {
		t.Fatalf("nil observers should be dropped, got %d", len(m))
	}

	b := buffer.MustNew(8, buffer.WithObserver(m))
	_ = b.Send("x")
	_, _, _ = b.Receive()
	_ = b.Close()
	_ = b.Close()
	_ = b.Destroy()

	want := []string{"created", "sent", "received", "closed", "rejected:close", "destroyed"}
	for _, r := range []*recorder{a, c} {
		if len(r.events) != len(want) {
			t.Fatalf("got events %v, want %v", r.events, want)
		}
		for i := range want {
			if r.events[i] != want[i] {
				t.Fatalf("event %d: got %q, want %q", i, r.events[i], want[i])
			}
		}
	}
}

func TestMultiRejectedCarriesError(t *testing.T) {
	t.Parallel()
	var got error
	m := NewMulti(&errObserver{fn: func(err error) { got = err }})
	m.OperationRejected(buffer.OpSend, buffer.ErrClosed)
	if !errors.Is(got, buffer.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", got)
	}
}

type errObserver struct {
	Nop
	fn func(error)
}

func (o errObserver) OperationRejected(_ buffer.Op, err error) { o.fn(err) }
