// Package pipeline runs producers and consumers over a buffer.Buffer using
// golang.org/x/sync/errgroup. Closing the buffer is the only way to release
// blocked workers, so every shutdown path (normal drain, worker failure,
// context cancellation, early stop) ends in Close.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/NetPo4ki/go-buffer/buffer"
)

// ErrStop may be returned by a Consumer to end the run early without error.
var ErrStop = errors.New("pipeline: stop")

// ErrNoConsumers is returned by Run when producers have nobody to drain them.
var ErrNoConsumers = errors.New("pipeline: producers without consumers")

// Producer pushes messages through send until it is done. send returns
// buffer.ErrClosed once the run is shutting down; returning that error is
// not treated as a failure.
type Producer func(ctx context.Context, send func(msg string) error) error

// Consumer handles one received message.
type Consumer func(ctx context.Context, msg string, status buffer.Status) error

// Run starts every producer and consumer and blocks until all have returned.
// Once all producers finish and every sent message has been consumed, the
// buffer is closed and consumers exit. A worker error or cancellation of ctx
// closes the buffer immediately; messages still buffered are discarded.
//
// Run closes b but does not destroy it. It returns the first worker error,
// or ctx.Err() if ctx was cancelled.
func Run(ctx context.Context, b *buffer.Buffer, producers []Producer, consumers []Consumer) error {
	if len(producers) > 0 && len(consumers) == 0 {
		return ErrNoConsumers
	}
	g, gctx := errgroup.WithContext(ctx)

	var once sync.Once
	closed := make(chan struct{})
	shutdown := func() {
		once.Do(func() {
			_ = b.Close()
			close(closed)
		})
	}
	stop := context.AfterFunc(gctx, shutdown)
	defer stop()

	var (
		producing sync.WaitGroup
		pending   atomic.Int64
		progress  = newSignal()
	)
	send := func(msg string) error {
		pending.Add(1)
		if err := b.Send(msg); err != nil {
			pending.Add(-1)
			return err
		}
		return nil
	}

	for _, p := range producers {
		if p == nil {
			continue
		}
		producing.Add(1)
		g.Go(func() error {
			defer producing.Done()
			err := p(gctx, send)
			if errors.Is(err, buffer.ErrClosed) {
				shutdown()
				return nil
			}
			return err
		})
	}

	for _, c := range consumers {
		if c == nil {
			continue
		}
		g.Go(func() error {
			for {
				msg, status, err := b.Receive()
				if errors.Is(err, buffer.ErrClosed) {
					shutdown()
					return nil
				}
				if err != nil {
					return err
				}
				err = c(gctx, msg, status)
				pending.Add(-1)
				progress.Signal()
				if errors.Is(err, ErrStop) {
					shutdown()
					return nil
				}
				if err != nil {
					return err
				}
			}
		})
	}

	g.Go(func() error {
		producing.Wait()
		for pending.Load() > 0 {
			select {
			case <-progress.C():
			case <-closed:
				return nil
			}
		}
		shutdown()
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// signal is a coalescing wake-up: many Signals before a wait collapse into one.
type signal chan struct{}

func newSignal() signal { return make(chan struct{}, 1) }

func (s signal) Signal() {
	select {
	case s <- struct{}{}:
	default:
	}
}

func (s signal) C() <-chan struct{} { return s }
