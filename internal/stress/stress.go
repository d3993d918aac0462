// Package stress drives a buffer with a configurable producer/consumer
// workload and checks that every message sent was received.
package stress

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/NetPo4ki/go-buffer/buffer"
	"github.com/NetPo4ki/go-buffer/internal/config"
	"github.com/NetPo4ki/go-buffer/pipeline"
)

// Report summarizes one run.
type Report struct {
	Sent     int64
	Received int64
	Special  int64
	Elapsed  time.Duration
}

func (r Report) String() string {
	return fmt.Sprintf("sent=%d received=%d special=%d elapsed=%s", r.Sent, r.Received, r.Special, r.Elapsed)
}

// Run executes the workload described by cfg on a fresh buffer observed by
// obs (which may be nil). The buffer is destroyed before Run returns.
func Run(ctx context.Context, cfg *config.Config, obs buffer.Observer) (Report, error) {
	var opts []buffer.Option
	if obs != nil {
		opts = append(opts, buffer.WithObserver(obs))
	}
	b, err := buffer.New(cfg.Buffer.Capacity, opts...)
	if err != nil {
		return Report{}, err
	}
	if d := cfg.Load.Timeout(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	var sent, received, special atomic.Int64
	payload := strings.Repeat("x", cfg.Load.PayloadSize)
	every := cfg.Load.SpecialEvery

	producers := make([]pipeline.Producer, cfg.Load.Producers)
	for i := range producers {
		producers[i] = func(ctx context.Context, send func(string) error) error {
			for n := 1; n <= cfg.Load.Messages; n++ {
				msg := payload
				if every > 0 && n%every == 0 {
					msg = buffer.DefaultSentinel
				}
				if err := send(msg); err != nil {
					return err
				}
				sent.Add(1)
			}
			return nil
		}
	}
	consumers := make([]pipeline.Consumer, cfg.Load.Consumers)
	for i := range consumers {
		consumers[i] = func(_ context.Context, _ string, status buffer.Status) error {
			received.Add(1)
			if status == buffer.SpecialMessage {
				special.Add(1)
			}
			return nil
		}
	}

	start := time.Now()
	runErr := pipeline.Run(ctx, b, producers, consumers)
	rep := Report{Sent: sent.Load(), Received: received.Load(), Special: special.Load(), Elapsed: time.Since(start)}

	if err := b.Destroy(); err != nil {
		return rep, fmt.Errorf("failed to destroy buffer: %w", err)
	}
	if runErr != nil {
		return rep, runErr
	}
	if rep.Sent != rep.Received {
		return rep, fmt.Errorf("lost messages: sent %d, received %d", rep.Sent, rep.Received)
	}
	return rep, nil
}
