package reveal

import (
	"context"
	"time"
)

// DefaultInterval is the per-token reveal spacing.
const DefaultInterval = 75 * time.Millisecond

// Scheduler stages tokens on a strictly increasing schedule: token k is
// appended at k×Interval, in order, with no batching. A Run is cancellable
// between any two appends; at most one Run should be live per conversation,
// which callers enforce by cancelling the previous Run before starting a
// new one.
type Scheduler struct {
	interval time.Duration
}

func NewScheduler(interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{interval: interval}
}

// Run is one in-flight reveal.
type Run struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Cancel stops the run before its next append. Safe to call repeatedly and
// after completion.
func (r *Run) Cancel() { r.cancel() }

// Wait blocks until the run has finished or been cancelled.
func (r *Run) Wait() { <-r.done }

// Start begins revealing tokens. appendFn is called once per token with its
// index; doneFn is called exactly once with cancelled=true when the run was
// stopped early.
func (s *Scheduler) Start(parent context.Context, tokens []string, appendFn func(i int, token string), doneFn func(cancelled bool)) *Run {
	ctx, cancel := context.WithCancel(parent)
	r := &Run{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(r.done)
		tick := time.NewTicker(s.interval)
		defer tick.Stop()
		for i, tok := range tokens {
			if i == 0 {
				// first token shows immediately
				select {
				case <-ctx.Done():
					doneFn(true)
					return
				default:
				}
			} else {
				select {
				case <-ctx.Done():
					doneFn(true)
					return
				case <-tick.C:
				}
			}
			appendFn(i, tok)
		}
		doneFn(false)
	}()
	return r
}
