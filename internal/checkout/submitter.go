package checkout

import (
	"context"
	"time"
)

// DefaultSubmitDelay is how long the simulated order call takes.
const DefaultSubmitDelay = 1500 * time.Millisecond

// Submitter places an order. Implementations must return promptly once ctx
// is done.
type Submitter interface {
	Submit(ctx context.Context, order Order) error
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, order Order) error

func (f SubmitterFunc) Submit(ctx context.Context, order Order) error {
	return f(ctx, order)
}

// SimulatedSubmitter waits for Delay and then succeeds. No network call is
// made.
type SimulatedSubmitter struct {
	Delay time.Duration
}

// NewSimulatedSubmitter returns a submitter with the given delay, or
// DefaultSubmitDelay when delay is not positive.
func NewSimulatedSubmitter(delay time.Duration) *SimulatedSubmitter {
	if delay <= 0 {
		delay = DefaultSubmitDelay
	}
	return &SimulatedSubmitter{Delay: delay}
}

func (s *SimulatedSubmitter) Submit(ctx context.Context, _ Order) error {
	t := time.NewTimer(s.Delay)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
