package contact

import (
	"context"
	"errors"
	"time"

	"github.com/Zachkp/portfolio/internal/clock"
)

// DefaultDelay is the simulated delivery latency.
const DefaultDelay = 2 * time.Second

// ErrSimulatedFailure is returned by a Simulated submitter set to fail.
var ErrSimulatedFailure = errors.New("contact: simulated delivery failure")

// Simulated stands in for a real transport: it waits Delay and then
// succeeds, or fails when Fail is set.
type Simulated struct {
	Clock clock.Clock
	Delay time.Duration
	Fail  bool
}

func (s *Simulated) Submit(ctx context.Context, _ Form) error {
	c := s.Clock
	if c == nil {
		c = clock.Real()
	}
	d := s.Delay
	if d <= 0 {
		d = DefaultDelay
	}
	if !clock.Sleep(c, d, ctx.Done()) {
		return ctx.Err()
	}
	if s.Fail {
		return ErrSimulatedFailure
	}
	return nil
}
