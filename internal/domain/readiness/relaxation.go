package readiness

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/ehr/healthrisk/internal/platform/clock"
)

// DefaultRelaxationDuration is the length of the guided breathing exercise.
const DefaultRelaxationDuration = 5 * time.Minute

// RunRelaxation waits out a relaxation exercise on sched and returns the event
// that records it. Cancelling ctx abandons the exercise without an event.
func RunRelaxation(ctx context.Context, sched clock.Scheduler, d time.Duration) (Event, error) {
	if d <= 0 {
		d = DefaultRelaxationDuration
	}
	if err := sched.Wait(ctx, d); err != nil {
		return nil, eris.Wrap(err, "relaxation exercise interrupted")
	}
	return RelaxationCompleted{}, nil
}
