package ratelimit

import "context"

type trackerKey struct{}

// Tracker holds the last admission decision made while serving one request.
// Admission happens below the transport, the tracker carries the decision
// back up so the caller can advertise the remaining budget.
type Tracker struct {
	decision Decision
	tracked  bool
}

// Decision returns the recorded decision and whether one was recorded.
func (t *Tracker) Decision() (Decision, bool) {
	if t == nil {
		return Decision{}, false
	}
	return t.decision, t.tracked
}

// WithTracker returns a child context that records admissions into a new
// Tracker.
func WithTracker(ctx context.Context) (context.Context, *Tracker) {
	t := &Tracker{}
	return context.WithValue(ctx, trackerKey{}, t), t
}

// Track records d on the context's Tracker. It is a no-op when the context
// carries none.
func Track(ctx context.Context, d Decision) {
	if t, ok := ctx.Value(trackerKey{}).(*Tracker); ok {
		t.decision = d
		t.tracked = true
	}
}
