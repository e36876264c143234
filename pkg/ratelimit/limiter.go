// Package ratelimit implements fixed window admission control keyed by
// (client, action).
//
// A window opens on the first admitted request for a key and lasts exactly
// the policy window. Once it has elapsed the next request opens a fresh
// window with a zero count. Denied requests never touch the counter, so a
// client hammering a closed window does not extend its own lockout.
package ratelimit

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// DefaultSweepInterval bounds how often Admit opportunistically evicts
// elapsed windows.
const DefaultSweepInterval = time.Minute

// Decision is the outcome of an admission check.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration // zero when allowed
	ResetAt    time.Time
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds, never below one,
// for the Retry-After header.
func (d Decision) RetryAfterSeconds() int {
	return max(int(math.Ceil(d.RetryAfter.Seconds())), 1)
}

type windowKey struct {
	key    string
	action Action
}

type window struct {
	start time.Time
	end   time.Time
	count int
}

// Limiter tracks fixed windows for every (key, action) pair. A single mutex
// guards the table, so check and increment are atomic and concurrent callers
// racing for the last slot cannot both be admitted.
type Limiter struct {
	mu       sync.Mutex
	policies Policies
	windows  map[windowKey]*window

	now           func() time.Time
	sweepInterval time.Duration
	lastSweep     time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces the time source, tests use it to step through windows.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// WithSweepInterval sets how often Admit evicts elapsed windows. Zero
// disables opportunistic sweeping and leaves it to Sweep.
func WithSweepInterval(d time.Duration) Option {
	return func(l *Limiter) { l.sweepInterval = d }
}

// New builds a limiter for the given policy table.
func New(policies Policies, opts ...Option) (*Limiter, error) {
	if err := policies.Validate(); err != nil {
		return nil, err
	}

	l := &Limiter{
		policies:      make(Policies, len(policies)),
		windows:       make(map[windowKey]*window),
		now:           time.Now,
		sweepInterval: DefaultSweepInterval,
	}
	for a, p := range policies {
		l.policies[a] = p
	}
	for _, opt := range opts {
		opt(l)
	}
	l.lastSweep = l.now()
	return l, nil
}

// MustNew is New for static policy tables known to be valid.
func MustNew(policies Policies, opts ...Option) *Limiter {
	l, err := New(policies, opts...)
	if err != nil {
		panic(fmt.Sprintf("ratelimit: %v", err))
	}
	return l
}

// Policy returns the policy enforced for action. Actions without their own
// entry share the general policy.
func (l *Limiter) Policy(action Action) Policy {
	if p, ok := l.policies[action]; ok {
		return p
	}
	return l.policies[ActionGeneral]
}

// Admit records one request for key under action and reports whether it may
// proceed.
func (l *Limiter) Admit(key string, action Action) Decision {
	p, ok := l.policies[action]
	if !ok {
		action, p = ActionGeneral, l.policies[ActionGeneral]
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.maybeSweepLocked(now)

	k := windowKey{key: key, action: action}
	w, open := l.windows[k]
	if !open || !now.Before(w.end) {
		w = &window{start: now, end: now.Add(p.Window)}
		l.windows[k] = w
	}

	if w.count >= p.Requests {
		return Decision{
			Allowed:    false,
			Limit:      p.Requests,
			Remaining:  0,
			RetryAfter: w.end.Sub(now),
			ResetAt:    w.end,
		}
	}

	w.count++
	return Decision{
		Allowed:   true,
		Limit:     p.Requests,
		Remaining: p.Requests - w.count,
		ResetAt:   w.end,
	}
}

// Sweep evicts every window that has elapsed and returns how many were
// removed.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sweepLocked(l.now())
}

// Len reports the number of live windows.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// Reset forgets every window.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.windows)
}

func (l *Limiter) maybeSweepLocked(now time.Time) {
	if l.sweepInterval <= 0 || now.Sub(l.lastSweep) < l.sweepInterval {
		return
	}
	l.sweepLocked(now)
}

func (l *Limiter) sweepLocked(now time.Time) int {
	l.lastSweep = now

	removed := 0
	for k, w := range l.windows {
		if !now.Before(w.end) {
			delete(l.windows, k)
			removed++
		}
	}
	return removed
}
