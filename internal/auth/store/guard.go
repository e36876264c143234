package store

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/aussiebroadwan/taskauth/internal/auth/domain"
	"golang.org/x/sync/semaphore"
)

var (
	// ErrBusy means the wait queue in front of the store is full.
	ErrBusy = errors.New("store: too many queued queries")

	// ErrTimeout means a query did not finish within the guard timeout.
	ErrTimeout = errors.New("store: query timed out")
)

// GuardOptions bound concurrent access to a Store.
type GuardOptions struct {
	// MaxInFlight is the number of queries allowed to run at once.
	MaxInFlight int

	// MaxQueue is how many callers may wait for a slot. Callers past this
	// fail fast with ErrBusy.
	MaxQueue int

	// Timeout covers both the wait for a slot and the query itself.
	Timeout time.Duration
}

// Guard wraps a Store so that every query runs under a deadline and at most
// MaxInFlight queries run at once, with a bounded queue behind them.
type Guard struct {
	Store

	sem      *semaphore.Weighted
	maxQueue int64
	timeout  time.Duration

	inFlight atomic.Int64
	waiting  atomic.Int64
}

// NewGuard wraps inner. Zero options fall back to 5 in flight, a queue of
// 64 and a 5 second timeout. A negative MaxQueue disables queueing.
func NewGuard(inner Store, opts GuardOptions) *Guard {
	if opts.MaxInFlight <= 0 {
		opts.MaxInFlight = 5
	}
	if opts.MaxQueue < 0 {
		opts.MaxQueue = 0
	} else if opts.MaxQueue == 0 {
		opts.MaxQueue = 64
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}

	return &Guard{
		Store:    inner,
		sem:      semaphore.NewWeighted(int64(opts.MaxInFlight)),
		maxQueue: int64(opts.MaxQueue),
		timeout:  opts.Timeout,
	}
}

// InFlight reports the number of queries currently running.
func (g *Guard) InFlight() int64 { return g.inFlight.Load() }

// Waiting reports the number of callers queued for a slot.
func (g *Guard) Waiting() int64 { return g.waiting.Load() }

func (g *Guard) Users() Users { return guardedUsers{g: g, inner: g.Store.Users()} }

func (g *Guard) Ping(ctx context.Context) error {
	_, err := guarded(ctx, g, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, g.Store.Ping(ctx)
	})
	return err
}

func guarded[T any](ctx context.Context, g *Guard, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	qctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if !g.sem.TryAcquire(1) {
		if g.waiting.Add(1) > g.maxQueue {
			g.waiting.Add(-1)
			return zero, ErrBusy
		}
		err := g.sem.Acquire(qctx, 1)
		g.waiting.Add(-1)
		if err != nil {
			return zero, g.deadline(ctx, err)
		}
	}
	g.inFlight.Add(1)
	defer func() {
		g.inFlight.Add(-1)
		g.sem.Release(1)
	}()

	v, err := fn(qctx)
	if err != nil && qctx.Err() != nil {
		return zero, g.deadline(ctx, err)
	}
	return v, err
}

// deadline reports our own timeout as ErrTimeout. A caller that cancelled
// or set a tighter deadline gets its context error back unchanged.
func (g *Guard) deadline(parent context.Context, err error) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	return fmt.Errorf("%w: %w", ErrTimeout, err)
}

type guardedUsers struct {
	g     *Guard
	inner Users
}

func (u guardedUsers) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	return guarded(ctx, u.g, func(ctx context.Context) (domain.User, error) {
		return u.inner.CreateUser(ctx, user)
	})
}

func (u guardedUsers) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return guarded(ctx, u.g, func(ctx context.Context) (domain.User, error) {
		return u.inner.GetUserByUsername(ctx, username)
	})
}

func (u guardedUsers) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	return guarded(ctx, u.g, func(ctx context.Context) (domain.User, error) {
		return u.inner.GetUserByID(ctx, id)
	})
}
