package postgres

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/taskauth/internal/auth/store"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
)

// pool is the subset of *pgxpool.Pool the store uses.
type pool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

type Store struct {
	pool pool

	// dsn is empty when the store was built around a mock pool.
	dsn string
}

// NewStore connects to dsn with at most maxConns connections. A
// non-positive maxConns keeps the pgxpool default.
func NewStore(ctx context.Context, dsn string, maxConns int) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, oops.In("store").Code("store_open").Wrapf(err, "parse postgres dsn")
	}
	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}

	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, oops.In("store").Code("store_open").Wrapf(err, "connect postgres")
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, oops.In("store").Code("store_open").Wrapf(err, "ping postgres")
	}

	return &Store{pool: p, dsn: dsn}, nil
}

func newWithPool(p pool) *Store { return &Store{pool: p} }

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Users() store.Users { return &usersRepo{pool: s.pool} }

func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
