package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/aussiebroadwan/taskauth/internal/auth/store"
	"github.com/samber/oops"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DefaultMaxOpenConns caps the pool when no option is given.
const DefaultMaxOpenConns = 5

type Store struct {
	db  *sql.DB
	dsn string
}

type Option func(*options)

type options struct {
	maxOpenConns int
}

// WithMaxOpenConns bounds the number of open connections to the database.
func WithMaxOpenConns(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxOpenConns = n
		}
	}
}

// NewStore opens the database at dsn. A bare file path is expanded with
// FileDSN. ":memory:" is pinned to a single connection so every query sees
// the same database.
func NewStore(dsn string, opts ...Option) (*Store, error) {
	o := options{maxOpenConns: DefaultMaxOpenConns}
	for _, opt := range opts {
		opt(&o)
	}

	memory := dsn == ":memory:"
	if !memory && !strings.HasPrefix(dsn, "file:") {
		dsn = FileDSN(dsn)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, oops.In("store").Code("store_open").Wrapf(err, "open sqlite")
	}

	if memory {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(o.maxOpenConns)
	}

	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, oops.In("store").Code("store_open").Wrapf(err, "ping sqlite")
	}

	return &Store{db: db, dsn: dsn}, nil
}

// FileDSN turns a file path into a DSN with WAL, a busy timeout and foreign
// keys enabled.
func FileDSN(path string) string {
	return "file:" + path +
		"?_pragma=busy_timeout(5000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=foreign_keys(1)"
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Users() store.Users { return &usersRepo{db: s.db} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	if serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	return serr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT &&
		strings.Contains(serr.Error(), "UNIQUE")
}
