package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/taskauth/internal/auth/domain"
	"github.com/aussiebroadwan/taskauth/internal/auth/store"
	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"
)

const (
	insertUser = `INSERT INTO users (username, password_hash, created_at)
VALUES ($1, $2, $3)
RETURNING id`

	selectUserByUsername = `SELECT id, username, password_hash, created_at
FROM users
WHERE lower(username) = lower($1)`

	selectUserByID = `SELECT id, username, password_hash, created_at
FROM users
WHERE id = $1`
)

type usersRepo struct {
	pool pool
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	u.CreatedAt = u.CreatedAt.UTC()

	err := r.pool.QueryRow(ctx, insertUser, u.Username, u.PasswordHash, u.CreatedAt).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, store.ErrAlreadyExists
		}
		return domain.User{}, oops.In("store").Code("store_query").
			With("op", "create_user").
			Wrapf(err, "insert user")
	}
	return u, nil
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.scanOne(ctx, "get_user_by_username", selectUserByUsername, username)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	return r.scanOne(ctx, "get_user_by_id", selectUserByID, id)
}

func (r *usersRepo) scanOne(ctx context.Context, op, query string, arg any) (domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, mapNotFound(err)
		}
		return domain.User{}, oops.In("store").Code("store_query").
			With("op", op).
			Wrapf(err, "select user")
	}
	return u, nil
}
