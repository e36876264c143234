package domain

import "time"

type User struct {
	ID           int64 // assigned by the store
	Username     string
	PasswordHash string // bcrypt encoded, never leaves the service
	CreatedAt    time.Time
}
