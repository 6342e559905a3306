package domain

import "time"

// User is the durable record behind a Principal. Users are provisioned on
// first sight of an identity and keyed by email.
type User struct {
	ID        string
	Email     string
	Username  string
	FullName  string
	IsAdmin   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
