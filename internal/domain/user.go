package domain

import "time"

// User is a registered customer. PasswordHash is a bcrypt hash; the
// plaintext password is never stored.
type User struct {
	UserID       string
	Name         string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}
