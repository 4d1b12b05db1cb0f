package model

import "time"

// Company is a registered business account. Name and Email are unique.
// PasswordHash is a bcrypt hash; the plaintext password is never persisted.
// A company owns its transactions and OTP challenges; deleting a company
// cascades to both.
type Company struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
