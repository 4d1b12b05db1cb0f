package model

import "time"

// Challenge is one issued OTP attempt for a company login. CodeHash is a
// bcrypt hash of the 6-digit code; the plaintext code exists only in transit.
// Verified flips to true exactly once, on successful verification. Rows are
// never deleted: once a newer unverified challenge exists for the same
// company, older ones become unreachable and simply age out.
type Challenge struct {
	ID        int64
	CompanyID int64
	CodeHash  string
	ExpiresAt time.Time
	Verified  bool
	CreatedAt time.Time
}

// Expired reports whether the challenge's expiry is in the past at now.
func (c *Challenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
