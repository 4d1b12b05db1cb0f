package model

import "time"

// Session is one server-side login session. A row with OTPVerified=false is
// the pending-OTP state (credentials accepted, code not yet confirmed); a
// row with OTPVerified=true is fully authenticated. No row at all means
// anonymous. Tokens rotate on every state transition, so a pending token can
// never be replayed as an authenticated one.
type Session struct {
	Token       string
	CompanyID   int64
	OTPVerified bool
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

// Authenticated reports whether the session grants ledger access at now:
// the OTP marker must be present and the session unexpired.
func (s *Session) Authenticated(now time.Time) bool {
	return s.OTPVerified && now.Before(s.ExpiresAt)
}
