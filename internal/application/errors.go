package application

import (
	"errors"
	"fmt"
)

// Auth flow sentinels. Each OTP failure kind maps to a distinct
// caller-visible outcome: NoChallenge and ChallengeExpired restart the login
// flow, MalformedCode and InvalidCode re-prompt in place.
var (
	// ErrInvalidCredentials covers both unknown email and wrong password;
	// callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDuplicateCompany is returned on signup when the name or email is
	// already registered.
	ErrDuplicateCompany = errors.New("company name or email already exists")

	// ErrNoChallenge means no unverified challenge exists for the company.
	ErrNoChallenge = errors.New("no pending verification code")

	// ErrChallengeExpired means the newest unverified challenge is past its expiry.
	ErrChallengeExpired = errors.New("verification code expired")

	// ErrMalformedCode means the submitted code is not 6 digits after
	// stripping non-digit characters.
	ErrMalformedCode = errors.New("code must be 6 digits")

	// ErrInvalidCode means the code did not match; the challenge stays
	// unverified and may be retried.
	ErrInvalidCode = errors.New("incorrect verification code")
)

// ValidationError reports malformed user input. Nothing is persisted when
// one is returned; the message is safe to show to the user.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
