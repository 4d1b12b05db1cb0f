package driven

import "context"

// OTPNotifier defines the driven port for delivering one-time codes to a
// registered address. Delivery is attempted synchronously during the issue
// step; a failure must surface to the caller so the login flow can halt
// before any session state is created, and must never roll back the
// already-persisted challenge.
type OTPNotifier interface {
	SendOTP(ctx context.Context, toEmail, companyName, code string) error
}
