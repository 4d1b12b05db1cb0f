package driven

import (
	"context"

	"github.com/ledgerdesk/ledgerdesk/internal/domain/model"
)

// SessionStore defines the driven port for server-side session state.
type SessionStore interface {
	// Create persists a new session row keyed by its token.
	Create(ctx context.Context, s *model.Session) error

	// Get returns the session with the given token, or (nil, nil) when none
	// exists.
	Get(ctx context.Context, token string) (*model.Session, error)

	// Delete removes the session with the given token. Deleting a missing
	// token is a no-op.
	Delete(ctx context.Context, token string) error

	// DeleteByCompany removes every session belonging to the company. Used
	// when a new login attempt discards any prior session state.
	DeleteByCompany(ctx context.Context, companyID int64) error
}
