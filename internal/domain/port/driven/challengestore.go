package driven

import (
	"context"

	"github.com/ledgerdesk/ledgerdesk/internal/domain/model"
)

// ChallengeStore defines the driven port for OTP challenge persistence.
// Correctness of the whole OTP flow hangs on LatestUnverified picking the
// newest row, so that ordering is part of this contract rather than an
// implementation detail.
type ChallengeStore interface {
	// Create persists a new challenge with Verified=false.
	Create(ctx context.Context, ch *model.Challenge) error

	// LatestUnverified returns the most recently created challenge for the
	// company with Verified=false, or (nil, nil) when none exists. Older
	// unverified challenges are superseded, never matched again.
	LatestUnverified(ctx context.Context, companyID int64) (*model.Challenge, error)

	// MarkVerified sets Verified=true on the given challenge in a single
	// commit. Returns ErrNotFound for a missing id.
	MarkVerified(ctx context.Context, id int64) error
}
