package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ledgerdesk/ledgerdesk/internal/domain/model"
	"github.com/ledgerdesk/ledgerdesk/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ChallengeStore = (*ChallengeRepo)(nil)

// ChallengeRepo is the SQLite implementation of the ChallengeStore port
// interface. Rows are append-only except for the verified flag; expired and
// superseded challenges persist but are never matched again.
type ChallengeRepo struct {
	db *DB
}

// NewChallengeRepo creates a new ChallengeRepo backed by the given DB.
func NewChallengeRepo(db *DB) *ChallengeRepo {
	return &ChallengeRepo{db: db}
}

// Create persists a new unverified challenge and fills in its ID and
// creation timestamp.
func (r *ChallengeRepo) Create(ctx context.Context, ch *model.Challenge) error {
	const query = `INSERT INTO otp_challenges (company_id, code_hash, expires_at, verified, created_at) VALUES (?, ?, ?, 0, ?)`

	createdAt := ch.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res, err := r.db.Writer.ExecContext(ctx, query, ch.CompanyID, ch.CodeHash, ch.ExpiresAt.UTC(), createdAt)
	if err != nil {
		return fmt.Errorf("create challenge for company %d: %w", ch.CompanyID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create challenge: last insert id: %w", err)
	}
	ch.ID = id
	ch.CreatedAt = createdAt
	ch.Verified = false

	return nil
}

// LatestUnverified returns the newest unverified challenge for the company,
// or (nil, nil) when none exists. The created_at, id ordering is the whole
// OTP freshness contract: once a newer challenge exists, older unverified
// rows are unreachable.
func (r *ChallengeRepo) LatestUnverified(ctx context.Context, companyID int64) (*model.Challenge, error) {
	const query = `
		SELECT id, company_id, code_hash, expires_at, verified, created_at
		FROM otp_challenges
		WHERE company_id = ? AND verified = 0
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	var ch model.Challenge
	var verified int
	var expiresAt, createdAt string
	err := r.db.Reader.QueryRowContext(ctx, query, companyID).
		Scan(&ch.ID, &ch.CompanyID, &ch.CodeHash, &expiresAt, &verified, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest unverified challenge for company %d: %w", companyID, err)
	}

	ch.Verified = verified != 0
	if ch.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return nil, fmt.Errorf("parse expires_at: %w", err)
	}
	if ch.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &ch, nil
}

// MarkVerified flips the verified flag on the challenge in a single commit.
func (r *ChallengeRepo) MarkVerified(ctx context.Context, id int64) error {
	const query = `UPDATE otp_challenges SET verified = 1 WHERE id = ?`

	res, err := r.db.Writer.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("mark challenge %d verified: %w", id, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark challenge %d verified: rows affected: %w", id, err)
	}
	if rows == 0 {
		return fmt.Errorf("mark challenge %d verified: %w", id, driven.ErrNotFound)
	}

	return nil
}
