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
var _ driven.SessionStore = (*SessionRepo)(nil)

// SessionRepo is the SQLite implementation of the SessionStore port interface.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new SessionRepo backed by the given DB.
func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create persists a new session row keyed by its token.
func (r *SessionRepo) Create(ctx context.Context, s *model.Session) error {
	const query = `INSERT INTO sessions (token, company_id, otp_verified, expires_at, created_at) VALUES (?, ?, ?, ?, ?)`

	createdAt := s.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	verified := 0
	if s.OTPVerified {
		verified = 1
	}

	_, err := r.db.Writer.ExecContext(ctx, query, s.Token, s.CompanyID, verified, s.ExpiresAt.UTC(), createdAt)
	if err != nil {
		return fmt.Errorf("create session for company %d: %w", s.CompanyID, err)
	}
	s.CreatedAt = createdAt

	return nil
}

// Get returns the session with the given token, or (nil, nil) when none exists.
func (r *SessionRepo) Get(ctx context.Context, token string) (*model.Session, error) {
	const query = `SELECT token, company_id, otp_verified, expires_at, created_at FROM sessions WHERE token = ?`

	var s model.Session
	var verified int
	var expiresAt, createdAt string
	err := r.db.Reader.QueryRowContext(ctx, query, token).
		Scan(&s.Token, &s.CompanyID, &verified, &expiresAt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	s.OTPVerified = verified != 0
	if s.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return nil, fmt.Errorf("parse expires_at: %w", err)
	}
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &s, nil
}

// Delete removes the session with the given token. Missing tokens are a no-op.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	const query = `DELETE FROM sessions WHERE token = ?`

	if _, err := r.db.Writer.ExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteByCompany removes every session belonging to the company.
func (r *SessionRepo) DeleteByCompany(ctx context.Context, companyID int64) error {
	const query = `DELETE FROM sessions WHERE company_id = ?`

	if _, err := r.db.Writer.ExecContext(ctx, query, companyID); err != nil {
		return fmt.Errorf("delete sessions for company %d: %w", companyID, err)
	}
	return nil
}
