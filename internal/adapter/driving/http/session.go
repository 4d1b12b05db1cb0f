package httphandler

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ledgerdesk/ledgerdesk/internal/domain/model"
	"github.com/ledgerdesk/ledgerdesk/internal/domain/port/driven"
)

const (
	sessionCookieName = "ledgerdesk_session"
	sessionTokenBytes = 32
)

// SessionManager owns the login state machine on the cookie side: anonymous
// (no valid cookie or no row), pending (row with otp_verified=0), and
// authenticated (row with otp_verified=1). The cookie value is
// "token.mac" where mac is an HMAC-SHA256 of the token under the session
// secret, so a forged or truncated cookie never reaches the store as a
// plausible token. Tokens rotate on every state transition.
type SessionManager struct {
	sessions driven.SessionStore
	secret   []byte
	ttl      time.Duration
}

// NewSessionManager creates a SessionManager. secret signs cookies and must
// stay stable across restarts or every session drops to anonymous.
func NewSessionManager(sessions driven.SessionStore, secret []byte, ttl time.Duration) *SessionManager {
	return &SessionManager{sessions: sessions, secret: secret, ttl: ttl}
}

func generateToken() string {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		panic("session: failed to generate random token: " + err.Error())
	}
	return hex.EncodeToString(b)
}

func (m *SessionManager) sign(token string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

// verifyCookie extracts and authenticates the session token from the request
// cookie. Returns "" for anything other than a well-formed, correctly signed
// value.
func (m *SessionManager) verifyCookie(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}

	token, mac, ok := strings.Cut(cookie.Value, ".")
	if !ok || token == "" {
		return ""
	}
	if !hmac.Equal([]byte(mac), []byte(m.sign(token))) {
		return ""
	}
	return token
}

func (m *SessionManager) setCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token + "." + m.sign(token),
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   false, // set true when served over HTTPS
	})
}

// Current returns the session row for the request's cookie, or nil when the
// request is anonymous (no cookie, bad signature, or no matching row).
func (m *SessionManager) Current(ctx context.Context, r *http.Request) (*model.Session, error) {
	token := m.verifyCookie(r)
	if token == "" {
		return nil, nil
	}

	s, err := m.sessions.Get(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return s, nil
}

// IssuePending replaces any existing sessions for the company with a fresh
// pending-OTP session and sets its cookie. Called after credentials are
// accepted but before the code is verified.
func (m *SessionManager) IssuePending(ctx context.Context, w http.ResponseWriter, companyID int64) error {
	if err := m.sessions.DeleteByCompany(ctx, companyID); err != nil {
		return fmt.Errorf("clear prior sessions: %w", err)
	}

	s := &model.Session{
		Token:       generateToken(),
		CompanyID:   companyID,
		OTPVerified: false,
		ExpiresAt:   time.Now().UTC().Add(m.ttl),
	}
	if err := m.sessions.Create(ctx, s); err != nil {
		return fmt.Errorf("create pending session: %w", err)
	}

	m.setCookie(w, s.Token, s.ExpiresAt)
	return nil
}

// Promote swaps a pending session for a fully authenticated one. The pending
// row is deleted and a new row under a new token is created, so the
// pre-verification token can never be replayed as an authenticated one.
func (m *SessionManager) Promote(ctx context.Context, w http.ResponseWriter, pending *model.Session) error {
	if err := m.sessions.Delete(ctx, pending.Token); err != nil {
		return fmt.Errorf("delete pending session: %w", err)
	}

	s := &model.Session{
		Token:       generateToken(),
		CompanyID:   pending.CompanyID,
		OTPVerified: true,
		ExpiresAt:   time.Now().UTC().Add(m.ttl),
	}
	if err := m.sessions.Create(ctx, s); err != nil {
		return fmt.Errorf("create authenticated session: %w", err)
	}

	m.setCookie(w, s.Token, s.ExpiresAt)
	return nil
}

// Clear deletes the request's session row (if one exists) and expires the
// cookie, returning the caller to anonymous.
func (m *SessionManager) Clear(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if token := m.verifyCookie(r); token != "" {
		if err := m.sessions.Delete(ctx, token); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
