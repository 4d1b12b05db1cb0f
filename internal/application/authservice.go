package application

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ledgerdesk/ledgerdesk/internal/domain/model"
	"github.com/ledgerdesk/ledgerdesk/internal/domain/port/driven"
	"github.com/ledgerdesk/ledgerdesk/internal/security"
)

// codeSpace is the number of distinct OTP codes (000000–999999).
var codeSpace = big.NewInt(1000000)

// AuthService implements company registration, credential verification, and
// the OTP challenge engine. One-time codes exist in plaintext only on the
// path from generation to the notifier; they are persisted and compared as
// bcrypt hashes and never logged.
type AuthService struct {
	companies  driven.CompanyStore
	challenges driven.ChallengeStore
	notifier   driven.OTPNotifier
	hasher     *security.Hasher
	otpExpiry  time.Duration
	logger     *slog.Logger

	// now is swappable in tests.
	now func() time.Time
}

// NewAuthService creates an AuthService. otpExpiry is the validity window of
// issued codes.
func NewAuthService(
	companies driven.CompanyStore,
	challenges driven.ChallengeStore,
	notifier driven.OTPNotifier,
	hasher *security.Hasher,
	otpExpiry time.Duration,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		companies:  companies,
		challenges: challenges,
		notifier:   notifier,
		hasher:     hasher,
		otpExpiry:  otpExpiry,
		logger:     logger,
		now:        time.Now,
	}
}

// Register creates a new company account. Name, email, and password are all
// required; email is lowercased. Duplicate name or email returns
// ErrDuplicateCompany. A welcome notification is sent best-effort: delivery
// failure is logged and does not fail the signup.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*model.Company, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, validationErrorf("name, email, and password are all required")
	}

	if existing, err := s.companies.GetByEmail(ctx, email); err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	} else if existing != nil {
		return nil, ErrDuplicateCompany
	}
	if existing, err := s.companies.GetByName(ctx, name); err != nil {
		return nil, fmt.Errorf("check name: %w", err)
	} else if existing != nil {
		return nil, ErrDuplicateCompany
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	company := &model.Company{Name: name, Email: email, PasswordHash: hash}
	if err := s.companies.Create(ctx, company); err != nil {
		return nil, fmt.Errorf("create company: %w", err)
	}

	if err := s.notifier.SendOTP(ctx, email, name, "WELCOME"); err != nil {
		s.logger.Warn("welcome email failed", "company", name, "error", err)
	}

	return company, nil
}

// Login verifies credentials and, on success, issues a fresh OTP challenge
// and sends the code to the company's registered address. Unknown email and
// wrong password both return ErrInvalidCredentials. A delivery failure is
// returned to the caller after the challenge row is already persisted: the
// row stays (it is superseded by the next issue), but the login attempt must
// halt before any session state is created.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.Company, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	company, err := s.companies.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup company: %w", err)
	}
	if company == nil || !s.hasher.Verify(company.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	code, err := s.issueChallenge(ctx, company.ID)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.SendOTP(ctx, company.Email, company.Name, code); err != nil {
		return nil, fmt.Errorf("send one-time code: %w", err)
	}

	return company, nil
}

// issueChallenge generates a 6-digit code, persists its hash with the
// configured expiry, and returns the plaintext code for one-time
// transmission.
func (s *AuthService) issueChallenge(ctx context.Context, companyID int64) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}

	hash, err := s.hasher.Hash(code)
	if err != nil {
		return "", fmt.Errorf("hash code: %w", err)
	}

	ch := &model.Challenge{
		CompanyID: companyID,
		CodeHash:  hash,
		ExpiresAt: s.now().Add(s.otpExpiry),
	}
	if err := s.challenges.Create(ctx, ch); err != nil {
		return "", fmt.Errorf("persist challenge: %w", err)
	}

	return code, nil
}

// VerifyOTP checks a submitted code against the company's newest unverified
// challenge. Non-digit characters are stripped first; anything other than 6
// remaining digits is ErrMalformedCode. A missing challenge is
// ErrNoChallenge, a stale one ErrChallengeExpired, a mismatch ErrInvalidCode
// (retriable). On match the challenge is marked verified, exactly once.
func (s *AuthService) VerifyOTP(ctx context.Context, companyID int64, submitted string) error {
	code := digitsOnly(submitted)
	if len(code) != 6 {
		return ErrMalformedCode
	}

	ch, err := s.challenges.LatestUnverified(ctx, companyID)
	if err != nil {
		return fmt.Errorf("lookup challenge: %w", err)
	}
	if ch == nil {
		return ErrNoChallenge
	}
	if ch.Expired(s.now()) {
		return ErrChallengeExpired
	}
	if !s.hasher.Verify(ch.CodeHash, code) {
		return ErrInvalidCode
	}

	if err := s.challenges.MarkVerified(ctx, ch.ID); err != nil {
		return fmt.Errorf("mark challenge verified: %w", err)
	}
	return nil
}

// generateCode draws a uniformly random 6-digit code from a
// cryptographically strong source, zero-padded.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// digitsOnly strips every non-digit character from s.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
