package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ledgerdesk/ledgerdesk/internal/application"
	"github.com/ledgerdesk/ledgerdesk/internal/domain/model"
	"github.com/ledgerdesk/ledgerdesk/internal/security"
)

// --- Mock implementations ---

type mockCompanyStore struct {
	companies []*model.Company
	nextID    int64
}

func (m *mockCompanyStore) Create(_ context.Context, c *model.Company) error {
	m.nextID++
	c.ID = m.nextID
	c.CreatedAt = time.Now().UTC()
	m.companies = append(m.companies, c)
	return nil
}

func (m *mockCompanyStore) GetByEmail(_ context.Context, email string) (*model.Company, error) {
	for _, c := range m.companies {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockCompanyStore) GetByName(_ context.Context, name string) (*model.Company, error) {
	for _, c := range m.companies {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockCompanyStore) GetByID(_ context.Context, id int64) (*model.Company, error) {
	for _, c := range m.companies {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockCompanyStore) Delete(_ context.Context, _ int64) error { return nil }

type mockChallengeStore struct {
	challenges []*model.Challenge
	nextID     int64
}

func (m *mockChallengeStore) Create(_ context.Context, ch *model.Challenge) error {
	m.nextID++
	ch.ID = m.nextID
	ch.CreatedAt = time.Now().UTC()
	m.challenges = append(m.challenges, ch)
	return nil
}

func (m *mockChallengeStore) LatestUnverified(_ context.Context, companyID int64) (*model.Challenge, error) {
	// Challenges are appended in creation order; scan backwards for the newest.
	for i := len(m.challenges) - 1; i >= 0; i-- {
		ch := m.challenges[i]
		if ch.CompanyID == companyID && !ch.Verified {
			return ch, nil
		}
	}
	return nil, nil
}

func (m *mockChallengeStore) MarkVerified(_ context.Context, id int64) error {
	for _, ch := range m.challenges {
		if ch.ID == id {
			ch.Verified = true
			return nil
		}
	}
	return errors.New("challenge not found")
}

type mockNotifier struct {
	sentCodes []string
	sentTo    []string
	err       error
}

func (m *mockNotifier) SendOTP(_ context.Context, toEmail, _ string, code string) error {
	if m.err != nil {
		return m.err
	}
	m.sentTo = append(m.sentTo, toEmail)
	m.sentCodes = append(m.sentCodes, code)
	return nil
}

// lastOTP returns the most recent real code sent, skipping the welcome marker.
func (m *mockNotifier) lastOTP() string {
	for i := len(m.sentCodes) - 1; i >= 0; i-- {
		if m.sentCodes[i] != "WELCOME" {
			return m.sentCodes[i]
		}
	}
	return ""
}

type authFixture struct {
	svc        *application.AuthService
	companies  *mockCompanyStore
	challenges *mockChallengeStore
	notifier   *mockNotifier
}

func newAuthFixture(t *testing.T, otpExpiry time.Duration) *authFixture {
	t.Helper()

	f := &authFixture{
		companies:  &mockCompanyStore{},
		challenges: &mockChallengeStore{},
		notifier:   &mockNotifier{},
	}
	f.svc = application.NewAuthService(
		f.companies, f.challenges, f.notifier,
		security.NewHasher(bcrypt.MinCost), otpExpiry, nil,
	)
	return f
}

func register(t *testing.T, f *authFixture) *model.Company {
	t.Helper()
	company, err := f.svc.Register(context.Background(), "Acme", "acme@x.com", "pw123")
	require.NoError(t, err)
	return company
}

// --- Tests ---

func TestRegister_CreatesCompany(t *testing.T) {
	f := newAuthFixture(t, 10*time.Minute)

	company := register(t, f)
	assert.Equal(t, "Acme", company.Name)
	assert.Equal(t, "acme@x.com", company.Email)
	assert.NotEqual(t, "pw123", company.PasswordHash)

	// Welcome notification went out.
	require.Len(t, f.notifier.sentCodes, 1)
	assert.Equal(t, "WELCOME", f.notifier.sentCodes[0])
}

func TestRegister_NormalizesEmail(t *testing.T) {
	f := newAuthFixture(t, 10*time.Minute)

	company, err := f.svc.Register(context.Background(), "Acme", "  ACME@X.COM ", "pw123")
	require.NoError(t, err)
	assert.Equal(t, "acme@x.com", company.Email)
}

func TestRegister_DuplicateNameOrEmail(t *testing.T) {
	f := newAuthFixture(t, 10*time.Minute)
	register(t, f)

	_, err := f.svc.Register(context.Background(), "Other", "acme@x.com", "pw")
	assert.ErrorIs(t, err, application.ErrDuplicateCompany)

	_, err = f.svc.Register(context.Background(), "Acme", "other@x.com", "pw")
	assert.ErrorIs(t, err, application.ErrDuplicateCompany)
}

func TestRegister_MissingFields(t *testing.T) {
	f := newAuthFixture(t, 10*time.Minute)

	var vErr *application.ValidationError
	_, err := f.svc.Register(context.Background(), "", "a@x.com", "pw")
	assert.ErrorAs(t, err, &vErr)
}

func TestRegister_WelcomeFailureIsNotFatal(t *testing.T) {
	f := newAuthFixture(t, 10*time.Minute)
	f.notifier.err = errors.New("gateway down")

	_, err := f.svc.Register(context.Background(), "Acme", "acme@x.com", "pw123")
	assert.NoError(t, err)
}

func TestLogin_IssuesAndSendsCode(t *testing.T) {
	f := newAuthFixture(t, 10*time.Minute)
	register(t, f)

	company, err := f.svc.Login(context.Background(), "acme@x.com", "pw123")
	require.NoError(t, err)
	assert.Equal(t, "Acme", company.Name)

	code := f.notifier.lastOTP()
	require.Len(t, code, 6)

	// The persisted challenge holds a hash, never the plaintext code.
	ch, err := f.challenges.LatestUnverified(context.Background(), company.ID)
	require.NoError(t, err)
	require.NotNil(t, ch)
	assert.NotContains(t, ch.CodeHash, code)
	assert.False(t, ch.Verified)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	f := newAuthFixture(t, 10*time.Minute)
	register(t, f)

	_, err := f.svc.Login(context.Background(), "acme@x.com", "wrong")
	assert.ErrorIs(t, err, application.ErrInvalidCredentials)

	_, err = f.svc.Login(context.Background(), "nobody@x.com", "pw123")
	assert.ErrorIs(t, err, application.ErrInvalidCredentials)
}

func TestLogin_GatewayFailureKeepsChallenge(t *testing.T) {
	f := newAuthFixture(t, 10*time.Minute)
	company := register(t, f)

	f.notifier.err = errors.New("gateway down")
	_, err := f.svc.Login(context.Background(), "acme@x.com", "pw123")
	require.Error(t, err)
	assert.NotErrorIs(t, err, application.ErrInvalidCredentials)

	// The challenge row is already persisted and stays.
	ch, err := f.challenges.LatestUnverified(context.Background(), company.ID)
	require.NoError(t, err)
	assert.NotNil(t, ch)
}

func TestVerifyOTP_Succeeds(t *testing.T) {
	f := newAuthFixture(t, 10*time.Minute)
	company := register(t, f)

	_, err := f.svc.Login(context.Background(), "acme@x.com", "pw123")
	require.NoError(t, err)

	err = f.svc.VerifyOTP(context.Background(), company.ID, f.notifier.lastOTP())
	assert.NoError(t, err)
}

func TestVerifyOTP_StripsNonDigits(t *testing.T) {
	f := newAuthFixture(t, 10*time.Minute)
	company := register(t, f)

	_, err := f.svc.Login(context.Background(), "acme@x.com", "pw123")
	require.NoError(t, err)

	code := f.notifier.lastOTP()
	spaced := code[:3] + " - " + code[3:]
	assert.NoError(t, f.svc.VerifyOTP(context.Background(), company.ID, spaced))
}

func TestVerifyOTP_MalformedCode(t *testing.T) {
	f := newAuthFixture(t, 10*time.Minute)
	company := register(t, f)

	_, err := f.svc.Login(context.Background(), "acme@x.com", "pw123")
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.VerifyOTP(context.Background(), company.ID, "12a45"), application.ErrMalformedCode)
	assert.ErrorIs(t, f.svc.VerifyOTP(context.Background(), company.ID, "1234567"), application.ErrMalformedCode)
}

func TestVerifyOTP_NoChallenge(t *testing.T) {
	f := newAuthFixture(t, 10*time.Minute)
	company := register(t, f)

	err := f.svc.VerifyOTP(context.Background(), company.ID, "123456")
	assert.ErrorIs(t, err, application.ErrNoChallenge)
}

func TestVerifyOTP_InvalidCodeIsRetriable(t *testing.T) {
	f := newAuthFixture(t, 10*time.Minute)
	company := register(t, f)

	_, err := f.svc.Login(context.Background(), "acme@x.com", "pw123")
	require.NoError(t, err)

	code := f.notifier.lastOTP()
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	assert.ErrorIs(t, f.svc.VerifyOTP(context.Background(), company.ID, wrong), application.ErrInvalidCode)

	// Challenge is still live; the right code verifies on retry.
	assert.NoError(t, f.svc.VerifyOTP(context.Background(), company.ID, code))
}

func TestVerifyOTP_SingleUse(t *testing.T) {
	f := newAuthFixture(t, 10*time.Minute)
	company := register(t, f)

	_, err := f.svc.Login(context.Background(), "acme@x.com", "pw123")
	require.NoError(t, err)

	code := f.notifier.lastOTP()
	require.NoError(t, f.svc.VerifyOTP(context.Background(), company.ID, code))

	// The same code against the now-verified challenge finds nothing.
	err = f.svc.VerifyOTP(context.Background(), company.ID, code)
	assert.ErrorIs(t, err, application.ErrNoChallenge)
}

func TestVerifyOTP_NewestChallengeWins(t *testing.T) {
	f := newAuthFixture(t, 10*time.Minute)
	company := register(t, f)

	_, err := f.svc.Login(context.Background(), "acme@x.com", "pw123")
	require.NoError(t, err)
	first := f.notifier.lastOTP()

	_, err = f.svc.Login(context.Background(), "acme@x.com", "pw123")
	require.NoError(t, err)
	second := f.notifier.lastOTP()

	if first == second {
		t.Skip("independently drawn codes collided")
	}

	// The superseded code never verifies again.
	assert.ErrorIs(t, f.svc.VerifyOTP(context.Background(), company.ID, first), application.ErrInvalidCode)
	assert.NoError(t, f.svc.VerifyOTP(context.Background(), company.ID, second))

	// Once the newest challenge is consumed, the old code finds no
	// challenge at all.
	assert.ErrorIs(t, f.svc.VerifyOTP(context.Background(), company.ID, first), application.ErrNoChallenge)
}

func TestVerifyOTP_Expired(t *testing.T) {
	f := newAuthFixture(t, -time.Minute) // challenges are born expired
	company := register(t, f)

	_, err := f.svc.Login(context.Background(), "acme@x.com", "pw123")
	require.NoError(t, err)

	err = f.svc.VerifyOTP(context.Background(), company.ID, f.notifier.lastOTP())
	assert.ErrorIs(t, err, application.ErrChallengeExpired)
}
