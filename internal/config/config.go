// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr string
	DBPath     string

	// EncryptionKey is the configured symmetric key for field encryption,
	// passed verbatim to fieldcrypt.ParseKey at startup.
	EncryptionKey string

	// SessionSecret signs session cookies. Required.
	SessionSecret string
	SessionTTL    time.Duration

	// OTPExpiry is how long an issued one-time code stays valid.
	OTPExpiry time.Duration

	// EmailJS delivery credentials. Optional: when absent the app starts,
	// but OTP delivery fails and logins cannot complete.
	EmailJSServiceID   string
	EmailJSTemplateID  string
	EmailJSPublicKey   string
	EmailJSAccessToken string
}

// HasEmailJSCredentials returns true when the EmailJS identifiers needed for
// delivery are all present. Used by the composition root to log a startup
// warning when OTP email cannot be sent.
func (c *Config) HasEmailJSCredentials() bool {
	return c.EmailJSServiceID != "" && c.EmailJSTemplateID != "" && c.EmailJSPublicKey != ""
}

// Load reads configuration from environment variables and returns a validated
// Config. LEDGERDESK_ENCRYPTION_KEY and LEDGERDESK_SESSION_SECRET are
// required; missing values are a startup-fatal configuration error.
// Optional variables with defaults: LEDGERDESK_LISTEN_ADDR (127.0.0.1:8080),
// LEDGERDESK_DB_PATH (ledgerdesk.db), LEDGERDESK_OTP_EXPIRY_MINUTES (10),
// LEDGERDESK_SESSION_TTL (24h).
func Load() (*Config, error) {
	encryptionKey := os.Getenv("LEDGERDESK_ENCRYPTION_KEY")
	if encryptionKey == "" {
		return nil, fmt.Errorf("LEDGERDESK_ENCRYPTION_KEY is not set: provide a url-safe base64 32-byte key")
	}

	sessionSecret := os.Getenv("LEDGERDESK_SESSION_SECRET")
	if sessionSecret == "" {
		return nil, fmt.Errorf("LEDGERDESK_SESSION_SECRET is not set")
	}

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("LEDGERDESK_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "ledgerdesk.db"
	if v, ok := os.LookupEnv("LEDGERDESK_DB_PATH"); ok {
		dbPath = v
	}

	otpExpiry := 10 * time.Minute
	if v, ok := os.LookupEnv("LEDGERDESK_OTP_EXPIRY_MINUTES"); ok {
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes <= 0 {
			return nil, fmt.Errorf("LEDGERDESK_OTP_EXPIRY_MINUTES has invalid value %q", v)
		}
		otpExpiry = time.Duration(minutes) * time.Minute
	}

	sessionTTL := 24 * time.Hour
	if v, ok := os.LookupEnv("LEDGERDESK_SESSION_TTL"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("LEDGERDESK_SESSION_TTL has invalid duration %q: %w", v, err)
		}
		sessionTTL = parsed
	}

	return &Config{
		ListenAddr:         listenAddr,
		DBPath:             dbPath,
		EncryptionKey:      encryptionKey,
		SessionSecret:      sessionSecret,
		SessionTTL:         sessionTTL,
		OTPExpiry:          otpExpiry,
		EmailJSServiceID:   os.Getenv("LEDGERDESK_EMAILJS_SERVICE_ID"),
		EmailJSTemplateID:  os.Getenv("LEDGERDESK_EMAILJS_TEMPLATE_ID"),
		EmailJSPublicKey:   os.Getenv("LEDGERDESK_EMAILJS_PUBLIC_KEY"),
		EmailJSAccessToken: os.Getenv("LEDGERDESK_EMAILJS_ACCESS_TOKEN"),
	}, nil
}
