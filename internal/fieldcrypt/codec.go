// Package fieldcrypt implements authenticated field-level encryption for
// sensitive ledger columns. Values are sealed independently with AES-256-GCM
// under a single process-wide key, producing opaque blobs of the form
// nonce || ciphertext || tag. A fresh random nonce is drawn per call, so
// encrypting the same plaintext twice yields different blobs and ciphertext
// can never serve as a lookup key.
package fieldcrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerdesk/ledgerdesk/internal/domain/model"
)

// dateLayout is the ISO-8601 calendar-date form used for encrypted dates.
const dateLayout = "2006-01-02"

// ParseKey interprets the configured encryption key. The expected form is a
// URL-safe base64 encoding of 32 bytes; if the value does not decode to 32
// bytes that way, it is reinterpreted as the raw key bytes themselves.
// Anything else is a configuration error, which callers treat as fatal at
// startup.
func ParseKey(configured string) ([]byte, error) {
	if configured == "" {
		return nil, fmt.Errorf("encryption key is not set: provide a url-safe base64 32-byte key")
	}

	if decoded, err := base64.URLEncoding.DecodeString(configured); err == nil && len(decoded) == 32 {
		return decoded, nil
	}

	if len(configured) == 32 {
		return []byte(configured), nil
	}

	return nil, fmt.Errorf("invalid encryption key: expected url-safe base64 of 32 bytes")
}

// Codec encrypts and decrypts scalar field values with a fixed 32-byte key.
type Codec struct {
	aead cipher.AEAD
}

// New creates a Codec from a 32-byte AES-256 key, typically the output of
// ParseKey.
func New(key []byte) (*Codec, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("fieldcrypt: key must be 32 bytes, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("fieldcrypt: aes.NewCipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("fieldcrypt: cipher.NewGCM: %w", err)
	}

	return &Codec{aead: aead}, nil
}

// EncryptText seals a plaintext string into an opaque blob.
func (c *Codec) EncryptText(plaintext string) (model.Encrypted, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("fieldcrypt: rand nonce: %w", err)
	}

	// Seal appends the ciphertext to nonce, producing: nonce || ciphertext || tag.
	return model.Encrypted(c.aead.Seal(nonce, nonce, []byte(plaintext), nil)), nil
}

// DecryptText opens a blob. A nil, truncated, or tampered blob returns
// ("", false) rather than an error: callers must treat decode failure
// exactly like "value was never set" so read paths stay total over corrupt
// or legacy rows.
func (c *Codec) DecryptText(blob model.Encrypted) (string, bool) {
	if blob == nil {
		return "", false
	}

	nonceSize := c.aead.NonceSize()
	if len(blob) < nonceSize {
		return "", false
	}

	nonce, ciphertext := blob[:nonceSize], blob[nonceSize:]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", false
	}

	return string(plaintext), true
}

// EncryptDecimal seals a decimal amount via its canonical base-10 string
// form. No binary floating point is ever involved.
func (c *Codec) EncryptDecimal(d decimal.Decimal) (model.Encrypted, error) {
	return c.EncryptText(d.String())
}

// DecryptDecimal opens an amount blob, parsing the canonical string back to
// an exact decimal. Decode failure yields zero.
func (c *Codec) DecryptDecimal(blob model.Encrypted) decimal.Decimal {
	s, ok := c.DecryptText(blob)
	if !ok {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// EncryptDate seals a calendar date via its ISO-8601 text form.
func (c *Codec) EncryptDate(t time.Time) (model.Encrypted, error) {
	return c.EncryptText(t.Format(dateLayout))
}

// DecryptDate opens a date blob. Decode failure yields the Unix epoch date.
func (c *Codec) DecryptDate(blob model.Encrypted) time.Time {
	s, ok := c.DecryptText(blob)
	if !ok {
		return time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return t
}
