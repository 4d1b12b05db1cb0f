// Package emailjs implements the OTPNotifier port against the EmailJS REST
// gateway. EmailJS renders a server-side template with the parameters posted
// here, so this adapter never builds email bodies itself.
package emailjs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ledgerdesk/ledgerdesk/internal/domain/port/driven"
)

const sendURL = "https://api.emailjs.com/api/v1.0/email/send"

// Compile-time interface satisfaction check.
var _ driven.OTPNotifier = (*Client)(nil)

// GatewayError is returned when EmailJS answers with a non-2xx status.
// Detail carries the response body, which EmailJS uses for human-readable
// diagnostics ("The service ID is invalid", quota messages, and so on).
type GatewayError struct {
	StatusCode int
	Detail     string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("emailjs gateway returned %d: %s", e.StatusCode, e.Detail)
}

// Credentials identifies the EmailJS account, service, and template to send
// through. AccessToken is the optional private key for accounts with
// server-side API calls restricted.
type Credentials struct {
	ServiceID   string
	TemplateID  string
	PublicKey   string
	AccessToken string
}

// Client posts one-time codes to the EmailJS send endpoint.
type Client struct {
	creds   Credentials
	http    *http.Client
	sendURL string
}

// New creates a Client with a 10 second request timeout.
func New(creds Credentials) *Client {
	return &Client{
		creds:   creds,
		http:    &http.Client{Timeout: 10 * time.Second},
		sendURL: sendURL,
	}
}

// NewWithHTTPClient creates a Client pointed at a custom endpoint.
// This constructor is intended for testing against an httptest server.
func NewWithHTTPClient(httpClient *http.Client, url string, creds Credentials) *Client {
	return &Client{
		creds:   creds,
		http:    httpClient,
		sendURL: url,
	}
}

// sendRequest is the EmailJS wire format. Field names are fixed by the
// gateway; template_params keys must match the placeholders configured in
// the EmailJS template.
type sendRequest struct {
	ServiceID      string         `json:"service_id"`
	TemplateID     string         `json:"template_id"`
	UserID         string         `json:"user_id"`
	AccessToken    string         `json:"accessToken,omitempty"`
	TemplateParams templateParams `json:"template_params"`
}

type templateParams struct {
	ToEmail     string `json:"to_email"`
	CompanyName string `json:"company_name"`
	OTPCode     string `json:"otp_code"`
}

// SendOTP delivers a one-time code to toEmail. A 2xx response means EmailJS
// accepted the message for delivery; anything else is a *GatewayError.
func (c *Client) SendOTP(ctx context.Context, toEmail, companyName, code string) error {
	payload := sendRequest{
		ServiceID:   c.creds.ServiceID,
		TemplateID:  c.creds.TemplateID,
		UserID:      c.creds.PublicKey,
		AccessToken: c.creds.AccessToken,
		TemplateParams: templateParams{
			ToEmail:     toEmail,
			CompanyName: companyName,
			OTPCode:     code,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sendURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("posting to emailjs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// EmailJS error bodies are short plain text; cap the read anyway.
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &GatewayError{StatusCode: resp.StatusCode, Detail: string(bytes.TrimSpace(detail))}
	}

	return nil
}
