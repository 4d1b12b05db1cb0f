package emailjs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCreds() Credentials {
	return Credentials{
		ServiceID:   "service_abc",
		TemplateID:  "template_xyz",
		PublicKey:   "public_123",
		AccessToken: "private_456",
	}
}

func TestSendOTP_PostsGatewayPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewWithHTTPClient(srv.Client(), srv.URL, testCreds())
	err := client.SendOTP(context.Background(), "owner@acmebakery.test", "Acme Bakery", "483920")
	require.NoError(t, err)

	assert.Equal(t, "service_abc", got["service_id"])
	assert.Equal(t, "template_xyz", got["template_id"])
	assert.Equal(t, "public_123", got["user_id"])
	assert.Equal(t, "private_456", got["accessToken"])

	params, ok := got["template_params"].(map[string]any)
	require.True(t, ok, "template_params missing: %v", got)
	assert.Equal(t, "owner@acmebakery.test", params["to_email"])
	assert.Equal(t, "Acme Bakery", params["company_name"])
	assert.Equal(t, "483920", params["otp_code"])
}

func TestSendOTP_GatewayErrorCarriesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("API calls are disabled for non-browser applications"))
	}))
	defer srv.Close()

	client := NewWithHTTPClient(srv.Client(), srv.URL, testCreds())
	err := client.SendOTP(context.Background(), "owner@acmebakery.test", "Acme Bakery", "483920")

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusForbidden, gwErr.StatusCode)
	assert.Contains(t, gwErr.Detail, "non-browser applications")
}

func TestSendOTP_OmitsEmptyAccessToken(t *testing.T) {
	var raw map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
	}))
	defer srv.Close()

	creds := testCreds()
	creds.AccessToken = ""
	client := NewWithHTTPClient(srv.Client(), srv.URL, creds)
	require.NoError(t, client.SendOTP(context.Background(), "owner@acmebakery.test", "Acme Bakery", "000000"))

	_, present := raw["accessToken"]
	assert.False(t, present)
}

func TestSendOTP_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewWithHTTPClient(srv.Client(), srv.URL, testCreds())
	err := client.SendOTP(ctx, "owner@acmebakery.test", "Acme Bakery", "000000")
	assert.Error(t, err)
}
