package httphandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ledgerdesk/ledgerdesk/internal/adapter/driven/emailjs"
	"github.com/ledgerdesk/ledgerdesk/internal/application"
)

// Signup registers a new company account. The caller still has to log in
// afterwards; no session is created here.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	company, err := h.authSvc.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		var vErr *application.ValidationError
		switch {
		case errors.As(err, &vErr):
			writeError(w, http.StatusUnprocessableEntity, vErr.Msg)
		case errors.Is(err, application.ErrDuplicateCompany):
			writeError(w, http.StatusConflict, "company name or email already registered")
		default:
			h.logger.Error("signup failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, toCompanyResponse(company))
}

// Login verifies credentials and starts the OTP leg of the flow. On success
// the caller holds a pending session cookie and a code is on its way to the
// registered email; no ledger access is granted yet.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	company, err := h.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		var gwErr *emailjs.GatewayError
		switch {
		case errors.Is(err, application.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid email or password")
		case errors.As(err, &gwErr):
			h.logger.Error("otp delivery failed", "status", gwErr.StatusCode, "error", err)
			writeError(w, http.StatusBadGateway, "could not send verification code")
		default:
			h.logger.Error("login failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	if err := h.sessions.IssuePending(r.Context(), w, company.ID); err != nil {
		h.logger.Error("failed to issue pending session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "otp_sent"})
}

// VerifyOTP completes the login flow. A stale or missing challenge kicks the
// caller back to anonymous; a wrong or malformed code keeps the pending
// session so the code can be retried in place.
func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Current(r.Context(), r)
	if err != nil {
		h.logger.Error("failed to load session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if s == nil || s.OTPVerified {
		writeError(w, http.StatusUnauthorized, "no login pending verification")
		return
	}

	var req VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.authSvc.VerifyOTP(r.Context(), s.CompanyID, req.Code); err != nil {
		switch {
		case errors.Is(err, application.ErrNoChallenge), errors.Is(err, application.ErrChallengeExpired):
			// The challenge is unrecoverable; the pending session is useless
			// and the caller must restart from the password step.
			if clearErr := h.sessions.Clear(r.Context(), w, r); clearErr != nil {
				h.logger.Error("failed to clear session", "error", clearErr)
			}
			writeError(w, http.StatusUnauthorized, "verification code expired or missing: log in again")
		case errors.Is(err, application.ErrMalformedCode), errors.Is(err, application.ErrInvalidCode):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			h.logger.Error("otp verification failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	if err := h.sessions.Promote(r.Context(), w, s); err != nil {
		h.logger.Error("failed to promote session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "authenticated"})
}

// Logout drops the session regardless of its state.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Clear(r.Context(), w, r); err != nil {
		h.logger.Error("logout failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}
