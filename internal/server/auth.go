// auth.go - PIN verification and password change endpoints.
package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

type verifyReq struct {
	Password string `json:"password"`
}

type changePasswordReq struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// verifyHandler handles POST /auth/verify. On a correct PIN it issues a
// session token and returns it three ways: response body, X-Session-Token
// header, and the session cookie. Any one suffices on later requests.
func (cfg Config) verifyHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var req verifyReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if ok, msg := validatePIN(req.Password); !ok {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		ok, err := cfg.Credentials.Verify(r.Context(), req.Password)
		if err != nil {
			log.Printf("service=auth msg=%q err=%v", "verify_failed", err)
			writeServerError(w, "Authentication failed", err)
			return
		}
		if !ok {
			writeError(w, http.StatusUnauthorized, "Invalid password")
			return
		}

		token, err := cfg.Session.Issue()
		if err != nil {
			log.Printf("service=auth msg=%q err=%v", "token_issue_failed", err)
			writeServerError(w, "Authentication failed", err)
			return
		}

		cfg.Session.setSessionCookie(w, token)
		w.Header().Set("X-Session-Token", token)
		writeSuccess(w, http.StatusOK, map[string]string{"token": token}, "Authentication successful")
	})
}

// changePasswordHandler handles POST /auth/change-password. Both values
// must be well-formed PINs and must differ; the current one must verify.
func (cfg Config) changePasswordHandler() http.Handler {
	return cfg.Session.requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var req changePasswordReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if ok, _ := validatePIN(req.CurrentPassword); !ok {
			writeError(w, http.StatusBadRequest, "Current password must be exactly 4 digits")
			return
		}
		if ok, _ := validatePIN(req.NewPassword); !ok {
			writeError(w, http.StatusBadRequest, "New password must be exactly 4 digits")
			return
		}
		if req.CurrentPassword == req.NewPassword {
			writeError(w, http.StatusBadRequest, "New password must be different from current password")
			return
		}

		err := cfg.Credentials.Change(r.Context(), req.CurrentPassword, req.NewPassword)
		switch {
		case errors.Is(err, ErrNotConfigured):
			log.Printf("service=auth msg=%q", "credential_record_missing")
			writeServerError(w, "Password not configured", nil)
		case errors.Is(err, ErrWrongPassword):
			writeError(w, http.StatusUnauthorized, "Current password is incorrect")
		case err != nil:
			log.Printf("service=auth msg=%q err=%v", "change_password_failed", err)
			writeServerError(w, "Failed to change password", err)
		default:
			writeSuccess(w, http.StatusOK, nil, "Password changed successfully")
		}
	}))
}
