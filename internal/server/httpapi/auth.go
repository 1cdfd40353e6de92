package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Smartsec916/Observe-and-Report-sub001/internal/server/repository"
	"github.com/Smartsec916/Observe-and-Report-sub001/internal/server/service"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	if r.maxRequestBytes > 0 {
		req.Body = http.MaxBytesReader(w, req.Body, r.maxRequestBytes)
	}
	var body credentialsRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeBodyError(w, err)
		return
	}
	if body.Username == "" || body.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username and password required"})
		return
	}
	token, ident, err := r.services.Auth.Login(req.Context(), body.Username, body.Password)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   token,
		"user":    ident,
	})
}

// handleLogout destroys the presented session. Idempotent: succeeds with
// or without a (known) token.
func (r *Router) handleLogout(w http.ResponseWriter, req *http.Request) {
	if token := bearerToken(req); token != "" {
		_ = r.services.Auth.Logout(req.Context(), token)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleCurrentUser reports the resolved identity, or a null user when the
// request carries no usable session. requiresSetup mirrors the identity's
// default-account flag so the boundary can prompt the credential-creation
// flow.
func (r *Router) handleCurrentUser(w http.ResponseWriter, req *http.Request) {
	token := bearerToken(req)
	if token == "" {
		writeJSON(w, http.StatusOK, map[string]any{"user": nil, "requiresSetup": false})
		return
	}
	ident, err := r.services.Auth.Resolve(req.Context(), token)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"user": nil, "requiresSetup": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":          ident,
		"requiresSetup": ident.IsDefaultAccount,
	})
}

func (r *Router) handleCreateAccount(w http.ResponseWriter, req *http.Request) {
	if r.maxRequestBytes > 0 {
		req.Body = http.MaxBytesReader(w, req.Body, r.maxRequestBytes)
	}
	var body credentialsRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeBodyError(w, err)
		return
	}
	if body.Username == "" || body.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username and password required"})
		return
	}
	ident, err := r.services.Auth.CreateAccount(req.Context(), body.Username, body.Password)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) || errors.Is(err, service.ErrWeakPassword) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if creator, ok := getIdentity(req.Context()); ok && r.logger != nil {
		r.logger.Printf("account %q created by %q", ident.Username, creator.Username)
	}
	writeJSON(w, http.StatusCreated, ident)
}
