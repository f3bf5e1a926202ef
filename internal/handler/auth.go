package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/user-auth/internal/service"
)

// Authenticator is the part of service.AuthService the handlers need.
type Authenticator interface {
	Register(ctx context.Context, in service.RegisterInput) (*service.RegisterResult, error)
	Login(ctx context.Context, in service.LoginInput) (*service.LoginResult, error)
}

// AuthHandler serves the public registration and login endpoints.
//
// HANDLER RESPONSIBILITIES:
//   - HandleRegister → POST /api/user/register
//   - HandleLogin    → POST /api/user/login
//
// The handler only decodes, delegates and shapes the response. All rules
// (validation, uniqueness, hashing, token minting) live in the service.
type AuthHandler struct {
	auth   Authenticator
	policy ErrorPolicy
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler. All dependencies are injected here;
// the handler has no knowledge of how they're constructed.
func NewAuthHandler(auth Authenticator, policy ErrorPolicy, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		policy: policy,
		logger: logger,
	}
}

type registerData struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	AccessToken string `json:"accessToken"`
}

type loginData struct {
	AccessToken string `json:"accessToken"`
}

// HandleRegister creates an account.
//
// HTTP: POST /api/user/register
// Body: {"name": "...", "email": "...", "password": "..."}
// 200:  message "Registered successfully", data {name, email, accessToken}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.policy, h.logger, err)
		return
	}

	res, err := h.auth.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, h.policy, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, Envelope{
		IsSuccess: true,
		Message:   "Registered successfully",
		Data: registerData{
			Name:        res.User.Name,
			Email:       res.User.Email,
			AccessToken: res.AccessToken,
		},
	})
}

// HandleLogin exchanges credentials for an access token.
//
// HTTP: POST /api/user/login
// Body: {"email": "...", "password": "..."}
// 200:  message "Logged in successfully", data {accessToken}
//
// Unlike registration, login does not echo name or email.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.policy, h.logger, err)
		return
	}

	res, err := h.auth.Login(r.Context(), in)
	if err != nil {
		writeError(w, r, h.policy, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, Envelope{
		IsSuccess: true,
		Message:   "Logged in successfully",
		Data:      loginData{AccessToken: res.AccessToken},
	})
}
