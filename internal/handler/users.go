package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/user-auth/internal/apperror"
	"github.com/sakif/user-auth/internal/auth"
	"github.com/sakif/user-auth/internal/model"
	"github.com/sakif/user-auth/internal/service"
)

// Directory is the part of service.DirectoryService the handlers need.
type Directory interface {
	CurrentUser(caller *model.User) (model.Profile, error)
	ListOthers(ctx context.Context, caller *model.User, filter service.SearchFilter) ([]model.User, error)
}

// UserHandler serves the authenticated directory endpoints. Both routes sit
// behind auth.RequireAuth, which puts the caller in the request context.
type UserHandler struct {
	dir    Directory
	policy ErrorPolicy
	logger *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(dir Directory, policy ErrorPolicy, logger *slog.Logger) *UserHandler {
	return &UserHandler{dir: dir, policy: policy, logger: logger}
}

// HandleCurrent returns the caller's own profile.
//
// HTTP: GET /api/user/current
// 200:  {"isSuccess": true, "data": {"_id": "...", "name": "...", "email": "..."}}
func (h *UserHandler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.UserFromContext(r.Context())

	profile, err := h.dir.CurrentUser(caller)
	if err != nil {
		writeError(w, r, h.policy, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, Envelope{IsSuccess: true, Data: profile})
}

// HandleList returns every other user, optionally filtered by name.
//
// HTTP: GET /api/user/all?searchText=ali
// 200:  a bare JSON array (no envelope) of {_id, name, email, createdAt}
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, h.policy, h.logger, apperror.Unauthorized("User is not authorized"))
		return
	}

	// Query()["searchText"] distinguishes "?searchText=" from no parameter;
	// both mean "no filter", but the distinction stays explicit.
	var filter service.SearchFilter
	if values, present := r.URL.Query()["searchText"]; present && len(values) > 0 {
		filter = service.NewSearchFilter(values[0], true)
	}

	users, err := h.dir.ListOthers(r.Context(), caller, filter)
	if err != nil {
		writeError(w, r, h.policy, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// Pinger reports whether the directory store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HandleHealth reports whether the server can reach its store.
//
// HTTP: GET /healthz
// 200:  {"status": "ok"}
// 503:  {"status": "unavailable"}
func HandleHealth(store Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			logger.Warn("health check failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
