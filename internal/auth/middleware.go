package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/user-auth/internal/model"
)

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue uses any as the key type. If you use a plain string like
// context.WithValue(ctx, "user", u), ANY package that knows the string "user"
// can read or shadow your value. Using a package-private type prevents
// collisions: only THIS package can read or write the authenticated user.
type contextKey string

const userKey contextKey = "user"

const unauthorizedBody = `{"isSuccess":false,"message":"User is not authorized"}`

// UserFinder resolves a token subject to its directory record.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, bool, error)
}

// RequireAuth is a middleware that enforces authentication on protected routes.
//
// It reads "Authorization: Bearer <token>", validates the token, loads the
// user it names and stores that user in the request context. Anything short
// of a valid token for an existing user stops the chain with 401.
//
// Chi applies middlewares in a chain: req → M1 → M2 → Handler → M2 → M1 → resp
func RequireAuth(tokens *TokenService, users UserFinder, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				writeUnauthorized(w)
				return
			}

			claims, err := tokens.Parse(raw)
			if err != nil {
				logger.Debug("rejected access token", slog.String("error", err.Error()))
				writeUnauthorized(w)
				return
			}

			user, found, err := users.FindByID(r.Context(), claims.UserID)
			if err != nil {
				logger.Error("auth middleware: user lookup failed",
					slog.String("userID", claims.UserID),
					slog.String("error", err.Error()),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"isSuccess":false,"message":"An internal error occurred"}`))
				return
			}
			if !found {
				// Valid signature for a subject we no longer know.
				writeUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser returns a copy of ctx carrying the authenticated user.
func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext retrieves the authenticated user stored by RequireAuth.
// Returns (nil, false) if the request was not authenticated.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok && u != nil
}

// bearerToken extracts the token from the Authorization header.
// The scheme is matched case-insensitively per RFC 7235.
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(unauthorizedBody))
}
