// Package auth provides password hashing, access-token issuance and the
// bearer-token middleware for the user API.
//
// AUTHENTICATION FLOW OVERVIEW:
//  1. Client registers (POST /api/user/register) or logs in (POST /api/user/login)
//  2. Server verifies credentials and issues a signed access token
//  3. Client sends "Authorization: Bearer <token>" on protected calls
//  4. RequireAuth validates the token, loads the user and stores it in the
//     request context
//
// WHY JWT?
// JWT (JSON Web Token) is stateless: the server doesn't need to store session
// data. All the information needed (user id, email, expiry) is inside the
// signed token. The signature ensures nobody can tamper with it without the
// secret key. The flip side: there is no revocation. A token stays valid
// until it expires.
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: algorithm + token type → {"alg":"HS256","typ":"JWT"}
//	- Payload: claims → {"userId":"...","userEmail":"...","sub":"...","exp":1234567890}
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is how long an access token stays valid after minting.
const DefaultTokenTTL = 30 * 24 * time.Hour

const issuer = "user-auth"

// MinSecretLength guards against trivially guessable signing keys.
const MinSecretLength = 16

var (
	ErrTokenExpired = errors.New("auth: token expired")
	ErrInvalidToken = errors.New("auth: invalid token")
)

// Claims is the identity carried by an access token.
type Claims struct {
	UserID string
	Email  string
}

// tokenClaims is the JWT payload. userId/userEmail are the private claims
// clients already decode; sub duplicates the id in the registered slot.
type tokenClaims struct {
	UserID    string `json:"userId"`
	UserEmail string `json:"userEmail"`
	jwt.RegisteredClaims
}

// TokenService handles JWT creation and validation.
//
// It holds the HMAC secret key used to sign and verify tokens. The secret is
// loaded once at startup and passed in here; nothing reads it from the
// environment at request time.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option customises a TokenService.
type Option func(*TokenService)

// WithClock overrides the time source used for minting and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) {
		s.now = now
	}
}

// NewTokenService creates a TokenService with the given secret and lifetime.
// A non-positive ttl selects DefaultTokenTTL.
// Example: ACCESS_TOKEN_SECRET_KEY=$(openssl rand -hex 32)
func NewTokenService(secret string, ttl time.Duration, opts ...Option) (*TokenService, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("auth: token secret must be at least %d characters", MinSecretLength)
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	s := &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL returns the lifetime applied to newly issued tokens.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs an access token for c that expires TTL after now.
//
// Signing algorithm: HS256 (HMAC-SHA256)
// - Symmetric: same key for signing and verifying
// - Fast and simple, good for single-server deployments
func (s *TokenService) Issue(c Claims) (string, error) {
	if c.UserID == "" {
		return "", errors.New("auth: cannot issue token without a user id")
	}

	now := s.now()
	tc := tokenClaims{
		UserID:    c.UserID,
		UserEmail: c.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			Issuer:    issuer,
		},
	}

	// jwt.NewWithClaims creates an unsigned token with the given algorithm.
	// SignedString(key) signs it and returns the complete JWT string.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tc)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Parse verifies a token string and returns the identity it carries.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Token is not expired (ExpiresAt is in the future)
//   - Issuer matches, so tokens minted by other apps are rejected
//   - Algorithm is HS256 (prevents algorithm confusion attacks)
func (s *TokenService) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&tokenClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	tc, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if tc.UserID == "" {
		return nil, fmt.Errorf("%w: token has no user id", ErrInvalidToken)
	}

	return &Claims{UserID: tc.UserID, Email: tc.UserEmail}, nil
}
