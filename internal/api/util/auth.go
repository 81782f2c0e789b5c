package util

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoClaims = errors.New("no user claims in request")

type claimsKey struct{}

// Claims identifies the caller of an authenticated request
type Claims struct {
	UserID string
	Role   string
}

// WithClaims stores c in ctx for the handlers behind the auth middleware
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// GetUserClaims returns the claims the auth middleware stored on r
func GetUserClaims(r *http.Request) (*Claims, error) {
	c, ok := r.Context().Value(claimsKey{}).(*Claims)
	if !ok || c == nil {
		return nil, ErrNoClaims
	}
	return c, nil
}

// IssueToken signs an HS256 access token for subject
func IssueToken(secret, subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"exp":  now.Add(ttl).Unix(),
		"iat":  now.Unix(),
		"nbf":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken verifies an HS256 token signed with secret and extracts its claims
func ParseToken(secret, tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	sub, err := mc.GetSubject()
	if err != nil {
		return nil, err
	}
	role, _ := mc["role"].(string)
	return &Claims{UserID: sub, Role: role}, nil
}
