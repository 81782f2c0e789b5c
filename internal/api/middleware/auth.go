package middleware

import (
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"olexparser/internal/api/util"
)

type AuthMiddleware struct {
	secret string
}

// NewAuthMiddleware checks bearer tokens signed with secret. An empty secret
// disables authentication.
func NewAuthMiddleware(secret string) *AuthMiddleware {
	return &AuthMiddleware{secret: secret}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.secret == "" || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		if auth == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(auth, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid authorization header", http.StatusUnauthorized)
			return
		}

		claims, err := util.ParseToken(m.secret, parts[1])
		if err != nil {
			logrus.WithError(err).WithField("path", r.URL.Path).Debug("rejected token")
			http.Error(w, "Invalid authorization token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(util.WithClaims(r.Context(), claims)))
	})
}
