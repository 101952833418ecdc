package middleware

import (
	"net/http"
	"strings"

	"helsejournal/internal/httputil"
)

// TokenVerifier validates a bearer token and returns the user ID it
// was issued for.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// publicPaths are reachable without a token. Shared document links are
// matched by prefix since the token is part of the path.
var publicPaths = map[string]bool{
	"/health":         true,
	"/api/info":       true,
	"/api/auth/login": true,
	"/metrics":        true,
}

func isPublic(path string) bool {
	if publicPaths[path] {
		return true
	}
	return strings.HasPrefix(path, "/api/share/")
}

// Auth rejects requests without a valid bearer token and stores the
// authenticated user ID on the request context.
func Auth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r.URL.Path) || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			userID, err := verifier.Verify(token)
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, httputil.WithUserID(r, userID))
		})
	}
}
