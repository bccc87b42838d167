package middleware

import (
	"net/http"
	"strings"

	"shiftdesk/internal/domain/auth"
)

type Authenticator interface {
	Authenticate(token string) (auth.Actor, error)
}

// Auth resolves a bearer token into an actor. Requests without a valid token
// continue anonymously; RequirePermission rejects them where needed.
func Auth(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			scheme, token, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
				next.ServeHTTP(w, r)
				return
			}
			actor, err := authn.Authenticate(strings.TrimSpace(token))
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}
