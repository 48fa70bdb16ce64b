package middleware

import (
	"net/http"
	"net/url"

	"github.com/altconstitution/site/internal/auth"
	"github.com/altconstitution/site/internal/response"
)

// Authenticator verifies session tokens.
type Authenticator interface {
	CurrentUser(token string) (*auth.User, error)
}

// RequireAuth returns middleware that validates a Bearer or cookie session
// token and injects the user into the request context. Failures get a 401
// JSON envelope.
func RequireAuth(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := authn.CurrentUser(auth.TokenFrom(r))
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), u)))
		})
	}
}

// RequireSession is RequireAuth for browser pages: unauthenticated callers
// are redirected to loginPath instead of seeing an error.
func RequireSession(authn Authenticator, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := authn.CurrentUser(auth.TokenFrom(r))
			if err != nil {
				target := loginPath
				if r.Method == http.MethodGet {
					target += "?next=" + url.QueryEscape(r.URL.RequestURI())
				}
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), u)))
		})
	}
}
