// middleware/auth/middleware.go
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/primait/jwks-client/pkg/client"
)

type contextKey struct{ name string }

var claimsCtxKey = &contextKey{"jwks-claims"}

// Middleware authenticates requests with a bearer token verified against
// the shared JWKS client. Tokens come from the Authorization header or,
// when configured, a cookie.
type Middleware struct {
	client     *client.Client
	audiences  []string
	cookieName string
	log        *zap.Logger
}

type Option func(*Middleware)

// WithAudiences requires the token audience to intersect the given list.
func WithAudiences(audiences ...string) Option {
	return func(m *Middleware) { m.audiences = audiences }
}

// WithCookie also accepts the token from the named cookie.
func WithCookie(name string) Option {
	return func(m *Middleware) { m.cookieName = name }
}

func WithLogger(log *zap.Logger) Option {
	return func(m *Middleware) { m.log = log }
}

func New(c *client.Client, opts ...Option) *Middleware {
	m := &Middleware{client: c, log: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Middleware returns the http middleware. Requests without a verifiable
// token get a 401; verified claims ride the request context.
func (m *Middleware) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := m.tokenFrom(r)
			if raw == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := m.client.Decode(r.Context(), raw, m.audiences)
			if err != nil {
				m.log.Debug("token rejected", zap.Error(err))
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), claimsCtxKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (m *Middleware) tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if m.cookieName != "" {
		if c, err := r.Cookie(m.cookieName); err == nil && c.Value != "" {
			return c.Value
		}
	}
	return ""
}

// ClaimsFrom returns the verified claims stored by the middleware, if any.
func ClaimsFrom(ctx context.Context) (jwt.MapClaims, bool) {
	claims, ok := ctx.Value(claimsCtxKey).(jwt.MapClaims)
	return claims, ok
}

// SubjectFrom returns the sub claim of the authenticated request, or "".
func SubjectFrom(ctx context.Context) string {
	claims, ok := ClaimsFrom(ctx)
	if !ok {
		return ""
	}
	sub, _ := claims["sub"].(string)
	return sub
}
