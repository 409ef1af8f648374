// pkg/client/client.go
package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/primait/jwks-client/pkg/cache"
	"github.com/primait/jwks-client/pkg/keyset"
	"github.com/primait/jwks-client/pkg/source"
)

// Client looks up JWKS verification keys through a TTL cache and decodes
// signed tokens against them. Construct once via NewBuilder().Build and
// share; all methods are safe for concurrent use.
type Client struct {
	source source.Source
	cache  *cache.Cache
	log    *zap.Logger
}

// Get returns the key for kid, fetching the key set from the source when
// the cache is missing it or has expired. A stale key shadows a failed
// refresh; only a kid never seen in any fetched set fails, with a wrapped
// keyset.KeyNotFoundError.
func (c *Client) Get(ctx context.Context, kid string) (keyset.Key, error) {
	key, err := c.cache.GetOrRefresh(ctx, kid, c.fetchKeys)
	if err != nil {
		return nil, wrapErr(err)
	}
	return key, nil
}

// GetOptional is Get, except an unknown kid yields (nil, nil) instead of
// an error. Fetch-layer failures still surface.
func (c *Client) GetOptional(ctx context.Context, kid string) (keyset.Key, error) {
	key, err := c.Get(ctx, kid)
	if err != nil {
		var notFound keyset.KeyNotFoundError
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, err
	}
	return key, nil
}

// Decode verifies token and returns its claims. The kid is read from the
// unverified header, the matching key fetched through Get, and signature
// verification delegated to golang-jwt. Audience membership is enforced
// only when audiences is non-empty. Only RSA keys are supported; an EC
// key fails with keyset.UnsupportedKeyTypeError.
func (c *Client) Decode(ctx context.Context, token string, audiences []string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if err := c.DecodeWithClaims(ctx, token, audiences, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// DecodeWithClaims is Decode into a caller-supplied claims value, for
// typed claim structs embedding jwt.RegisteredClaims.
func (c *Client) DecodeWithClaims(ctx context.Context, token string, audiences []string, claims jwt.Claims) error {
	unverified, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return wrapErr(err)
	}

	kid, _ := unverified.Header["kid"].(string)
	if kid == "" {
		return wrapErr(ErrMissingKid)
	}

	key, err := c.Get(ctx, kid)
	if err != nil {
		return err
	}

	var pubKey any
	switch key := key.(type) {
	case keyset.RSAKey:
		pub, err := key.PublicKey()
		if err != nil {
			return wrapErr(err)
		}
		pubKey = pub
	case keyset.ECKey:
		return wrapErr(keyset.UnsupportedKeyTypeError{Kty: "EC"})
	default:
		return wrapErr(keyset.UnsupportedKeyTypeError{Kty: fmt.Sprintf("%T", key)})
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods(validMethods(key.Algorithm())),
		jwt.WithIssuedAt(),
	)
	if _, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return pubKey, nil
	}); err != nil {
		return wrapErr(err)
	}

	if len(audiences) > 0 {
		if err := checkAudience(claims, audiences); err != nil {
			return wrapErr(err)
		}
	}
	return nil
}

// fetchKeys is the refresh callback handed to the cache.
func (c *Client) fetchKeys(ctx context.Context) (keyset.KeySet, error) {
	c.log.Debug("refreshing jwks")
	return c.source.FetchKeys(ctx)
}

// validMethods derives the accepted signing algorithms from the key's
// declared alg, falling back to the RSA family when the JWK declares none.
func validMethods(alg string) []string {
	if alg != "" {
		return []string{alg}
	}
	return []string{"RS256", "RS384", "RS512"}
}

func checkAudience(claims jwt.Claims, audiences []string) error {
	tokenAud, err := claims.GetAudience()
	if err != nil {
		return err
	}
	for _, want := range audiences {
		for _, got := range tokenAud {
			if got == want {
				return nil
			}
		}
	}
	return fmt.Errorf("token audience %v not in %v: %w", tokenAud, audiences, jwt.ErrTokenInvalidAudience)
}
