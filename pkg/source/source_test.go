package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/primait/jwks-client/pkg/keyset"
)

const jwksDoc = `{
  "keys": [
    {
      "kty": "RSA",
      "alg": "RS256",
      "kid": "web-kid",
      "n": "qjNzuylUQpyU9qX3_bMGpiRUO1G_xKbB0fyqQy0naETviHIqPS2D3lGcfK9XIFLZ",
      "e": "AQAB"
    }
  ]
}`

func TestNewWebSource(t *testing.T) {
	t.Parallel()

	t.Run("rejects relative url", func(t *testing.T) {
		_, err := NewWebSource("/keys")
		require.Error(t, err)
	})

	t.Run("rejects unparseable url", func(t *testing.T) {
		_, err := NewWebSource("http://[bad")
		require.Error(t, err)
	})

	t.Run("accepts absolute url", func(t *testing.T) {
		src, err := NewWebSource("https://tenant.example.com/.well-known/jwks.json")
		require.NoError(t, err)
		require.Equal(t, "https://tenant.example.com/.well-known/jwks.json", src.URL())
	})
}

func TestWebSourceFetchKeys(t *testing.T) {
	t.Parallel()

	t.Run("parses a 200 response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodGet, r.Method)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(jwksDoc))
		}))
		defer srv.Close()

		src, err := NewWebSource(srv.URL, WithTimeout(2*time.Second))
		require.NoError(t, err)

		set, err := src.FetchKeys(context.Background())
		require.NoError(t, err)
		require.Equal(t, 1, set.Len())

		key, err := set.Key("web-kid")
		require.NoError(t, err)
		require.Equal(t, "RS256", key.Algorithm())
	})

	t.Run("non-2xx is a status error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusBadRequest)
		}))
		defer srv.Close()

		src, err := NewWebSource(srv.URL)
		require.NoError(t, err)

		_, err = src.FetchKeys(context.Background())
		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		require.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	})

	t.Run("malformed body is a parse error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"keys": "not a list"`))
		}))
		defer srv.Close()

		src, err := NewWebSource(srv.URL)
		require.NoError(t, err)

		_, err = src.FetchKeys(context.Background())
		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
	})

	t.Run("transport failure propagates", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // refuse connections

		src, err := NewWebSource(srv.URL)
		require.NoError(t, err)

		_, err = src.FetchKeys(context.Background())
		require.Error(t, err)
	})
}

func TestStaticSource(t *testing.T) {
	t.Parallel()

	t.Run("returns the configured set", func(t *testing.T) {
		set := keyset.FromKeys(keyset.RSAKey{Kid: "static"})
		got, err := NewStaticSource(set).FetchKeys(context.Background())
		require.NoError(t, err)
		require.Equal(t, 1, got.Len())
	})

	t.Run("returns the configured error", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := NewFailingSource(boom).FetchKeys(context.Background())
		require.ErrorIs(t, err, boom)
	})
}
