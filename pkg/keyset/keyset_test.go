package keyset

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

const rsaSetDoc = `{
  "keys": [
    {
      "alg": "RS256",
      "kty": "RSA",
      "use": "sig",
      "n": "qjNzuylUQpyU9qX3_bMGpiRUO1G_xKbB0fyqQy0naETviHIqPS2D3lGcfK9XIFLZOq1O7K2KRXEE5nSDTf-S9qc0nPRkS38CXK4DBKPTBXtjufLK3e9lN9dh8Ehazx8xNmdCc6aocVKKlamOJv7Qr_UgmoFllq7W-UQ0YK2qfN8WgqxOQUPrss-40RWslCAKpjZmMOpIpRXQLGmR-GGZUdQZXnTUhnhRyDz5VcXHH--o1PkH_F0rlabMxgNFfsCIWKWbGy8G89bNrvoeVKq15QPCeaGBV13f2Do6XHGt0l2M3eYz85wyz1pISvjQuR4PrtJr6VsuHz3Puh_KgY8GqQ",
      "e": "AQAB",
      "kid": "go14h7EBWUvPRncjniI_2",
      "x5t": "dfrlEXMuWrPaCbmIrpXaiwNjFf4"
    }
  ]
}`

const ecSetDoc = `{
  "keys": [
    {
      "alg": "ES256",
      "kty": "EC",
      "crv": "P-256",
      "x": "LEBfQpwTDXJtLFiPcnYvGv-WaFXZGBnFP_yGhLL9MGc",
      "y": "a1Or3ovkpH12b0o3ruZUtm_z8bg3xQtHXi-uPC7UJT0",
      "kid": "test-key"
    }
  ]
}`

func TestKeySetUnmarshal(t *testing.T) {
	t.Parallel()

	t.Run("rsa key set", func(t *testing.T) {
		var set KeySet
		require.NoError(t, json.Unmarshal([]byte(rsaSetDoc), &set))
		require.Equal(t, 1, set.Len())

		key, err := set.Key("go14h7EBWUvPRncjniI_2")
		require.NoError(t, err)
		require.Equal(t, "RS256", key.Algorithm())

		rsaKey, ok := key.(RSAKey)
		require.True(t, ok)
		require.Equal(t, "AQAB", rsaKey.Exponent)
		require.Equal(t, "dfrlEXMuWrPaCbmIrpXaiwNjFf4", rsaKey.Thumbprint)
	})

	t.Run("ec key set", func(t *testing.T) {
		var set KeySet
		require.NoError(t, json.Unmarshal([]byte(ecSetDoc), &set))

		key, err := set.Key("test-key")
		require.NoError(t, err)

		ecKey, ok := key.(ECKey)
		require.True(t, ok)
		require.Equal(t, "P-256", ecKey.Curve)
		require.Equal(t, "LEBfQpwTDXJtLFiPcnYvGv-WaFXZGBnFP_yGhLL9MGc", ecKey.X)
		require.Equal(t, "a1Or3ovkpH12b0o3ruZUtm_z8bg3xQtHXi-uPC7UJT0", ecKey.Y)
	})

	t.Run("unknown kty is a parse error", func(t *testing.T) {
		var set KeySet
		err := json.Unmarshal([]byte(`{"keys":[{"kty":"OKP","kid":"x"}]}`), &set)
		require.Error(t, err)
		require.Contains(t, err.Error(), "unknown kty")
	})
}

func TestKeySetLookup(t *testing.T) {
	t.Parallel()

	t.Run("missing kid", func(t *testing.T) {
		set := FromKeys(RSAKey{Kid: "a"})

		_, err := set.Key("other")
		var notFound KeyNotFoundError
		require.ErrorAs(t, err, &notFound)
		require.Equal(t, "other", notFound.KeyID)
	})

	t.Run("empty set", func(t *testing.T) {
		_, err := Empty().Key("any")
		require.Error(t, err)
	})

	t.Run("duplicate kid returns first match", func(t *testing.T) {
		set := FromKeys(
			RSAKey{Kid: "dup", Thumbprint: "first"},
			RSAKey{Kid: "dup", Thumbprint: "second"},
		)

		key, err := set.Key("dup")
		require.NoError(t, err)
		require.Equal(t, "first", key.(RSAKey).Thumbprint)
	})

	t.Run("take key matches key", func(t *testing.T) {
		set := FromKeys(ECKey{Kid: "ec"})

		got, err := set.TakeKey("ec")
		require.NoError(t, err)
		require.Equal(t, "ec", got.KeyID())
	})
}

func TestKeySetRoundTrip(t *testing.T) {
	t.Parallel()

	var set KeySet
	require.NoError(t, json.Unmarshal([]byte(rsaSetDoc), &set))

	out, err := json.Marshal(set)
	require.NoError(t, err)

	var reparsed KeySet
	require.NoError(t, json.Unmarshal(out, &reparsed))
	require.Equal(t, set.Keys(), reparsed.Keys())
}

func TestRSAPublicKey(t *testing.T) {
	t.Parallel()

	t.Run("decodes modulus and exponent", func(t *testing.T) {
		var set KeySet
		require.NoError(t, json.Unmarshal([]byte(rsaSetDoc), &set))

		key, err := set.Key("go14h7EBWUvPRncjniI_2")
		require.NoError(t, err)

		pub, err := key.(RSAKey).PublicKey()
		require.NoError(t, err)
		require.Equal(t, 65537, pub.E)
		require.Equal(t, 2048, pub.N.BitLen())
	})

	t.Run("rejects invalid base64url", func(t *testing.T) {
		_, err := RSAKey{Modulus: "not base64url!", Exponent: "AQAB"}.PublicKey()
		require.Error(t, err)
	})
}

func TestUnsupportedKeyTypeError(t *testing.T) {
	t.Parallel()

	err := error(UnsupportedKeyTypeError{Kty: "EC"})
	require.EqualError(t, err, `unsupported key type "EC"`)

	var typed UnsupportedKeyTypeError
	require.True(t, errors.As(err, &typed))
}
