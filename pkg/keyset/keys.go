// pkg/keyset/keys.go
package keyset

import (
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"math/big"
)

// Key is a single verification key from a JWKS document. The set of
// implementations is closed: RSAKey and ECKey, matching the "kty" values
// the wire format carries.
type Key interface {
	KeyID() string
	// Algorithm returns the declared "alg" value, or "" when absent.
	Algorithm() string

	sealed()
}

// RSAKey holds the public parts of an RSA JWK. Modulus and exponent stay
// in their base64url wire encoding until PublicKey is called.
type RSAKey struct {
	Kid          string
	Alg          string
	Use          string
	Modulus      string
	Exponent     string
	Certificates []string
	Thumbprint   string
}

func (k RSAKey) KeyID() string     { return k.Kid }
func (k RSAKey) Algorithm() string { return k.Alg }
func (RSAKey) sealed()             {}

// PublicKey decodes the base64url modulus/exponent into an *rsa.PublicKey.
func (k RSAKey) PublicKey() (*rsa.PublicKey, error) {
	nBytes, err := b64url(k.Modulus)
	if err != nil {
		return nil, fmt.Errorf("bad jwk modulus: %w", err)
	}
	eBytes, err := b64url(k.Exponent)
	if err != nil {
		return nil, fmt.Errorf("bad jwk exponent: %w", err)
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: bytesToInt(eBytes),
	}, nil
}

// ECKey holds the public parts of an elliptic-curve JWK. It is parsed and
// representable, but token verification rejects it (RSA only for now).
type ECKey struct {
	Kid   string
	Alg   string
	Curve string
	X     string
	Y     string
}

func (k ECKey) KeyID() string     { return k.Kid }
func (k ECKey) Algorithm() string { return k.Alg }
func (ECKey) sealed()             {}

// UnsupportedKeyTypeError is returned when an operation needs a key type
// it cannot handle (today: anything but RSA at verification time).
type UnsupportedKeyTypeError struct {
	Kty string
}

func (e UnsupportedKeyTypeError) Error() string {
	return fmt.Sprintf("unsupported key type %q", e.Kty)
}

func b64url(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}

func bytesToInt(b []byte) int {
	// little helper for RSA exponent
	n := 0
	for _, v := range b {
		n = n<<8 | int(v)
	}
	if n == 0 {
		return 65537
	}
	return n
}
