// pkg/keyset/keyset.go
package keyset

import (
	"encoding/json"
	"fmt"
)

// KeySet is an ordered collection of verification keys as published at a
// JWKS endpoint. An empty set is valid ("no keys yet").
type KeySet struct {
	keys []Key
}

// Empty returns a KeySet with no keys.
func Empty() KeySet { return KeySet{} }

// FromKeys builds a KeySet from the given keys, preserving order.
func FromKeys(keys ...Key) KeySet {
	return KeySet{keys: append([]Key(nil), keys...)}
}

// Key returns the first key whose kid matches. The wire format does not
// forbid duplicate kids; first match wins. Returns KeyNotFoundError when
// no key matches.
func (s KeySet) Key(kid string) (Key, error) {
	for _, k := range s.keys {
		if k.KeyID() == kid {
			return k, nil
		}
	}
	return nil, KeyNotFoundError{KeyID: kid}
}

// TakeKey is Key. Keys are immutable value types, so there is nothing to
// consume; the name survives for callers that read the set exactly once.
func (s KeySet) TakeKey(kid string) (Key, error) { return s.Key(kid) }

// Keys returns the keys in publication order. The slice is a copy.
func (s KeySet) Keys() []Key { return append([]Key(nil), s.keys...) }

// Len reports the number of keys in the set.
func (s KeySet) Len() int { return len(s.keys) }

// KeyNotFoundError reports a kid that does not appear in the set.
type KeyNotFoundError struct {
	KeyID string
}

func (e KeyNotFoundError) Error() string {
	return fmt.Sprintf("no key found for kid %q", e.KeyID)
}

// jwk is the wire shape of a single key inside {"keys":[...]}.
type jwk struct {
	Kty string   `json:"kty"`
	Kid string   `json:"kid"`
	Alg string   `json:"alg,omitempty"`
	Use string   `json:"use,omitempty"`
	N   string   `json:"n,omitempty"`
	E   string   `json:"e,omitempty"`
	Crv string   `json:"crv,omitempty"`
	X   string   `json:"x,omitempty"`
	Y   string   `json:"y,omitempty"`
	X5C []string `json:"x5c,omitempty"`
	X5T string   `json:"x5t,omitempty"`
}

type jwkSet struct {
	Keys []jwk `json:"keys"`
}

func (s *KeySet) UnmarshalJSON(data []byte) error {
	var doc jwkSet
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	keys := make([]Key, 0, len(doc.Keys))
	for i, w := range doc.Keys {
		switch w.Kty {
		case "RSA":
			keys = append(keys, RSAKey{
				Kid:          w.Kid,
				Alg:          w.Alg,
				Use:          w.Use,
				Modulus:      w.N,
				Exponent:     w.E,
				Certificates: w.X5C,
				Thumbprint:   w.X5T,
			})
		case "EC":
			keys = append(keys, ECKey{
				Kid:   w.Kid,
				Alg:   w.Alg,
				Curve: w.Crv,
				X:     w.X,
				Y:     w.Y,
			})
		default:
			return fmt.Errorf("keys[%d]: unknown kty %q", i, w.Kty)
		}
	}
	s.keys = keys
	return nil
}

func (s KeySet) MarshalJSON() ([]byte, error) {
	doc := jwkSet{Keys: make([]jwk, 0, len(s.keys))}
	for _, k := range s.keys {
		switch k := k.(type) {
		case RSAKey:
			doc.Keys = append(doc.Keys, jwk{
				Kty: "RSA",
				Kid: k.Kid,
				Alg: k.Alg,
				Use: k.Use,
				N:   k.Modulus,
				E:   k.Exponent,
				X5C: k.Certificates,
				X5T: k.Thumbprint,
			})
		case ECKey:
			doc.Keys = append(doc.Keys, jwk{
				Kty: "EC",
				Kid: k.Kid,
				Alg: k.Alg,
				Crv: k.Curve,
				X:   k.X,
				Y:   k.Y,
			})
		default:
			return nil, UnsupportedKeyTypeError{Kty: fmt.Sprintf("%T", k)}
		}
	}
	return json.Marshal(doc)
}
