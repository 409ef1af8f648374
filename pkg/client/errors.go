// pkg/client/errors.go
package client

import "errors"

// ErrMissingKid is returned by Decode when the token header carries no kid;
// without one there is no way to pick a verification key.
var ErrMissingKid = errors.New("missing kid in token header")

// ClientError wraps every failure surfaced by the Client. The original
// cause is preserved and reachable through errors.Is / errors.As, so
// callers can test e.g. errors.Is(err, jwt.ErrTokenExpired) without
// knowing the wrapping.
type ClientError struct {
	err error
}

func (e *ClientError) Error() string { return "jwks client: " + e.err.Error() }

func (e *ClientError) Unwrap() error { return e.err }

func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	var ce *ClientError
	if errors.As(err, &ce) {
		return err
	}
	return &ClientError{err: err}
}
