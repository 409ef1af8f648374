// pkg/source/source.go
package source

import (
	"context"

	"github.com/primait/jwks-client/pkg/keyset"
)

// Source produces a key set on demand. Implementations must be safe for
// concurrent use; retry and backoff policy, if any, belongs to the caller.
type Source interface {
	FetchKeys(ctx context.Context) (keyset.KeySet, error)
}

// SourceFunc adapts a plain function to a Source.
type SourceFunc func(ctx context.Context) (keyset.KeySet, error)

func (f SourceFunc) FetchKeys(ctx context.Context) (keyset.KeySet, error) { return f(ctx) }

// StaticSource always returns the same key set or error. Meant for tests
// and fixed-key deployments.
type StaticSource struct {
	set keyset.KeySet
	err error
}

func NewStaticSource(set keyset.KeySet) *StaticSource { return &StaticSource{set: set} }

// NewFailingSource returns a StaticSource whose fetch always fails.
func NewFailingSource(err error) *StaticSource { return &StaticSource{err: err} }

func (s *StaticSource) FetchKeys(context.Context) (keyset.KeySet, error) {
	if s.err != nil {
		return keyset.KeySet{}, s.err
	}
	return s.set, nil
}
