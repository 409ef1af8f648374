// pkg/client/builder.go
package client

import (
	"time"

	"go.uber.org/zap"

	"github.com/primait/jwks-client/pkg/cache"
	"github.com/primait/jwks-client/pkg/source"
)

// DefaultTimeToLive is how long a fetched key set stays fresh when the
// builder is not told otherwise.
const DefaultTimeToLive = 24 * time.Hour

// Builder assembles a Client. Zero value is not usable; start from
// NewBuilder.
type Builder struct {
	ttl      time.Duration
	logger   *zap.Logger
	observer cache.Observer
	clock    func() time.Time
}

func NewBuilder() *Builder {
	return &Builder{ttl: DefaultTimeToLive}
}

// TimeToLive sets the cache TTL. Non-positive values keep the default.
func (b *Builder) TimeToLive(ttl time.Duration) *Builder {
	if ttl > 0 {
		b.ttl = ttl
	}
	return b
}

// Logger attaches a zap logger; defaults to a nop logger.
func (b *Builder) Logger(log *zap.Logger) *Builder {
	b.logger = log
	return b
}

// Observer wires cache events (hits, refreshes, stale serves) to o.
func (b *Builder) Observer(o cache.Observer) *Builder {
	b.observer = o
	return b
}

// Clock injects the cache's time source, for tests.
func (b *Builder) Clock(now func() time.Time) *Builder {
	b.clock = now
	return b
}

// Build composes the source with a fresh cache. The returned Client is
// safe for concurrent use and meant to be shared.
func (b *Builder) Build(src source.Source) *Client {
	log := b.logger
	if log == nil {
		log = zap.NewNop()
	}

	var opts []cache.Option
	if b.observer != nil {
		opts = append(opts, cache.WithObserver(b.observer))
	}
	if b.clock != nil {
		opts = append(opts, cache.WithClock(b.clock))
	}

	return &Client{
		source: src,
		cache:  cache.New(b.ttl, opts...),
		log:    log,
	}
}
