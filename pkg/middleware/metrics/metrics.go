// middleware/metrics/metrics.go
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/primait/jwks-client/pkg/cache"
)

var (
	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "jwks_cache_lookups_total", Help: "jwks cache lookups by result"},
		[]string{"result"},
	)

	cacheRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "jwks_cache_refreshes_total", Help: "jwks refreshes by outcome"},
		[]string{"outcome"},
	)

	staleServed = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "jwks_cache_stale_served_total", Help: "expired keys served because a refresh failed or dropped the kid"},
	)

	refreshDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jwks_refresh_duration_seconds",
			Help:    "jwks endpoint fetch time.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 5, 10},
		},
	)
)

func init() {
	prometheus.MustRegister(
		cacheLookups,
		cacheRefreshes,
		staleServed,
		refreshDuration,
	)
}

// CacheObserver feeds cache events into the collectors above.
type CacheObserver struct{}

func (CacheObserver) Lookup(hit bool) {
	if hit {
		cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	cacheLookups.WithLabelValues("miss").Inc()
}

func (CacheObserver) Refresh(err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	cacheRefreshes.WithLabelValues(outcome).Inc()
	refreshDuration.Observe(elapsed.Seconds())
}

func (CacheObserver) StaleServed() { staleServed.Inc() }

func NewPromHttpHandler() http.Handler { return promhttp.Handler() }
func ProvideMetrics() http.Handler     { return NewPromHttpHandler() }
func ProvideObserver() cache.Observer  { return CacheObserver{} }

var Module = fx.Options(
	fx.Provide(fx.Annotated{Name: "metrics", Target: ProvideMetrics}),
	fx.Provide(ProvideObserver),
)
