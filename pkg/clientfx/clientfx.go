// pkg/clientfx/clientfx.go
package clientfx

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimd "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/primait/jwks-client/pkg/cache"
	"github.com/primait/jwks-client/pkg/client"
	"github.com/primait/jwks-client/pkg/config"
	"github.com/primait/jwks-client/pkg/middleware/auth"
	"github.com/primait/jwks-client/pkg/middleware/logger"
	"github.com/primait/jwks-client/pkg/source"
)

// Options allow per-deployment env keys/defaults without code duplication.
type Options struct {
	ConfigEnv     string // e.g. "JWKSD_CONFIG"
	DefaultConfig string // e.g. "jwksd.toml"
}

func ProvideConfig(opts Options) (config.Config, error) {
	return config.Load(envOr(opts.ConfigEnv, opts.DefaultConfig))
}

func ProvideLogger(cfg config.Config) *zap.Logger {
	return logger.NewLog(cfg.Log.File)
}

func ProvideSource(cfg config.Config) (source.Source, error) {
	return source.NewWebSource(cfg.Client.JWKSURL,
		source.WithConnectTimeout(cfg.Client.ConnectTimeoutDuration()),
		source.WithTimeout(cfg.Client.TimeoutDuration()),
	)
}

func ProvideClient(cfg config.Config, src source.Source, obs cache.Observer, log *zap.Logger) *client.Client {
	return client.NewBuilder().
		TimeToLive(cfg.Client.TimeToLiveDuration()).
		Observer(obs).
		Logger(log).
		Build(src)
}

func ProvideAuthMiddleware(cfg config.Config, c *client.Client, log *zap.Logger) *auth.Middleware {
	opts := []auth.Option{
		auth.WithAudiences(cfg.Server.Audiences...),
		auth.WithLogger(log),
	}
	if cfg.Server.CookieName != "" {
		opts = append(opts, auth.WithCookie(cfg.Server.CookieName))
	}
	return auth.New(c, opts...)
}

// ---- Router ----

type routerDeps struct {
	fx.In

	AuthMW *auth.Middleware
	LogMW  *logger.Middleware

	Metrics http.Handler `name:"metrics"`
}

func provideRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimd.RequestID)
	r.Use(d.LogMW.Middleware())

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", d.Metrics)

	r.Group(func(pr chi.Router) {
		pr.Use(d.AuthMW.Middleware())
		pr.Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
			claims, _ := auth.ClaimsFrom(r.Context())
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(claims)
		})
	})

	return r
}

// ---- Server lifecycle ----

type serverDeps struct {
	fx.In
	Cfg    config.Config
	Logger *zap.Logger
	App    http.Handler `name:"app"`
}

func registerHooks(lc fx.Lifecycle, d serverDeps) {
	srv := &http.Server{
		Addr:         d.Cfg.Server.ListenAddress,
		Handler:      d.App,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				d.Logger.Info("listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					d.Logger.Error("server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
