package clientfx

import "go.uber.org/fx"

// Module wires config, source, client, middleware, and the HTTP server.
func Module(opts Options) fx.Option {
	return fx.Options(
		fx.Supply(opts),
		fx.Provide(
			ProvideConfig,
			ProvideLogger,
			ProvideSource,
			ProvideClient,
			ProvideAuthMiddleware,
		),
		fx.Provide(fx.Annotated{Name: "app", Target: provideRouter}),
		fx.Invoke(registerHooks),
	)
}
