package logger

import "go.uber.org/fx"

// Module provides the access-log middleware; the *zap.Logger itself comes
// from the app wiring so the log file stays configurable.
var Module = fx.Options(
	fx.Provide(ProvideLoggerMiddleware),
)
