package logger

import "go.uber.org/zap"

func ProvideLoggerMiddleware(log *zap.Logger) *Middleware { return NewMiddleware(log) }
