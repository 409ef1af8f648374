package main

import (
	"go.uber.org/fx"

	"github.com/primait/jwks-client/pkg/clientfx"
	"github.com/primait/jwks-client/pkg/middleware/logger"
	"github.com/primait/jwks-client/pkg/middleware/metrics"
)

func main() {
	fx.New(
		logger.Module,
		metrics.Module,
		clientfx.Module(clientfx.Options{
			ConfigEnv:     "JWKSD_CONFIG",
			DefaultConfig: "jwksd.toml",
		}),
	).Run()
}
