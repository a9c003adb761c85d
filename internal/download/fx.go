package download

import "go.uber.org/fx"

var Module = fx.Module("download.service",
	fx.Provide(New),
)
