package settings

import (
	"github.com/neocommerce/storefront/internal/settings/repository"
	"github.com/neocommerce/storefront/internal/settings/service"
	"go.uber.org/fx"
)

var Module = fx.Module("settings.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
