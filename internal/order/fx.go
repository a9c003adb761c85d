package order

import (
	"github.com/neocommerce/storefront/internal/order/repository"
	"github.com/neocommerce/storefront/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
