package payment

import (
	"github.com/neocommerce/storefront/internal/config"
	"github.com/neocommerce/storefront/internal/payment/gateways"
	"github.com/neocommerce/storefront/internal/payment/gateways/cryptomus"
	"github.com/neocommerce/storefront/internal/payment/gateways/paypal"
	"github.com/neocommerce/storefront/internal/payment/repository"
	"github.com/neocommerce/storefront/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(newRegistry),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

func newRegistry(cfg config.Config) *gateways.Registry {
	return gateways.NewRegistry(
		cryptomus.NewFactory(),
		paypal.NewFactory(cfg.AppName),
	)
}
