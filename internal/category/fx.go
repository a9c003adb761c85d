package category

import (
	"github.com/neocommerce/storefront/internal/category/repository"
	"github.com/neocommerce/storefront/internal/category/service"
	"go.uber.org/fx"
)

var Module = fx.Module("category.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
