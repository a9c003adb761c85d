package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/neocommerce/storefront/internal/config"
	"github.com/neocommerce/storefront/internal/migration"
	"github.com/neocommerce/storefront/internal/observability"
	"github.com/neocommerce/storefront/internal/server"
	"github.com/neocommerce/storefront/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,

		// Functional domains are wired by the server module.
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
