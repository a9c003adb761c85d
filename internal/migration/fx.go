package migration

import (
	"strings"

	"github.com/neocommerce/storefront/internal/config"
	"github.com/neocommerce/storefront/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		switch {
		case strings.EqualFold(cfg.DBType, "postgres"):
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		case strings.EqualFold(cfg.DBType, "sqlite"):
			if err := RunEmbeddedSQL(conn); err != nil {
				return err
			}
		default:
			// Schema and seed row are managed externally (mysql).
			return nil
		}

		return seed.EnsureSettings(conn)
	}),
)
