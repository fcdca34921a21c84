package migration

import (
	"github.com/smallbiznis/roomledger/internal/config"
	"github.com/smallbiznis/roomledger/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if !cfg.DBAutoMigrate {
			log.Info("schema migrations disabled")
			return nil
		}
		dialect := db.NormalizeDialect(cfg.DBType)
		if err := Run(conn, dialect); err != nil {
			return err
		}
		log.Info("schema migrations applied", zap.String("dialect", dialect))
		return nil
	}),
)
