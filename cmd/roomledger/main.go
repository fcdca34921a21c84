package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/roomledger/internal/clock"
	"github.com/smallbiznis/roomledger/internal/config"
	"github.com/smallbiznis/roomledger/internal/migration"
	"github.com/smallbiznis/roomledger/internal/observability"
	"github.com/smallbiznis/roomledger/internal/server"
	"github.com/smallbiznis/roomledger/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	app := fx.New(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),

		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// HTTP server and domain modules
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}
