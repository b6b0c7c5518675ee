package main

import (
	"github.com/Behzodbek19981230/lms-sub004/internal/billingprofile"
	"github.com/Behzodbek19981230/lms-sub004/internal/clock"
	"github.com/Behzodbek19981230/lms-sub004/internal/config"
	"github.com/Behzodbek19981230/lms-sub004/internal/events"
	"github.com/Behzodbek19981230/lms-sub004/internal/generator"
	"github.com/Behzodbek19981230/lms-sub004/internal/ledger"
	"github.com/Behzodbek19981230/lms-sub004/internal/migration"
	"github.com/Behzodbek19981230/lms-sub004/internal/observability/logger"
	"github.com/Behzodbek19981230/lms-sub004/internal/observability/tracing"
	"github.com/Behzodbek19981230/lms-sub004/internal/overview"
	"github.com/Behzodbek19981230/lms-sub004/internal/scheduler"
	"github.com/Behzodbek19981230/lms-sub004/internal/seed"
	"github.com/Behzodbek19981230/lms-sub004/internal/server"
	"github.com/Behzodbek19981230/lms-sub004/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var version = "dev"

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		tracing.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,

		fx.Invoke(func(log *zap.Logger, cfg config.Config) {
			log.Info("starting lms billing core",
				zap.String("version", version),
				zap.String("environment", cfg.Environment),
			)
		}),

		fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := migration.RunMigrations(sqlDB); err != nil {
				return err
			}
			if !cfg.IsProduction() && cfg.SeedDemoData {
				return seed.EnsureDemoData(conn)
			}
			return nil
		}),

		events.Module,
		billingprofile.Module,
		ledger.Module,
		generator.Module,
		overview.Module,
		scheduler.Module,
		server.Module,
	)
	app.Run()
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
