package main

import (
	"log"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"rewardgate/pkg/config"
	"rewardgate/pkg/db"
	"rewardgate/pkg/featureflags"
	"rewardgate/pkg/gen"
	"rewardgate/pkg/hashistack/secretmanager"
	"rewardgate/pkg/health"
	"rewardgate/pkg/httpapi"
	"rewardgate/pkg/logger"
	"rewardgate/pkg/otelcol"
	"rewardgate/pkg/profiling"
	"rewardgate/pkg/redis"
	"rewardgate/pkg/sequence"
	"rewardgate/pkg/server"
	"rewardgate/pkg/task"
	"rewardgate/services/antifraud"
	"rewardgate/services/catalog"
	"rewardgate/services/identity"
	"rewardgate/services/ledger"
	"rewardgate/services/quota"
	"rewardgate/services/reward"
	"rewardgate/services/rewardconfig"
	"rewardgate/services/transaction"
	"rewardgate/services/trust"
)

func main() {
	opts := []fx.Option{
		secretmanager.Module,
		config.Select(),
		logger.Module,
		otelcol.Module,
		profiling.Module,
		db.Module,
		fx.Invoke(
			db.Otel,
			registerDBMetrics,
			db.Migrate(models()...),
		),
		redis.Module,
		sequence.Module,
		task.Client,
		featureflags.Module,
		gen.Module,
		health.Module,
		httpapi.Module,

		rewardconfig.Module,
		catalog.Module,
		ledger.Module,
		quota.Module,
		transaction.Module,
		identity.Module,
		antifraud.Module,
		trust.Module,
		reward.Module,

		server.ProvideGRPCServer,
		server.ProvideHTTPServer,
		fx.Invoke(health.RegisterGRPC),
		fxLogger,
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	fx.New(opts...).Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	if cfg.IsProduction() {
		return fxevent.NopLogger
	}
	return &fxevent.ZapLogger{Logger: logger}
})

func registerDBMetrics(cfg *config.Config, gdb *gorm.DB) error {
	if !cfg.Metrics.Enable {
		return nil
	}
	return db.Metric(gdb)
}

// models are the tables this service owns. Collaborator tables in
// services/catalog are migrated by their owners.
func models() []any {
	out := []any{
		&rewardconfig.RewardConfigEntry{},
		&quota.DailyLimitRecord{},
		&transaction.RewardTransaction{},
		&antifraud.ActivityLog{},
	}
	return append(out, ledger.Models()...)
}
