package main

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"rewardgate/pkg/config"
	"rewardgate/pkg/db"
	"rewardgate/pkg/gen"
	"rewardgate/pkg/hashistack/secretmanager"
	"rewardgate/pkg/logger"
	"rewardgate/pkg/otelcol"
	"rewardgate/pkg/redis"
	"rewardgate/pkg/sequence"
	"rewardgate/pkg/task"
	"rewardgate/services/catalog"
	"rewardgate/services/ledger"
	"rewardgate/services/quota"
	"rewardgate/services/reward"
	"rewardgate/services/rewardconfig"
	"rewardgate/services/transaction"
)

func main() {
	app := fx.New(
		secretmanager.Module,
		config.Select(),
		logger.Module,
		otelcol.Module,
		db.Module,
		fx.Invoke(db.Otel),
		redis.Module,
		sequence.Module,
		gen.Module,
		task.Server,

		rewardconfig.Module,
		catalog.Module,
		ledger.Module,
		quota.Module,
		transaction.Module,
		reward.WorkerModule,
		fxLogger,
	)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})
