package main

import (
	"context"
	"os"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rewardgate/pkg/config"
	"rewardgate/pkg/db"
	"rewardgate/pkg/hashistack/secretmanager"
	"rewardgate/pkg/logger"
	"rewardgate/pkg/repository"
	"rewardgate/services/rewardconfig"
)

// seed writes every recognized config key with its default value. Existing
// entries are left untouched so admin overrides survive a re-run.
func main() {
	app := fx.New(
		secretmanager.Module,
		config.Select(),
		logger.Module,
		db.Module,
		fx.Invoke(run),
		fx.WithLogger(func() fxevent.Logger { return fxevent.NopLogger }),
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		zap.L().Error("seed failed", zap.Error(err))
		os.Exit(1)
	}
	_ = app.Stop(ctx)
}

func run(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(&rewardconfig.RewardConfigEntry{}); err != nil {
		return err
	}

	now := time.Now()
	entries := rewardconfig.DefaultEntries()
	for _, e := range entries {
		e.Description = "default"
		e.CreatedAt = now
		e.UpdatedAt = now
	}

	store := repository.ProvideStore[rewardconfig.RewardConfigEntry](gdb.Clauses(clause.OnConflict{DoNothing: true}))
	if err := store.BatchCreate(context.Background(), entries); err != nil {
		return err
	}

	zap.L().Info("reward config seeded", zap.Int("keys", len(entries)))
	return nil
}
