package rewardconfig

import (
	"context"

	"rewardgate/pkg/logger"
	"rewardgate/pkg/repository"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

type Resolver struct {
	entries repository.Repository[RewardConfigEntry]
	group   singleflight.Group
}

type Params struct {
	fx.In
	DB *gorm.DB
}

func NewResolver(p Params) *Resolver {
	return &Resolver{
		entries: repository.ProvideStore[RewardConfigEntry](p.DB),
	}
}

// Resolve returns defaults merged with every stored override. It never fails:
// a storage error yields the defaults. Concurrent calls share one query.
func (r *Resolver) Resolve(ctx context.Context) Resolved {
	v, _, _ := r.group.Do("resolve", func() (any, error) {
		entries, err := r.entries.Find(ctx, nil)
		if err != nil {
			logger.FromContext(ctx).Warn("failed to load reward config, using defaults", zap.Error(err))
			return []*RewardConfigEntry(nil), nil
		}
		return entries, nil
	})

	entries, _ := v.([]*RewardConfigEntry)
	return Merge(Defaults(), entries)
}
