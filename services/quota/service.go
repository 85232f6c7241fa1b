package quota

import (
	"context"
	"fmt"
	"time"

	"rewardgate/pkg/repository"
	"rewardgate/services/rewardconfig"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const ReasonGlobalCap = "Daily reward cap reached"

func reasonLimit(k rewardconfig.LimitKey) string {
	return fmt.Sprintf("Daily %s limit reached", k)
}

type Enforcer struct {
	db      *gorm.DB
	node    *snowflake.Node
	records repository.Repository[DailyLimitRecord]
	now     func() time.Time
}

type Params struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node
}

func NewEnforcer(p Params) *Enforcer {
	return &Enforcer{
		db:      p.DB,
		node:    p.Node,
		records: repository.ProvideStore[DailyLimitRecord](p.DB),
		now:     time.Now,
	}
}

// Today returns the user's record for the UTC day of now, creating it on first use.
func (e *Enforcer) Today(ctx context.Context, userID string, now time.Time) (*DailyLimitRecord, error) {
	day := Day(now)
	if err := e.ensure(e.db.WithContext(ctx), userID, day); err != nil {
		return nil, err
	}

	rec, err := e.records.FindOne(ctx, &DailyLimitRecord{UserID: userID, Day: day})
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("daily limit record %s/%s missing after create", userID, day)
	}
	return rec, nil
}

func (e *Enforcer) ensure(db *gorm.DB, userID, day string) error {
	now := e.now()
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&DailyLimitRecord{
		ID:        e.node.Generate().String(),
		UserID:    userID,
		Day:       day,
		CreatedAt: now,
		UpdatedAt: now,
	}).Error
}

// Check is read-only. The per-action ceiling is checked first, then the global
// amount cap. A grant that would cross the cap is rejected in full.
func (e *Enforcer) Check(rec *DailyLimitRecord, effective rewardconfig.ActionType, amount int64, cfg rewardconfig.Resolved) Decision {
	for _, k := range rewardconfig.LimitKeys(effective) {
		if rec.Count(k) >= cfg.Limit(k) {
			return Decision{Reason: reasonLimit(k)}
		}
	}

	if rec.EarnedTotal()+amount > cfg.Value(rewardconfig.GlobalDailyCap) {
		return Decision{Reason: ReasonGlobalCap}
	}

	return Decision{Allowed: true}
}

// Increment adds one to every counter of the effective type and amount to its
// earned accumulator, as a single in-place update.
func (e *Enforcer) Increment(ctx context.Context, userID, day string, effective rewardconfig.ActionType, amount int64) error {
	updates := map[string]any{
		"updated_at": e.now(),
	}
	for _, k := range rewardconfig.LimitKeys(effective) {
		col := countColumns[k]
		updates[col] = gorm.Expr(col+" + ?", 1)
	}
	col := earnedColumn(effective)
	updates[col] = gorm.Expr(col+" + ?", amount)

	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := e.ensure(tx, userID, day); err != nil {
			return err
		}
		return tx.Model(&DailyLimitRecord{}).
			Where("user_id = ? AND day = ?", userID, day).
			Updates(updates).Error
	})
}
