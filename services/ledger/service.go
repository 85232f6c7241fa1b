package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rewardgate/pkg/logger"
	"rewardgate/pkg/repository"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrAlreadyRewarded = errors.New("already rewarded")
	ErrInvalidAmount   = errors.New("amount must be > 0")
)

// Mutator is the only write path to the balance fields of RewardAccount.
type Mutator struct {
	db   *gorm.DB
	node *snowflake.Node

	accounts repository.Repository[RewardAccount]
	now      func() time.Time
}

type Params struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node
}

func NewMutator(p Params) *Mutator {
	return &Mutator{
		db:       p.DB,
		node:     p.Node,
		accounts: repository.ProvideStore[RewardAccount](p.DB),
		now:      time.Now,
	}
}

// Grant claims the dedupe marker and credits the account in one transaction.
// A marker that already exists rolls the whole unit back with ErrAlreadyRewarded.
func (m *Mutator) Grant(ctx context.Context, p GrantParams) (Snapshot, error) {
	if p.Amount <= 0 {
		return Snapshot{}, ErrInvalidAmount
	}

	state := ApprovalFor(p.AutoApprove)
	var account RewardAccount

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if p.MarkerAction != "" {
			if err := m.claimMarker(tx, p); err != nil {
				return err
			}
		}

		if err := m.credit(tx, p.UserID, state, p.Amount); err != nil {
			return fmt.Errorf("credit account: %w", err)
		}

		return tx.Where(&RewardAccount{UserID: p.UserID}).Take(&account).Error
	})
	if err != nil {
		if !errors.Is(err, ErrAlreadyRewarded) {
			logger.FromContext(ctx).Error("ledger grant failed",
				zap.String("user_id", p.UserID),
				zap.String("action", p.MarkerAction),
				zap.Error(err),
			)
		}
		return Snapshot{}, err
	}

	return Snapshot{
		UserID:   account.UserID,
		Total:    account.TotalRewards,
		Pending:  account.PendingRewards,
		Approved: account.ApprovedReward,
		State:    state,
	}, nil
}

func (m *Mutator) claimMarker(tx *gorm.DB, p GrantParams) error {
	marker := &RewardActionMarker{
		ID:        m.node.Generate().String(),
		UserID:    p.UserID,
		VideoID:   p.VideoID,
		Action:    p.MarkerAction,
		CreatedAt: m.now(),
	}

	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(marker)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return ErrAlreadyRewarded
		}
		return fmt.Errorf("claim marker: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyRewarded
	}
	return nil
}

// credit is a single upsert: the row is created on first grant, otherwise the
// balance columns are incremented in place.
func (m *Mutator) credit(tx *gorm.DB, userID string, state ApprovalState, amount int64) error {
	now := m.now()
	account := &RewardAccount{
		ID:           m.node.Generate().String(),
		UserID:       userID,
		TotalRewards: amount,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if state == ApprovalApproved {
		account.ApprovedReward = amount
	} else {
		account.PendingRewards = amount
	}

	bucket := state.bucket()
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"total_rewards": gorm.Expr("reward_accounts.total_rewards + ?", amount),
			bucket:          gorm.Expr("reward_accounts."+bucket+" + ?", amount),
			"updated_at":    now,
		}),
	}).Create(account).Error
}

// RecordSuspicionScore stores the latest trust score for admin visibility.
func (m *Mutator) RecordSuspicionScore(ctx context.Context, userID string, score int64) error {
	now := m.now()
	return m.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"suspicious_score": score,
			"updated_at":       now,
		}),
	}).Create(&RewardAccount{
		ID:              m.node.Generate().String(),
		UserID:          userID,
		SuspiciousScore: score,
		CreatedAt:       now,
		UpdatedAt:       now,
	}).Error
}

// Account returns nil, nil when the user has never been credited.
func (m *Mutator) Account(ctx context.Context, userID string) (*RewardAccount, error) {
	return m.accounts.FindOne(ctx, &RewardAccount{UserID: userID})
}
