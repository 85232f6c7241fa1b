package transaction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rewardgate/pkg/db/option"
	"rewardgate/pkg/db/pagination"
	"rewardgate/pkg/logger"
	"rewardgate/pkg/repository"
	"rewardgate/pkg/sequence"
	"rewardgate/services/ledger"
	"rewardgate/services/rewardconfig"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var sortable = map[string]bool{"created_at": true, "id": true}

var newestFirst = []option.QueryOption{
	option.WithSortBy(option.QuerySortBy{SortBy: "created_at", OrderBy: "desc", Allow: sortable}),
	option.WithSortBy(option.QuerySortBy{SortBy: "id", OrderBy: "desc", Allow: sortable}),
}

// QuotaIncrementer advances the daily counters after a grant.
type QuotaIncrementer interface {
	Increment(ctx context.Context, userID, day string, effective rewardconfig.ActionType, amount int64) error
}

type Recorder struct {
	db           *gorm.DB
	node         *snowflake.Node
	seq          sequence.Generator
	quota        QuotaIncrementer
	transactions repository.Repository[RewardTransaction]
	now          func() time.Time
}

type Params struct {
	fx.In
	DB       *gorm.DB
	Node     *snowflake.Node
	Quota    QuotaIncrementer
	Sequence sequence.Generator `optional:"true"`
}

func NewRecorder(p Params) *Recorder {
	return &Recorder{
		db:           p.DB,
		node:         p.Node,
		seq:          p.Sequence,
		quota:        p.Quota,
		transactions: repository.ProvideStore[RewardTransaction](p.DB),
		now:          time.Now,
	}
}

// Record appends the ledger row and then advances the daily counters. Both
// steps run after the balance is already committed, so a failure in either is
// returned for logging and never undoes the grant.
func (r *Recorder) Record(ctx context.Context, e Entry) (*RewardTransaction, error) {
	log := logger.FromContext(ctx).With(
		zap.String("user_id", e.UserID),
		zap.String("reward_type", string(e.EffectiveType)),
	)

	txn, recErr := r.appendRow(ctx, e)
	if recErr != nil {
		log.Error("failed to append reward transaction", zap.Error(recErr))
	}

	if !e.SkipQuota {
		if err := r.quota.Increment(ctx, e.UserID, e.Day, e.EffectiveType, e.Amount); err != nil {
			log.Error("failed to increment daily limits", zap.String("day", e.Day), zap.Error(err))
			if recErr == nil {
				return txn, fmt.Errorf("increment quota: %w", err)
			}
		}
	}

	if recErr != nil {
		return nil, fmt.Errorf("append transaction: %w", recErr)
	}
	return txn, nil
}

func (r *Recorder) reference(ctx context.Context) (string, error) {
	if r.seq != nil {
		ref, err := r.seq.NextTransactionReference(ctx)
		if err == nil {
			return ref, nil
		}
		logger.FromContext(ctx).Warn("sequence unavailable, using random reference", zap.Error(err))
	}
	return sequence.FallbackReference(r.now())
}

func (r *Recorder) appendRow(ctx context.Context, e Entry) (*RewardTransaction, error) {
	ref, err := r.reference(ctx)
	if err != nil {
		return nil, err
	}

	meta, err := json.Marshal(e.Metadata)
	if err != nil {
		return nil, err
	}

	// millisecond precision survives every supported database, so the hash can be recomputed
	now := r.now().UTC().Truncate(time.Millisecond)
	txn := &RewardTransaction{
		ID:                  r.node.Generate(),
		UserID:              e.UserID,
		VideoID:             e.VideoID,
		Amount:              e.Amount,
		RewardType:          string(e.EffectiveType),
		Status:              StatusSuccess,
		Reference:           ref,
		ApprovalState:       e.State,
		NeedsReconciliation: e.NeedsReconciliation,
		Metadata:            datatypes.JSON(meta),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if e.State == ledger.ApprovalApproved {
		txn.ApprovedAt = &now
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// appends for one user are serialized on the account row
		var account ledger.RewardAccount
		if err := tx.Scopes(option.LockingUpdate).Where("user_id = ?", e.UserID).Take(&account).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		last, err := r.transactions.WithTrx(tx).FindOne(ctx, &RewardTransaction{UserID: e.UserID}, newestFirst...)
		if err != nil {
			return err
		}

		txn.PreviousHash = genesisHash
		if last != nil {
			txn.PreviousHash = last.Hash
		}
		txn.Hash = txn.GenerateHash()

		return r.transactions.WithTrx(tx).Create(ctx, txn)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// List returns the user's most recent transactions, newest first.
func (r *Recorder) List(ctx context.Context, userID string, limit int) ([]*RewardTransaction, error) {
	opts := append([]option.QueryOption{}, newestFirst...)
	opts = append(opts, option.ApplyPagination(pagination.Pagination{Limit: limit}))
	return r.transactions.Find(ctx, &RewardTransaction{UserID: userID}, opts...)
}

func (r *Recorder) Get(ctx context.Context, id snowflake.ID) (*RewardTransaction, error) {
	return r.transactions.FindOne(ctx, &RewardTransaction{ID: id})
}

// MarkReconciled clears the reconciliation flag. The flag is not part of the hash.
func (r *Recorder) MarkReconciled(ctx context.Context, id snowflake.ID) error {
	return r.transactions.Update(ctx, id, map[string]any{
		"needs_reconciliation": false,
		"updated_at":           r.now(),
	})
}

// VerifyChain walks the user's rows from the genesis link and recomputes every
// hash. It fails when a row is altered, missing from the chain, or forked.
func (r *Recorder) VerifyChain(ctx context.Context, userID string) (bool, error) {
	rows, err := r.transactions.Find(ctx, &RewardTransaction{UserID: userID})
	if err != nil {
		return false, err
	}

	next := make(map[string]*RewardTransaction, len(rows))
	for _, row := range rows {
		if _, dup := next[row.PreviousHash]; dup {
			return false, nil
		}
		next[row.PreviousHash] = row
	}

	prev, visited := genesisHash, 0
	for {
		row, ok := next[prev]
		if !ok {
			break
		}
		if row.GenerateHash() != row.Hash {
			return false, nil
		}
		prev = row.Hash
		visited++
	}

	return visited == len(rows), nil
}
