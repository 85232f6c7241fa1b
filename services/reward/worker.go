package reward

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"rewardgate/pkg/taskname"
	"rewardgate/services/antifraud"
	"rewardgate/services/catalog"
	"rewardgate/services/ledger"
	"rewardgate/services/quota"
	"rewardgate/services/rewardconfig"
	"rewardgate/services/transaction"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// AdjustmentAction is the marker action of the long-upload top-up, so each
// upload is adjusted at most once.
const AdjustmentAction = "LONG_VIDEO_UPLOAD_ADJUSTMENT"

var ErrDurationUnknown = errors.New("video duration still unknown")

type Worker struct {
	config   ConfigSource
	videos   catalog.VideoCatalog
	ledger   *ledger.Mutator
	recorder *transaction.Recorder
}

type WorkerParams struct {
	fx.In
	Config   ConfigSource
	Videos   catalog.VideoCatalog
	Ledger   *ledger.Mutator
	Recorder *transaction.Recorder
}

func NewWorker(p WorkerParams) *Worker {
	return &Worker{
		config:   p.Config,
		videos:   p.Videos,
		ledger:   p.Ledger,
		recorder: p.Recorder,
	}
}

func (w *Worker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(taskname.RewardReconcileUpload, w.HandleReconcileUpload)
	mux.HandleFunc(taskname.RewardPendingReview, w.HandlePendingReview)
}

// HandleReconcileUpload settles an upload that was rewarded as short while its
// duration was unknown. An error makes asynq retry the task later.
func (w *Worker) HandleReconcileUpload(ctx context.Context, t *asynq.Task) error {
	var payload ReconcileUploadPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid payload: %w: %w", err, asynq.SkipRetry)
	}

	log := zap.L().With(
		zap.String("task_type", t.Type()),
		zap.String("transaction_id", payload.TransactionID.String()),
		zap.String("user_id", payload.UserID),
	)

	txn, err := w.recorder.Get(ctx, payload.TransactionID)
	if err != nil {
		return err
	}
	if txn == nil || !txn.NeedsReconciliation {
		log.Info("nothing to reconcile")
		return nil
	}

	seconds, known, err := w.videos.Duration(ctx, txn.VideoID)
	if err != nil {
		return err
	}
	if !known {
		return ErrDurationUnknown
	}

	cfg := w.config.Resolve(ctx)
	effective, _ := antifraud.Classify(seconds, true, cfg.Value(rewardconfig.LongVideoThresholdSeconds))

	if diff := cfg.Amount(effective) - txn.Amount; effective == rewardconfig.ActionLongVideoUpload && diff > 0 {
		if err := w.adjust(ctx, txn, diff); err != nil {
			return err
		}
		log.Info("upload reclassified as long", zap.Int64("adjustment", diff))
	}

	return w.recorder.MarkReconciled(ctx, txn.ID)
}

func (w *Worker) adjust(ctx context.Context, txn *transaction.RewardTransaction, diff int64) error {
	snap, err := w.ledger.Grant(ctx, ledger.GrantParams{
		UserID:       txn.UserID,
		VideoID:      txn.VideoID,
		MarkerAction: AdjustmentAction,
		Amount:       diff,
		AutoApprove:  txn.ApprovalState == ledger.ApprovalApproved,
	})
	if errors.Is(err, ledger.ErrAlreadyRewarded) {
		return nil
	}
	if err != nil {
		return err
	}

	_, err = w.recorder.Record(ctx, transaction.Entry{
		UserID:        txn.UserID,
		VideoID:       txn.VideoID,
		EffectiveType: rewardconfig.ActionLongVideoUpload,
		Amount:        diff,
		State:         snap.State,
		Day:           quota.Day(txn.CreatedAt),
		SkipQuota:     true,
		Metadata: map[string]any{
			"adjusts": txn.ID.String(),
			"reason":  AdjustmentAction,
		},
	})
	if err != nil {
		// the balance is already adjusted; a retry would only hit the marker
		zap.L().Error("failed to record adjustment", zap.String("transaction_id", txn.ID.String()), zap.Error(err))
	}
	return nil
}

// HandlePendingReview surfaces a held grant to the review tooling, which
// consumes these log lines.
func (w *Worker) HandlePendingReview(ctx context.Context, t *asynq.Task) error {
	var payload PendingReviewPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid payload: %w: %w", err, asynq.SkipRetry)
	}

	txn, err := w.recorder.Get(ctx, payload.TransactionID)
	if err != nil {
		return err
	}
	if txn == nil || txn.ApprovalState != ledger.ApprovalPending {
		return nil
	}

	zap.L().Info("reward awaiting review",
		zap.String("task_type", t.Type()),
		zap.String("transaction_id", txn.ID.String()),
		zap.String("user_id", txn.UserID),
		zap.String("reward_type", txn.RewardType),
		zap.Int64("amount", txn.Amount),
		zap.Int64("trust_score", payload.TrustScore),
	)
	return nil
}
