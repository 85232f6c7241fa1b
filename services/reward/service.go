package reward

import (
	"context"
	"errors"
	"time"

	"rewardgate/pkg/errutil"
	"rewardgate/pkg/logger"
	"rewardgate/pkg/task"
	"rewardgate/services/antifraud"
	"rewardgate/services/identity"
	"rewardgate/services/ledger"
	"rewardgate/services/milestone"
	"rewardgate/services/quota"
	"rewardgate/services/rewardconfig"
	"rewardgate/services/transaction"
	"rewardgate/services/trust"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type ConfigSource interface {
	Resolve(ctx context.Context) rewardconfig.Resolved
}

// Service runs one reward request through the gates and, when every gate
// passes, credits the account exactly once.
type Service struct {
	config   ConfigSource
	fraud    *antifraud.Gate
	quota    *quota.Enforcer
	trust    *trust.Scorer
	ledger   *ledger.Mutator
	recorder *transaction.Recorder
	enqueuer task.Enqueuer

	now func() time.Time
}

type Params struct {
	fx.In
	Config   ConfigSource
	Fraud    *antifraud.Gate
	Quota    *quota.Enforcer
	Trust    *trust.Scorer
	Ledger   *ledger.Mutator
	Recorder *transaction.Recorder
	Enqueuer task.Enqueuer `optional:"true"`
}

func NewService(p Params) *Service {
	return &Service{
		config:   p.Config,
		fraud:    p.Fraud,
		quota:    p.Quota,
		trust:    p.Trust,
		ledger:   p.Ledger,
		recorder: p.Recorder,
		enqueuer: p.Enqueuer,
		now:      time.Now,
	}
}

// Grant returns a soft rejection as a Response with Success false. An error is
// always a hard failure.
func (s *Service) Grant(ctx context.Context, id identity.Identity, t rewardconfig.ActionType, req GrantRequest) (Response, error) {
	log := logger.FromContext(ctx).With(
		zap.String("user_id", id.AccountID),
		zap.String("type", string(t)),
		zap.String("video_id", req.VideoID),
	)

	if id.Banned {
		return s.reject(ctx, id.AccountID, t, ReasonSuspended), nil
	}

	cfg := s.config.Resolve(ctx)

	fraudReq := antifraud.Request{
		UserID:      id.AccountID,
		Type:        t,
		VideoID:     req.VideoID,
		ContentHash: req.ContentHash,
		SessionID:   req.SessionID,
	}
	verdict, err := s.fraud.Check(ctx, fraudReq, cfg)
	if err != nil {
		return Response{}, err
	}
	if verdict.Rejected() {
		return s.reject(ctx, id.AccountID, t, verdict.Reason), nil
	}

	// every view that clears the gate opens the cooldown window, rewarded or not
	if t == rewardconfig.ActionView {
		s.recordAttempt(ctx, fraudReq, verdict)
	}

	effective := verdict.Effective
	amount := cfg.Amount(effective)
	if amount <= 0 {
		return s.reject(ctx, id.AccountID, effective, ReasonDisabled), nil
	}

	var (
		record *quota.DailyLimitRecord
		score  trust.Result
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		record, err = s.quota.Today(gctx, id.AccountID, s.now())
		return err
	})
	g.Go(func() error {
		var err error
		score, err = s.trust.Evaluate(gctx, id.AccountID, cfg)
		return err
	})
	if err := g.Wait(); err != nil {
		return Response{}, errutil.Unavailable("storage unavailable", err)
	}

	if d := s.quota.Check(record, effective, amount, cfg); !d.Allowed {
		return s.reject(ctx, id.AccountID, effective, d.Reason), nil
	}

	if err := s.trust.Record(ctx, id.AccountID, score); err != nil {
		log.Warn("failed to record suspicion score", zap.Error(err))
	}

	videoID := req.VideoID
	if t.IsOneTime() {
		videoID = ""
	}
	snap, err := s.ledger.Grant(ctx, ledger.GrantParams{
		UserID:       id.AccountID,
		VideoID:      videoID,
		MarkerAction: t.MarkerAction(videoID),
		Amount:       amount,
		AutoApprove:  score.AutoApprove,
	})
	if errors.Is(err, ledger.ErrAlreadyRewarded) {
		return s.reject(ctx, id.AccountID, effective, ReasonAlreadyRewarded), nil
	}
	if err != nil {
		return Response{}, errutil.Internal("failed to grant reward", err)
	}

	// from here on the grant stands; follow-up failures are only logged
	if t == rewardconfig.ActionComment {
		s.recordAttempt(ctx, fraudReq, verdict)
	}

	txn, err := s.recorder.Record(ctx, transaction.Entry{
		UserID:              id.AccountID,
		VideoID:             videoID,
		EffectiveType:       effective,
		Amount:              amount,
		State:               snap.State,
		NeedsReconciliation: verdict.NeedsReconciliation,
		Day:                 record.Day,
		Metadata: map[string]any{
			"requestedType": string(t),
			"sessionId":     req.SessionID,
			"commentLength": req.CommentLength,
			"trustScore":    score.Score,
		},
	})
	if txn != nil {
		s.followUp(ctx, txn, verdict.NeedsReconciliation, score.Score)
	} else if err != nil {
		log.Error("grant committed without transaction row", zap.Error(err))
	}

	grantsTotal.WithLabelValues(string(effective), string(snap.State)).Inc()

	resp := Response{
		Success:         true,
		NewTotal:        snap.Total,
		PendingRewards:  snap.Pending,
		ApprovedRewards: snap.Approved,
		AutoApproved:    snap.State == ledger.ApprovalApproved,
		Amount:          amount,
		Type:            effective,
	}
	if m, ok := milestone.Detect(snap.Total, amount); ok {
		resp.Milestone = &m
	}
	return resp, nil
}

func (s *Service) recordAttempt(ctx context.Context, req antifraud.Request, v antifraud.Verdict) {
	if err := s.fraud.RecordAttempt(ctx, req, v.ContentHash); err != nil {
		logger.FromContext(ctx).Warn("failed to record activity",
			zap.String("user_id", req.UserID),
			zap.String("type", string(req.Type)),
			zap.Error(err))
	}
}

// reject carries the caller's current balances so a declined grant never
// reports a zeroed total. A failed read leaves them at zero.
func (s *Service) reject(ctx context.Context, userID string, t rewardconfig.ActionType, reason string) Response {
	rejectionsTotal.WithLabelValues(reason).Inc()

	resp := rejected(t, reason)
	account, err := s.ledger.Account(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Warn("failed to load balance for rejection",
			zap.String("user_id", userID), zap.Error(err))
		return resp
	}
	if account != nil {
		resp.NewTotal = account.TotalRewards
		resp.PendingRewards = account.PendingRewards
		resp.ApprovedRewards = account.ApprovedReward
	}
	return resp
}

func (s *Service) followUp(ctx context.Context, txn *transaction.RewardTransaction, reconcile bool, trustScore int64) {
	if s.enqueuer == nil {
		return
	}
	log := logger.FromContext(ctx).With(zap.String("transaction_id", txn.ID.String()))

	var tasks []*asynq.Task
	if reconcile {
		t, err := NewReconcileUploadTask(ReconcileUploadPayload{
			TransactionID: txn.ID,
			UserID:        txn.UserID,
			VideoID:       txn.VideoID,
		})
		if err != nil {
			log.Error("failed to build reconcile task", zap.Error(err))
		} else {
			tasks = append(tasks, t)
		}
	}
	if txn.ApprovalState == ledger.ApprovalPending {
		t, err := NewPendingReviewTask(PendingReviewPayload{
			TransactionID: txn.ID,
			UserID:        txn.UserID,
			Type:          txn.RewardType,
			Amount:        txn.Amount,
			TrustScore:    trustScore,
		})
		if err != nil {
			log.Error("failed to build pending review task", zap.Error(err))
		} else {
			tasks = append(tasks, t)
		}
	}

	for _, t := range tasks {
		if _, err := s.enqueuer.Enqueue(ctx, t); err != nil {
			log.Warn("failed to enqueue follow-up", zap.String("task_type", t.Type()), zap.Error(err))
		}
	}
}

// Balance returns zeros for a user that was never credited.
func (s *Service) Balance(ctx context.Context, userID string) (Balance, error) {
	account, err := s.ledger.Account(ctx, userID)
	if err != nil {
		return Balance{}, errutil.Internal("failed to load balance", err)
	}
	b := Balance{UserID: userID}
	if account != nil {
		b.TotalRewards = account.TotalRewards
		b.PendingRewards = account.PendingRewards
		b.ApprovedRewards = account.ApprovedReward
	}
	return b, nil
}

func (s *Service) Transactions(ctx context.Context, userID string, limit int) ([]*transaction.RewardTransaction, error) {
	rows, err := s.recorder.List(ctx, userID, limit)
	if err != nil {
		return nil, errutil.Internal("failed to list transactions", err)
	}
	return rows, nil
}

func (s *Service) VerifyChain(ctx context.Context, userID string) (bool, error) {
	ok, err := s.recorder.VerifyChain(ctx, userID)
	if err != nil {
		return false, errutil.Internal("failed to verify transactions", err)
	}
	return ok, nil
}
