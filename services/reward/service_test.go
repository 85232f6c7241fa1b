package reward

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"rewardgate/pkg/featureflags"
	"rewardgate/pkg/taskname"
	"rewardgate/services/antifraud"
	"rewardgate/services/catalog"
	"rewardgate/services/identity"
	"rewardgate/services/ledger"
	"rewardgate/services/quota"
	"rewardgate/services/rewardconfig"
	"rewardgate/services/testutil"
	"rewardgate/services/transaction"
	"rewardgate/services/trust"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type enqueueStub struct {
	mu    sync.Mutex
	tasks []*asynq.Task
}

func (e *enqueueStub) Enqueue(_ context.Context, t *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tasks = append(e.tasks, t)
	return &asynq.TaskInfo{Type: t.Type()}, nil
}

func (e *enqueueStub) ofType(name string) []*asynq.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []*asynq.Task
	for _, t := range e.tasks {
		if t.Type() == name {
			out = append(out, t)
		}
	}
	return out
}

type harness struct {
	db       *gorm.DB
	svc      *Service
	worker   *Worker
	recorder *transaction.Recorder
	ledger   *ledger.Mutator
	quota    *quota.Enforcer
	enqueuer *enqueueStub
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	models := []any{
		&rewardconfig.RewardConfigEntry{},
		&quota.DailyLimitRecord{},
		&transaction.RewardTransaction{},
		&antifraud.ActivityLog{},
	}
	models = append(models, ledger.Models()...)
	models = append(models, catalog.Models()...)
	db := testutil.NewTestDB(t, models...)

	node := testutil.NewTestNode(t)

	store := catalog.NewStore(catalog.Params{DB: db})
	resolver := rewardconfig.NewResolver(rewardconfig.Params{DB: db})
	mutator := ledger.NewMutator(ledger.Params{DB: db, Node: node})
	enforcer := quota.NewEnforcer(quota.Params{DB: db, Node: node})
	recorder := transaction.NewRecorder(transaction.Params{DB: db, Node: node, Quota: enforcer})
	gate := antifraud.NewGate(antifraud.Params{DB: db, Node: node, Videos: store, Comments: store})
	scorer, err := trust.NewScorer(trust.Params{Profiles: store, Origins: store, Writer: mutator, Flags: featureflags.Static{}})
	require.NoError(t, err)

	enq := &enqueueStub{}
	return &harness{
		db: db,
		svc: NewService(Params{
			Config:   resolver,
			Fraud:    gate,
			Quota:    enforcer,
			Trust:    scorer,
			Ledger:   mutator,
			Recorder: recorder,
			Enqueuer: enq,
		}),
		worker:   NewWorker(WorkerParams{Config: resolver, Videos: store, Ledger: mutator, Recorder: recorder}),
		recorder: recorder,
		ledger:   mutator,
		quota:    enforcer,
		enqueuer: enq,
	}
}

// trusted seeds a profile that scores zero, so grants are auto-approved.
func (h *harness) trusted(t *testing.T, userID string) identity.Identity {
	t.Helper()
	require.NoError(t, h.db.Create(&catalog.UserProfile{
		UserID:           userID,
		AvatarURL:        "https://cdn.example/" + userID + ".png",
		AvatarVerified:   true,
		DisplayName:      "user " + userID,
		SignupOriginHash: "origin-" + userID,
	}).Error)
	return identity.Identity{AccountID: userID}
}

func (h *harness) setConfig(t *testing.T, key, value string) {
	t.Helper()
	require.NoError(t, h.db.Create(&rewardconfig.RewardConfigEntry{Key: key, Value: value}).Error)
}

func (h *harness) video(t *testing.T, id string, seconds *int64) {
	t.Helper()
	require.NoError(t, h.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&catalog.Video{ID: id, DurationSeconds: seconds}).Error)
}

func (h *harness) grant(t *testing.T, id identity.Identity, typ rewardconfig.ActionType, videoID string) Response {
	t.Helper()
	resp, err := h.svc.Grant(context.Background(), id, typ, GrantRequest{Type: string(typ), VideoID: videoID})
	require.NoError(t, err)
	return resp
}

func (h *harness) requireInvariant(t *testing.T, userID string) {
	t.Helper()
	acc, err := h.ledger.Account(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, acc)
	require.Equal(t, acc.TotalRewards, acc.PendingRewards+acc.ApprovedReward)
}

func seconds(n int64) *int64 { return &n }

func TestFirstLikeThenDuplicate(t *testing.T) {
	h := newHarness(t)
	u1 := h.trusted(t, "U1")

	resp := h.grant(t, u1, rewardconfig.ActionLike, "V1")
	require.True(t, resp.Success)
	require.EqualValues(t, 2000, resp.Amount)
	require.EqualValues(t, 2000, resp.NewTotal)
	require.True(t, resp.AutoApproved)
	require.EqualValues(t, 2000, resp.ApprovedRewards)
	require.NotNil(t, resp.Milestone)
	require.EqualValues(t, 10, *resp.Milestone)

	var markers int64
	require.NoError(t, h.db.Model(&ledger.RewardActionMarker{}).
		Where("user_id = ? AND video_id = ? AND action = ?", "U1", "V1", "LIKE").
		Count(&markers).Error)
	require.EqualValues(t, 1, markers)

	resp = h.grant(t, u1, rewardconfig.ActionLike, "V1")
	require.False(t, resp.Success)
	require.Equal(t, antifraud.ReasonAlreadyRewarded, resp.Reason)
	require.Zero(t, resp.Amount)
	require.EqualValues(t, 2000, resp.NewTotal)
	require.EqualValues(t, 2000, resp.ApprovedRewards)
	require.Zero(t, resp.PendingRewards)

	rows, err := h.recorder.List(context.Background(), "U1", 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	h.requireInvariant(t, "U1")
}

func TestShortCommentRejected(t *testing.T) {
	h := newHarness(t)
	u1 := h.trusted(t, "U1")
	require.NoError(t, h.db.Create(&catalog.Comment{ID: "c1", UserID: "U1", VideoID: "V1", Content: "nice video", CreatedAt: time.Now()}).Error)

	resp := h.grant(t, u1, rewardconfig.ActionComment, "V1")
	require.False(t, resp.Success)
	require.Contains(t, resp.Reason, "20")

	acc, err := h.ledger.Account(context.Background(), "U1")
	require.NoError(t, err)
	require.Nil(t, acc)
}

func TestUploadReclassifiedByDuration(t *testing.T) {
	h := newHarness(t)
	u1 := h.trusted(t, "U1")
	h.video(t, "V240", seconds(240))

	resp := h.grant(t, u1, rewardconfig.ActionUpload, "V240")
	require.True(t, resp.Success)
	require.Equal(t, rewardconfig.ActionLongVideoUpload, resp.Type)
	require.EqualValues(t, 25000, resp.Amount)

	// a second claim with another upload type is the same upload
	resp = h.grant(t, u1, rewardconfig.ActionShortVideoUpload, "V240")
	require.False(t, resp.Success)
	require.Equal(t, ReasonAlreadyRewarded, resp.Reason)

	rec, err := h.quota.Today(context.Background(), "U1", time.Now())
	require.NoError(t, err)
	require.EqualValues(t, 1, rec.LongVideoCount)
	require.EqualValues(t, 1, rec.UploadsCount)
}

func TestReclassificationIgnoresClaimedType(t *testing.T) {
	for _, claimed := range []rewardconfig.ActionType{
		rewardconfig.ActionUpload,
		rewardconfig.ActionShortVideoUpload,
		rewardconfig.ActionLongVideoUpload,
	} {
		t.Run(string(claimed), func(t *testing.T) {
			h := newHarness(t)
			u := h.trusted(t, "U1")
			h.video(t, "V400", seconds(400))
			h.video(t, "V30", seconds(30))

			resp := h.grant(t, u, claimed, "V400")
			require.Equal(t, rewardconfig.ActionLongVideoUpload, resp.Type)
			require.EqualValues(t, 25000, resp.Amount)

			resp = h.grant(t, u, claimed, "V30")
			require.Equal(t, rewardconfig.ActionShortVideoUpload, resp.Type)
			require.EqualValues(t, 10000, resp.Amount)
		})
	}
}

func TestMilestoneCrossing(t *testing.T) {
	h := newHarness(t)
	u1 := h.trusted(t, "U1")
	h.setConfig(t, "share_reward", "5000")
	require.NoError(t, h.db.Create(&ledger.RewardAccount{
		ID: "a1", UserID: "U1", TotalRewards: 98000, ApprovedReward: 98000,
	}).Error)

	resp := h.grant(t, u1, rewardconfig.ActionShare, "V1")
	require.True(t, resp.Success)
	require.EqualValues(t, 103000, resp.NewTotal)
	require.NotNil(t, resp.Milestone)
	require.EqualValues(t, 100000, *resp.Milestone)

	resp = h.grant(t, u1, rewardconfig.ActionShare, "V2")
	require.True(t, resp.Success)
	require.Nil(t, resp.Milestone)
}

func TestBannedAccount(t *testing.T) {
	h := newHarness(t)
	h.trusted(t, "U1")

	for _, typ := range []rewardconfig.ActionType{rewardconfig.ActionLike, rewardconfig.ActionSignup, rewardconfig.ActionUpload} {
		resp := h.grant(t, identity.Identity{AccountID: "U1", Banned: true}, typ, "V1")
		require.False(t, resp.Success)
		require.Equal(t, ReasonSuspended, resp.Reason)
		require.Zero(t, resp.Amount)
	}

	acc, err := h.ledger.Account(context.Background(), "U1")
	require.NoError(t, err)
	require.Nil(t, acc)
}

func TestDailyCountLimit(t *testing.T) {
	h := newHarness(t)
	u1 := h.trusted(t, "U1")
	h.setConfig(t, "daily_share_limit", "3")

	for _, v := range []string{"V1", "V2", "V3"} {
		require.True(t, h.grant(t, u1, rewardconfig.ActionShare, v).Success)
	}

	resp := h.grant(t, u1, rewardconfig.ActionShare, "V4")
	require.False(t, resp.Success)
	require.Equal(t, "Daily share limit reached", resp.Reason)

	// other actions keep their own ceiling
	require.True(t, h.grant(t, u1, rewardconfig.ActionLike, "V4").Success)
}

func TestViewCooldownAfterRejectedView(t *testing.T) {
	h := newHarness(t)
	u1 := h.trusted(t, "U1")
	h.setConfig(t, "daily_view_limit", "1")

	require.True(t, h.grant(t, u1, rewardconfig.ActionView, "V1").Success)

	resp := h.grant(t, u1, rewardconfig.ActionView, "V2")
	require.False(t, resp.Success)
	require.Equal(t, "Daily view limit reached", resp.Reason)

	// V2 was never rewarded, so only the cooldown stops the reload
	resp = h.grant(t, u1, rewardconfig.ActionView, "V2")
	require.False(t, resp.Success)
	require.Equal(t, antifraud.ReasonViewCooldown, resp.Reason)

	var markers int64
	require.NoError(t, h.db.Model(&ledger.RewardActionMarker{}).
		Where("user_id = ? AND video_id = ?", "U1", "V2").
		Count(&markers).Error)
	require.Zero(t, markers)
}

func TestGlobalCapRejectsInFull(t *testing.T) {
	h := newHarness(t)
	u1 := h.trusted(t, "U1")
	h.setConfig(t, "global_daily_cap", "5000")

	require.True(t, h.grant(t, u1, rewardconfig.ActionLike, "V1").Success)
	require.True(t, h.grant(t, u1, rewardconfig.ActionLike, "V2").Success)

	resp := h.grant(t, u1, rewardconfig.ActionLike, "V3")
	require.False(t, resp.Success)
	require.Equal(t, quota.ReasonGlobalCap, resp.Reason)

	rec, err := h.quota.Today(context.Background(), "U1", time.Now())
	require.NoError(t, err)
	require.EqualValues(t, 4000, rec.EarnedTotal())
}

func TestOneTimeActions(t *testing.T) {
	h := newHarness(t)
	u1 := h.trusted(t, "U1")

	resp := h.grant(t, u1, rewardconfig.ActionSignup, "")
	require.True(t, resp.Success)
	require.EqualValues(t, 100000, resp.Amount)

	// a video id does not make it repeatable
	resp = h.grant(t, u1, rewardconfig.ActionSignup, "V1")
	require.False(t, resp.Success)
	require.Equal(t, ReasonAlreadyRewarded, resp.Reason)
}

func TestDisabledAction(t *testing.T) {
	h := newHarness(t)
	u1 := h.trusted(t, "U1")
	h.setConfig(t, "view_reward", "0")

	resp := h.grant(t, u1, rewardconfig.ActionView, "V1")
	require.False(t, resp.Success)
	require.Equal(t, ReasonDisabled, resp.Reason)
}

func TestUntrustedGrantIsPending(t *testing.T) {
	h := newHarness(t)
	stranger := identity.Identity{AccountID: "U9"}

	resp := h.grant(t, stranger, rewardconfig.ActionLike, "V1")
	require.True(t, resp.Success)
	require.False(t, resp.AutoApproved)
	require.EqualValues(t, 2000, resp.PendingRewards)
	require.Zero(t, resp.ApprovedRewards)

	acc, err := h.ledger.Account(context.Background(), "U9")
	require.NoError(t, err)
	require.EqualValues(t, 3, acc.SuspiciousScore)
	h.requireInvariant(t, "U9")

	tasks := h.enqueuer.ofType(taskname.RewardPendingReview)
	require.Len(t, tasks, 1)
	require.NoError(t, h.worker.HandlePendingReview(context.Background(), tasks[0]))
}

func TestSharedSignupOriginExcludesCaller(t *testing.T) {
	tests := []struct {
		name     string
		accounts int
		score    int64
		approved bool
	}{
		{"three accounts", 3, 0, true},
		{"six accounts", 6, 1, true},
		{"seven accounts", 7, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			for i := 0; i < tt.accounts; i++ {
				userID := fmt.Sprintf("P%d", i)
				require.NoError(t, h.db.Create(&catalog.UserProfile{
					UserID:           userID,
					AvatarURL:        "https://cdn.example/" + userID + ".png",
					AvatarVerified:   true,
					DisplayName:      "user " + userID,
					SignupOriginHash: "shared",
				}).Error)
			}

			resp := h.grant(t, identity.Identity{AccountID: "P0"}, rewardconfig.ActionLike, "V1")
			require.True(t, resp.Success)
			require.Equal(t, tt.approved, resp.AutoApproved)

			acc, err := h.ledger.Account(context.Background(), "P0")
			require.NoError(t, err)
			require.Equal(t, tt.score, acc.SuspiciousScore)
		})
	}
}

func TestConcurrentIdenticalRequests(t *testing.T) {
	h := newHarness(t)
	u1 := h.trusted(t, "U1")

	const k = 10
	results := make([]Response, k)
	var wg sync.WaitGroup
	for i := 0; i < k; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := h.svc.Grant(context.Background(), u1, rewardconfig.ActionLike, GrantRequest{Type: "LIKE", VideoID: "V1"})
			if err == nil {
				results[i] = resp
			}
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, r := range results {
		if r.Success {
			successes++
		} else {
			require.Contains(t, []string{ReasonAlreadyRewarded, antifraud.ReasonAlreadyRewarded}, r.Reason)
		}
	}
	require.Equal(t, 1, successes)

	acc, err := h.ledger.Account(context.Background(), "U1")
	require.NoError(t, err)
	require.EqualValues(t, 2000, acc.TotalRewards)
}

func TestUnknownDurationIsReconciled(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u1 := h.trusted(t, "U1")
	h.video(t, "V1", nil)

	resp := h.grant(t, u1, rewardconfig.ActionLongVideoUpload, "V1")
	require.True(t, resp.Success)
	require.Equal(t, rewardconfig.ActionShortVideoUpload, resp.Type)
	require.EqualValues(t, 10000, resp.Amount)

	tasks := h.enqueuer.ofType(taskname.RewardReconcileUpload)
	require.Len(t, tasks, 1)

	var payload ReconcileUploadPayload
	require.NoError(t, json.Unmarshal(tasks[0].Payload(), &payload))
	txn, err := h.recorder.Get(ctx, payload.TransactionID)
	require.NoError(t, err)
	require.True(t, txn.NeedsReconciliation)

	require.ErrorIs(t, h.worker.HandleReconcileUpload(ctx, tasks[0]), ErrDurationUnknown)

	h.video(t, "V1", seconds(600))
	require.NoError(t, h.worker.HandleReconcileUpload(ctx, tasks[0]))

	acc, err := h.ledger.Account(ctx, "U1")
	require.NoError(t, err)
	require.EqualValues(t, 25000, acc.TotalRewards)
	h.requireInvariant(t, "U1")

	txn, err = h.recorder.Get(ctx, payload.TransactionID)
	require.NoError(t, err)
	require.False(t, txn.NeedsReconciliation)

	// replays are no-ops
	require.NoError(t, h.worker.HandleReconcileUpload(ctx, tasks[0]))
	acc, err = h.ledger.Account(ctx, "U1")
	require.NoError(t, err)
	require.EqualValues(t, 25000, acc.TotalRewards)

	ok, err := h.recorder.VerifyChain(ctx, "U1")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestReconcileShortVideoKeepsAmount(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u1 := h.trusted(t, "U1")
	h.video(t, "V1", nil)

	h.grant(t, u1, rewardconfig.ActionUpload, "V1")
	tasks := h.enqueuer.ofType(taskname.RewardReconcileUpload)
	require.Len(t, tasks, 1)

	h.video(t, "V1", seconds(42))
	require.NoError(t, h.worker.HandleReconcileUpload(ctx, tasks[0]))

	acc, err := h.ledger.Account(ctx, "U1")
	require.NoError(t, err)
	require.EqualValues(t, 10000, acc.TotalRewards)
}
