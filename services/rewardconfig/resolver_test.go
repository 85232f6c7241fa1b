package rewardconfig

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"rewardgate/pkg/db/option"
	"rewardgate/pkg/repository"
	"rewardgate/services/testutil"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type entryRepo struct {
	repository.Repository[RewardConfigEntry]
	findFn func(ctx context.Context) ([]*RewardConfigEntry, error)
}

func (m *entryRepo) WithTrx(tx *gorm.DB) repository.Repository[RewardConfigEntry] { return m }

func (m *entryRepo) Find(ctx context.Context, _ *RewardConfigEntry, _ ...option.QueryOption) ([]*RewardConfigEntry, error) {
	return m.findFn(ctx)
}

func TestResolveDefaultsOnEmptyTable(t *testing.T) {
	db := testutil.NewTestDB(t, &RewardConfigEntry{})
	r := NewResolver(Params{DB: db})

	got := r.Resolve(context.Background())
	require.Equal(t, Defaults(), got)
	require.Equal(t, int64(2000), got.Amount(ActionLike))
	require.Equal(t, int64(50), got.Limit(LimitView))
	require.Equal(t, int64(500000), got.Value(GlobalDailyCap))
}

func TestResolveDefaultsOnStorageFailure(t *testing.T) {
	r := &Resolver{entries: &entryRepo{findFn: func(context.Context) ([]*RewardConfigEntry, error) {
		return nil, errors.New("connection refused")
	}}}

	require.Equal(t, Defaults(), r.Resolve(context.Background()))
}

func TestResolveMergesOverrides(t *testing.T) {
	db := testutil.NewTestDB(t, &RewardConfigEntry{})
	require.NoError(t, db.Create([]*RewardConfigEntry{
		{Key: "like_reward", Value: "2500"},
		{Key: "daily_view_limit", Value: " 10 "},
		{Key: "comment_min_length", Value: "30"},
		{Key: "unknown_key", Value: "1"},
		{Key: "share_reward", Value: "lots"},
	}).Error)

	got := NewResolver(Params{DB: db}).Resolve(context.Background())
	require.Equal(t, int64(2500), got.Amount(ActionLike))
	require.Equal(t, int64(10), got.Limit(LimitView))
	require.Equal(t, int64(30), got.Value(CommentMinLength))
	require.Equal(t, int64(2500), got.Amount(ActionShare))
	require.Len(t, got.Amounts, len(ActionTypes))
}

func TestResolveReturnsIndependentMaps(t *testing.T) {
	r := &Resolver{entries: &entryRepo{findFn: func(context.Context) ([]*RewardConfigEntry, error) {
		return nil, nil
	}}}

	a := r.Resolve(context.Background())
	a.Amounts[ActionView] = 1
	b := r.Resolve(context.Background())
	require.Equal(t, int64(500), b.Amount(ActionView))
}

func TestResolveCoalescesConcurrentCalls(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	r := &Resolver{entries: &entryRepo{findFn: func(context.Context) ([]*RewardConfigEntry, error) {
		calls.Add(1)
		<-release
		return []*RewardConfigEntry{{Key: "view_reward", Value: "700"}}, nil
	}}}

	var wg sync.WaitGroup
	results := make([]Resolved, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Resolve(context.Background())
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	require.LessOrEqual(t, calls.Load(), int32(8))
	require.GreaterOrEqual(t, calls.Load(), int32(1))
	for _, res := range results {
		require.Equal(t, int64(700), res.Amount(ActionView))
	}
}

func TestParseActionType(t *testing.T) {
	a, ok := ParseActionType(" like ")
	require.True(t, ok)
	require.Equal(t, ActionLike, a)

	_, ok = ParseActionType("DISLIKE")
	require.False(t, ok)
}

func TestLimitKeys(t *testing.T) {
	require.Equal(t, []LimitKey{LimitLongVideo, LimitUploads}, LimitKeys(ActionLongVideoUpload))
	require.Nil(t, LimitKeys(ActionSignup))
}

func TestDefaultEntriesRoundTrip(t *testing.T) {
	entries := DefaultEntries()
	require.Len(t, entries, len(ActionTypes)+len(defaultLimits)+len(defaultValidation))
	require.Equal(t, Defaults(), Merge(Defaults(), entries))
}

func TestMarkerAction(t *testing.T) {
	require.Equal(t, "LIKE", ActionLike.MarkerAction("v1"))
	require.Equal(t, "UPLOAD", ActionLongVideoUpload.MarkerAction("v1"))
	require.Equal(t, "UPLOAD", ActionShortVideoUpload.MarkerAction("v1"))
	require.Equal(t, "", ActionUpload.MarkerAction(""))
	require.Equal(t, "SIGNUP", ActionSignup.MarkerAction(""))
	require.Equal(t, "SIGNUP", ActionSignup.MarkerAction("v1"))
}
