package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"rewardgate/services/testutil"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newMutator(t *testing.T) *Mutator {
	t.Helper()
	db := testutil.NewTestDB(t, Models()...)
	node := testutil.NewTestNode(t)
	return NewMutator(Params{DB: db, Node: node})
}

func TestGrantCreatesAccount(t *testing.T) {
	m := newMutator(t)

	snap, err := m.Grant(context.Background(), GrantParams{
		UserID: "u1", VideoID: "v1", MarkerAction: "LIKE", Amount: 2000, AutoApprove: true,
	})
	require.NoError(t, err)
	require.Equal(t, Snapshot{UserID: "u1", Total: 2000, Approved: 2000, State: ApprovalApproved}, snap)

	acct, err := m.Account(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, acct)
	require.Equal(t, int64(2000), acct.TotalRewards)
}

func TestGrantRejectsDuplicateMarker(t *testing.T) {
	m := newMutator(t)
	ctx := context.Background()
	p := GrantParams{UserID: "u1", VideoID: "v1", MarkerAction: "LIKE", Amount: 2000, AutoApprove: true}

	_, err := m.Grant(ctx, p)
	require.NoError(t, err)

	_, err = m.Grant(ctx, p)
	require.ErrorIs(t, err, ErrAlreadyRewarded)

	acct, err := m.Account(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, int64(2000), acct.TotalRewards)

	// same video, different action is a different key
	_, err = m.Grant(ctx, GrantParams{UserID: "u1", VideoID: "v1", MarkerAction: "SHARE", Amount: 2500})
	require.NoError(t, err)
}

func TestGrantWithoutMarkerIsRepeatable(t *testing.T) {
	m := newMutator(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := m.Grant(ctx, GrantParams{UserID: "u1", Amount: 10000})
		require.NoError(t, err)
	}

	acct, err := m.Account(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, int64(30000), acct.TotalRewards)
	require.Equal(t, int64(30000), acct.PendingRewards)
}

func TestGrantKeepsBalanceInvariant(t *testing.T) {
	m := newMutator(t)
	ctx := context.Background()

	amounts := []int64{500, 2000, 3000, 2500, 10000, 25000}
	var last Snapshot
	for i, amt := range amounts {
		var err error
		last, err = m.Grant(ctx, GrantParams{UserID: "u1", Amount: amt, AutoApprove: i%2 == 0})
		require.NoError(t, err)
		require.Equal(t, last.Total, last.Pending+last.Approved)
	}

	require.Equal(t, int64(43000), last.Total)
	require.Equal(t, int64(500+3000+10000), last.Approved)
	require.Equal(t, int64(2000+2500+25000), last.Pending)
}

func TestGrantRejectsNonPositiveAmount(t *testing.T) {
	m := newMutator(t)

	_, err := m.Grant(context.Background(), GrantParams{UserID: "u1", Amount: 0})
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestGrantConcurrentSameActionSucceedsOnce(t *testing.T) {
	m := newMutator(t)
	ctx := context.Background()

	const k = 12
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		dupes     int
	)
	for i := 0; i < k; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Grant(ctx, GrantParams{UserID: "u1", VideoID: "v1", MarkerAction: "LIKE", Amount: 2000, AutoApprove: true})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrAlreadyRewarded):
				dupes++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, successes)
	require.Equal(t, k-1, dupes)

	acct, err := m.Account(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, int64(2000), acct.TotalRewards)
}

func TestRecordSuspicionScore(t *testing.T) {
	m := newMutator(t)
	ctx := context.Background()

	require.NoError(t, m.RecordSuspicionScore(ctx, "u1", 4))
	acct, err := m.Account(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, int64(4), acct.SuspiciousScore)
	require.Zero(t, acct.TotalRewards)

	_, err = m.Grant(ctx, GrantParams{UserID: "u1", Amount: 500})
	require.NoError(t, err)
	require.NoError(t, m.RecordSuspicionScore(ctx, "u1", 1))

	acct, err = m.Account(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, int64(1), acct.SuspiciousScore)
	require.Equal(t, int64(500), acct.TotalRewards)
}

func TestAccountMissing(t *testing.T) {
	m := newMutator(t)

	acct, err := m.Account(context.Background(), "nobody")
	require.NoError(t, err)
	require.Nil(t, acct)
}
