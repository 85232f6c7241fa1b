package trust

import (
	"context"
	"errors"
	"testing"

	"rewardgate/pkg/featureflags"
	"rewardgate/services/catalog"
	"rewardgate/services/catalog/mocks"
	"rewardgate/services/rewardconfig"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type scoreSink map[string]int64

func (s scoreSink) RecordSuspicionScore(_ context.Context, userID string, score int64) error {
	s[userID] = score
	return nil
}

func newScorer(t *testing.T, flags featureflags.FeatureFlag) (*Scorer, *mocks.MockProfileStore, *mocks.MockSignupOrigins, scoreSink) {
	t.Helper()
	ctrl := gomock.NewController(t)
	profiles := mocks.NewMockProfileStore(ctrl)
	origins := mocks.NewMockSignupOrigins(ctrl)
	sink := scoreSink{}

	s, err := NewScorer(Params{Profiles: profiles, Origins: origins, Writer: sink, Flags: flags})
	require.NoError(t, err)
	return s, profiles, origins, sink
}

func trusted() Signals {
	return Signals{
		UserID:         "u1",
		OriginCount:    0,
		AvatarURL:      "https://cdn/a.png",
		AvatarVerified: true,
		DisplayName:    "alice",
	}
}

func TestScore(t *testing.T) {
	s, _, _, _ := newScorer(t, featureflags.Static{})
	cfg := rewardconfig.Defaults()

	tests := []struct {
		name    string
		mutate  func(*Signals)
		score   int64
		approve bool
	}{
		{"trusted", func(*Signals) {}, 0, true},
		{"two others share origin", func(s *Signals) { s.OriginCount = 2 }, 0, true},
		{"origin reused a few times", func(s *Signals) { s.OriginCount = 3 }, 1, true},
		{"five others share origin", func(s *Signals) { s.OriginCount = 5 }, 1, true},
		{"origin farm", func(s *Signals) { s.OriginCount = 6 }, 3, false},
		{"missing avatar", func(s *Signals) { s.AvatarURL = " " }, 1, true},
		{"unverified avatar", func(s *Signals) { s.AvatarVerified = false }, 1, true},
		{"short name", func(s *Signals) { s.DisplayName = "al" }, 1, true},
		{"no name", func(s *Signals) { s.DisplayName = "" }, 1, true},
		{"empty profile", func(s *Signals) { *s = Signals{UserID: "u1"} }, 3, false},
		{"origin farm with bare profile", func(s *Signals) { *s = Signals{UserID: "u1", OriginCount: 9} }, 6, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := trusted()
			tt.mutate(&sig)

			r, err := s.Score(context.Background(), sig, cfg)
			require.NoError(t, err)
			require.Equal(t, tt.score, r.Score)
			require.Equal(t, tt.approve, r.AutoApprove)
		})
	}
}

func TestScoreDisplayNameCountsRunes(t *testing.T) {
	s, _, _, _ := newScorer(t, featureflags.Static{})
	sig := trusted()
	sig.DisplayName = "ไทย"

	r, err := s.Score(context.Background(), sig, rewardconfig.Defaults())
	require.NoError(t, err)
	require.Zero(t, r.Score)
}

func TestAutoApproveSwitches(t *testing.T) {
	cfg := rewardconfig.Defaults()

	s, _, _, _ := newScorer(t, featureflags.Static{featureflags.RewardAutoApprove: false})
	r, err := s.Score(context.Background(), trusted(), cfg)
	require.NoError(t, err)
	require.False(t, r.AutoApprove)

	s, _, _, _ = newScorer(t, featureflags.Static{})
	cfg.Validation[rewardconfig.AutoApproveEnabled] = 0
	r, err = s.Score(context.Background(), trusted(), cfg)
	require.NoError(t, err)
	require.False(t, r.AutoApprove)
}

func TestEvaluateLoadsSignals(t *testing.T) {
	s, profiles, origins, sink := newScorer(t, featureflags.Static{})
	ctx := context.Background()

	profiles.EXPECT().Profile(gomock.Any(), "u1").Return(&catalog.Profile{
		UserID:           "u1",
		AvatarURL:        "https://cdn/a.png",
		AvatarVerified:   true,
		DisplayName:      "alice",
		SignupOriginHash: "h1",
	}, nil)
	origins.EXPECT().CountOthersByOrigin(gomock.Any(), "h1", "u1").Return(int64(7), nil)

	r, err := s.Evaluate(ctx, "u1", rewardconfig.Defaults())
	require.NoError(t, err)
	require.EqualValues(t, 3, r.Score)
	require.False(t, r.AutoApprove)

	require.NoError(t, s.Record(ctx, "u1", r))
	require.EqualValues(t, 3, sink["u1"])
}

func TestEvaluateWithoutProfile(t *testing.T) {
	s, profiles, _, _ := newScorer(t, featureflags.Static{})
	profiles.EXPECT().Profile(gomock.Any(), "u2").Return(nil, nil)

	r, err := s.Evaluate(context.Background(), "u2", rewardconfig.Defaults())
	require.NoError(t, err)
	require.EqualValues(t, 3, r.Score)
}

func TestEvaluateProfileFailure(t *testing.T) {
	s, profiles, _, _ := newScorer(t, featureflags.Static{})
	profiles.EXPECT().Profile(gomock.Any(), "u3").Return(nil, errors.New("down"))

	_, err := s.Evaluate(context.Background(), "u3", rewardconfig.Defaults())
	require.Error(t, err)
}
