package featureflags

import (
	"context"

	"rewardgate/pkg/config"

	"github.com/Flagsmith/flagsmith-go-client/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// RewardAutoApprove is a kill switch. When the flag exists and is off, every grant is held pending.
const RewardAutoApprove = "reward_auto_approve"

var Module = fx.Module("featureflags", fx.Provide(ProvideFeatureFlag))

type FeatureFlag interface {
	// IsEnabled reports the flag state for identifier, or fallback when flags are
	// not configured or cannot be fetched.
	IsEnabled(ctx context.Context, feature, identifier string, fallback bool) bool
}

type featureflag struct {
	client *flagsmith.Client
}

type FeatureParams struct {
	fx.In
	Config *config.Config
}

func ProvideFeatureFlag(p FeatureParams) FeatureFlag {
	if p.Config.Flagsmith.ApiKey == "" {
		return &featureflag{}
	}

	opts := []flagsmith.Option{
		flagsmith.WithAnalytics(),
	}
	if p.Config.Flagsmith.Addr != "" {
		opts = append(opts, flagsmith.WithBaseURL(p.Config.Flagsmith.Addr))
	}

	return &featureflag{
		client: flagsmith.NewClient(p.Config.Flagsmith.ApiKey, opts...),
	}
}

func (s *featureflag) IsEnabled(ctx context.Context, feature, identifier string, fallback bool) bool {
	if s.client == nil {
		return fallback
	}

	var (
		flags flagsmith.Flags
		err   error
	)
	if identifier != "" {
		flags, err = s.client.GetIdentityFlags(identifier, nil)
	} else {
		flags, err = s.client.GetEnvironmentFlags()
	}
	if err != nil {
		zap.L().Warn("failed to fetch feature flags", zap.String("feature", feature), zap.Error(err))
		return fallback
	}

	enabled, err := flags.IsFeatureEnabled(feature)
	if err != nil {
		return fallback
	}
	return enabled
}

// Static is a FeatureFlag with fixed answers. Unknown features return the fallback.
type Static map[string]bool

func (s Static) IsEnabled(_ context.Context, feature, _ string, fallback bool) bool {
	if v, ok := s[feature]; ok {
		return v
	}
	return fallback
}
