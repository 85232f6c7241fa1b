package trust

import (
	"context"
	"fmt"
	"strings"

	"rewardgate/pkg/celengine"
	"rewardgate/pkg/featureflags"
	"rewardgate/services/catalog"
	"rewardgate/services/ledger"
	"rewardgate/services/rewardconfig"

	"go.uber.org/fx"
)

var Module = fx.Module("trust",
	fx.Provide(
		NewScorer,
		func(m *ledger.Mutator) ScoreWriter { return m },
	),
)

type ScoreWriter interface {
	RecordSuspicionScore(ctx context.Context, userID string, score int64) error
}

type Signals struct {
	UserID         string
	// OriginCount excludes the user.
	OriginCount    int64
	AvatarURL      string
	AvatarVerified bool
	DisplayName    string
}

type Result struct {
	Score       int64
	AutoApprove bool
}

type compiledRule struct {
	rule
	prg *celengine.Program
}

type Scorer struct {
	rules    []compiledRule
	profiles catalog.ProfileStore
	origins  catalog.SignupOrigins
	writer   ScoreWriter
	flags    featureflags.FeatureFlag
}

type Params struct {
	fx.In
	Profiles catalog.ProfileStore
	Origins  catalog.SignupOrigins
	Writer   ScoreWriter
	Flags    featureflags.FeatureFlag
}

func NewScorer(p Params) (*Scorer, error) {
	env, err := celengine.GetOrBuildEnv(attributes(Signals{}, 0))
	if err != nil {
		return nil, fmt.Errorf("build trust env: %w", err)
	}

	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		prg, err := celengine.Compile(env, r.Expr)
		if err != nil {
			return nil, fmt.Errorf("compile trust rule %s: %w", r.Name, err)
		}
		compiled = append(compiled, compiledRule{rule: r, prg: prg})
	}

	return &Scorer{
		rules:    compiled,
		profiles: p.Profiles,
		origins:  p.Origins,
		writer:   p.Writer,
		flags:    p.Flags,
	}, nil
}

func attributes(s Signals, displayNameMin int64) map[string]any {
	return map[string]any{
		"origin_count":     s.OriginCount,
		"avatar_url":       strings.TrimSpace(s.AvatarURL),
		"avatar_verified":  s.AvatarVerified,
		"display_name":     strings.TrimSpace(s.DisplayName),
		"display_name_min": displayNameMin,
	}
}

// Score sums the weights of the matching rules. A grant is auto-approved when
// auto-approval is enabled in config, the kill switch is not off, and the
// score is below the configured threshold.
func (s *Scorer) Score(ctx context.Context, sig Signals, cfg rewardconfig.Resolved) (Result, error) {
	attrs := attributes(sig, cfg.Value(rewardconfig.DisplayNameMinLength))

	var score int64
	for _, r := range s.rules {
		hit, err := r.prg.EvalBool(attrs)
		if err != nil {
			return Result{}, fmt.Errorf("evaluate trust rule %s: %w", r.Name, err)
		}
		if hit {
			score += r.Weight
		}
	}

	enabled := cfg.Value(rewardconfig.AutoApproveEnabled) != 0 &&
		s.flags.IsEnabled(ctx, featureflags.RewardAutoApprove, sig.UserID, true)

	return Result{
		Score:       score,
		AutoApprove: enabled && score < cfg.Value(rewardconfig.AutoApproveThreshold),
	}, nil
}

// Evaluate loads the user's signals and scores them. A user without a profile
// scores as if every profile signal were missing.
func (s *Scorer) Evaluate(ctx context.Context, userID string, cfg rewardconfig.Resolved) (Result, error) {
	sig, err := s.signals(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	return s.Score(ctx, sig, cfg)
}

func (s *Scorer) signals(ctx context.Context, userID string) (Signals, error) {
	sig := Signals{UserID: userID}

	profile, err := s.profiles.Profile(ctx, userID)
	if err != nil {
		return Signals{}, fmt.Errorf("load profile: %w", err)
	}
	if profile == nil {
		return sig, nil
	}

	sig.AvatarURL = profile.AvatarURL
	sig.AvatarVerified = profile.AvatarVerified
	sig.DisplayName = profile.DisplayName

	if profile.SignupOriginHash != "" {
		sig.OriginCount, err = s.origins.CountOthersByOrigin(ctx, profile.SignupOriginHash, userID)
		if err != nil {
			return Signals{}, fmt.Errorf("count signup origin: %w", err)
		}
	}
	return sig, nil
}

// Record persists the score on the user's reward account for review.
func (s *Scorer) Record(ctx context.Context, userID string, r Result) error {
	return s.writer.RecordSuspicionScore(ctx, userID, r.Score)
}
