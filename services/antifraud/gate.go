package antifraud

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"rewardgate/pkg/db/option"
	"rewardgate/pkg/errutil"
	"rewardgate/pkg/repository"
	"rewardgate/services/catalog"
	"rewardgate/services/ledger"
	"rewardgate/services/rewardconfig"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("antifraud", fx.Provide(NewGate))

type Gate struct {
	logs    repository.Repository[ActivityLog]
	markers repository.Repository[ledger.RewardActionMarker]
	node    *snowflake.Node

	videos   catalog.VideoCatalog
	comments catalog.CommentStore

	now func() time.Time
}

type Params struct {
	fx.In
	DB       *gorm.DB
	Node     *snowflake.Node
	Videos   catalog.VideoCatalog
	Comments catalog.CommentStore
}

func NewGate(p Params) *Gate {
	return &Gate{
		logs:     repository.ProvideStore[ActivityLog](p.DB),
		markers:  repository.ProvideStore[ledger.RewardActionMarker](p.DB),
		node:     p.Node,
		videos:   p.Videos,
		comments: p.Comments,
		now:      time.Now,
	}
}

func unavailable(err error) error {
	return errutil.Unavailable("storage unavailable", err)
}

// Check runs the behavioral checks for req. Business outcomes come back as a
// rejected Verdict; an error means a collaborator could not be reached.
func (g *Gate) Check(ctx context.Context, req Request, cfg rewardconfig.Resolved) (Verdict, error) {
	v := Verdict{Effective: req.Type, ContentHash: req.ContentHash}
	now := g.now().UTC()

	if req.Type == rewardconfig.ActionView && req.VideoID != "" {
		window := time.Duration(cfg.Value(rewardconfig.ViewCooldownSeconds)) * time.Second
		recent, err := g.hasLog(ctx, &ActivityLog{UserID: req.UserID, VideoID: req.VideoID, Kind: KindView}, now.Add(-window))
		if err != nil {
			return Verdict{}, unavailable(err)
		}
		if recent {
			return Verdict{Reason: ReasonViewCooldown}, nil
		}
	}

	if req.Type == rewardconfig.ActionComment {
		reason, hash, err := g.checkComment(ctx, req, cfg, now)
		if err != nil {
			return Verdict{}, unavailable(err)
		}
		if reason != "" {
			return Verdict{Reason: reason}, nil
		}
		v.ContentHash = hash
	}

	if req.Type.IsEngagement() && req.VideoID != "" {
		marker, err := g.markers.FindOne(ctx, &ledger.RewardActionMarker{
			UserID:  req.UserID,
			VideoID: req.VideoID,
			Action:  req.Type.MarkerAction(req.VideoID),
		})
		if err != nil {
			return Verdict{}, unavailable(err)
		}
		if marker != nil {
			return Verdict{Reason: ReasonAlreadyRewarded}, nil
		}
	}

	if req.Type.IsUpload() && req.VideoID != "" {
		seconds, known, err := g.videos.Duration(ctx, req.VideoID)
		if err != nil {
			return Verdict{}, unavailable(err)
		}
		v.Effective, v.NeedsReconciliation = Classify(seconds, known, cfg.Value(rewardconfig.LongVideoThresholdSeconds))
	}

	return v, nil
}

// Classify maps a probed duration onto the upload type. An unknown duration is
// provisionally short and must be reconciled later.
func Classify(seconds int64, known bool, threshold int64) (rewardconfig.ActionType, bool) {
	if !known {
		return rewardconfig.ActionShortVideoUpload, true
	}
	if seconds >= threshold {
		return rewardconfig.ActionLongVideoUpload, false
	}
	return rewardconfig.ActionShortVideoUpload, false
}

func (g *Gate) checkComment(ctx context.Context, req Request, cfg rewardconfig.Resolved, now time.Time) (string, string, error) {
	var (
		text  string
		found bool
	)
	if req.VideoID != "" {
		var err error
		text, found, err = g.comments.LatestComment(ctx, req.UserID, req.VideoID)
		if err != nil {
			return "", "", err
		}
	}

	hash := req.ContentHash
	if hash == "" && found {
		hash = Fingerprint(text)
	}

	if hash != "" {
		dayStart := now.Truncate(24 * time.Hour)
		dup, err := g.hasLog(ctx, &ActivityLog{UserID: req.UserID, Kind: KindComment, ContentHash: hash}, dayStart)
		if err != nil {
			return "", "", err
		}
		if dup {
			return ReasonDuplicateComment, hash, nil
		}
	}

	if req.VideoID != "" {
		minLen := cfg.Value(rewardconfig.CommentMinLength)
		if !found || int64(utf8.RuneCountInString(strings.TrimSpace(text))) < minLen {
			return fmt.Sprintf("Comment must be at least %d characters", minLen), hash, nil
		}
	}

	return "", hash, nil
}

func (g *Gate) hasLog(ctx context.Context, query *ActivityLog, since time.Time) (bool, error) {
	log, err := g.logs.FindOne(ctx, query, option.ApplyOperator(option.Condition{
		Field:    "created_at",
		Operator: option.GTE,
		Value:    since,
	}))
	if err != nil {
		return false, err
	}
	return log != nil, nil
}

// RecordAttempt logs a view or comment that passed Check. Other types are ignored.
func (g *Gate) RecordAttempt(ctx context.Context, req Request, contentHash string) error {
	var kind ActivityKind
	switch req.Type {
	case rewardconfig.ActionView:
		kind = KindView
	case rewardconfig.ActionComment:
		kind = KindComment
	default:
		return nil
	}

	return g.logs.Create(ctx, &ActivityLog{
		ID:          g.node.Generate().String(),
		UserID:      req.UserID,
		VideoID:     req.VideoID,
		Kind:        kind,
		ContentHash: contentHash,
		SessionID:   req.SessionID,
		CreatedAt:   g.now().UTC(),
	})
}
