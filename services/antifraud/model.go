package antifraud

import (
	"time"

	"rewardgate/services/rewardconfig"
)

const (
	ReasonViewCooldown     = "View cooldown active"
	ReasonDuplicateComment = "Duplicate comment detected"
	ReasonAlreadyRewarded  = "Already rewarded"
)

type ActivityKind string

const (
	KindView    ActivityKind = "view"
	KindComment ActivityKind = "comment"
)

// ActivityLog is one view or comment attempt that passed the gate.
type ActivityLog struct {
	ID          string       `gorm:"column:id;primaryKey"`
	UserID      string       `gorm:"column:user_id;size:64;index:idx_activity_lookup,priority:1"`
	VideoID     string       `gorm:"column:video_id;size:128;index:idx_activity_lookup,priority:2"`
	Kind        ActivityKind `gorm:"column:kind;size:16;index:idx_activity_lookup,priority:3"`
	ContentHash string       `gorm:"column:content_hash;size:128;index"`
	SessionID   string       `gorm:"column:session_id;size:128"`
	CreatedAt   time.Time    `gorm:"column:created_at;index:idx_activity_lookup,priority:4"`
}

func (ActivityLog) TableName() string { return "reward_activity_logs" }

type Request struct {
	UserID      string
	Type        rewardconfig.ActionType
	VideoID     string
	ContentHash string
	SessionID   string
}

// Verdict is either a rejection (Reason set) or the type to reward.
type Verdict struct {
	Reason              string
	Effective           rewardconfig.ActionType
	NeedsReconciliation bool
	// ContentHash is the comment fingerprint the attempt is logged under.
	ContentHash string
}

func (v Verdict) Rejected() bool {
	return v.Reason != ""
}
