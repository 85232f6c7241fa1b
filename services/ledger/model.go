package ledger

import (
	"time"
)

// ApprovalState tells which balance bucket a grant landed in.
type ApprovalState string

const (
	ApprovalPending  ApprovalState = "pending"
	ApprovalApproved ApprovalState = "approved"
)

func ApprovalFor(autoApprove bool) ApprovalState {
	if autoApprove {
		return ApprovalApproved
	}
	return ApprovalPending
}

// bucket is the balance column that receives the amount.
func (s ApprovalState) bucket() string {
	if s == ApprovalApproved {
		return "approved_reward"
	}
	return "pending_rewards"
}

// RewardAccount holds the per-user balances. PendingRewards + ApprovedReward == TotalRewards.
type RewardAccount struct {
	ID              string    `gorm:"column:id;primaryKey"`
	UserID          string    `gorm:"column:user_id;uniqueIndex;size:64"`
	TotalRewards    int64     `gorm:"column:total_rewards;not null;default:0"`
	PendingRewards  int64     `gorm:"column:pending_rewards;not null;default:0"`
	ApprovedReward  int64     `gorm:"column:approved_reward;not null;default:0"`
	SuspiciousScore int64     `gorm:"column:suspicious_score;not null;default:0"`
	IsBanned        bool      `gorm:"column:is_banned;not null;default:false"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (RewardAccount) TableName() string { return "reward_accounts" }

// RewardActionMarker is written once per rewarded (user, video, action).
// One-time actions use an empty video id.
type RewardActionMarker struct {
	ID        string    `gorm:"column:id;primaryKey"`
	UserID    string    `gorm:"column:user_id;size:64;uniqueIndex:idx_reward_action_marker"`
	VideoID   string    `gorm:"column:video_id;size:128;uniqueIndex:idx_reward_action_marker"`
	Action    string    `gorm:"column:action;size:64;uniqueIndex:idx_reward_action_marker"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (RewardActionMarker) TableName() string { return "reward_action_markers" }

// Models lists the tables owned by this package.
func Models() []any {
	return []any{&RewardAccount{}, &RewardActionMarker{}}
}

type GrantParams struct {
	UserID string
	// VideoID and MarkerAction form the dedupe key together with UserID.
	// An empty MarkerAction claims no marker.
	VideoID      string
	MarkerAction string
	Amount       int64
	AutoApprove  bool
}

// Snapshot is the account state right after a grant.
type Snapshot struct {
	UserID   string
	Total    int64
	Pending  int64
	Approved int64
	State    ApprovalState
}
