package rewardconfig

import (
	"strings"
	"time"
)

// ActionType is the category of an in-app action that may earn a reward.
type ActionType string

const (
	ActionView             ActionType = "VIEW"
	ActionLike             ActionType = "LIKE"
	ActionComment          ActionType = "COMMENT"
	ActionShare            ActionType = "SHARE"
	ActionUpload           ActionType = "UPLOAD"
	ActionShortVideoUpload ActionType = "SHORT_VIDEO_UPLOAD"
	ActionLongVideoUpload  ActionType = "LONG_VIDEO_UPLOAD"
	ActionFirstUpload      ActionType = "FIRST_UPLOAD"
	ActionSignup           ActionType = "SIGNUP"
	ActionWalletConnect    ActionType = "WALLET_CONNECT"
)

var ActionTypes = []ActionType{
	ActionView,
	ActionLike,
	ActionComment,
	ActionShare,
	ActionUpload,
	ActionShortVideoUpload,
	ActionLongVideoUpload,
	ActionFirstUpload,
	ActionSignup,
	ActionWalletConnect,
}

func ParseActionType(s string) (ActionType, bool) {
	a := ActionType(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range ActionTypes {
		if a == known {
			return a, true
		}
	}
	return "", false
}

// IsUpload reports whether the action is reclassified by video duration.
func (a ActionType) IsUpload() bool {
	switch a {
	case ActionUpload, ActionShortVideoUpload, ActionLongVideoUpload:
		return true
	}
	return false
}

// IsOneTime reports whether the action can be rewarded at most once per account.
func (a ActionType) IsOneTime() bool {
	switch a {
	case ActionFirstUpload, ActionSignup, ActionWalletConnect:
		return true
	}
	return false
}

// IsEngagement reports whether the action is rewarded once per video.
func (a ActionType) IsEngagement() bool {
	switch a {
	case ActionView, ActionLike, ActionShare, ActionComment:
		return true
	}
	return false
}

// MarkerAction is the dedupe action claimed when a is rewarded. All upload
// types share one action so a reclassified video is still rewarded once per
// user. Repeatable actions without a video claim nothing and return "".
func (a ActionType) MarkerAction(videoID string) string {
	switch {
	case a.IsOneTime():
		return string(a)
	case videoID == "":
		return ""
	case a.IsUpload():
		return string(ActionUpload)
	}
	return string(a)
}

// LimitKey names a per-day count ceiling.
type LimitKey string

const (
	LimitView       LimitKey = "view"
	LimitLike       LimitKey = "like"
	LimitComment    LimitKey = "comment"
	LimitShare      LimitKey = "share"
	LimitShortVideo LimitKey = "short_video"
	LimitLongVideo  LimitKey = "long_video"
	LimitUploads    LimitKey = "uploads"
)

// LimitKeys returns the ceilings that apply to an effective action type.
// Every upload-shaped action also counts toward the overall uploads ceiling.
// One-time actions have no count ceiling.
func LimitKeys(a ActionType) []LimitKey {
	switch a {
	case ActionView:
		return []LimitKey{LimitView}
	case ActionLike:
		return []LimitKey{LimitLike}
	case ActionComment:
		return []LimitKey{LimitComment}
	case ActionShare:
		return []LimitKey{LimitShare}
	case ActionShortVideoUpload:
		return []LimitKey{LimitShortVideo, LimitUploads}
	case ActionLongVideoUpload:
		return []LimitKey{LimitLongVideo, LimitUploads}
	case ActionUpload:
		return []LimitKey{LimitUploads}
	}
	return nil
}

type ValidationKey string

const (
	ViewCooldownSeconds       ValidationKey = "view_cooldown_seconds"
	CommentMinLength          ValidationKey = "comment_min_length"
	LongVideoThresholdSeconds ValidationKey = "long_video_threshold_seconds"
	GlobalDailyCap            ValidationKey = "global_daily_cap"
	AutoApproveThreshold      ValidationKey = "auto_approve_threshold"
	AutoApproveEnabled        ValidationKey = "auto_approve_enabled"
	DisplayNameMinLength      ValidationKey = "display_name_min_length"
)

// RewardConfigEntry is an admin-owned override. The gate only reads it.
type RewardConfigEntry struct {
	Key         string    `gorm:"column:config_key;primaryKey;size:128"`
	Value       string    `gorm:"column:config_value"`
	Description string    `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (RewardConfigEntry) TableName() string { return "reward_config_entries" }

// Resolved is a fully populated view of the reward configuration.
type Resolved struct {
	Amounts    map[ActionType]int64
	Limits     map[LimitKey]int64
	Validation map[ValidationKey]int64
}

func (r Resolved) Amount(a ActionType) int64 {
	return r.Amounts[a]
}

func (r Resolved) Limit(k LimitKey) int64 {
	return r.Limits[k]
}

func (r Resolved) Value(k ValidationKey) int64 {
	return r.Validation[k]
}
