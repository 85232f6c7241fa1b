package quota

import (
	"time"

	"rewardgate/services/rewardconfig"
)

const dayLayout = "2006-01-02"

// Day returns the UTC calendar day a record belongs to.
func Day(t time.Time) string {
	return t.UTC().Format(dayLayout)
}

// DailyLimitRecord counts one user's grants for one UTC day. It is never
// touched after its day has passed.
type DailyLimitRecord struct {
	ID     string `gorm:"column:id;primaryKey"`
	UserID string `gorm:"column:user_id;size:64;uniqueIndex:idx_daily_limit_user_day"`
	Day    string `gorm:"column:day;size:10;uniqueIndex:idx_daily_limit_user_day"`

	ViewCount       int64 `gorm:"column:view_count;not null;default:0"`
	LikeCount       int64 `gorm:"column:like_count;not null;default:0"`
	ShareCount      int64 `gorm:"column:share_count;not null;default:0"`
	CommentCount    int64 `gorm:"column:comment_count;not null;default:0"`
	ShortVideoCount int64 `gorm:"column:short_video_count;not null;default:0"`
	LongVideoCount  int64 `gorm:"column:long_video_count;not null;default:0"`
	UploadsCount    int64 `gorm:"column:uploads_count;not null;default:0"`

	ViewRewardsEarned       int64 `gorm:"column:view_rewards_earned;not null;default:0"`
	LikeRewardsEarned       int64 `gorm:"column:like_rewards_earned;not null;default:0"`
	ShareRewardsEarned      int64 `gorm:"column:share_rewards_earned;not null;default:0"`
	CommentRewardsEarned    int64 `gorm:"column:comment_rewards_earned;not null;default:0"`
	ShortVideoRewardsEarned int64 `gorm:"column:short_video_rewards_earned;not null;default:0"`
	LongVideoRewardsEarned  int64 `gorm:"column:long_video_rewards_earned;not null;default:0"`
	UploadRewardsEarned     int64 `gorm:"column:upload_rewards_earned;not null;default:0"`
	BonusRewardsEarned      int64 `gorm:"column:bonus_rewards_earned;not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (DailyLimitRecord) TableName() string { return "daily_limit_records" }

func (r *DailyLimitRecord) Count(k rewardconfig.LimitKey) int64 {
	switch k {
	case rewardconfig.LimitView:
		return r.ViewCount
	case rewardconfig.LimitLike:
		return r.LikeCount
	case rewardconfig.LimitShare:
		return r.ShareCount
	case rewardconfig.LimitComment:
		return r.CommentCount
	case rewardconfig.LimitShortVideo:
		return r.ShortVideoCount
	case rewardconfig.LimitLongVideo:
		return r.LongVideoCount
	case rewardconfig.LimitUploads:
		return r.UploadsCount
	}
	return 0
}

// EarnedTotal is the sum of every earned accumulator for the day.
func (r *DailyLimitRecord) EarnedTotal() int64 {
	return r.ViewRewardsEarned + r.LikeRewardsEarned + r.ShareRewardsEarned +
		r.CommentRewardsEarned + r.ShortVideoRewardsEarned + r.LongVideoRewardsEarned +
		r.UploadRewardsEarned + r.BonusRewardsEarned
}

var countColumns = map[rewardconfig.LimitKey]string{
	rewardconfig.LimitView:       "view_count",
	rewardconfig.LimitLike:       "like_count",
	rewardconfig.LimitShare:      "share_count",
	rewardconfig.LimitComment:    "comment_count",
	rewardconfig.LimitShortVideo: "short_video_count",
	rewardconfig.LimitLongVideo:  "long_video_count",
	rewardconfig.LimitUploads:    "uploads_count",
}

func earnedColumn(a rewardconfig.ActionType) string {
	switch a {
	case rewardconfig.ActionView:
		return "view_rewards_earned"
	case rewardconfig.ActionLike:
		return "like_rewards_earned"
	case rewardconfig.ActionShare:
		return "share_rewards_earned"
	case rewardconfig.ActionComment:
		return "comment_rewards_earned"
	case rewardconfig.ActionShortVideoUpload:
		return "short_video_rewards_earned"
	case rewardconfig.ActionLongVideoUpload:
		return "long_video_rewards_earned"
	case rewardconfig.ActionUpload:
		return "upload_rewards_earned"
	default:
		return "bonus_rewards_earned"
	}
}

// Decision is the outcome of a read-only quota check.
type Decision struct {
	Allowed bool
	Reason  string
}
