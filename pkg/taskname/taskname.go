package taskname

const (
	// Reward tasks
	RewardReconcileUpload = "reward:reconcile_upload"
	RewardPendingReview   = "reward:pending_review"
)
