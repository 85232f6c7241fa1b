package reward

import (
	"rewardgate/services/rewardconfig"
)

const (
	ReasonSuspended       = "Account suspended"
	ReasonAlreadyRewarded = "Already rewarded"
	ReasonDisabled        = "Reward disabled"
)

// GrantRequest is the body of POST /v1/rewards.
type GrantRequest struct {
	Type        string `json:"type" binding:"required"`
	VideoID     string `json:"videoId"`
	ContentHash string `json:"contentHash"`
	// CommentLength is reported by the client and only kept as metadata.
	// The comment itself is re-read from the comment store.
	CommentLength int    `json:"commentLength"`
	SessionID     string `json:"sessionId"`
}

type Response struct {
	Success         bool                    `json:"success"`
	Reason          string                  `json:"reason,omitempty"`
	Milestone       *int64                  `json:"milestone"`
	NewTotal        int64                   `json:"newTotal"`
	PendingRewards  int64                   `json:"pendingRewards"`
	ApprovedRewards int64                   `json:"approvedRewards"`
	AutoApproved    bool                    `json:"autoApproved"`
	Amount          int64                   `json:"amount"`
	Type            rewardconfig.ActionType `json:"type"`
}

func rejected(t rewardconfig.ActionType, reason string) Response {
	return Response{Reason: reason, Type: t}
}

type Balance struct {
	UserID          string `json:"userId"`
	TotalRewards    int64  `json:"totalRewards"`
	PendingRewards  int64  `json:"pendingRewards"`
	ApprovedRewards int64  `json:"approvedRewards"`
}
