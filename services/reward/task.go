package reward

import (
	"encoding/json"

	"rewardgate/pkg/task"
	"rewardgate/pkg/taskname"

	"github.com/bwmarrin/snowflake"
	"github.com/hibiken/asynq"
)

type ReconcileUploadPayload struct {
	TransactionID snowflake.ID `json:"transaction_id"`
	UserID        string       `json:"user_id"`
	VideoID       string       `json:"video_id"`
}

func NewReconcileUploadTask(p ReconcileUploadPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskname.RewardReconcileUpload, payload,
		asynq.Queue(task.QueueDefault),
		asynq.MaxRetry(20),
		asynq.TaskID("reconcile:"+p.TransactionID.String()),
	), nil
}

type PendingReviewPayload struct {
	TransactionID snowflake.ID `json:"transaction_id"`
	UserID        string       `json:"user_id"`
	Type          string       `json:"type"`
	Amount        int64        `json:"amount"`
	TrustScore    int64        `json:"trust_score"`
}

func NewPendingReviewTask(p PendingReviewPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskname.RewardPendingReview, payload,
		asynq.Queue(task.QueueLow),
		asynq.MaxRetry(3),
	), nil
}
