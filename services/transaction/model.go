package transaction

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"rewardgate/services/ledger"
	"rewardgate/services/rewardconfig"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	StatusSuccess = "success"

	genesisHash = "GENESIS"
)

// RewardTransaction is an append-only ledger row. Rows of one user form a hash chain.
type RewardTransaction struct {
	ID                  snowflake.ID         `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	UserID              string               `gorm:"column:user_id;size:64;index;not null" json:"userId"`
	VideoID             string               `gorm:"column:video_id;size:128" json:"videoId,omitempty"`
	Amount              int64                `gorm:"column:amount;not null" json:"amount"`
	RewardType          string               `gorm:"column:reward_type;size:64;not null" json:"type"`
	Status              string               `gorm:"column:status;size:16;not null" json:"status"`
	Reference           string               `gorm:"column:reference;size:64;uniqueIndex" json:"reference"`
	ApprovalState       ledger.ApprovalState `gorm:"column:approval_state;size:16;not null" json:"approvalState"`
	ApprovedAt          *time.Time           `gorm:"column:approved_at" json:"approvedAt,omitempty"`
	NeedsReconciliation bool                 `gorm:"column:needs_reconciliation;not null;default:false" json:"needsReconciliation"`
	Metadata            datatypes.JSON       `gorm:"column:metadata" json:"metadata,omitempty"`
	PreviousHash        string               `gorm:"column:previous_hash;size:64" json:"-"`
	Hash                string               `gorm:"column:hash;size:64" json:"-"`
	CreatedAt           time.Time            `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt           time.Time            `gorm:"column:updated_at" json:"-"`
}

func (RewardTransaction) TableName() string { return "reward_transactions" }

// HashFields are the immutable columns covered by the chain hash.
func (t *RewardTransaction) HashFields() map[string]string {
	return map[string]string{
		"id":            t.ID.String(),
		"user_id":       t.UserID,
		"video_id":      t.VideoID,
		"amount":        fmt.Sprintf("%d", t.Amount),
		"reward_type":   t.RewardType,
		"status":        t.Status,
		"reference":     t.Reference,
		"created_at":    t.CreatedAt.UTC().Format(time.RFC3339Nano),
		"previous_hash": t.PreviousHash,
	}
}

func (t *RewardTransaction) GenerateHash() string {
	fields := t.HashFields()
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, fields[k]))
	}

	hash := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(hash[:])
}

// Entry describes a grant that already went through the ledger.
type Entry struct {
	UserID              string
	VideoID             string
	EffectiveType       rewardconfig.ActionType
	Amount              int64
	State               ledger.ApprovalState
	NeedsReconciliation bool
	// Day is the quota day the grant was checked against.
	Day string
	// SkipQuota leaves the daily counters alone, e.g. for adjustments of an
	// already counted grant.
	SkipQuota bool
	Metadata  map[string]any
}
