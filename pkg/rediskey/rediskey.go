package rediskey

import "fmt"

const (
	SequencePrefix    = "seq"
	RewardTxnSequence = "seq:reward:txn"
)

func NamespaceKey(namespace, key string) string {
	return fmt.Sprintf("%s:%s", namespace, key)
}

// BuildRewardTxnSequenceKey returns "seq:reward:txn:{day}"
func BuildRewardTxnSequenceKey(day string) string {
	return NamespaceKey(RewardTxnSequence, day)
}
