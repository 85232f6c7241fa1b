package sequence

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"rewardgate/pkg/rediskey"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var Module = fx.Module("sequence",
	fx.Provide(NewRedisGenerator),
)

type Generator interface {
	NextTransactionReference(ctx context.Context) (string, error)
}

type RedisGenerator struct {
	rdb *redis.Client
	now func() time.Time
}

type Params struct {
	fx.In

	Redis *redis.Client
}

func NewRedisGenerator(p Params) Generator {
	return &RedisGenerator{
		rdb: p.Redis,
		now: time.Now,
	}
}

// NextTransactionReference returns RWD-{yymmdd}-{base36 seq}{2 random chars}.
// The counter key expires at the end of the UTC day.
func (g *RedisGenerator) NextTransactionReference(ctx context.Context) (string, error) {
	now := g.now().UTC()
	today := now.Format("060102")
	key := rediskey.BuildRewardTxnSequenceKey(today)

	seq, err := g.rdb.Incr(ctx, key).Result()
	if err != nil {
		return "", err
	}

	if seq == 1 {
		endOfDay := now.Truncate(24 * time.Hour).Add(24 * time.Hour)
		_ = g.rdb.ExpireAt(ctx, key, endOfDay).Err()
	}

	encodedSeq := strings.ToUpper(fmt.Sprintf("%03s", strconv.FormatInt(seq, 36)))
	randSuffix, err := RandomAlphaNumeric(2)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("RWD-%s-%s%s", today, encodedSeq, randSuffix), nil
}

// FallbackReference is used when redis is unreachable: RWD-{yyyymmdd}-{8 random chars}.
func FallbackReference(now time.Time) (string, error) {
	suffix, err := RandomAlphaNumeric(8)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("RWD-%s-%s", now.UTC().Format("20060102"), suffix), nil
}

func RandomAlphaNumeric(n int) (string, error) {
	const chars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	b := make([]byte, n)
	for i := range b {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
		if err != nil {
			return "", err
		}
		b[i] = chars[num.Int64()]
	}
	return string(b), nil
}
