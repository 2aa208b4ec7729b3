package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// otp:{phone} -> hash{hash, attempts}
const keyOTP = "otp:%s"

var ErrOTPNotFound = errors.New("OTP expired or not found")

type Challenge struct {
	Hash     string
	Attempts int
}

type OTPStore interface {
	Save(ctx context.Context, phone, hash string, ttl time.Duration) error
	Get(ctx context.Context, phone string) (*Challenge, error)
	IncrementAttempts(ctx context.Context, phone string) (int, error)
	Delete(ctx context.Context, phone string) error
}

// incrAttempts bumps the counter only while the challenge exists, so an
// expired key is never recreated without a TTL.
var incrAttempts = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return -1
end
return redis.call("HINCRBY", KEYS[1], "attempts", 1)
`)

type redisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) OTPStore {
	return &redisStore{rdb: rdb}
}

// Save replaces any pending code for phone and resets its attempts.
func (s *redisStore) Save(ctx context.Context, phone, hash string, ttl time.Duration) error {
	key := fmt.Sprintf(keyOTP, phone)
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		p.HSet(ctx, key, "hash", hash, "attempts", 0)
		p.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("auth: failed to store otp: %w", err)
	}
	return nil
}

func (s *redisStore) Get(ctx context.Context, phone string) (*Challenge, error) {
	vals, err := s.rdb.HGetAll(ctx, fmt.Sprintf(keyOTP, phone)).Result()
	if err != nil {
		return nil, fmt.Errorf("auth: failed to read otp: %w", err)
	}
	hash, ok := vals["hash"]
	if !ok || hash == "" {
		return nil, ErrOTPNotFound
	}
	attempts, _ := strconv.Atoi(vals["attempts"])
	return &Challenge{Hash: hash, Attempts: attempts}, nil
}

func (s *redisStore) IncrementAttempts(ctx context.Context, phone string) (int, error) {
	n, err := incrAttempts.Run(ctx, s.rdb, []string{fmt.Sprintf(keyOTP, phone)}).Int()
	if err != nil {
		return 0, fmt.Errorf("auth: failed to count otp attempt: %w", err)
	}
	if n < 0 {
		return 0, ErrOTPNotFound
	}
	return n, nil
}

func (s *redisStore) Delete(ctx context.Context, phone string) error {
	if err := s.rdb.Del(ctx, fmt.Sprintf(keyOTP, phone)).Err(); err != nil {
		return fmt.Errorf("auth: failed to delete otp: %w", err)
	}
	return nil
}
