// Package otpstore persists the stub backend's OTP challenges in Redis.
package otpstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/danaam/danaam-go/domain"
)

const (
	challengePrefix = "otp:req:"
	successPrefix   = "otp:ok:"
)

// RedisStore implements domain.ChallengeStore.
type RedisStore struct {
	client     *redis.Client
	ttl        time.Duration
	successTTL time.Duration
}

// NewRedisStore creates a challenge store. ttl bounds the requester token
// lifetime, successTTL the minted success token's.
func NewRedisStore(client *redis.Client, ttl, successTTL time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, successTTL: successTTL}
}

// Put implements domain.ChallengeStore.
func (s *RedisStore) Put(ctx context.Context, requesterToken string, rec *domain.OTPChallengeRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal challenge: %w", err)
	}
	return s.client.Set(ctx, challengePrefix+requesterToken, data, s.ttl).Err()
}

// Get implements domain.ChallengeStore. Expired and absent challenges both
// come back as domain.ErrOTPExpired; the client cannot tell them apart and
// the backend does not need to.
func (s *RedisStore) Get(ctx context.Context, requesterToken string) (*domain.OTPChallengeRecord, error) {
	data, err := s.client.Get(ctx, challengePrefix+requesterToken).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrOTPExpired
		}
		return nil, err
	}
	var rec domain.OTPChallengeRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("unmarshal challenge: %w", err)
	}
	if !rec.ExpiresAt.IsZero() && rec.ExpiresAt.Before(time.Now()) {
		s.client.Del(ctx, challengePrefix+requesterToken)
		return nil, domain.ErrOTPExpired
	}
	return &rec, nil
}

// Delete implements domain.ChallengeStore.
func (s *RedisStore) Delete(ctx context.Context, requesterToken string) error {
	return s.client.Del(ctx, challengePrefix+requesterToken).Err()
}

type successRecord struct {
	Email   string            `json:"email"`
	Purpose domain.OTPPurpose `json:"purpose"`
}

// PutSuccess implements domain.ChallengeStore.
func (s *RedisStore) PutSuccess(ctx context.Context, successToken, email string, purpose domain.OTPPurpose) error {
	data, err := json.Marshal(successRecord{Email: email, Purpose: purpose})
	if err != nil {
		return fmt.Errorf("marshal success record: %w", err)
	}
	return s.client.Set(ctx, successPrefix+successToken, data, s.successTTL).Err()
}

// TakeSuccess implements domain.ChallengeStore. The token is single-use:
// a successful take deletes it.
func (s *RedisStore) TakeSuccess(ctx context.Context, successToken string, purpose domain.OTPPurpose) (string, error) {
	key := successPrefix + successToken
	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrOTPExpired
		}
		return "", err
	}
	var rec successRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return "", fmt.Errorf("unmarshal success record: %w", err)
	}
	if rec.Purpose != purpose {
		return "", domain.ErrOTPExpired
	}
	s.client.Del(ctx, key)
	return rec.Email, nil
}

// Compile-time interface compliance verification
var _ domain.ChallengeStore = (*RedisStore)(nil)
