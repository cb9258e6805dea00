package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RandilG/Construction-Management/internal/domain"

	"github.com/redis/go-redis/v9"
)

const challengeKeyPrefix = "otp:challenge:"

// challengeRepository keeps OTP challenges in redis. The key lives past the
// logical expiry by the retention window so an expired challenge can still
// be reported as expired exactly once before it disappears entirely.
type challengeRepository struct {
	rdb       redis.UniversalClient
	retention time.Duration
}

func newChallengeRepository(rdb redis.UniversalClient, retention time.Duration) *challengeRepository {
	return &challengeRepository{
		rdb:       rdb,
		retention: retention,
	}
}

func challengeKey(email string) string {
	return challengeKeyPrefix + email
}

// Upsert stores the challenge, replacing any previous one for the email.
func (r *challengeRepository) Upsert(ctx context.Context, challenge *domain.Challenge) error {
	payload, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("marshal challenge failed: %w", err)
	}

	ttl := time.Until(challenge.ExpiresAt) + r.retention
	if err := r.rdb.Set(ctx, challengeKey(challenge.Email), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set challenge failed: %w", err)
	}

	return nil
}

func (r *challengeRepository) Get(ctx context.Context, email string) (*domain.Challenge, error) {
	payload, err := r.rdb.Get(ctx, challengeKey(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis get challenge failed: %w", err)
	}

	var challenge domain.Challenge
	if err := json.Unmarshal(payload, &challenge); err != nil {
		return nil, fmt.Errorf("unmarshal challenge failed: %w", err)
	}

	return &challenge, nil
}

func (r *challengeRepository) Delete(ctx context.Context, email string) error {
	if err := r.rdb.Del(ctx, challengeKey(email)).Err(); err != nil {
		return fmt.Errorf("redis del challenge failed: %w", err)
	}

	return nil
}
