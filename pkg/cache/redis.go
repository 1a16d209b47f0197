package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisStore, ResetTokenStore'un Redis implementasyonu.
type redisStore struct {
	client *redis.Client
}

// NewRedisStore, verilen adrese bağlanan bir ResetTokenStore oluşturur.
// Bağlantı startup'ta PING ile doğrulanır — Redis ulaşılamazsa process
// ilk forgot-password isteğinde değil açılışta fail eder.
func NewRedisStore(ctx context.Context, addr, password string, db int) (ResetTokenStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &redisStore{client: client}, nil
}

// SetResetPair, iki anahtarı tek transaction pipeline'da yazar (MULTI/EXEC).
// Redis bunları atomik uygular — yarım kalmış çift oluşmaz.
func (s *redisStore) SetResetPair(ctx context.Context, tokenHash, userID, email string, ttl time.Duration) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, tokenKey(tokenHash), userID, ttl)
		pipe.Set(ctx, emailKey(email), tokenHash, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store reset token pair: %w", err)
	}
	return nil
}

func (s *redisStore) GetUserIDByToken(ctx context.Context, tokenHash string) (string, error) {
	return s.get(ctx, tokenKey(tokenHash))
}

func (s *redisStore) GetTokenByEmail(ctx context.Context, email string) (string, error) {
	return s.get(ctx, emailKey(email))
}

// get, cache-miss'i ("", nil) olarak normalize eder.
// redis.Nil bir hata değil, yokluk sinyalidir.
func (s *redisStore) get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get %s: %w", key, err)
	}
	return val, nil
}

// DeleteResetPair, iki anahtarı tek DEL komutuyla siler.
// DEL olmayan anahtarlar için no-op'tur — idempotent.
func (s *redisStore) DeleteResetPair(ctx context.Context, tokenHash, email string) error {
	if err := s.client.Del(ctx, tokenKey(tokenHash), emailKey(email)).Err(); err != nil {
		return fmt.Errorf("failed to delete reset token pair: %w", err)
	}
	return nil
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
