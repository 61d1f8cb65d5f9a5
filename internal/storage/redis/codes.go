package redis

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"garith/backend/internal/auth"
	"garith/backend/internal/domain"
)

// CodeStore Redis 版验证码存储，多实例部署时替代内存实现，
// 使待兑换验证码在各实例间共享。
type CodeStore struct {
	client *redis.Client
}

// NewCodeStore 创建 Redis 验证码存储并验证连通性。
func NewCodeStore(addr, password string, db int) (*CodeStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		PoolSize: 10,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &CodeStore{client: client}, nil
}

// Close 关闭 Redis 连接。
func (s *CodeStore) Close() error {
	return s.client.Close()
}

// Client 暴露底层连接，供健康检查探活。
func (s *CodeStore) Client() *redis.Client {
	return s.client
}

func codeKey(address string) string {
	return "authcode:" + address
}

type codeEntry struct {
	Code      string    `json:"code"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Issue 生成新验证码并覆盖该地址的旧记录，键 TTL 即验证码有效期。
func (s *CodeStore) Issue(ctx context.Context, address string) (string, error) {
	key := codeKey(address)

	data, err := s.client.Get(ctx, key).Result()
	if err == nil {
		var prev codeEntry
		if jsonErr := json.Unmarshal([]byte(data), &prev); jsonErr == nil {
			if time.Since(prev.IssuedAt) < domain.CodeResendInterval {
				return "", domain.ErrCodeRateLimited
			}
		}
	} else if !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("failed to read code entry: %w", err)
	}

	code, err := auth.GenerateCode()
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	entry := codeEntry{
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(domain.CodeTTL),
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return "", err
	}

	if err := s.client.Set(ctx, key, payload, domain.CodeTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store code entry: %w", err)
	}
	return code, nil
}

// Redeem 校验并消费验证码。键过期由 Redis TTL 处理，对调用方
// 表现为 ErrCodeNotFound；显式的 ExpiresAt 检查覆盖时钟边界。
func (s *CodeStore) Redeem(ctx context.Context, address, candidate string) error {
	key := codeKey(address)

	data, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return domain.ErrCodeNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read code entry: %w", err)
	}

	var entry codeEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return fmt.Errorf("failed to decode code entry: %w", err)
	}

	if time.Now().After(entry.ExpiresAt) {
		s.client.Del(ctx, key)
		return domain.ErrCodeExpired
	}

	if subtle.ConstantTimeCompare([]byte(entry.Code), []byte(candidate)) != 1 {
		return domain.ErrCodeMismatch
	}

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to consume code entry: %w", err)
	}
	return nil
}

// Peek 返回地址当前待兑换的验证码，不消费。不属于 CodeStore
// 接口，仅诊断用途。
func (s *CodeStore) Peek(ctx context.Context, address string) (string, bool) {
	data, err := s.client.Get(ctx, codeKey(address)).Result()
	if err != nil {
		return "", false
	}
	var entry codeEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return "", false
	}
	return entry.Code, true
}
