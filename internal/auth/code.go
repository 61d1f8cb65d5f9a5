package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"sync"
	"time"

	"garith/backend/internal/domain"
)

// CodeStore 保存待兑换的一次性验证码。
//
// 实现必须保证：同一地址同一时刻只有一条有效记录；
// 兑换成功或判定过期后记录被删除（单次使用）。
type CodeStore interface {
	// Issue 为地址生成并登记新的验证码。距上次发送不足
	// CodeResendInterval 时返回 domain.ErrCodeRateLimited。
	Issue(ctx context.Context, address string) (string, error)
	// Redeem 校验并消费验证码。可能返回 domain.ErrCodeNotFound、
	// domain.ErrCodeExpired（同时删除记录）和 domain.ErrCodeMismatch。
	Redeem(ctx context.Context, address, candidate string) error
}

// GenerateCode 生成 6 位均匀随机的数字验证码。
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// MemoryCodeStore 单互斥锁保护的内存验证码存储。
//
// 条目短生命周期、低基数，过期在兑换时惰性判定，不需要后台
// 清扫协程。不落盘：进程重启使所有待兑换验证码静默失效。
type MemoryCodeStore struct {
	mu    sync.Mutex
	codes map[string]domain.VerificationCode
	now   func() time.Time
}

// NewMemoryCodeStore 创建内存验证码存储。
func NewMemoryCodeStore() *MemoryCodeStore {
	return &MemoryCodeStore{
		codes: make(map[string]domain.VerificationCode),
		now:   time.Now,
	}
}

// Issue 生成新验证码并覆盖该地址的旧记录。
func (s *MemoryCodeStore) Issue(_ context.Context, address string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if entry, ok := s.codes[address]; ok {
		if now.Sub(entry.IssuedAt) < domain.CodeResendInterval {
			return "", domain.ErrCodeRateLimited
		}
	}

	code, err := GenerateCode()
	if err != nil {
		return "", err
	}

	s.codes[address] = domain.VerificationCode{
		Address:   address,
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(domain.CodeTTL),
	}
	return code, nil
}

// Redeem 校验并消费验证码。
func (s *MemoryCodeStore) Redeem(_ context.Context, address, candidate string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.codes[address]
	if !ok {
		return domain.ErrCodeNotFound
	}

	if entry.Expired(s.now()) {
		delete(s.codes, address)
		return domain.ErrCodeExpired
	}

	if subtle.ConstantTimeCompare([]byte(entry.Code), []byte(candidate)) != 1 {
		return domain.ErrCodeMismatch
	}

	delete(s.codes, address)
	return nil
}

// Peek 返回地址当前待兑换的验证码，不消费。不属于 CodeStore
// 接口，仅诊断用途。
func (s *MemoryCodeStore) Peek(_ context.Context, address string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.codes[address]
	if !ok || entry.Expired(s.now()) {
		return "", false
	}
	return entry.Code, true
}
