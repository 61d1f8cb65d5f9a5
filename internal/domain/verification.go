package domain

import (
	"errors"
	"time"
)

// 验证码相关的错误定义
var (
	// ErrCodeRateLimited 距上次发送不足重发间隔
	ErrCodeRateLimited = errors.New("verification code recently sent")
	// ErrCodeNotFound 地址没有待兑换的验证码
	ErrCodeNotFound = errors.New("verification code not found")
	// ErrCodeExpired 验证码已过期
	ErrCodeExpired = errors.New("verification code expired")
	// ErrCodeMismatch 验证码不匹配
	ErrCodeMismatch = errors.New("verification code mismatch")
)

// 验证码时间常量
const (
	// CodeTTL 验证码有效期
	CodeTTL = 5 * time.Minute
	// CodeResendInterval 同一地址两次发送的最小间隔
	CodeResendInterval = 60 * time.Second
	// CodeLength 验证码位数（ASCII 数字）
	CodeLength = 6
)

// VerificationCode 一次性邮箱验证码。
//
// 每个地址同一时刻只有一条有效记录，新发送覆盖旧记录；
// 成功兑换或终态失败（过期）即删除。不落盘，进程重启后
// 所有待兑换验证码失效，这是已知限制。
type VerificationCode struct {
	Address   string
	Code      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired 判断验证码在给定时刻是否已过期。
func (c VerificationCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
