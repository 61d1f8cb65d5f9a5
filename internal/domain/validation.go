package domain

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"
)

// 输入校验相关的错误定义
var (
	ErrInvalidEmail = errors.New("invalid email format")
	ErrEmailTooLong = errors.New("email address too long")
	ErrInvalidCode  = errors.New("invalid verification code format")
)

// RFC 5322 邮箱地址长度上限
const MaxEmailLength = 254

var codeRegex = regexp.MustCompile(`^[0-9]{6}$`)

// NormalizeEmail 清理并统一邮箱地址的大小写。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail 校验邮箱地址格式。
func ValidateEmail(email string) error {
	if email == "" {
		return ErrInvalidEmail
	}
	if len(email) > MaxEmailLength {
		return ErrEmailTooLong
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	if !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	return nil
}

// ValidateCodeFormat 校验验证码为 6 位 ASCII 数字。
func ValidateCodeFormat(code string) error {
	if !codeRegex.MatchString(code) {
		return ErrInvalidCode
	}
	return nil
}
