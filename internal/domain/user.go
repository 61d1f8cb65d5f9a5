package domain

import (
	"strings"
	"time"
)

// User 表示通过邮箱验证码登录的注册用户。
//
// 用户在首次成功兑换验证码时被惰性创建，email 创建后不可变，
// 是项目与合作意向的所有权锚点。
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Nickname  string    `json:"nickname" gorm:"type:varchar(100)"`
	Skills    []string  `json:"skills" gorm:"serializer:json;type:text"`
	AvatarURL string    `json:"avatar_url,omitempty" gorm:"type:varchar(255)"`
	Bio       string    `json:"bio,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

// DefaultNickname 根据邮箱地址推导默认昵称（@ 前的本地部分）。
func DefaultNickname(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}

// ProfileUpdate 描述用户资料的可选字段更新，nil 字段保持原值。
type ProfileUpdate struct {
	Nickname *string
	Bio      *string
	Skills   *[]string
}

// IsEmpty 判断更新是否不包含任何字段。
func (u ProfileUpdate) IsEmpty() bool {
	return u.Nickname == nil && u.Bio == nil && u.Skills == nil
}
