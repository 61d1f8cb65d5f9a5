package domain

import "time"

// IntentStatus 合作意向状态
type IntentStatus string

const (
	IntentSubmitted IntentStatus = "submitted"
	IntentViewed    IntentStatus = "viewed"
	IntentClosed    IntentStatus = "closed"
)

// IsValid 判断状态是否为三个合法取值之一。
func (s IntentStatus) IsValid() bool {
	return s == IntentSubmitted || s == IntentViewed || s == IntentClosed
}

// Intent 表示用户针对某个项目提交的合作意向。
//
// 约束：每个 (project_id, user_id) 至多一条；user_id 不能等于
// 项目所有者。状态由项目所有者任意改写，不做迁移顺序校验。
type Intent struct {
	ID        string       `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProjectID string       `json:"project_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_intent_project_user"`
	UserID    string       `json:"user_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_intent_project_user"`
	Offer     string       `json:"offer" gorm:"type:text;not null"`
	Expect    string       `json:"expect" gorm:"type:text;not null"`
	Contact   string       `json:"contact" gorm:"type:varchar(200);not null"`
	Status    IntentStatus `json:"status" gorm:"type:varchar(20);default:'submitted'"`
	CreatedAt time.Time    `json:"created_at"`
}

// IntentWithUser 项目所有者查看的意向条目，附带提交者信息。
type IntentWithUser struct {
	Intent
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
}

// SubmittedIntent 「我提交的意向」列表条目，附带目标项目摘要。
type SubmittedIntent struct {
	Intent
	ProjectTitle         string `json:"project_title"`
	ProjectField         string `json:"project_field"`
	ProjectStage         string `json:"project_stage"`
	ProjectOwnerNickname string `json:"project_owner_nickname"`
}

// ReceivedIntent 「我收到的意向」列表条目。
type ReceivedIntent struct {
	Intent
	ProjectTitle string `json:"project_title"`
	UserNickname string `json:"user_nickname"`
	UserEmail    string `json:"user_email"`
}

// IntentFilter 意向列表查询条件。
type IntentFilter struct {
	Status IntentStatus // 为空时不过滤
	Page   int
	Limit  int
}
