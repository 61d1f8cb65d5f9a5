package domain

import "time"

// NotificationType 通知类型
type NotificationType string

const (
	// NotifyIntentReceived 有人向你的项目提交了合作意向
	NotifyIntentReceived NotificationType = "intent_received"
	// NotifyIntentViewed 你提交的意向被项目所有者查看
	NotifyIntentViewed NotificationType = "intent_viewed"
	// NotifySystem 系统通知
	NotifySystem NotificationType = "system"
)

// Notification 站内通知，仅作为生命周期事件的副作用产生。
// 除已读标记外不可变。
type Notification struct {
	ID         string           `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ToUserID   string           `json:"to_user_id" gorm:"type:varchar(36);not null;index"`
	FromUserID string           `json:"from_user_id,omitempty" gorm:"type:varchar(36)"`
	Type       NotificationType `json:"type" gorm:"type:varchar(50)"`
	Title      string           `json:"title" gorm:"type:varchar(200)"`
	Content    string           `json:"content" gorm:"type:text"`
	RelatedID  string           `json:"related_id,omitempty" gorm:"type:varchar(36)"`
	IsRead     bool             `json:"is_read" gorm:"default:false;index"`
	CreatedAt  time.Time        `json:"created_at"`
	ReadAt     *time.Time       `json:"read_at,omitempty"`
}

// NotificationWithFrom 列表查询返回的通知及发送方昵称。
type NotificationWithFrom struct {
	Notification
	FromUserNickname string `json:"from_user_nickname,omitempty"`
}

// NotificationFilter 通知列表查询条件。
type NotificationFilter struct {
	UnreadOnly bool
	Page       int
	Limit      int
}
