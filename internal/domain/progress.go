package domain

import "time"

// Progress 项目进度记录。所有者追加，追加后不可修改；
// 每次追加都会刷新所属项目的 updated_at，从而影响列表排序。
type Progress struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProjectID string    `json:"project_id" gorm:"type:varchar(36);not null;index"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	Summary   string    `json:"summary,omitempty" gorm:"type:varchar(500)"`
	CreatedAt time.Time `json:"created_at"`
}
