package domain

import "time"

// ProjectStatus 项目生命周期状态
type ProjectStatus string

const (
	ProjectActive ProjectStatus = "active"
	ProjectPaused ProjectStatus = "paused"
	ProjectClosed ProjectStatus = "closed"
)

// IsValid 判断状态是否为三个合法取值之一。
func (s ProjectStatus) IsValid() bool {
	return s == ProjectActive || s == ProjectPaused || s == ProjectClosed
}

// Project 表示一个寻求合作的项目。
//
// 状态由所有者任意切换，closed 项目允许重新激活——这是源系统的
// 既有行为，是否收紧 closed → active 由产品侧决定。
// status 决定项目是否接收新的合作意向。
type Project struct {
	ID               string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OwnerID          string        `json:"owner_id" gorm:"type:varchar(36);not null;index"`
	Title            string        `json:"title" gorm:"type:varchar(200);not null"`
	Type             string        `json:"type" gorm:"type:varchar(50)"`
	Field            string        `json:"field" gorm:"type:varchar(100);index"`
	Stage            string        `json:"stage" gorm:"type:varchar(50)"`
	Status           ProjectStatus `json:"status" gorm:"type:varchar(20);default:'active';index"`
	Blocker          string        `json:"blocker,omitempty" gorm:"type:text"`
	HelpType         string        `json:"help_type,omitempty" gorm:"type:varchar(100)"`
	IsPublicProgress bool          `json:"is_public_progress" gorm:"default:false"`
	Images           []string      `json:"images" gorm:"serializer:json;type:text"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// StaleThreshold 列表排序的下沉阈值：updated_at 落后当前时间超过
// 30 天的项目整体排在更新的项目之后（两级排序，不是过滤）。
const StaleThreshold = 30 * 24 * time.Hour

// ProjectUpdate 描述项目的可选字段更新，nil 字段保持原值。
// 任一字段被应用都会刷新 updated_at。
type ProjectUpdate struct {
	Title            *string
	Type             *string
	Field            *string
	Stage            *string
	Blocker          *string
	HelpType         *string
	IsPublicProgress *bool
	Images           *[]string
}

// IsEmpty 判断更新是否不包含任何字段。
func (u ProjectUpdate) IsEmpty() bool {
	return u.Title == nil && u.Type == nil && u.Field == nil && u.Stage == nil &&
		u.Blocker == nil && u.HelpType == nil && u.IsPublicProgress == nil && u.Images == nil
}

// Apply 将非 nil 字段写入项目。
func (u ProjectUpdate) Apply(p *Project) {
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Type != nil {
		p.Type = *u.Type
	}
	if u.Field != nil {
		p.Field = *u.Field
	}
	if u.Stage != nil {
		p.Stage = *u.Stage
	}
	if u.Blocker != nil {
		p.Blocker = *u.Blocker
	}
	if u.HelpType != nil {
		p.HelpType = *u.HelpType
	}
	if u.IsPublicProgress != nil {
		p.IsPublicProgress = *u.IsPublicProgress
	}
	if u.Images != nil {
		p.Images = *u.Images
	}
}

// ProjectFilter 项目列表查询条件。
type ProjectFilter struct {
	Status   ProjectStatus // 为空时默认 active
	Field    string
	Type     string
	Stage    string
	Category string // "ability" 仅能力类 / "project" 非能力类
	Search   string // 标题、瓶颈描述、所有者昵称的模糊匹配
	Page     int
	Limit    int
}

// ProjectWithOwner 列表查询返回的项目及所有者摘要。
type ProjectWithOwner struct {
	Project
	OwnerNickname string `json:"owner_nickname"`
	OwnerEmail    string `json:"owner_email"`
}

// OwnedProject 「我的项目」列表条目，附带收到的意向数。
type OwnedProject struct {
	Project
	IntentsCount int64 `json:"intents_count"`
}
