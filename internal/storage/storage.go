package storage

import (
	"errors"

	"garith/backend/internal/domain"
)

var (
	// ErrUserNotFound 用户未找到
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailExists 邮箱已存在（users.email 唯一约束）
	ErrEmailExists = errors.New("email already exists")
	// ErrProjectNotFound 项目未找到
	ErrProjectNotFound = errors.New("project not found")
	// ErrIntentNotFound 意向未找到
	ErrIntentNotFound = errors.New("intent not found")
	// ErrIntentExists 意向已存在（(project_id, user_id) 唯一约束）
	ErrIntentExists = errors.New("intent already exists")
	// ErrNotificationNotFound 通知未找到
	ErrNotificationNotFound = errors.New("notification not found")
)

// UserRepository 定义用户数据存取操作。
type UserRepository interface {
	// CreateUser 插入新用户；email 冲突时返回 ErrEmailExists。
	CreateUser(user *domain.User) error
	GetUserByID(id string) (*domain.User, error)
	GetUserByEmail(email string) (*domain.User, error)
	UpdateUser(user *domain.User) error
}

// ProjectRepository 定义项目数据存取操作。
type ProjectRepository interface {
	SaveProject(project *domain.Project) error
	GetProject(id string) (*domain.Project, error)
	// ListProjects 按两级排序返回项目：超过 30 天未更新的整体下沉，
	// 其余按 updated_at 倒序。
	ListProjects(filter domain.ProjectFilter) ([]domain.ProjectWithOwner, error)
	ListProjectsByOwner(ownerID string, status domain.ProjectStatus, page, limit int) ([]domain.OwnedProject, error)
	// DeleteProject 删除指定所有者的项目；无匹配行时返回 ErrProjectNotFound。
	DeleteProject(id, ownerID string) error
}

// IntentRepository 定义合作意向数据存取操作。
type IntentRepository interface {
	// CreateIntent 插入新意向；(project_id, user_id) 冲突时返回 ErrIntentExists。
	CreateIntent(intent *domain.Intent) error
	// GetIntent 返回属于指定项目的意向；不存在或不属于该项目时返回 ErrIntentNotFound。
	GetIntent(intentID, projectID string) (*domain.Intent, error)
	GetIntentByProjectUser(projectID, userID string) (*domain.Intent, error)
	ListIntentsByProject(projectID string) ([]domain.IntentWithUser, error)
	ListIntentsByUser(userID string, filter domain.IntentFilter) ([]domain.SubmittedIntent, error)
	ListIntentsReceived(ownerID string, filter domain.IntentFilter) ([]domain.ReceivedIntent, error)
	UpdateIntentStatus(intentID string, status domain.IntentStatus) error
}

// ProgressRepository 定义项目进度数据存取操作。
type ProgressRepository interface {
	// CreateProgress 插入进度记录，并同时刷新所属项目的 updated_at。
	CreateProgress(p *domain.Progress) error
	// ListProgress 按 created_at 倒序返回项目的全部进度记录。
	ListProgress(projectID string) ([]domain.Progress, error)
}

// NotificationRepository 定义通知数据存取操作。
type NotificationRepository interface {
	CreateNotification(n *domain.Notification) error
	ListNotifications(userID string, filter domain.NotificationFilter) ([]domain.NotificationWithFrom, error)
	CountUnread(userID string) (int64, error)
	// MarkNotificationRead 标记单条通知已读；通知不属于 userID 时返回
	// ErrNotificationNotFound。重复标记是幂等的，read_at 保持首次值。
	MarkNotificationRead(id, userID string) error
	MarkAllNotificationsRead(userID string) error
}

// Store 聚合全部仓储能力。
type Store interface {
	UserRepository
	ProjectRepository
	IntentRepository
	ProgressRepository
	NotificationRepository

	Health() error
	Close() error
}
