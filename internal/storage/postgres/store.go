package postgres

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"garith/backend/internal/domain"
	"garith/backend/internal/storage"
)

// Store 关系库存储实现（PostgreSQL / MySQL）。
//
// email 与 (project_id, user_id) 的唯一性由数据库唯一索引保证，
// 并发下重复插入有且仅有一个成功。
type Store struct {
	db *gorm.DB
}

// NewStore 创建 PostgreSQL 存储实例。
func NewStore(dsn string) (*Store, error) {
	return NewStoreWithDialector(postgres.Open(dsn))
}

// NewMySQLStore 创建 MySQL 存储实例。
func NewMySQLStore(dsn string) (*Store, error) {
	return NewStoreWithDialector(mysql.Open(dsn))
}

// NewStoreWithDialector 使用指定的 GORM dialector 创建存储实例。
func NewStoreWithDialector(dialector gorm.Dialector) (*Store, error) {
	config := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true, // 唯一约束冲突翻译为 gorm.ErrDuplicatedKey
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(dialector, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate 自动迁移数据库表结构。
func (s *Store) migrate() error {
	return s.db.AutoMigrate(
		&domain.User{},
		&domain.Project{},
		&domain.Intent{},
		&domain.Progress{},
		&domain.Notification{},
	)
}

// ConfigurePool 按配置调整连接池参数。
func (s *Store) ConfigurePool(maxOpen, maxIdle int, maxLifetime time.Duration) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(maxLifetime)
	return nil
}

// Close 关闭数据库连接。
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health 检查数据库连通性。
func (s *Store) Health() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// ========== UserRepository ==========

// CreateUser 插入新用户，email 冲突时返回 ErrEmailExists。
func (s *Store) CreateUser(user *domain.User) error {
	if err := s.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return storage.ErrEmailExists
		}
		return err
	}
	return nil
}

// GetUserByID 根据 ID 获取用户。
func (s *Store) GetUserByID(id string) (*domain.User, error) {
	var user domain.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail 根据邮箱获取用户。
func (s *Store) GetUserByEmail(email string) (*domain.User, error) {
	var user domain.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateUser 覆盖写入用户记录。
func (s *Store) UpdateUser(user *domain.User) error {
	return s.db.Save(user).Error
}

// ========== ProjectRepository ==========

// SaveProject 插入或覆盖项目记录。
func (s *Store) SaveProject(project *domain.Project) error {
	return s.db.Save(project).Error
}

// GetProject 根据 ID 获取项目。
func (s *Store) GetProject(id string) (*domain.Project, error) {
	var project domain.Project
	if err := s.db.Where("id = ?", id).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

// staleOrderClause 构造两级排序：超过 30 天未更新的整体下沉，
// 其余按 updated_at 倒序。时间由服务端生成，无注入面。
func staleOrderClause() string {
	cutoff := time.Now().UTC().Add(-domain.StaleThreshold).Format("2006-01-02 15:04:05")
	return fmt.Sprintf(
		"CASE WHEN projects.updated_at < '%s' THEN 2 ELSE 1 END, projects.updated_at DESC", cutoff)
}

// ListProjects 按过滤条件返回项目列表，带所有者摘要。
func (s *Store) ListProjects(filter domain.ProjectFilter) ([]domain.ProjectWithOwner, error) {
	status := filter.Status
	if status == "" {
		status = domain.ProjectActive
	}

	query := s.db.Table("projects").
		Select("projects.*, users.nickname AS owner_nickname, users.email AS owner_email").
		Joins("JOIN users ON users.id = projects.owner_id").
		Where("projects.status = ?", status)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(
			"projects.title LIKE ? OR projects.blocker LIKE ? OR users.nickname LIKE ?",
			pattern, pattern, pattern)
	}
	switch filter.Category {
	case "ability":
		query = query.Where("projects.type = ?", "能力")
	case "project":
		query = query.Where("projects.type != ?", "能力")
	}
	if filter.Field != "" {
		query = query.Where("projects.field = ?", filter.Field)
	}
	if filter.Type != "" {
		query = query.Where("projects.type = ?", filter.Type)
	}
	if filter.Stage != "" {
		query = query.Where("projects.stage = ?", filter.Stage)
	}

	query = query.Order(staleOrderClause())
	query = applyPaging(query, filter.Page, filter.Limit)

	var rows []domain.ProjectWithOwner
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListProjectsByOwner 返回指定所有者的项目，附带收到的意向数。
func (s *Store) ListProjectsByOwner(ownerID string, status domain.ProjectStatus, page, limit int) ([]domain.OwnedProject, error) {
	query := s.db.Table("projects").
		Select("projects.*, (SELECT COUNT(*) FROM intents WHERE intents.project_id = projects.id) AS intents_count").
		Where("projects.owner_id = ?", ownerID)

	if status != "" {
		query = query.Where("projects.status = ?", status)
	}

	query = query.Order("projects.updated_at DESC")
	query = applyPaging(query, page, limit)

	var rows []domain.OwnedProject
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteProject 删除指定所有者的项目。
func (s *Store) DeleteProject(id, ownerID string) error {
	result := s.db.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&domain.Project{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return storage.ErrProjectNotFound
	}
	return nil
}

// ========== IntentRepository ==========

// CreateIntent 插入新意向，(project_id, user_id) 冲突时返回 ErrIntentExists。
func (s *Store) CreateIntent(intent *domain.Intent) error {
	if err := s.db.Create(intent).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return storage.ErrIntentExists
		}
		return err
	}
	return nil
}

// GetIntent 返回属于指定项目的意向。
func (s *Store) GetIntent(intentID, projectID string) (*domain.Intent, error) {
	var intent domain.Intent
	err := s.db.Where("id = ? AND project_id = ?", intentID, projectID).First(&intent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrIntentNotFound
		}
		return nil, err
	}
	return &intent, nil
}

// GetIntentByProjectUser 根据 (projectID, userID) 获取意向。
func (s *Store) GetIntentByProjectUser(projectID, userID string) (*domain.Intent, error) {
	var intent domain.Intent
	err := s.db.Where("project_id = ? AND user_id = ?", projectID, userID).First(&intent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrIntentNotFound
		}
		return nil, err
	}
	return &intent, nil
}

// ListIntentsByProject 返回项目收到的全部意向，附带提交者信息。
func (s *Store) ListIntentsByProject(projectID string) ([]domain.IntentWithUser, error) {
	var rows []domain.IntentWithUser
	err := s.db.Table("intents").
		Select("intents.*, users.nickname AS nickname, users.email AS email").
		Joins("JOIN users ON users.id = intents.user_id").
		Where("intents.project_id = ?", projectID).
		Order("intents.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListIntentsByUser 返回用户提交的意向，附带项目摘要。
func (s *Store) ListIntentsByUser(userID string, filter domain.IntentFilter) ([]domain.SubmittedIntent, error) {
	query := s.db.Table("intents").
		Select("intents.*, projects.title AS project_title, projects.field AS project_field, "+
			"projects.stage AS project_stage, users.nickname AS project_owner_nickname").
		Joins("JOIN projects ON projects.id = intents.project_id").
		Joins("JOIN users ON users.id = projects.owner_id").
		Where("intents.user_id = ?", userID)

	if filter.Status != "" {
		query = query.Where("intents.status = ?", filter.Status)
	}

	query = query.Order("intents.created_at DESC")
	query = applyPaging(query, filter.Page, filter.Limit)

	var rows []domain.SubmittedIntent
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListIntentsReceived 返回用户作为项目所有者收到的意向。
func (s *Store) ListIntentsReceived(ownerID string, filter domain.IntentFilter) ([]domain.ReceivedIntent, error) {
	query := s.db.Table("intents").
		Select("intents.*, projects.title AS project_title, users.nickname AS user_nickname, "+
			"users.email AS user_email").
		Joins("JOIN projects ON projects.id = intents.project_id").
		Joins("JOIN users ON users.id = intents.user_id").
		Where("projects.owner_id = ?", ownerID)

	if filter.Status != "" {
		query = query.Where("intents.status = ?", filter.Status)
	}

	query = query.Order("intents.created_at DESC")
	query = applyPaging(query, filter.Page, filter.Limit)

	var rows []domain.ReceivedIntent
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateIntentStatus 无条件改写意向状态。
func (s *Store) UpdateIntentStatus(intentID string, status domain.IntentStatus) error {
	result := s.db.Model(&domain.Intent{}).Where("id = ?", intentID).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return storage.ErrIntentNotFound
	}
	return nil
}

// ========== ProgressRepository ==========

// CreateProgress 插入进度记录并刷新所属项目的 updated_at，
// 两步在同一事务内完成。
func (s *Store) CreateProgress(p *domain.Progress) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Project{}).
			Where("id = ?", p.ProjectID).
			Update("updated_at", time.Now().UTC()).Error
	})
}

// ListProgress 返回项目的进度记录，按 created_at 倒序。
func (s *Store) ListProgress(projectID string) ([]domain.Progress, error) {
	records := make([]domain.Progress, 0)
	err := s.db.Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&records).Error
	return records, err
}

// ========== NotificationRepository ==========

// CreateNotification 插入通知记录。
func (s *Store) CreateNotification(n *domain.Notification) error {
	return s.db.Create(n).Error
}

// ListNotifications 返回用户的通知，附带发送方昵称。
func (s *Store) ListNotifications(userID string, filter domain.NotificationFilter) ([]domain.NotificationWithFrom, error) {
	query := s.db.Table("notifications").
		Select("notifications.*, users.nickname AS from_user_nickname").
		Joins("LEFT JOIN users ON users.id = notifications.from_user_id").
		Where("notifications.to_user_id = ?", userID)

	if filter.UnreadOnly {
		query = query.Where("notifications.is_read = ?", false)
	}

	query = query.Order("notifications.created_at DESC")
	query = applyPaging(query, filter.Page, filter.Limit)

	var rows []domain.NotificationWithFrom
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountUnread 返回用户未读通知数。
func (s *Store) CountUnread(userID string) (int64, error) {
	var count int64
	err := s.db.Model(&domain.Notification{}).
		Where("to_user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkNotificationRead 标记单条通知已读，幂等：已读的通知不再改写 read_at。
func (s *Store) MarkNotificationRead(id, userID string) error {
	now := time.Now().UTC()
	result := s.db.Model(&domain.Notification{}).
		Where("id = ? AND to_user_id = ? AND is_read = ?", id, userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// 没有命中未读行：区分「已读」与「不存在/不属于该用户」
	var count int64
	if err := s.db.Model(&domain.Notification{}).
		Where("id = ? AND to_user_id = ?", id, userID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return storage.ErrNotificationNotFound
	}
	return nil
}

// MarkAllNotificationsRead 标记用户全部通知已读，无未读时为空操作。
func (s *Store) MarkAllNotificationsRead(userID string) error {
	now := time.Now().UTC()
	return s.db.Model(&domain.Notification{}).
		Where("to_user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error
}

// applyPaging 应用页码和页大小，page 从 1 开始，limit<=0 时不分页。
func applyPaging(query *gorm.DB, page, limit int) *gorm.DB {
	if limit <= 0 {
		return query
	}
	if page < 1 {
		page = 1
	}
	return query.Limit(limit).Offset((page - 1) * limit)
}
