package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"garith/backend/internal/domain"
	"garith/backend/internal/storage"
)

// Store 使用内存保存全部业务数据，主要用于开发验证和测试。
//
// 所有读写都在一把读写锁下进行；email 和 (projectID, userID)
// 的唯一性在插入时检查，语义与关系库的唯一索引一致。
type Store struct {
	mu            sync.RWMutex
	users         map[string]*domain.User         // userID -> user
	byEmail       map[string]string               // email -> userID
	projects      map[string]*domain.Project      // projectID -> project
	intents       map[string]*domain.Intent       // intentID -> intent
	byProjectUser map[string]string               // projectID + "\x00" + userID -> intentID
	progress      map[string][]*domain.Progress   // projectID -> 按插入顺序的进度记录
	notifications map[string]*domain.Notification // notificationID -> notification
}

// NewStore 创建一个内存存储实例。
func NewStore() *Store {
	return &Store{
		users:         make(map[string]*domain.User),
		byEmail:       make(map[string]string),
		projects:      make(map[string]*domain.Project),
		intents:       make(map[string]*domain.Intent),
		byProjectUser: make(map[string]string),
		progress:      make(map[string][]*domain.Progress),
		notifications: make(map[string]*domain.Notification),
	}
}

// Health 内存存储恒为健康。
func (s *Store) Health() error { return nil }

// Close 内存存储无资源可释放。
func (s *Store) Close() error { return nil }

func pairKey(projectID, userID string) string {
	return projectID + "\x00" + userID
}

// ========== UserRepository ==========

// CreateUser 插入新用户，email 冲突时返回 ErrEmailExists。
func (s *Store) CreateUser(user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[user.Email]; exists {
		return storage.ErrEmailExists
	}

	clone := *user
	s.users[clone.ID] = &clone
	s.byEmail[clone.Email] = clone.ID
	return nil
}

// GetUserByID 根据 ID 获取用户。
func (s *Store) GetUserByID(id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

// GetUserByEmail 根据邮箱获取用户。
func (s *Store) GetUserByEmail(email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	clone := *s.users[id]
	return &clone, nil
}

// UpdateUser 覆盖写入用户记录。
func (s *Store) UpdateUser(user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return storage.ErrUserNotFound
	}
	clone := *user
	s.users[clone.ID] = &clone
	return nil
}

// ========== ProjectRepository ==========

// SaveProject 插入或覆盖项目记录。
func (s *Store) SaveProject(project *domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *project
	s.projects[clone.ID] = &clone
	return nil
}

// GetProject 根据 ID 获取项目。
func (s *Store) GetProject(id string) (*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	project, ok := s.projects[id]
	if !ok {
		return nil, storage.ErrProjectNotFound
	}
	clone := *project
	return &clone, nil
}

// ListProjects 按过滤条件返回项目列表，带所有者摘要。
func (s *Store) ListProjects(filter domain.ProjectFilter) ([]domain.ProjectWithOwner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := filter.Status
	if status == "" {
		status = domain.ProjectActive
	}

	matched := make([]domain.ProjectWithOwner, 0)
	for _, p := range s.projects {
		if p.Status != status {
			continue
		}
		if filter.Field != "" && p.Field != filter.Field {
			continue
		}
		if filter.Type != "" && p.Type != filter.Type {
			continue
		}
		if filter.Stage != "" && p.Stage != filter.Stage {
			continue
		}
		switch filter.Category {
		case "ability":
			if p.Type != "能力" {
				continue
			}
		case "project":
			if p.Type == "能力" {
				continue
			}
		}

		row := domain.ProjectWithOwner{Project: *p}
		if owner, ok := s.users[p.OwnerID]; ok {
			row.OwnerNickname = owner.Nickname
			row.OwnerEmail = owner.Email
		}

		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(p.Title), needle) &&
				!strings.Contains(strings.ToLower(p.Blocker), needle) &&
				!strings.Contains(strings.ToLower(row.OwnerNickname), needle) {
				continue
			}
		}

		matched = append(matched, row)
	}

	// 两级排序：超过 30 天未更新的整体下沉，各级内部按 updated_at 倒序
	cutoff := time.Now().Add(-domain.StaleThreshold)
	sort.SliceStable(matched, func(i, j int) bool {
		iStale := matched[i].UpdatedAt.Before(cutoff)
		jStale := matched[j].UpdatedAt.Before(cutoff)
		if iStale != jStale {
			return !iStale
		}
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})

	return paginate(matched, filter.Page, filter.Limit), nil
}

// ListProjectsByOwner 返回指定所有者的项目，按 updated_at 倒序。
func (s *Store) ListProjectsByOwner(ownerID string, status domain.ProjectStatus, page, limit int) ([]domain.OwnedProject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.OwnedProject, 0)
	for _, p := range s.projects {
		if p.OwnerID != ownerID {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		row := domain.OwnedProject{Project: *p}
		for _, in := range s.intents {
			if in.ProjectID == p.ID {
				row.IntentsCount++
			}
		}
		matched = append(matched, row)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})

	return paginate(matched, page, limit), nil
}

// DeleteProject 删除指定所有者的项目。
func (s *Store) DeleteProject(id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	project, ok := s.projects[id]
	if !ok || project.OwnerID != ownerID {
		return storage.ErrProjectNotFound
	}
	delete(s.projects, id)
	return nil
}

// ========== IntentRepository ==========

// CreateIntent 插入新意向，(project_id, user_id) 冲突时返回 ErrIntentExists。
func (s *Store) CreateIntent(intent *domain.Intent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(intent.ProjectID, intent.UserID)
	if _, exists := s.byProjectUser[key]; exists {
		return storage.ErrIntentExists
	}

	clone := *intent
	s.intents[clone.ID] = &clone
	s.byProjectUser[key] = clone.ID
	return nil
}

// GetIntent 返回属于指定项目的意向。
func (s *Store) GetIntent(intentID, projectID string) (*domain.Intent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	intent, ok := s.intents[intentID]
	if !ok || intent.ProjectID != projectID {
		return nil, storage.ErrIntentNotFound
	}
	clone := *intent
	return &clone, nil
}

// GetIntentByProjectUser 根据 (projectID, userID) 获取意向。
func (s *Store) GetIntentByProjectUser(projectID, userID string) (*domain.Intent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byProjectUser[pairKey(projectID, userID)]
	if !ok {
		return nil, storage.ErrIntentNotFound
	}
	clone := *s.intents[id]
	return &clone, nil
}

// ListIntentsByProject 返回项目收到的全部意向，按 created_at 倒序。
func (s *Store) ListIntentsByProject(projectID string) ([]domain.IntentWithUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.IntentWithUser, 0)
	for _, in := range s.intents {
		if in.ProjectID != projectID {
			continue
		}
		row := domain.IntentWithUser{Intent: *in}
		if user, ok := s.users[in.UserID]; ok {
			row.Nickname = user.Nickname
			row.Email = user.Email
		}
		matched = append(matched, row)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched, nil
}

// ListIntentsByUser 返回用户提交的意向，附带项目摘要。
func (s *Store) ListIntentsByUser(userID string, filter domain.IntentFilter) ([]domain.SubmittedIntent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.SubmittedIntent, 0)
	for _, in := range s.intents {
		if in.UserID != userID {
			continue
		}
		if filter.Status != "" && in.Status != filter.Status {
			continue
		}
		row := domain.SubmittedIntent{Intent: *in}
		if p, ok := s.projects[in.ProjectID]; ok {
			row.ProjectTitle = p.Title
			row.ProjectField = p.Field
			row.ProjectStage = p.Stage
			if owner, ok := s.users[p.OwnerID]; ok {
				row.ProjectOwnerNickname = owner.Nickname
			}
		}
		matched = append(matched, row)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return paginate(matched, filter.Page, filter.Limit), nil
}

// ListIntentsReceived 返回用户作为项目所有者收到的意向。
func (s *Store) ListIntentsReceived(ownerID string, filter domain.IntentFilter) ([]domain.ReceivedIntent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.ReceivedIntent, 0)
	for _, in := range s.intents {
		p, ok := s.projects[in.ProjectID]
		if !ok || p.OwnerID != ownerID {
			continue
		}
		if filter.Status != "" && in.Status != filter.Status {
			continue
		}
		row := domain.ReceivedIntent{Intent: *in, ProjectTitle: p.Title}
		if user, ok := s.users[in.UserID]; ok {
			row.UserNickname = user.Nickname
			row.UserEmail = user.Email
		}
		matched = append(matched, row)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return paginate(matched, filter.Page, filter.Limit), nil
}

// UpdateIntentStatus 无条件改写意向状态。
func (s *Store) UpdateIntentStatus(intentID string, status domain.IntentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	intent, ok := s.intents[intentID]
	if !ok {
		return storage.ErrIntentNotFound
	}
	intent.Status = status
	return nil
}

// ========== ProgressRepository ==========

// CreateProgress 插入进度记录并刷新所属项目的 updated_at，
// 两者在同一把锁下完成。
func (s *Store) CreateProgress(p *domain.Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *p
	s.progress[clone.ProjectID] = append(s.progress[clone.ProjectID], &clone)
	if project, ok := s.projects[clone.ProjectID]; ok {
		project.UpdatedAt = time.Now()
	}
	return nil
}

// ListProgress 返回项目的进度记录，按 created_at 倒序。
func (s *Store) ListProgress(projectID string) ([]domain.Progress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.Progress, 0, len(s.progress[projectID]))
	for _, p := range s.progress[projectID] {
		records = append(records, *p)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

// ========== NotificationRepository ==========

// CreateNotification 插入通知记录。
func (s *Store) CreateNotification(n *domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *n
	s.notifications[clone.ID] = &clone
	return nil
}

// ListNotifications 返回用户的通知，按 created_at 倒序。
func (s *Store) ListNotifications(userID string, filter domain.NotificationFilter) ([]domain.NotificationWithFrom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.NotificationWithFrom, 0)
	for _, n := range s.notifications {
		if n.ToUserID != userID {
			continue
		}
		if filter.UnreadOnly && n.IsRead {
			continue
		}
		row := domain.NotificationWithFrom{Notification: *n}
		if n.FromUserID != "" {
			if from, ok := s.users[n.FromUserID]; ok {
				row.FromUserNickname = from.Nickname
			}
		}
		matched = append(matched, row)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return paginate(matched, filter.Page, filter.Limit), nil
}

// CountUnread 返回用户未读通知数。
func (s *Store) CountUnread(userID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, n := range s.notifications {
		if n.ToUserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

// MarkNotificationRead 标记单条通知已读，幂等。
func (s *Store) MarkNotificationRead(id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok || n.ToUserID != userID {
		return storage.ErrNotificationNotFound
	}
	if !n.IsRead {
		n.IsRead = true
		now := time.Now().UTC()
		n.ReadAt = &now
	}
	return nil
}

// MarkAllNotificationsRead 标记用户全部通知已读，无未读时为空操作。
func (s *Store) MarkAllNotificationsRead(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for _, n := range s.notifications {
		if n.ToUserID == userID && !n.IsRead {
			n.IsRead = true
			readAt := now
			n.ReadAt = &readAt
		}
	}
	return nil
}

// paginate 应用页码和页大小，page 从 1 开始，limit<=0 时不分页。
func paginate[T any](rows []T, page, limit int) []T {
	if limit <= 0 {
		return rows
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(rows) {
		return []T{}
	}
	end := start + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}
