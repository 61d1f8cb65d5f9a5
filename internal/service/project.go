package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"garith/backend/internal/domain"
	"garith/backend/internal/monitoring"
	"garith/backend/internal/storage"
)

var (
	// ErrInvalidStatus 状态不是合法的枚举取值
	ErrInvalidStatus = errors.New("invalid status value")
	// ErrNoFieldsToUpdate 更新请求不包含任何字段
	ErrNoFieldsToUpdate = errors.New("no fields to update")
)

// ProjectService 项目生命周期管理。
//
// 所有写操作都由所有者把关；非所有者探测他人项目时统一返回
// 未找到而不是无权限，避免确认项目存在性。状态可在三个取值间
// 任意切换，closed → active 的重新激活是被保留的源系统行为。
type ProjectService struct {
	projects storage.ProjectRepository
	users    storage.UserRepository
	metrics  *monitoring.Metrics
	log      *zap.Logger
}

// NewProjectService 创建项目服务。
func NewProjectService(projects storage.ProjectRepository, users storage.UserRepository, log *zap.Logger) *ProjectService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProjectService{projects: projects, users: users, log: log}
}

// SetMetrics 注入监控指标采集器。
func (s *ProjectService) SetMetrics(metrics *monitoring.Metrics) {
	s.metrics = metrics
}

// CreateProjectInput 创建项目所需的输入。
type CreateProjectInput struct {
	Title            string
	Type             string
	Field            string
	Stage            string
	Blocker          string
	HelpType         string
	IsPublicProgress bool
	Images           []string
}

// Create 创建新项目，初始状态 active。
func (s *ProjectService) Create(ownerID string, input CreateProjectInput) (*domain.Project, error) {
	now := time.Now().UTC()
	project := &domain.Project{
		ID:               uuid.NewString(),
		OwnerID:          ownerID,
		Title:            input.Title,
		Type:             input.Type,
		Field:            input.Field,
		Stage:            input.Stage,
		Status:           domain.ProjectActive,
		Blocker:          input.Blocker,
		HelpType:         input.HelpType,
		IsPublicProgress: input.IsPublicProgress,
		Images:           input.Images,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if project.Images == nil {
		project.Images = []string{}
	}

	if err := s.projects.SaveProject(project); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordProjectCreated()
	}
	s.log.Info("project created",
		zap.String("project_id", project.ID),
		zap.String("owner_id", ownerID),
	)
	return project, nil
}

// Get 返回项目及所有者摘要。
func (s *ProjectService) Get(id string) (*domain.ProjectWithOwner, error) {
	project, err := s.projects.GetProject(id)
	if err != nil {
		return nil, err
	}

	row := &domain.ProjectWithOwner{Project: *project}
	if owner, err := s.users.GetUserByID(project.OwnerID); err == nil {
		row.OwnerNickname = owner.Nickname
		row.OwnerEmail = owner.Email
	}
	return row, nil
}

// List 按过滤条件返回项目列表（两级排序见仓储层）。
func (s *ProjectService) List(filter domain.ProjectFilter) ([]domain.ProjectWithOwner, error) {
	return s.projects.ListProjects(filter)
}

// ListByOwner 返回指定所有者的项目列表。
func (s *ProjectService) ListByOwner(ownerID string, status domain.ProjectStatus, page, limit int) ([]domain.OwnedProject, error) {
	if status != "" && !status.IsValid() {
		return nil, ErrInvalidStatus
	}
	return s.projects.ListProjectsByOwner(ownerID, status, page, limit)
}

// Update 应用可选字段更新并刷新 updated_at。
// 非所有者调用返回 ErrProjectNotFound。
func (s *ProjectService) Update(id, callerID string, update domain.ProjectUpdate) error {
	if update.IsEmpty() {
		return ErrNoFieldsToUpdate
	}

	project, err := s.projects.GetProject(id)
	if err != nil {
		return err
	}
	if project.OwnerID != callerID {
		return storage.ErrProjectNotFound
	}

	update.Apply(project)
	project.UpdatedAt = time.Now().UTC()
	return s.projects.SaveProject(project)
}

// UpdateStatus 切换项目状态。任意状态间可互达，包括重新激活
// closed 项目。非所有者调用返回 ErrProjectNotFound。
func (s *ProjectService) UpdateStatus(id, callerID string, status domain.ProjectStatus) error {
	if !status.IsValid() {
		return ErrInvalidStatus
	}

	project, err := s.projects.GetProject(id)
	if err != nil {
		return err
	}
	if project.OwnerID != callerID {
		return storage.ErrProjectNotFound
	}

	project.Status = status
	project.UpdatedAt = time.Now().UTC()
	if err := s.projects.SaveProject(project); err != nil {
		return err
	}

	s.log.Info("project status updated",
		zap.String("project_id", id),
		zap.String("status", string(status)),
	)
	return nil
}

// Delete 删除项目。非所有者调用返回 ErrProjectNotFound。
func (s *ProjectService) Delete(id, callerID string) error {
	if err := s.projects.DeleteProject(id, callerID); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.RecordProjectDeleted()
	}
	s.log.Info("project deleted", zap.String("project_id", id))
	return nil
}
