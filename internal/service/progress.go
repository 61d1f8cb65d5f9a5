package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"garith/backend/internal/domain"
	"garith/backend/internal/monitoring"
	"garith/backend/internal/storage"
)

// ProgressService 项目进度记录。
//
// 追加仅限项目所有者且项目处于 active 状态；查看是公开的，
// 不要求登录。每次追加刷新项目的 updated_at，让有进展的项目
// 在列表排序中保持靠前。
type ProgressService struct {
	progress storage.ProgressRepository
	projects storage.ProjectRepository
	metrics  *monitoring.Metrics
	log      *zap.Logger
}

// NewProgressService 创建进度服务。
func NewProgressService(progress storage.ProgressRepository, projects storage.ProjectRepository, log *zap.Logger) *ProgressService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProgressService{
		progress: progress,
		projects: projects,
		log:      log,
	}
}

// SetMetrics 注入监控指标采集器。
func (s *ProgressService) SetMetrics(metrics *monitoring.Metrics) {
	s.metrics = metrics
}

// AddProgressInput 追加进度所需的输入。
type AddProgressInput struct {
	Content string
	Summary string
}

// Add 为项目追加进度记录。
// 非所有者得到的是项目不存在，不暴露项目归属。
func (s *ProgressService) Add(projectID, callerID string, input AddProgressInput) (*domain.Progress, error) {
	project, err := s.projects.GetProject(projectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != callerID {
		return nil, storage.ErrProjectNotFound
	}
	if project.Status != domain.ProjectActive {
		return nil, ErrProjectNotActive
	}

	record := &domain.Progress{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Content:   input.Content,
		Summary:   input.Summary,
		CreatedAt: time.Now(),
	}
	if err := s.progress.CreateProgress(record); err != nil {
		return nil, fmt.Errorf("failed to create progress: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordProgressCreated()
	}
	s.log.Info("progress added",
		zap.String("project_id", projectID),
		zap.String("progress_id", record.ID),
	)
	return record, nil
}

// List 返回项目的进度记录，按时间倒序。项目不存在时报错。
func (s *ProgressService) List(projectID string) ([]domain.Progress, error) {
	if _, err := s.projects.GetProject(projectID); err != nil {
		return nil, err
	}
	return s.progress.ListProgress(projectID)
}
