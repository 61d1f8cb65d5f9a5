package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"garith/backend/internal/domain"
	"garith/backend/internal/monitoring"
	"garith/backend/internal/storage"
)

var (
	// ErrProjectNotActive 项目已暂停或关闭，不接收新意向
	ErrProjectNotActive = errors.New("project is not accepting intents")
	// ErrOwnProject 不能给自己的项目提交意向
	ErrOwnProject = errors.New("cannot submit intent to own project")
)

// IntentService 合作意向工作流。
//
// Submit 的校验顺序是固定的：项目存在 → 状态 active → 非重复
// 提交 → 非自荐。重复检查先于自荐检查，两个条件同时满足时
// 调用方观察到的是重复错误，这是对源系统行为的保留。
type IntentService struct {
	intents       storage.IntentRepository
	projects      storage.ProjectRepository
	notifications *NotificationService
	metrics       *monitoring.Metrics
	log           *zap.Logger
}

// NewIntentService 创建意向服务。
func NewIntentService(intents storage.IntentRepository, projects storage.ProjectRepository, notifications *NotificationService, log *zap.Logger) *IntentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &IntentService{
		intents:       intents,
		projects:      projects,
		notifications: notifications,
		log:           log,
	}
}

// SetMetrics 注入监控指标采集器。
func (s *IntentService) SetMetrics(metrics *monitoring.Metrics) {
	s.metrics = metrics
}

// SubmitIntentInput 提交意向所需的输入。
type SubmitIntentInput struct {
	Offer   string
	Expect  string
	Contact string
}

// Submit 提交合作意向，成功后通知项目所有者。
// 通知是即发即忘的：它的失败不影响意向本身的落库结果。
func (s *IntentService) Submit(projectID, userID string, input SubmitIntentInput) (*domain.Intent, error) {
	project, err := s.projects.GetProject(projectID)
	if err != nil {
		return nil, err
	}

	if project.Status != domain.ProjectActive {
		return nil, ErrProjectNotActive
	}

	if _, err := s.intents.GetIntentByProjectUser(projectID, userID); err == nil {
		return nil, storage.ErrIntentExists
	} else if !errors.Is(err, storage.ErrIntentNotFound) {
		return nil, err
	}

	if project.OwnerID == userID {
		return nil, ErrOwnProject
	}

	intent := &domain.Intent{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		UserID:    userID,
		Offer:     input.Offer,
		Expect:    input.Expect,
		Contact:   input.Contact,
		Status:    domain.IntentSubmitted,
		CreatedAt: time.Now().UTC(),
	}

	// 预检和插入之间存在并发窗口，唯一约束裁决：恰好一个成功
	if err := s.intents.CreateIntent(intent); err != nil {
		return nil, err
	}

	if s.notifications != nil {
		s.notifications.Notify(
			project.OwnerID,
			userID,
			domain.NotifyIntentReceived,
			"收到新的合作意向",
			fmt.Sprintf("你的项目「%s」收到一条新的合作意向", project.Title),
			intent.ID,
		)
	}

	if s.metrics != nil {
		s.metrics.RecordIntentSubmitted()
	}
	s.log.Info("intent submitted",
		zap.String("intent_id", intent.ID),
		zap.String("project_id", projectID),
		zap.String("user_id", userID),
	)
	return intent, nil
}

// ListForProject 返回项目收到的意向，仅项目所有者可见。
// 非所有者调用返回 ErrProjectNotFound。
func (s *IntentService) ListForProject(projectID, callerID string) ([]domain.IntentWithUser, error) {
	project, err := s.projects.GetProject(projectID)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != callerID {
		return nil, storage.ErrProjectNotFound
	}
	return s.intents.ListIntentsByProject(projectID)
}

// ListByUser 返回用户提交的意向。
func (s *IntentService) ListByUser(userID string, filter domain.IntentFilter) ([]domain.SubmittedIntent, error) {
	return s.intents.ListIntentsByUser(userID, filter)
}

// ListReceived 返回用户作为项目所有者收到的意向。
func (s *IntentService) ListReceived(ownerID string, filter domain.IntentFilter) ([]domain.ReceivedIntent, error) {
	return s.intents.ListIntentsReceived(ownerID, filter)
}

// UpdateStatus 改写意向状态，仅项目所有者可操作。
// 三个状态任意互达，不做迁移顺序校验。
func (s *IntentService) UpdateStatus(projectID, intentID, callerID string, status domain.IntentStatus) error {
	if !status.IsValid() {
		return ErrInvalidStatus
	}

	project, err := s.projects.GetProject(projectID)
	if err != nil {
		return err
	}
	if project.OwnerID != callerID {
		return storage.ErrProjectNotFound
	}

	if _, err := s.intents.GetIntent(intentID, projectID); err != nil {
		return err
	}

	if err := s.intents.UpdateIntentStatus(intentID, status); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.RecordIntentUpdated(string(status))
	}
	return nil
}
