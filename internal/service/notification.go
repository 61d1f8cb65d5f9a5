package service

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"garith/backend/internal/cache"
	"garith/backend/internal/domain"
	"garith/backend/internal/monitoring"
	"garith/backend/internal/pool"
	"garith/backend/internal/storage"
)

// Pusher 把新通知实时推送给在线客户端（WebSocket）。
// 推送失败对触发方不可见。
type Pusher interface {
	Push(userID string, n *domain.Notification)
}

// NotificationService 站内通知的落库与分发。
//
// Notify 是纯插入、即发即忘：它在生命周期事件的同一调用栈内
// 同步执行，但其失败不会回滚也不会阻塞触发它的业务操作。
type NotificationService struct {
	repo    storage.NotificationRepository
	pusher  Pusher
	workers *pool.WorkerPool
	counts  *cache.LocalCache
	metrics *monitoring.Metrics
	log     *zap.Logger
}

// NewNotificationService 创建通知服务。
func NewNotificationService(repo storage.NotificationRepository, log *zap.Logger) *NotificationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &NotificationService{
		repo: repo,
		// 未读数被客户端高频轮询，短 TTL 缓存吸收读压力，
		// 所有写路径主动失效
		counts: cache.NewLocalCache(5 * time.Second),
		log:    log,
	}
}

// SetPusher 注入实时推送通道。
func (s *NotificationService) SetPusher(pusher Pusher) {
	s.pusher = pusher
}

// SetWorkerPool 注入协程池后，实时推送改为异步执行。
func (s *NotificationService) SetWorkerPool(workers *pool.WorkerPool) {
	s.workers = workers
}

// SetMetrics 注入监控指标采集器。
func (s *NotificationService) SetMetrics(metrics *monitoring.Metrics) {
	s.metrics = metrics
}

// Notify 落库一条通知并尝试推送。错误只记日志，绝不向触发方传播。
func (s *NotificationService) Notify(toUserID, fromUserID string, typ domain.NotificationType, title, content, relatedID string) {
	n := &domain.Notification{
		ID:         uuid.NewString(),
		ToUserID:   toUserID,
		FromUserID: fromUserID,
		Type:       typ,
		Title:      title,
		Content:    content,
		RelatedID:  relatedID,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.repo.CreateNotification(n); err != nil {
		s.log.Warn("failed to create notification",
			zap.String("to_user_id", toUserID),
			zap.String("type", string(typ)),
			zap.Error(err),
		)
		if s.metrics != nil {
			s.metrics.RecordError("create_notification", "notification")
		}
		return
	}
	s.counts.Delete(toUserID)
	if s.metrics != nil {
		s.metrics.RecordNotificationCreated()
	}

	if s.pusher == nil {
		return
	}
	if s.metrics != nil {
		s.metrics.RecordNotificationPushed()
	}
	if s.workers != nil {
		if s.workers.TrySubmit(func() { s.pusher.Push(toUserID, n) }) {
			return
		}
	}
	s.pusher.Push(toUserID, n)
}

// List 返回用户的通知列表。
func (s *NotificationService) List(userID string, filter domain.NotificationFilter) ([]domain.NotificationWithFrom, error) {
	return s.repo.ListNotifications(userID, filter)
}

// UnreadCount 返回用户未读通知数，短 TTL 缓存命中时不落库。
func (s *NotificationService) UnreadCount(userID string) (int64, error) {
	if v, ok := s.counts.Get(userID); ok {
		return v.(int64), nil
	}

	count, err := s.repo.CountUnread(userID)
	if err != nil {
		return 0, err
	}
	s.counts.Set(userID, count)
	return count, nil
}

// MarkRead 标记单条通知已读。重复调用幂等，read_at 保持首次值。
func (s *NotificationService) MarkRead(id, callerID string) error {
	if err := s.repo.MarkNotificationRead(id, callerID); err != nil {
		return err
	}
	s.counts.Delete(callerID)
	return nil
}

// MarkAllRead 标记用户全部通知已读，无未读时为空操作。
func (s *NotificationService) MarkAllRead(callerID string) error {
	if err := s.repo.MarkAllNotificationsRead(callerID); err != nil {
		return err
	}
	s.counts.Delete(callerID)
	return nil
}
