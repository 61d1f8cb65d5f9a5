package httptransport

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"garith/backend/internal/domain"
	"garith/backend/internal/service"
	"garith/backend/internal/storage"
)

// NotificationHandler 处理站内通知相关的 HTTP 请求
type NotificationHandler struct {
	notifications *service.NotificationService
	log           *zap.Logger
}

// NewNotificationHandler 创建通知处理器实例
func NewNotificationHandler(notifications *service.NotificationService, log *zap.Logger) *NotificationHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &NotificationHandler{notifications: notifications, log: log}
}

// List 返回当前用户的通知列表
func (h *NotificationHandler) List(c *gin.Context) {
	page, limit := parsePaging(c)
	filter := domain.NotificationFilter{
		UnreadOnly: c.Query("unread_only") == "true",
		Page:       page,
		Limit:      limit,
	}

	notifications, err := h.notifications.List(currentUserID(c), filter)
	if err != nil {
		h.log.Error("failed to list notifications", zap.Error(err))
		InternalError(c, MsgNotificationListFailed)
		return
	}

	Success(c, gin.H{
		"notifications": notifications,
		"page":          page,
		"limit":         limit,
	})
}

// UnreadCount 返回当前用户的未读通知数
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.notifications.UnreadCount(currentUserID(c))
	if err != nil {
		h.log.Error("failed to count unread notifications", zap.Error(err))
		InternalError(c, MsgNotificationListFailed)
		return
	}

	Success(c, gin.H{"count": count})
}

// MarkRead 标记单条通知为已读。重复标记不报错，read_at 保持
// 首次标记的时间。
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	err := h.notifications.MarkRead(c.Param("id"), currentUserID(c))
	if err != nil {
		if errors.Is(err, storage.ErrNotificationNotFound) {
			NotFound(c, MsgNotificationNotFound)
			return
		}
		h.log.Error("failed to mark notification read", zap.Error(err))
		InternalError(c, MsgMarkReadFailed)
		return
	}

	Success(c, gin.H{"message": "已标记为已读"})
}

// MarkAllRead 标记当前用户的全部通知为已读
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.notifications.MarkAllRead(currentUserID(c)); err != nil {
		h.log.Error("failed to mark all notifications read", zap.Error(err))
		InternalError(c, MsgMarkReadFailed)
		return
	}

	Success(c, gin.H{"message": "已全部标记为已读"})
}
