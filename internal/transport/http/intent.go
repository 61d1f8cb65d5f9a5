package httptransport

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"garith/backend/internal/domain"
	"garith/backend/internal/service"
	"garith/backend/internal/storage"
)

// IntentHandler 处理合作意向相关的 HTTP 请求
type IntentHandler struct {
	intents *service.IntentService
	log     *zap.Logger
}

// NewIntentHandler 创建意向处理器实例
func NewIntentHandler(intents *service.IntentService, log *zap.Logger) *IntentHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &IntentHandler{intents: intents, log: log}
}

type submitIntentRequest struct {
	Offer   string `json:"offer" binding:"required"`
	Expect  string `json:"expect" binding:"required"`
	Contact string `json:"contact" binding:"required"`
}

type updateIntentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// Submit 向项目提交合作意向
func (h *IntentHandler) Submit(c *gin.Context) {
	var req submitIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	intent, err := h.intents.Submit(c.Param("id"), currentUserID(c), service.SubmitIntentInput{
		Offer:   req.Offer,
		Expect:  req.Expect,
		Contact: req.Contact,
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrProjectNotFound):
			NotFound(c, MsgProjectNotFound)
		case errors.Is(err, service.ErrProjectNotActive):
			BadRequest(c, MsgProjectNotActive)
		case errors.Is(err, storage.ErrIntentExists):
			Conflict(c, MsgIntentExists)
		case errors.Is(err, service.ErrOwnProject):
			Forbidden(c, MsgOwnProject)
		default:
			h.log.Error("failed to submit intent", zap.Error(err))
			InternalError(c, MsgIntentSubmitFailed)
		}
		return
	}

	Created(c, intent)
}

// ListForProject 返回项目收到的意向，仅项目所有者可见
func (h *IntentHandler) ListForProject(c *gin.Context) {
	intents, err := h.intents.ListForProject(c.Param("id"), currentUserID(c))
	if err != nil {
		if errors.Is(err, storage.ErrProjectNotFound) {
			NotFound(c, MsgProjectNotFound)
			return
		}
		h.log.Error("failed to list intents", zap.Error(err))
		InternalError(c, MsgIntentListFailed)
		return
	}

	Success(c, gin.H{"intents": intents})
}

// UpdateStatus 改写意向状态，仅项目所有者可操作
func (h *IntentHandler) UpdateStatus(c *gin.Context) {
	var req updateIntentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	err := h.intents.UpdateStatus(
		c.Param("id"),
		c.Param("intentId"),
		currentUserID(c),
		domain.IntentStatus(req.Status),
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			BadRequest(c, MsgInvalidStatus)
		case errors.Is(err, storage.ErrProjectNotFound):
			NotFound(c, MsgProjectNotFound)
		case errors.Is(err, storage.ErrIntentNotFound):
			NotFound(c, MsgIntentNotFound)
		default:
			h.log.Error("failed to update intent status", zap.Error(err))
			InternalError(c, MsgIntentUpdateFailed)
		}
		return
	}

	Success(c, gin.H{"message": "状态已更新"})
}
