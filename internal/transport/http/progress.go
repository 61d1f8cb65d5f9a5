package httptransport

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"garith/backend/internal/service"
	"garith/backend/internal/storage"
)

// ProgressHandler 处理项目进度相关的 HTTP 请求
type ProgressHandler struct {
	progress *service.ProgressService
	log      *zap.Logger
}

// NewProgressHandler 创建进度处理器实例
func NewProgressHandler(progress *service.ProgressService, log *zap.Logger) *ProgressHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProgressHandler{progress: progress, log: log}
}

type addProgressRequest struct {
	Content string `json:"content" binding:"required"`
	Summary string `json:"summary"`
}

// Add 为项目追加进度记录，仅项目所有者可用
func (h *ProgressHandler) Add(c *gin.Context) {
	var req addProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	record, err := h.progress.Add(c.Param("id"), currentUserID(c), service.AddProgressInput{
		Content: req.Content,
		Summary: req.Summary,
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrProjectNotFound):
			NotFound(c, MsgProjectNotFound)
		case errors.Is(err, service.ErrProjectNotActive):
			BadRequest(c, MsgProgressNotActive)
		default:
			h.log.Error("failed to add progress", zap.Error(err))
			InternalError(c, MsgProgressAddFailed)
		}
		return
	}

	Created(c, record)
}

// List 返回项目的进度记录，无需登录
func (h *ProgressHandler) List(c *gin.Context) {
	records, err := h.progress.List(c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrProjectNotFound) {
			NotFound(c, MsgProjectNotFound)
			return
		}
		h.log.Error("failed to list progress", zap.Error(err))
		InternalError(c, MsgProgressListFailed)
		return
	}

	Success(c, records)
}
