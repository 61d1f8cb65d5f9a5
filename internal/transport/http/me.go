package httptransport

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"garith/backend/internal/domain"
	"garith/backend/internal/service"
	"garith/backend/internal/storage"
)

// MeHandler 处理当前用户视角的 HTTP 请求
type MeHandler struct {
	users    *service.UserService
	projects *service.ProjectService
	intents  *service.IntentService
	log      *zap.Logger
}

// NewMeHandler 创建当前用户处理器实例
func NewMeHandler(users *service.UserService, projects *service.ProjectService, intents *service.IntentService, log *zap.Logger) *MeHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &MeHandler{users: users, projects: projects, intents: intents, log: log}
}

type updateProfileRequest struct {
	Nickname *string   `json:"nickname"`
	Bio      *string   `json:"bio"`
	Skills   *[]string `json:"skills"`
}

// GetProfile 返回当前用户资料
func (h *MeHandler) GetProfile(c *gin.Context) {
	user, err := h.users.Get(currentUserID(c))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			NotFound(c, MsgUserNotFound)
			return
		}
		h.log.Error("failed to get profile", zap.Error(err))
		InternalError(c, MsgProfileGetFailed)
		return
	}

	Success(c, user)
}

// UpdateProfile 更新当前用户资料的可选字段
func (h *MeHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	err := h.users.UpdateProfile(currentUserID(c), domain.ProfileUpdate{
		Nickname: req.Nickname,
		Bio:      req.Bio,
		Skills:   req.Skills,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoFieldsToUpdate):
			BadRequest(c, MsgNoFieldsToUpdate)
		case errors.Is(err, storage.ErrUserNotFound):
			NotFound(c, MsgUserNotFound)
		default:
			h.log.Error("failed to update profile", zap.Error(err))
			InternalError(c, MsgProfileUpdateFailed)
		}
		return
	}

	Success(c, gin.H{"message": "资料已更新"})
}

// MyProjects 返回当前用户创建的项目
func (h *MeHandler) MyProjects(c *gin.Context) {
	page, limit := parsePaging(c)
	status := domain.ProjectStatus(c.Query("status"))

	projects, err := h.projects.ListByOwner(currentUserID(c), status, page, limit)
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatus) {
			BadRequest(c, MsgInvalidStatus)
			return
		}
		h.log.Error("failed to list own projects", zap.Error(err))
		InternalError(c, MsgProjectListFailed)
		return
	}

	Success(c, gin.H{
		"projects": projects,
		"page":     page,
		"limit":    limit,
	})
}

// MyIntents 返回当前用户提交的意向
func (h *MeHandler) MyIntents(c *gin.Context) {
	page, limit := parsePaging(c)
	filter := domain.IntentFilter{
		Status: domain.IntentStatus(c.Query("status")),
		Page:   page,
		Limit:  limit,
	}

	intents, err := h.intents.ListByUser(currentUserID(c), filter)
	if err != nil {
		h.log.Error("failed to list submitted intents", zap.Error(err))
		InternalError(c, MsgIntentListFailed)
		return
	}

	Success(c, gin.H{
		"intents": intents,
		"page":    page,
		"limit":   limit,
	})
}

// ReceivedIntents 返回当前用户作为项目所有者收到的意向
func (h *MeHandler) ReceivedIntents(c *gin.Context) {
	page, limit := parsePaging(c)
	filter := domain.IntentFilter{
		Status: domain.IntentStatus(c.Query("status")),
		Page:   page,
		Limit:  limit,
	}

	intents, err := h.intents.ListReceived(currentUserID(c), filter)
	if err != nil {
		h.log.Error("failed to list received intents", zap.Error(err))
		InternalError(c, MsgIntentListFailed)
		return
	}

	Success(c, gin.H{
		"intents": intents,
		"page":    page,
		"limit":   limit,
	})
}
