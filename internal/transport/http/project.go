package httptransport

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"garith/backend/internal/domain"
	"garith/backend/internal/service"
	"garith/backend/internal/storage"
)

// ProjectHandler 处理项目相关的 HTTP 请求
type ProjectHandler struct {
	projects *service.ProjectService
	log      *zap.Logger
}

// NewProjectHandler 创建项目处理器实例
func NewProjectHandler(projects *service.ProjectService, log *zap.Logger) *ProjectHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProjectHandler{projects: projects, log: log}
}

type createProjectRequest struct {
	Title            string   `json:"title" binding:"required"`
	Type             string   `json:"type"`
	Field            string   `json:"field"`
	Stage            string   `json:"stage"`
	Blocker          string   `json:"blocker"`
	HelpType         string   `json:"help_type"`
	IsPublicProgress bool     `json:"is_public_progress"`
	Images           []string `json:"images"`
}

// updateProjectRequest 可选字段更新。help_type 和 is_public_progress
// 同时接受 snake_case 与 camelCase 两种键名，历史客户端两种都在发。
type updateProjectRequest struct {
	Title            *string   `json:"title"`
	Type             *string   `json:"type"`
	Field            *string   `json:"field"`
	Stage            *string   `json:"stage"`
	Blocker          *string   `json:"blocker"`
	HelpType         *string   `json:"help_type"`
	HelpTypeAlt      *string   `json:"helpType"`
	IsPublicProgress *bool     `json:"is_public_progress"`
	IsPublicAlt      *bool     `json:"isPublicProgress"`
	Images           *[]string `json:"images"`
}

func (r updateProjectRequest) toUpdate() domain.ProjectUpdate {
	update := domain.ProjectUpdate{
		Title:            r.Title,
		Type:             r.Type,
		Field:            r.Field,
		Stage:            r.Stage,
		Blocker:          r.Blocker,
		HelpType:         r.HelpType,
		IsPublicProgress: r.IsPublicProgress,
		Images:           r.Images,
	}
	if update.HelpType == nil {
		update.HelpType = r.HelpTypeAlt
	}
	if update.IsPublicProgress == nil {
		update.IsPublicProgress = r.IsPublicAlt
	}
	return update
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// List 返回项目列表，支持筛选与分页
func (h *ProjectHandler) List(c *gin.Context) {
	page, limit := parsePaging(c)
	filter := domain.ProjectFilter{
		Status:   domain.ProjectStatus(c.Query("status")),
		Field:    c.Query("field"),
		Type:     c.Query("type"),
		Stage:    c.Query("stage"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Page:     page,
		Limit:    limit,
	}

	projects, err := h.projects.List(filter)
	if err != nil {
		h.log.Error("failed to list projects", zap.Error(err))
		InternalError(c, MsgProjectListFailed)
		return
	}

	Success(c, gin.H{
		"projects": projects,
		"page":     page,
		"limit":    limit,
	})
}

// Get 返回项目详情及所有者摘要
func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.projects.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrProjectNotFound) {
			NotFound(c, MsgProjectNotFound)
			return
		}
		h.log.Error("failed to get project", zap.Error(err))
		InternalError(c, MsgProjectGetFailed)
		return
	}

	Success(c, project)
}

// Create 创建新项目
func (h *ProjectHandler) Create(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	project, err := h.projects.Create(currentUserID(c), service.CreateProjectInput{
		Title:            req.Title,
		Type:             req.Type,
		Field:            req.Field,
		Stage:            req.Stage,
		Blocker:          req.Blocker,
		HelpType:         req.HelpType,
		IsPublicProgress: req.IsPublicProgress,
		Images:           req.Images,
	})
	if err != nil {
		h.log.Error("failed to create project", zap.Error(err))
		InternalError(c, MsgProjectCreateFailed)
		return
	}

	Created(c, project)
}

// Update 应用可选字段更新
func (h *ProjectHandler) Update(c *gin.Context) {
	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	err := h.projects.Update(c.Param("id"), currentUserID(c), req.toUpdate())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoFieldsToUpdate):
			BadRequest(c, MsgNoFieldsToUpdate)
		case errors.Is(err, storage.ErrProjectNotFound):
			NotFound(c, MsgProjectNotFound)
		default:
			h.log.Error("failed to update project", zap.Error(err))
			InternalError(c, MsgProjectUpdateFailed)
		}
		return
	}

	Success(c, gin.H{"message": "更新成功"})
}

// UpdateStatus 切换项目状态
func (h *ProjectHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	err := h.projects.UpdateStatus(c.Param("id"), currentUserID(c), domain.ProjectStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			BadRequest(c, MsgInvalidStatus)
		case errors.Is(err, storage.ErrProjectNotFound):
			NotFound(c, MsgProjectNotFound)
		default:
			h.log.Error("failed to update project status", zap.Error(err))
			InternalError(c, MsgProjectUpdateFailed)
		}
		return
	}

	Success(c, gin.H{"message": "状态已更新"})
}

// Delete 删除项目
func (h *ProjectHandler) Delete(c *gin.Context) {
	err := h.projects.Delete(c.Param("id"), currentUserID(c))
	if err != nil {
		if errors.Is(err, storage.ErrProjectNotFound) {
			NotFound(c, MsgProjectNotFound)
			return
		}
		h.log.Error("failed to delete project", zap.Error(err))
		InternalError(c, MsgProjectDeleteFailed)
		return
	}

	Success(c, gin.H{"message": "删除成功"})
}
