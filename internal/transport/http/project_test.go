package httptransport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"garith/backend/internal/domain"
	"garith/backend/internal/service"
	"garith/backend/internal/storage/memory"
)

// asUser 测试用认证桩，把固定用户注入请求上下文。
func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}
}

type projectTestEnv struct {
	router *gin.Engine
	store  *memory.Store
}

func newProjectTestEnv(t *testing.T, userID string) *projectTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	require.NoError(t, store.CreateUser(&domain.User{ID: "owner-1", Email: "owner@example.com", Nickname: "owner", Skills: []string{}}))
	require.NoError(t, store.CreateUser(&domain.User{ID: "user-1", Email: "user@example.com", Nickname: "user", Skills: []string{}}))

	projects := service.NewProjectService(store, store, zap.NewNop())
	notifications := service.NewNotificationService(store, zap.NewNop())
	intents := service.NewIntentService(store, store, notifications, zap.NewNop())

	projectHandler := NewProjectHandler(projects, zap.NewNop())
	intentHandler := NewIntentHandler(intents, zap.NewNop())

	router := gin.New()
	api := router.Group("/api")
	api.GET("/projects", projectHandler.List)
	api.GET("/projects/:id", projectHandler.Get)

	authed := api.Group("", asUser(userID))
	authed.POST("/projects", projectHandler.Create)
	authed.PATCH("/projects/:id", projectHandler.Update)
	authed.PATCH("/projects/:id/status", projectHandler.UpdateStatus)
	authed.DELETE("/projects/:id", projectHandler.Delete)
	authed.POST("/intents/:id", intentHandler.Submit)
	authed.GET("/intents/:id", intentHandler.ListForProject)
	authed.PATCH("/intents/:id/intents/:intentId", intentHandler.UpdateStatus)

	return &projectTestEnv{router: router, store: store}
}

func (e *projectTestEnv) do(method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	e.router.ServeHTTP(w, req)
	return w
}

func (e *projectTestEnv) seedProject(t *testing.T, id, ownerID string, status domain.ProjectStatus) {
	t.Helper()
	require.NoError(t, e.store.SaveProject(&domain.Project{
		ID:      id,
		OwnerID: ownerID,
		Title:   "测试项目",
		Status:  status,
		Images:  []string{},
	}))
}

func TestProjectHandlerCreate(t *testing.T) {
	t.Run("创建成功返回201", func(t *testing.T) {
		env := newProjectTestEnv(t, "owner-1")

		w := env.do(http.MethodPost, "/api/projects", `{"title":"AI 写作助手","field":"AI"}`)
		assert.Equal(t, http.StatusCreated, w.Code)

		resp := decodeResponse(t, w)
		assert.Equal(t, CodeCreated, resp.Code)
		data, ok := resp.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "active", data["status"])
		assert.Equal(t, "owner-1", data["owner_id"])
	})

	t.Run("缺少标题返回400", func(t *testing.T) {
		env := newProjectTestEnv(t, "owner-1")

		w := env.do(http.MethodPost, "/api/projects", `{"field":"AI"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestProjectHandlerUpdate(t *testing.T) {
	t.Run("camelCase键名也被接受", func(t *testing.T) {
		env := newProjectTestEnv(t, "owner-1")
		env.seedProject(t, "p1", "owner-1", domain.ProjectActive)

		w := env.do(http.MethodPatch, "/api/projects/p1", `{"helpType":"技术合伙人","isPublicProgress":true}`)
		assert.Equal(t, http.StatusOK, w.Code)

		stored, err := env.store.GetProject("p1")
		require.NoError(t, err)
		assert.Equal(t, "技术合伙人", stored.HelpType)
		assert.True(t, stored.IsPublicProgress)
	})

	t.Run("空更新返回400", func(t *testing.T) {
		env := newProjectTestEnv(t, "owner-1")
		env.seedProject(t, "p1", "owner-1", domain.ProjectActive)

		w := env.do(http.MethodPatch, "/api/projects/p1", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, MsgNoFieldsToUpdate, decodeResponse(t, w).Msg)
	})

	t.Run("非所有者更新返回404", func(t *testing.T) {
		env := newProjectTestEnv(t, "user-1")
		env.seedProject(t, "p1", "owner-1", domain.ProjectActive)

		w := env.do(http.MethodPatch, "/api/projects/p1", `{"title":"新标题"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, MsgProjectNotFound, decodeResponse(t, w).Msg)
	})
}

func TestProjectHandlerUpdateStatus(t *testing.T) {
	t.Run("非法状态返回400", func(t *testing.T) {
		env := newProjectTestEnv(t, "owner-1")
		env.seedProject(t, "p1", "owner-1", domain.ProjectActive)

		w := env.do(http.MethodPatch, "/api/projects/p1/status", `{"status":"archived"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, MsgInvalidStatus, decodeResponse(t, w).Msg)
	})

	t.Run("关闭后重新激活", func(t *testing.T) {
		env := newProjectTestEnv(t, "owner-1")
		env.seedProject(t, "p1", "owner-1", domain.ProjectClosed)

		w := env.do(http.MethodPatch, "/api/projects/p1/status", `{"status":"active"}`)
		assert.Equal(t, http.StatusOK, w.Code)

		stored, err := env.store.GetProject("p1")
		require.NoError(t, err)
		assert.Equal(t, domain.ProjectActive, stored.Status)
	})
}

func TestProjectHandlerGet(t *testing.T) {
	t.Run("不存在的项目返回404", func(t *testing.T) {
		env := newProjectTestEnv(t, "owner-1")

		w := env.do(http.MethodGet, "/api/projects/missing", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("列表响应包含分页信息", func(t *testing.T) {
		env := newProjectTestEnv(t, "owner-1")
		env.seedProject(t, "p1", "owner-1", domain.ProjectActive)

		w := env.do(http.MethodGet, "/api/projects?page=1&limit=10", "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data, ok := resp.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, float64(1), data["page"])
		assert.Equal(t, float64(10), data["limit"])
	})
}

func TestIntentHandlerSubmit(t *testing.T) {
	body := `{"offer":"前端开发","expect":"共同创业","contact":"wx: user"}`

	t.Run("提交成功返回201", func(t *testing.T) {
		env := newProjectTestEnv(t, "user-1")
		env.seedProject(t, "p1", "owner-1", domain.ProjectActive)

		w := env.do(http.MethodPost, "/api/intents/p1", body)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("重复提交返回409", func(t *testing.T) {
		env := newProjectTestEnv(t, "user-1")
		env.seedProject(t, "p1", "owner-1", domain.ProjectActive)

		require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/intents/p1", body).Code)

		w := env.do(http.MethodPost, "/api/intents/p1", body)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, MsgIntentExists, decodeResponse(t, w).Msg)
	})

	t.Run("自己的项目返回403", func(t *testing.T) {
		env := newProjectTestEnv(t, "owner-1")
		env.seedProject(t, "p1", "owner-1", domain.ProjectActive)

		w := env.do(http.MethodPost, "/api/intents/p1", body)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, MsgOwnProject, decodeResponse(t, w).Msg)
	})

	t.Run("暂停的项目返回400", func(t *testing.T) {
		env := newProjectTestEnv(t, "user-1")
		env.seedProject(t, "p1", "owner-1", domain.ProjectPaused)

		w := env.do(http.MethodPost, "/api/intents/p1", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, MsgProjectNotActive, decodeResponse(t, w).Msg)
	})

	t.Run("不存在的项目返回404", func(t *testing.T) {
		env := newProjectTestEnv(t, "user-1")

		w := env.do(http.MethodPost, "/api/intents/missing", body)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("缺少必填字段返回400", func(t *testing.T) {
		env := newProjectTestEnv(t, "user-1")
		env.seedProject(t, "p1", "owner-1", domain.ProjectActive)

		w := env.do(http.MethodPost, "/api/intents/p1", `{"offer":"前端开发"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestIntentHandlerOwnerViews(t *testing.T) {
	t.Run("非所有者查看意向列表返回404", func(t *testing.T) {
		env := newProjectTestEnv(t, "user-1")
		env.seedProject(t, "p1", "owner-1", domain.ProjectActive)

		w := env.do(http.MethodGet, "/api/intents/p1", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("所有者改写意向状态", func(t *testing.T) {
		submitter := newProjectTestEnv(t, "user-1")
		submitter.seedProject(t, "p1", "owner-1", domain.ProjectActive)
		created := submitter.do(http.MethodPost, "/api/intents/p1", `{"offer":"o","expect":"e","contact":"c"}`)
		require.Equal(t, http.StatusCreated, created.Code)

		resp := decodeResponse(t, created)
		data, ok := resp.Data.(map[string]interface{})
		require.True(t, ok)
		intentID, _ := data["id"].(string)
		require.NotEmpty(t, intentID)

		// 换成所有者身份访问同一份存储
		notifications := service.NewNotificationService(submitter.store, zap.NewNop())
		intents := service.NewIntentService(submitter.store, submitter.store, notifications, zap.NewNop())
		intentHandler := NewIntentHandler(intents, zap.NewNop())
		ownerRouter := gin.New()
		ownerRouter.PATCH("/api/intents/:id/intents/:intentId", asUser("owner-1"), intentHandler.UpdateStatus)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/api/intents/p1/intents/"+intentID, strings.NewReader(`{"status":"viewed"}`))
		req.Header.Set("Content-Type", "application/json")
		ownerRouter.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)

		stored, err := submitter.store.GetIntent(intentID, "p1")
		require.NoError(t, err)
		assert.Equal(t, domain.IntentViewed, stored.Status)
	})
}
