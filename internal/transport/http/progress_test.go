package httptransport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"garith/backend/internal/domain"
	"garith/backend/internal/service"
	"garith/backend/internal/storage/memory"
)

type progressTestEnv struct {
	router *gin.Engine
	store  *memory.Store
}

func newProgressTestEnv(t *testing.T, userID string) *progressTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	require.NoError(t, store.CreateUser(&domain.User{ID: "owner-1", Email: "owner@example.com", Nickname: "owner", Skills: []string{}}))

	now := time.Now().UTC()
	require.NoError(t, store.SaveProject(&domain.Project{
		ID:        "project-1",
		OwnerID:   "owner-1",
		Title:     "开源协作平台",
		Status:    domain.ProjectActive,
		Images:    []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}))

	progress := service.NewProgressService(store, store, zap.NewNop())
	handler := NewProgressHandler(progress, zap.NewNop())

	router := gin.New()
	api := router.Group("/api")
	api.GET("/progress/:id", handler.List)
	api.POST("/progress/:id", asUser(userID), handler.Add)

	return &progressTestEnv{router: router, store: store}
}

func (e *progressTestEnv) do(method, path, body string) *httptest.ResponseRecorder {
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

func TestProgressAdd(t *testing.T) {
	t.Run("所有者追加成功", func(t *testing.T) {
		env := newProgressTestEnv(t, "owner-1")

		w := env.do(http.MethodPost, "/api/progress/project-1", `{"content":"完成了登录模块","summary":"登录"}`)
		assert.Equal(t, http.StatusCreated, w.Code)

		resp := decodeResponse(t, w)
		data, ok := resp.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "完成了登录模块", data["content"])

		records, err := env.store.ListProgress("project-1")
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("缺少content返回参数错误", func(t *testing.T) {
		env := newProgressTestEnv(t, "owner-1")

		w := env.do(http.MethodPost, "/api/progress/project-1", `{"summary":"登录"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("非所有者返回项目不存在", func(t *testing.T) {
		env := newProgressTestEnv(t, "stranger")

		w := env.do(http.MethodPost, "/api/progress/project-1", `{"content":"进度"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, MsgProjectNotFound, decodeResponse(t, w).Msg)
	})

	t.Run("暂停的项目返回状态错误", func(t *testing.T) {
		env := newProgressTestEnv(t, "owner-1")
		project, err := env.store.GetProject("project-1")
		require.NoError(t, err)
		project.Status = domain.ProjectPaused
		require.NoError(t, env.store.SaveProject(project))

		w := env.do(http.MethodPost, "/api/progress/project-1", `{"content":"进度"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, MsgProgressNotActive, decodeResponse(t, w).Msg)
	})
}

func TestProgressList(t *testing.T) {
	t.Run("无需登录按时间倒序返回", func(t *testing.T) {
		env := newProgressTestEnv(t, "owner-1")

		base := time.Now().UTC()
		for i, content := range []string{"第一条", "第二条"} {
			require.NoError(t, env.store.CreateProgress(&domain.Progress{
				ID:        content,
				ProjectID: "project-1",
				Content:   content,
				CreatedAt: base.Add(time.Duration(i) * time.Minute),
			}))
		}

		w := env.do(http.MethodGet, "/api/progress/project-1", "")
		assert.Equal(t, http.StatusOK, w.Code)

		resp := decodeResponse(t, w)
		data, ok := resp.Data.([]interface{})
		require.True(t, ok)
		require.Len(t, data, 2)
		first, ok := data[0].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "第二条", first["content"])
	})

	t.Run("不存在的项目返回未找到", func(t *testing.T) {
		env := newProgressTestEnv(t, "owner-1")

		w := env.do(http.MethodGet, "/api/progress/missing", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
