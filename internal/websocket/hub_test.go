package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"garith/backend/internal/auth/jwt"
	"garith/backend/internal/domain"
)

func newHubTestServer(t *testing.T) (*Hub, *jwt.Manager, *httptest.Server, context.CancelFunc) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := jwt.NewManager("test-secret-key-with-enough-length-32", "garith", time.Hour)
	hub := NewHub([]string{"*"}, tokens, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	router := gin.New()
	router.GET("/ws", HandleWebSocket(hub))
	server := httptest.NewServer(router)

	t.Cleanup(server.Close)
	return hub, tokens, server, cancel
}

func wsURL(server *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/ws" + query
}

func waitForUsers(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ConnectedUsers() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.Equal(t, want, hub.ConnectedUsers())
}

func TestHubAuthentication(t *testing.T) {
	t.Run("缺少令牌拒绝连接", func(t *testing.T) {
		_, _, server, cancel := newHubTestServer(t)
		defer cancel()

		resp, err := http.Get(server.URL + "/ws")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("无效令牌拒绝连接", func(t *testing.T) {
		_, _, server, cancel := newHubTestServer(t)
		defer cancel()

		resp, err := http.Get(server.URL + "/ws?token=invalid")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("查询参数令牌连接成功", func(t *testing.T) {
		hub, tokens, server, cancel := newHubTestServer(t)
		defer cancel()

		token, err := tokens.Generate("user-1", "user@example.com", "user")
		require.NoError(t, err)

		conn, _, err := gorilla.DefaultDialer.Dial(wsURL(server, "?token="+token), nil)
		require.NoError(t, err)
		defer conn.Close()

		waitForUsers(t, hub, 1)
	})

	t.Run("Bearer头令牌连接成功", func(t *testing.T) {
		hub, tokens, server, cancel := newHubTestServer(t)
		defer cancel()

		token, err := tokens.Generate("user-1", "user@example.com", "user")
		require.NoError(t, err)

		header := http.Header{}
		header.Set("Authorization", "Bearer "+token)
		conn, _, err := gorilla.DefaultDialer.Dial(wsURL(server, ""), header)
		require.NoError(t, err)
		defer conn.Close()

		waitForUsers(t, hub, 1)
	})
}

func TestHubPush(t *testing.T) {
	t.Run("通知送达目标用户", func(t *testing.T) {
		hub, tokens, server, cancel := newHubTestServer(t)
		defer cancel()

		token, err := tokens.Generate("user-1", "user@example.com", "user")
		require.NoError(t, err)

		conn, _, err := gorilla.DefaultDialer.Dial(wsURL(server, "?token="+token), nil)
		require.NoError(t, err)
		defer conn.Close()
		waitForUsers(t, hub, 1)

		hub.Push("user-1", &domain.Notification{
			ID:       "n1",
			ToUserID: "user-1",
			Type:     domain.NotifyIntentReceived,
			Title:    "收到新的合作意向",
		})

		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, MessageTypeNotification, msg.Type)

		var n domain.Notification
		require.NoError(t, json.Unmarshal(msg.Data, &n))
		assert.Equal(t, "n1", n.ID)
	})

	t.Run("通知不会串到其他用户", func(t *testing.T) {
		hub, tokens, server, cancel := newHubTestServer(t)
		defer cancel()

		token, err := tokens.Generate("user-2", "other@example.com", "other")
		require.NoError(t, err)

		conn, _, err := gorilla.DefaultDialer.Dial(wsURL(server, "?token="+token), nil)
		require.NoError(t, err)
		defer conn.Close()
		waitForUsers(t, hub, 1)

		hub.Push("user-1", &domain.Notification{ID: "n1", ToUserID: "user-1"})

		conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
		var msg Message
		err = conn.ReadJSON(&msg)
		assert.Error(t, err)
	})

	t.Run("离线用户的推送被丢弃", func(t *testing.T) {
		hub, _, _, cancel := newHubTestServer(t)
		defer cancel()

		// 没有任何连接时推送不阻塞也不出错
		hub.Push("user-1", &domain.Notification{ID: "n1", ToUserID: "user-1"})
		assert.Equal(t, 0, hub.ConnectedUsers())
	})
}

func TestHubDisconnect(t *testing.T) {
	t.Run("断开后从在线列表移除", func(t *testing.T) {
		hub, tokens, server, cancel := newHubTestServer(t)
		defer cancel()

		token, err := tokens.Generate("user-1", "user@example.com", "user")
		require.NoError(t, err)

		conn, _, err := gorilla.DefaultDialer.Dial(wsURL(server, "?token="+token), nil)
		require.NoError(t, err)
		waitForUsers(t, hub, 1)

		conn.Close()
		waitForUsers(t, hub, 0)
	})

	t.Run("同一用户多连接计为一个在线用户", func(t *testing.T) {
		hub, tokens, server, cancel := newHubTestServer(t)
		defer cancel()

		token, err := tokens.Generate("user-1", "user@example.com", "user")
		require.NoError(t, err)

		first, _, err := gorilla.DefaultDialer.Dial(wsURL(server, "?token="+token), nil)
		require.NoError(t, err)
		defer first.Close()
		second, _, err := gorilla.DefaultDialer.Dial(wsURL(server, "?token="+token), nil)
		require.NoError(t, err)
		defer second.Close()

		waitForUsers(t, hub, 1)
	})
}
