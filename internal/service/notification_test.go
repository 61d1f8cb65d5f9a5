package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"garith/backend/internal/domain"
	"garith/backend/internal/storage"
	"garith/backend/internal/storage/memory"
)

// recordingPusher 记录实时推送的通知。
type recordingPusher struct {
	mu     sync.Mutex
	pushed []*domain.Notification
}

func (p *recordingPusher) Push(_ string, n *domain.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushed = append(p.pushed, n)
}

func (p *recordingPusher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pushed)
}

func newNotificationFixture(t *testing.T) (*NotificationService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.CreateUser(&domain.User{ID: "user-1", Email: "user@example.com", Nickname: "user", Skills: []string{}}))
	require.NoError(t, store.CreateUser(&domain.User{ID: "user-2", Email: "other@example.com", Nickname: "other", Skills: []string{}}))
	return NewNotificationService(store, zap.NewNop()), store
}

func TestNotificationServiceNotify(t *testing.T) {
	t.Run("落库并同步推送", func(t *testing.T) {
		svc, store := newNotificationFixture(t)
		pusher := &recordingPusher{}
		svc.SetPusher(pusher)

		svc.Notify("user-1", "user-2", domain.NotifyIntentReceived, "标题", "内容", "related-1")

		list, err := store.ListNotifications("user-1", domain.NotificationFilter{})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "标题", list[0].Title)
		assert.Equal(t, "other", list[0].FromUserNickname)
		assert.False(t, list[0].IsRead)
		assert.Equal(t, 1, pusher.count())
	})

	t.Run("未注入推送通道时仅落库", func(t *testing.T) {
		svc, store := newNotificationFixture(t)

		svc.Notify("user-1", "user-2", domain.NotifySystem, "标题", "内容", "")

		count, err := store.CountUnread("user-1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestNotificationServiceUnreadCount(t *testing.T) {
	t.Run("新通知写入后缓存被失效", func(t *testing.T) {
		svc, _ := newNotificationFixture(t)

		count, err := svc.UnreadCount("user-1")
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)

		// 缓存命中期内写入新通知，失效后读到新值
		svc.Notify("user-1", "user-2", domain.NotifySystem, "标题", "内容", "")

		count, err = svc.UnreadCount("user-1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("标记已读后计数归零", func(t *testing.T) {
		svc, store := newNotificationFixture(t)
		svc.Notify("user-1", "user-2", domain.NotifySystem, "标题", "内容", "")

		list, err := store.ListNotifications("user-1", domain.NotificationFilter{})
		require.NoError(t, err)
		require.Len(t, list, 1)

		count, err := svc.UnreadCount("user-1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		require.NoError(t, svc.MarkRead(list[0].ID, "user-1"))

		count, err = svc.UnreadCount("user-1")
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})
}

func TestNotificationServiceMarkRead(t *testing.T) {
	t.Run("重复标记幂等且read_at保持首次值", func(t *testing.T) {
		svc, store := newNotificationFixture(t)
		svc.Notify("user-1", "user-2", domain.NotifySystem, "标题", "内容", "")

		list, err := store.ListNotifications("user-1", domain.NotificationFilter{})
		require.NoError(t, err)
		require.Len(t, list, 1)
		id := list[0].ID

		require.NoError(t, svc.MarkRead(id, "user-1"))

		after, err := store.ListNotifications("user-1", domain.NotificationFilter{})
		require.NoError(t, err)
		require.NotNil(t, after[0].ReadAt)
		firstReadAt := *after[0].ReadAt

		require.NoError(t, svc.MarkRead(id, "user-1"))

		again, err := store.ListNotifications("user-1", domain.NotificationFilter{})
		require.NoError(t, err)
		require.NotNil(t, again[0].ReadAt)
		assert.Equal(t, firstReadAt, *again[0].ReadAt)
	})

	t.Run("他人的通知不可标记", func(t *testing.T) {
		svc, store := newNotificationFixture(t)
		svc.Notify("user-1", "user-2", domain.NotifySystem, "标题", "内容", "")

		list, err := store.ListNotifications("user-1", domain.NotificationFilter{})
		require.NoError(t, err)
		require.Len(t, list, 1)

		err = svc.MarkRead(list[0].ID, "user-2")
		assert.ErrorIs(t, err, storage.ErrNotificationNotFound)
	})

	t.Run("不存在的通知返回未找到", func(t *testing.T) {
		svc, _ := newNotificationFixture(t)

		err := svc.MarkRead("missing", "user-1")
		assert.ErrorIs(t, err, storage.ErrNotificationNotFound)
	})
}

func TestNotificationServiceMarkAllRead(t *testing.T) {
	t.Run("全部标记后未读为零", func(t *testing.T) {
		svc, _ := newNotificationFixture(t)
		svc.Notify("user-1", "user-2", domain.NotifySystem, "a", "x", "")
		svc.Notify("user-1", "user-2", domain.NotifySystem, "b", "y", "")

		require.NoError(t, svc.MarkAllRead("user-1"))

		count, err := svc.UnreadCount("user-1")
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})

	t.Run("无未读通知时为空操作", func(t *testing.T) {
		svc, _ := newNotificationFixture(t)
		assert.NoError(t, svc.MarkAllRead("user-1"))
	})

	t.Run("仅影响调用者自己的通知", func(t *testing.T) {
		svc, _ := newNotificationFixture(t)
		svc.Notify("user-1", "user-2", domain.NotifySystem, "a", "x", "")
		svc.Notify("user-2", "user-1", domain.NotifySystem, "b", "y", "")

		require.NoError(t, svc.MarkAllRead("user-1"))

		count, err := svc.UnreadCount("user-2")
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestNotificationServiceList(t *testing.T) {
	t.Run("仅未读过滤", func(t *testing.T) {
		svc, store := newNotificationFixture(t)
		svc.Notify("user-1", "user-2", domain.NotifySystem, "a", "x", "")
		svc.Notify("user-1", "user-2", domain.NotifySystem, "b", "y", "")

		all, err := svc.List("user-1", domain.NotificationFilter{})
		require.NoError(t, err)
		require.Len(t, all, 2)

		require.NoError(t, store.MarkNotificationRead(all[0].ID, "user-1"))

		unread, err := svc.List("user-1", domain.NotificationFilter{UnreadOnly: true})
		require.NoError(t, err)
		require.Len(t, unread, 1)
		assert.Equal(t, all[1].ID, unread[0].ID)
	})
}
