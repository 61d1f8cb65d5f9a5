package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLocalCache(t *testing.T) {
	t.Run("写入后可读取", func(t *testing.T) {
		c := NewLocalCache(time.Minute)
		c.Set("key", int64(42))

		v, ok := c.Get("key")
		assert.True(t, ok)
		assert.Equal(t, int64(42), v)
	})

	t.Run("不存在的键返回未命中", func(t *testing.T) {
		c := NewLocalCache(time.Minute)

		_, ok := c.Get("missing")
		assert.False(t, ok)
	})

	t.Run("过期条目视为不存在", func(t *testing.T) {
		c := NewLocalCache(10 * time.Millisecond)
		c.Set("key", "value")

		time.Sleep(20 * time.Millisecond)

		_, ok := c.Get("key")
		assert.False(t, ok)
	})

	t.Run("删除后读不到", func(t *testing.T) {
		c := NewLocalCache(time.Minute)
		c.Set("key", "value")
		c.Delete("key")

		_, ok := c.Get("key")
		assert.False(t, ok)
	})

	t.Run("覆盖写入刷新值", func(t *testing.T) {
		c := NewLocalCache(time.Minute)
		c.Set("key", int64(1))
		c.Set("key", int64(2))

		v, ok := c.Get("key")
		assert.True(t, ok)
		assert.Equal(t, int64(2), v)
	})
}
