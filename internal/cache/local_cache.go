package cache

import (
	"sync"
	"time"
)

// LocalCache 进程内 TTL 缓存，用于吸收高频只读查询
// （如通知未读数轮询）。写路径负责失效对应的键。
type LocalCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

type cacheEntry struct {
	value     interface{}
	expiresAt time.Time
}

// NewLocalCache 创建本地缓存并启动定期清理。
func NewLocalCache(ttl time.Duration) *LocalCache {
	c := &LocalCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
	go c.cleanupLoop()
	return c
}

// Get 获取缓存值，过期条目视为不存在。
func (c *LocalCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.value, true
}

// Set 写入缓存值。
func (c *LocalCache) Set(key string, value interface{}) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
	c.mu.Unlock()
}

// Delete 删除缓存键，写路径用它保证读到新值。
func (c *LocalCache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// cleanupLoop 定期清理过期条目，防止键空间只增不减。
func (c *LocalCache) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		c.mu.Lock()
		for key, entry := range c.entries {
			if now.After(entry.expiresAt) {
				delete(c.entries, key)
			}
		}
		c.mu.Unlock()
	}
}
