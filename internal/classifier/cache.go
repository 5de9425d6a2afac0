package classifier

import (
	"container/list"
	"sync"

	"pocket/internal/intent"
)

// DefaultCacheSize 分类缓存默认容量 / Default classification cache capacity
const DefaultCacheSize = 100

// intentCache 有界 LRU 缓存，键为 归一化命令+物品类型。
// 单周期不变量下不会有并发访问，但缓存是唯一共享可变结构，访问仍然加锁。
// intentCache is a bounded LRU keyed by normalized command + item type.
// The single-cycle invariant means no concurrent access in practice, but
// this is the only shared mutable structure, so access stays locked.
type intentCache struct {
	capacity int
	mu       sync.Mutex
	order    *list.List // front = most recently used
	entries  map[string]*list.Element
}

type cacheEntry struct {
	key    string
	intent intent.Intent
}

func newIntentCache(capacity int) *intentCache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	return &intentCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element, capacity),
	}
}

func (c *intentCache) get(key string) (intent.Intent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[key]
	if !ok {
		return intent.Intent{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).intent, true
}

// put 追加一条解析结果；Intent 创建后不可变，缓存只追加、不回写。
// put appends a resolved intent. Intents are immutable, so the cache is
// append-only: an existing key keeps its original value.
func (c *intentCache) put(key string, in intent.Intent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		c.order.MoveToFront(el)
		return
	}
	el := c.order.PushFront(&cacheEntry{key: key, intent: in})
	c.entries[key] = el
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

func (c *intentCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
