// 包 cache：进程内 LRU 缓存（带 TTL）
package cache

import (
	"container/list"
	"sync"
	"time"
)

// 文档注释：本地 LRU 缓存
// 背景：热点坐标在短周期内重复反查，使用进程内缓存跳过包围盒过滤与多面判定；TTL 可调。
// 约束：键由调用方构造（反查使用 geohash 精度 6）；容量 <= 0 时视为 1。
type LRU[V any] struct {
	mu   sync.Mutex
	cap  int
	ttl  time.Duration
	lst  *list.List
	dict map[string]*list.Element
	now  func() time.Time
}

type entry[V any] struct {
	k   string
	v   V
	exp time.Time
}

func NewLRU[V any](capacity int, ttl time.Duration) *LRU[V] {
	if capacity <= 0 {
		capacity = 1
	}
	return &LRU[V]{cap: capacity, ttl: ttl, lst: list.New(), dict: make(map[string]*list.Element), now: time.Now}
}

func (c *LRU[V]) Get(k string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero V
	e, ok := c.dict[k]
	if !ok {
		return zero, false
	}
	it := e.Value.(entry[V])
	if c.now().Before(it.exp) {
		c.lst.MoveToFront(e)
		return it.v, true
	}
	c.lst.Remove(e)
	delete(c.dict, k)
	return zero, false
}

func (c *LRU[V]) Set(k string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it := entry[V]{k: k, v: v, exp: c.now().Add(c.ttl)}
	if e, ok := c.dict[k]; ok {
		e.Value = it
		c.lst.MoveToFront(e)
		return
	}
	c.dict[k] = c.lst.PushFront(it)
	for c.lst.Len() > c.cap {
		back := c.lst.Back()
		delete(c.dict, back.Value.(entry[V]).k)
		c.lst.Remove(back)
	}
}

func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lst.Len()
}
