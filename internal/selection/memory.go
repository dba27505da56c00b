package selection

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// 文档注释：进程内 LRU 选区存储
// 背景：未启用 Redis 时的回退实现；单实例部署足够，重启后选区丢失。
// 约束：容量与 TTL 由 SELECTION_CACHE_SIZE / SELECTION_TTL 决定；过期项在读取时惰性删除。
type MemoryStore struct {
	mu   sync.Mutex
	cap  int
	ttl  time.Duration
	lst  *list.List
	dict map[string]*list.Element
	now  func() time.Time
}

type entry struct {
	k   string
	v   []byte
	exp time.Time
}

func NewMemoryStore(capacity int, ttl time.Duration) *MemoryStore {
	if capacity <= 0 {
		capacity = 1
	}
	return &MemoryStore{cap: capacity, ttl: ttl, lst: list.New(), dict: make(map[string]*list.Element), now: time.Now}
}

func (c *MemoryStore) Load(_ context.Context, session string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.dict[session]; ok {
		it := e.Value.(entry)
		if c.now().Before(it.exp) {
			c.lst.MoveToFront(e)
			return append([]byte(nil), it.v...), true, nil
		}
		c.lst.Remove(e)
		delete(c.dict, session)
	}
	return nil, false, nil
}

func (c *MemoryStore) Save(_ context.Context, session string, geometry []byte) error {
	if session == "" {
		return ErrEmptySession
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	it := entry{k: session, v: append([]byte(nil), geometry...), exp: c.now().Add(c.ttl)}
	if e, ok := c.dict[session]; ok {
		e.Value = it
		c.lst.MoveToFront(e)
		return nil
	}
	c.dict[session] = c.lst.PushFront(it)
	for c.lst.Len() > c.cap {
		back := c.lst.Back()
		delete(c.dict, back.Value.(entry).k)
		c.lst.Remove(back)
	}
	return nil
}

func (c *MemoryStore) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lst.Len()
}
