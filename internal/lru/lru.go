package lru

import (
	"container/list"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Key is a content hash, see KeyOf.
type Key uint64

// KeyOf hashes b into a cache key.
func KeyOf(b []byte) Key {
	return Key(xxhash.Sum64(b))
}

// 链表结点
type entry struct {
	key   Key
	value interface{}
}

// Cache is a size bounded LRU cache safe for concurrent use.
type Cache struct {
	MaxEntries int                              // 缓存容量, 0 表示不限
	OnEvicted  func(key Key, value interface{}) // 当删除Key时回调, 调用时持有锁

	mu     sync.Mutex
	ll     *list.List            // 链表, 头部为最近使用
	cache  map[Key]*list.Element // 键值对映射表
	hits   uint64
	misses uint64
}

func New(maxEntries int) *Cache {
	return &Cache{
		MaxEntries: maxEntries,
		ll:         list.New(),
		cache:      make(map[Key]*list.Element),
	}
}

func (c *Cache) Add(key Key, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cache == nil {
		c.cache = make(map[Key]*list.Element)
		c.ll = list.New()
	}

	if ee, ok := c.cache[key]; ok { //命中
		c.ll.MoveToFront(ee)
		ee.Value.(*entry).value = value
		return
	}

	// 未命中
	ele := c.ll.PushFront(&entry{key, value})
	c.cache[key] = ele

	if c.MaxEntries != 0 && c.ll.Len() > c.MaxEntries {
		c.removeOldest() // 移除链表末尾结点
	}
}

func (c *Cache) Get(key Key) (value interface{}, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ele, hit := c.cache[key]; hit {
		c.hits++
		c.ll.MoveToFront(ele)
		return ele.Value.(*entry).value, true
	}

	c.misses++
	return
}

func (c *Cache) Remove(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ele, hit := c.cache[key]; hit {
		c.removeElement(ele)
	}
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cache == nil {
		return 0
	}

	return c.ll.Len()
}

// Stats returns the hit and miss counts of Get.
func (c *Cache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.hits, c.misses
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.OnEvicted != nil {
		for _, e := range c.cache {
			kv := e.Value.(*entry)
			c.OnEvicted(kv.key, kv.value)
		}
	}

	c.ll = nil
	c.cache = nil
}

func (c *Cache) removeOldest() {
	if c.cache == nil {
		return
	}

	if ele := c.ll.Back(); ele != nil { //末尾结点
		c.removeElement(ele)
	}
}

func (c *Cache) removeElement(e *list.Element) {
	c.ll.Remove(e)

	kv := e.Value.(*entry)
	delete(c.cache, kv.key)

	if c.OnEvicted != nil {
		c.OnEvicted(kv.key, kv.value)
	}
}
