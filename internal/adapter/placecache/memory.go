package placecache

import (
	"context"
	"sync"

	"github.com/couchcryptid/dish-discovery-service/internal/domain"
)

// Memory is a thread-safe in-memory LRU cache of place details.
type Memory struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value domain.PlaceDetail
	prev  *entry
	next  *entry
}

// NewMemory creates an LRU cache holding at most maxEntries details.
func NewMemory(maxEntries int) *Memory {
	return &Memory{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *Memory) Get(_ context.Context, key string) (domain.PlaceDetail, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.PlaceDetail{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *Memory) Put(_ context.Context, key string, detail domain.PlaceDetail) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = detail
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: detail}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *Memory) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *Memory) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *Memory) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *Memory) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
