// Package cache implements the in-process query cache that backs entity
// collection reads.
//
// Every read takes a Ticket before hitting the store. Invalidate bumps the
// key's generation, so a response fetched under an older generation can no
// longer be committed. Within a generation, a response only replaces the
// stored value when its ticket sequence is newer. Together these discard
// stale in-flight responses that race a mutation.
//
// A Cache is safe for concurrent use.
package cache

import (
	"sync"
	"time"
)

// Ticket identifies one fetch for Key. Seq is unique and monotonic across the
// cache; Generation is the key's generation when the fetch began.
type Ticket struct {
	Key        string
	Seq        uint64
	Generation uint64
}

type entry struct {
	value    any
	seq      uint64
	storedAt time.Time
}

type slot struct {
	gen   uint64
	entry *entry
}

// Cache maps logical keys (entity names) to their last committed value.
type Cache struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	seq   uint64
	slots map[string]*slot
}

// New returns a cache whose entries expire after ttl. A ttl of 0 disables
// expiry; entries then live until invalidated.
func New(ttl time.Duration) *Cache {
	return &Cache{
		ttl:   ttl,
		now:   time.Now,
		slots: make(map[string]*slot),
	}
}

// WithClock replaces the time source. Intended for tests.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
	return c
}

func (c *Cache) slotFor(key string) *slot {
	s, ok := c.slots[key]
	if !ok {
		s = &slot{}
		c.slots[key] = s
	}
	return s
}

// Lookup returns the fresh value stored under key.
func (c *Cache) Lookup(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.slots[key]
	if !ok || s.entry == nil {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(s.entry.storedAt) > c.ttl {
		s.entry = nil
		return nil, false
	}
	return s.entry.value, true
}

// Begin issues a ticket for a fetch of key.
func (c *Cache) Begin(key string) Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	return Ticket{Key: key, Seq: c.seq, Generation: c.slotFor(key).gen}
}

// Commit stores v under t.Key and reports whether it was accepted. A ticket
// issued before the latest Invalidate, or older than the stored value, is
// rejected.
func (c *Cache) Commit(t Ticket, v any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.slotFor(t.Key)
	if t.Generation != s.gen {
		return false
	}
	if s.entry != nil && s.entry.seq >= t.Seq {
		return false
	}
	s.entry = &entry{value: v, seq: t.Seq, storedAt: c.now()}
	return true
}

// Invalidate drops the value under key and fences out in-flight fetches.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.slotFor(key)
	s.gen++
	s.entry = nil
}

// Len returns the number of keys holding a value, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, s := range c.slots {
		if s.entry != nil {
			n++
		}
	}
	return n
}
