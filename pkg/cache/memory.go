package cache

import (
	"strings"
	"sync"
)

type memcache struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemory() Cache {
	return &memcache{data: make(map[string][]byte)}
}

func (c *memcache) Get(key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data[key], nil
}

func (c *memcache) Set(key string, value []byte, ttl int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memcache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memcache) DeleteAll(prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.data {
		if strings.HasPrefix(key, prefix) {
			delete(c.data, key)
		}
	}
	return nil
}
