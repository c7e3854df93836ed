package synth

import (
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache memoizes prompt -> query for identical requests. A nil *Cache is a
// valid, always-missing cache.
type Cache struct {
	entries *lru.Cache[string, string]
}

// NewCache returns an LRU of the given size, or nil when size <= 0.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		return nil, nil
	}
	c, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &Cache{entries: c}, nil
}

func (c *Cache) Get(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	return c.entries.Get(key)
}

func (c *Cache) Add(key, query string) {
	if c == nil {
		return
	}
	c.entries.Add(key, query)
}

func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}

func cacheKey(client, system, user string) string {
	h := sha256.New()
	for _, part := range []string{client, system, user} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
