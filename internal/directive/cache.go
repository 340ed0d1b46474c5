package directive

import "sync"

type cacheKey struct {
	lang string
	text string
}

// Cache memoizes [Parse] results by language tag and raw text. It is safe for
// concurrent use. Cached results are shared and must not be modified.
type Cache struct {
	mu      sync.Mutex
	entries map[cacheKey]*Result
	hits    int
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]*Result)}
}

// Parse returns the cached result for (lang, text), parsing on a miss. The
// bool reports a cache hit.
func (c *Cache) Parse(lang, text string) (*Result, bool) {
	key := cacheKey{lang: lang, text: text}

	c.mu.Lock()
	res, ok := c.entries[key]
	if ok {
		c.hits++
	}
	c.mu.Unlock()

	if ok {
		return res, true
	}

	res = Parse(lang, text)

	c.mu.Lock()
	c.entries[key] = res
	c.mu.Unlock()

	return res, false
}

// Len returns the number of cached results.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Hits returns how many lookups were served from the cache.
func (c *Cache) Hits() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.hits
}
