package skin

import (
	"sync"
)

// Cache keeps the loaded skin until the name changes or it is
// invalidated. Invalidate may be called from any goroutine.
type Cache struct {
	dataDir string

	mu      sync.Mutex
	name    string
	current *Skin
	loaded  bool
}

func NewCache(dataDir string) *Cache {
	return &Cache{dataDir: dataDir}
}

// Get returns the named skin, loading it if needed. A skin that failed to
// load is returned as nil until the name changes or the cache is
// invalidated.
func (c *Cache) Get(name string) *Skin {
	name = NormalizeName(name)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded && c.name == name {
		return c.current
	}

	c.name = name
	c.loaded = true
	s, err := Load(c.dataDir, name)
	if err != nil {
		log.Errorf("load skin: %v", err)
		c.current = nil
		return nil
	}
	c.current = s
	log.Infof("skin loaded: %s (%d layers)", name, len(s.Layers))
	return s
}

// Invalidate drops the loaded skin so the next Get reloads it.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.loaded = false
	c.mu.Unlock()
}
