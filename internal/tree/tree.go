package tree

import (
	"strings"
	"sync"

	"github.com/knadh/koanf/maps"
)

// Delim separates the segments of a tree path.
const Delim = "."

// Config is a nested key-value tree addressed by dotted paths.
//
// Maps returned by Fetch, FetchOrPut and Data are live: later writes through
// the tree (including Merge) are visible to holders of those references.
// Config guards its own operations, but not reads made through references it
// has handed out.
type Config struct {
	mu   sync.RWMutex
	data map[string]any
}

// New wraps data in a Config. The map is used as is, not copied.
func New(data map[string]any) *Config {
	if data == nil {
		data = map[string]any{}
	}
	return &Config{data: data}
}

// Data returns the live backing map.
func (c *Config) Data() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data
}

// Fetch returns the value at path, or nil when nothing is stored there.
// An empty path addresses the root.
func (c *Config) Fetch(path string) any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, _ := lookup(c.data, split(path))
	return v
}

// FetchOr returns the value at path, or def when the path is absent.
func (c *Config) FetchOr(path string, def any) any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v, ok := lookup(c.data, split(path)); ok {
		return v
	}
	return def
}

// FetchOrPut returns the value at path. When the path is absent def is stored
// first, so repeated calls return the same reference.
func (c *Config) FetchOrPut(path string, def any) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := split(path)
	if v, ok := lookup(c.data, keys); ok {
		return v
	}
	put(c.data, keys, def)
	return def
}

// Put stores value at path, creating intermediate maps as needed. Non-map
// values found along the way are replaced.
func (c *Config) Put(path string, value any) *Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := split(path)
	if len(keys) == 0 {
		if m, ok := value.(map[string]any); ok {
			c.data = m
		}
		return c
	}
	put(c.data, keys, value)
	return c
}

// Remove deletes the key at path. Parent maps left empty are pruned.
func (c *Config) Remove(path string) *Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	if keys := split(path); len(keys) > 0 {
		maps.Delete(c.data, keys)
	}
	return c
}

// Merge deep-merges sources into the tree in order and returns the backing
// map. Later sources win on scalar conflicts, nested maps merge key by key
// and keep their identity, and slices replace whatever was stored before.
// Sources are copied first so the tree never shares nested maps with them.
func (c *Config) Merge(sources ...map[string]any) map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, src := range sources {
		if len(src) == 0 {
			continue
		}
		maps.Merge(maps.Copy(src), c.data)
	}
	return c.data
}

// Flatten returns a copy of the tree keyed by full dotted paths. Empty maps
// are kept as leaves.
func (c *Config) Flatten() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	flat, _ := maps.Flatten(c.data, nil, Delim)
	return flat
}

// Expand merges a map keyed by dotted paths into the tree.
func (c *Config) Expand(flat map[string]any) *Config {
	c.Merge(maps.Unflatten(flat, Delim))
	return c
}

// Search returns the flattened entries at or below prefix.
func (c *Config) Search(prefix string) map[string]any {
	out := map[string]any{}
	for k, v := range c.Flatten() {
		if prefix == "" || k == prefix || strings.HasPrefix(k, prefix+Delim) {
			out[k] = v
		}
	}
	return out
}

func split(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, Delim)
}

func lookup(m map[string]any, keys []string) (any, bool) {
	if len(keys) == 0 {
		return m, true
	}
	var cur any = m
	for _, k := range keys {
		node, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = node[k]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func put(m map[string]any, keys []string, value any) {
	node := m
	for _, k := range keys[:len(keys)-1] {
		next, ok := node[k].(map[string]any)
		if !ok {
			next = map[string]any{}
			node[k] = next
		}
		node = next
	}
	node[keys[len(keys)-1]] = value
}
