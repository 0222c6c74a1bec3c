package host

import (
	"fmt"
	"sync"

	"github.com/varalys/plugconf/internal/inject"
)

// Container is a singleton container. Every key resolves to one instance for
// the container's lifetime; factories run on first Get.
type Container struct {
	mu        sync.Mutex
	instances map[any]any
	factories map[any]inject.Factory
}

// NewContainer returns an empty Container.
func NewContainer() *Container {
	return &Container{
		instances: make(map[any]any),
		factories: make(map[any]inject.Factory),
	}
}

// Get returns the instance for key. Keys implementing inject.Resolver resolve
// themselves against the container.
func (c *Container) Get(key any) (any, error) {
	if r, ok := key.(inject.Resolver); ok {
		return r.Resolve(c)
	}

	c.mu.Lock()
	if v, ok := c.instances[key]; ok {
		c.mu.Unlock()
		return v, nil
	}
	factory, ok := c.factories[key]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %v", inject.ErrNotRegistered, key)
	}

	// Factories may call Get for their own dependencies, so they run unlocked.
	v, err := factory(c)
	if err != nil {
		return nil, fmt.Errorf("construct %v: %w", key, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.instances[key]; ok {
		return existing, nil
	}
	c.instances[key] = v
	return v, nil
}

// Provide registers factory for key unless key already has a factory or an
// instance.
func (c *Container) Provide(key any, factory inject.Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.instances[key]; ok {
		return
	}
	if _, ok := c.factories[key]; ok {
		return
	}
	c.factories[key] = factory
}

// Instance registers v for key, replacing any previous registration.
func (c *Container) Instance(key any, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instances[key] = v
	delete(c.factories, key)
}
