package inject

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrNotRegistered is returned by containers asked for a key they cannot
// produce.
var ErrNotRegistered = errors.New("inject: key not registered")

// Container produces values for injection keys.
type Container interface {
	Get(key any) (any, error)
}

// Factory builds the value for a key. It may ask the container for its own
// dependencies.
type Factory func(c Container) (any, error)

// Registry is a Container that accepts lazily constructed singletons.
// Provide keeps an existing registration for the same key.
type Registry interface {
	Container
	Provide(key any, factory Factory)
}

// Resolver is a value that knows how to produce itself from a container.
// Containers pass resolvers through to Resolve instead of looking them up.
type Resolver interface {
	Resolve(c Container) (any, error)
}

// Key returns the injection key used for values of type T.
func Key[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Get looks up the value registered under Key[T].
func Get[T any](c Container) (T, error) {
	var zero T
	v, err := c.Get(Key[T]())
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("inject: %v resolved to %T", Key[T](), v)
	}
	return typed, nil
}

// GetOrProvide is Get, except that when T is not registered and c is a
// Registry, factory is registered as T's singleton first.
func GetOrProvide[T any](c Container, factory Factory) (T, error) {
	v, err := Get[T](c)
	if err == nil || !errors.Is(err, ErrNotRegistered) {
		return v, err
	}
	r, ok := c.(Registry)
	if !ok {
		return v, err
	}
	r.Provide(Key[T](), factory)
	return Get[T](c)
}
