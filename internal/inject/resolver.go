package inject

import "github.com/varalys/plugconf/internal/tree"

// ConfigTree returns the container's shared configuration tree, creating and
// registering an empty one on first use.
func ConfigTree(c Container) (*tree.Config, error) {
	return GetOrProvide[*tree.Config](c, func(Container) (any, error) {
		return tree.New(nil), nil
	})
}

// Configuration resolves to the sub-tree of the shared configuration stored
// under a fixed namespace.
type Configuration struct {
	namespace string
}

// Of returns a resolver for namespace.
func Of(namespace string) Configuration {
	return Configuration{namespace: namespace}
}

// Namespace returns the path the resolver looks up.
func (r Configuration) Namespace() string { return r.namespace }

// Get returns the value stored under the namespace. Maps are returned by
// reference, so later merges into the tree show through.
func (r Configuration) Get(c Container) (any, error) {
	cfg, err := ConfigTree(c)
	if err != nil {
		return nil, err
	}
	return cfg.Fetch(r.namespace), nil
}

// Resolve implements Resolver.
func (r Configuration) Resolve(c Container) (any, error) { return r.Get(c) }
