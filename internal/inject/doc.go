// Package inject defines the small dependency-injection contract plugconf
// consumes from its host: a Container that produces values by key, an
// optional Registry for lazily built singletons, and the Resolver interface
// a container uses to let a value resolve itself.
//
// Configuration is the resolver handed to consumers that want their own
// configuration namespace:
//
//	v, err := container.Get(inject.Of("aurelia-api"))
//
// Keys for concrete types come from Key[T]. Both the shared *tree.Config and
// the plugin manager are registered under such keys.
package inject
