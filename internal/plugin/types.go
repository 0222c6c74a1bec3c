package plugin

import (
	"context"

	"github.com/varalys/plugconf/internal/inject"
)

// Descriptor describes one plugin to register.
type Descriptor struct {
	// ModuleID identifies the plugin module. It is also the namespace of the
	// plugin's configuration in the shared tree.
	ModuleID string `yaml:"module" json:"module"`

	// Config overrides the module's exported defaults. After normalization it
	// is never nil, and the same map is filled with the module defaults and
	// handed to the final merge.
	Config map[string]any `yaml:"config,omitempty" json:"config,omitempty"`

	// RootConfig registers the plugin with the whole tree instead of its
	// namespace.
	RootConfig bool `yaml:"root,omitempty" json:"root,omitempty"`
}

// Module is what loading a plugin module yields.
type Module struct {
	// Config holds the module's exported default configuration, if any.
	Config map[string]any
}

// ModuleLoader loads plugin modules by id.
type ModuleLoader interface {
	LoadModule(ctx context.Context, moduleID string) (Module, error)
}

// FrameworkConfiguration is the host's configuration phase as seen by the
// plugin manager.
//
// Plugin is called before the configuration passed to it is populated. The
// host must not read config until the Configure call that registered the
// plugin has returned.
type FrameworkConfiguration interface {
	Loader() ModuleLoader
	Plugin(moduleID string, config map[string]any)
	Container() inject.Container
}

// ConfigureFunc loads, merges and registers plugins. appConfigs are merged
// last, in order, so the final element has the highest precedence.
type ConfigureFunc func(ctx context.Context, plugins []Entry, appConfigs []map[string]any) (map[string]any, error)
