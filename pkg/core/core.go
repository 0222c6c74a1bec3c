package core

import (
	"github.com/sirupsen/logrus"

	"github.com/varalys/plugconf/internal/host"
	"github.com/varalys/plugconf/internal/inject"
	"github.com/varalys/plugconf/internal/loader"
	"github.com/varalys/plugconf/internal/plugin"
	"github.com/varalys/plugconf/internal/tree"
)

// Re-export selected internal types as a stable public API surface.
// These are type aliases so external consumers can depend on a stable path.
type (
	Config                 = tree.Config
	Entry                  = plugin.Entry
	Descriptor             = plugin.Descriptor
	Module                 = plugin.Module
	ModuleLoader           = plugin.ModuleLoader
	FrameworkConfiguration = plugin.FrameworkConfiguration
	ConfigureFunc          = plugin.ConfigureFunc
	Configuration          = inject.Configuration
	Container              = inject.Container

	// Host is the bundled framework host: a FrameworkConfiguration with a
	// singleton container, plugin hooks and a deferred Apply pass.
	Host         = host.Framework
	HostOption   = host.Option
	PluginFunc   = host.PluginFunc
	Registration = host.Registration

	// MapLoader serves modules from memory; FileLoader reads module files
	// from root directories.
	MapLoader  = loader.MapLoader
	FileLoader = loader.FileLoader
)

// ErrModuleLoad wraps every module loader failure returned by Configure.
var ErrModuleLoad = plugin.ErrModuleLoad

// Configure is the plugin manager entry point for hosts. See plugin.Configure.
func Configure(fc FrameworkConfiguration, callback func(ConfigureFunc) error) error {
	return plugin.Configure(fc, callback)
}

// Of returns the resolver for a configuration namespace.
func Of(namespace string) Configuration { return inject.Of(namespace) }

// ID is a plugin entry naming a module.
func ID(moduleID string) Entry { return plugin.ID(moduleID) }

// IDs is ID applied to each module id.
func IDs(moduleIDs ...string) []Entry { return plugin.IDs(moduleIDs...) }

// Def is a plugin entry carrying a full descriptor.
func Def(d Descriptor) Entry { return plugin.Def(d) }

// NewConfig wraps data in a configuration tree.
func NewConfig(data map[string]any) *Config { return tree.New(data) }

// NewHost returns a bundled host loading modules through l.
func NewHost(l ModuleLoader, opts ...HostOption) *Host { return host.New(l, opts...) }

// WithHostLogger sets the host's logger.
func WithHostLogger(l logrus.FieldLogger) HostOption { return host.WithLogger(l) }

// NewFileLoader returns a loader searching roots in order. log may be nil.
func NewFileLoader(roots []string, log logrus.FieldLogger) *FileLoader {
	return loader.NewFileLoader(roots, log)
}
