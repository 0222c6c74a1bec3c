package host

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/varalys/plugconf/internal/inject"
	"github.com/varalys/plugconf/internal/logging"
	"github.com/varalys/plugconf/internal/plugin"
)

// PluginFunc is a plugin's configure hook. It receives the configuration the
// plugin was registered with.
type PluginFunc func(ctx context.Context, config map[string]any) error

// Registration records one plugin registration.
type Registration struct {
	ModuleID string
	Config   map[string]any

	// Keys lists the top-level keys Config held when Apply ran.
	Keys []string
	// Hooked reports whether a PluginFunc ran for the registration.
	Hooked bool
}

// Framework is a minimal plugin host. It collects registrations during the
// configuration phase and configures plugins afterwards, in Apply.
type Framework struct {
	loader    plugin.ModuleLoader
	container *Container
	log       logrus.FieldLogger

	mu            sync.Mutex
	registrations []*Registration
	hooks         map[string]PluginFunc
}

// Option configures a Framework.
type Option func(*Framework)

// WithLogger sets the framework's logger. It is also registered in the
// container for plugins and the plugin manager.
func WithLogger(l logrus.FieldLogger) Option {
	return func(f *Framework) { f.log = l }
}

// WithContainer replaces the framework's container.
func WithContainer(c *Container) Option {
	return func(f *Framework) { f.container = c }
}

// New returns a Framework loading modules through loader.
func New(loader plugin.ModuleLoader, opts ...Option) *Framework {
	f := &Framework{
		loader: loader,
		hooks:  make(map[string]PluginFunc),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.log == nil {
		f.log = logging.Discard()
	}
	if f.container == nil {
		f.container = NewContainer()
	}
	f.container.Instance(inject.Key[logrus.FieldLogger](), f.log)
	return f
}

// Loader implements plugin.FrameworkConfiguration.
func (f *Framework) Loader() plugin.ModuleLoader { return f.loader }

// Container implements plugin.FrameworkConfiguration.
func (f *Framework) Container() inject.Container { return f.container }

// Plugin implements plugin.FrameworkConfiguration. config is stored as given
// and only read by Apply.
func (f *Framework) Plugin(moduleID string, config map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registrations = append(f.registrations, &Registration{ModuleID: moduleID, Config: config})
	f.log.WithField("plugin", moduleID).Debug("plugin registered")
}

// Register installs the configure hook for moduleID.
func (f *Framework) Register(moduleID string, fn PluginFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hooks[moduleID] = fn
}

// Apply runs the deferred configuration pass: each registration, in order,
// has its config read and its hook (if any) invoked. It must only run after
// the plugin configuration it follows has settled.
func (f *Framework) Apply(ctx context.Context) error {
	f.mu.Lock()
	regs := append([]*Registration(nil), f.registrations...)
	f.mu.Unlock()

	for _, r := range regs {
		if err := ctx.Err(); err != nil {
			return err
		}
		seen := keys(r.Config)

		f.mu.Lock()
		r.Keys = seen
		fn, ok := f.hooks[r.ModuleID]
		f.mu.Unlock()
		log := f.log.WithField("plugin", r.ModuleID)
		if !ok {
			log.Debug("no configure hook registered")
			continue
		}
		if err := fn(ctx, r.Config); err != nil {
			return fmt.Errorf("configure plugin %q: %w", r.ModuleID, err)
		}
		f.mu.Lock()
		r.Hooked = true
		f.mu.Unlock()
		log.Debug("plugin configured")
	}
	return nil
}

// Registrations returns a snapshot of the registrations made so far.
func (f *Framework) Registrations() []Registration {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Registration, len(f.registrations))
	for i, r := range f.registrations {
		out[i] = *r
	}
	return out
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
