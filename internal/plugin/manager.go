package plugin

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/varalys/plugconf/internal/logging"
	"github.com/varalys/plugconf/internal/tree"
)

// ErrModuleLoad wraps every error returned by a ModuleLoader.
var ErrModuleLoad = errors.New("load plugin module")

// Manager loads plugin modules, merges their configuration into the shared
// tree and registers them with the host.
type Manager struct {
	config *tree.Config
	log    logrus.FieldLogger

	// fill serializes writes of module defaults into descriptor configs; the
	// same descriptor may appear in a plugin list more than once.
	fill sync.Mutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// NewManager returns a Manager writing into cfg.
func NewManager(cfg *tree.Config, opts ...Option) *Manager {
	m := &Manager{config: cfg, log: logging.Discard()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Config returns the tree the manager writes into.
func (m *Manager) Config() *tree.Config { return m.config }

// Configure loads every plugin module concurrently and, once all loads have
// succeeded, merges the plugin configs followed by appConfigs into the shared
// tree. It returns the tree's backing map.
//
// Each plugin is registered with fc before its module has loaded, with a
// reference to its namespace map (or to the whole tree when RootConfig is
// set). That reference is populated by the final merge. The first failing
// load cancels the others and is returned; the tree is then left unmerged,
// though namespaces and registrations made so far remain.
func (m *Manager) Configure(ctx context.Context, fc FrameworkConfiguration, plugins []Entry, appConfigs []map[string]any) (map[string]any, error) {
	loader := fc.Loader()
	g, gctx := errgroup.WithContext(ctx)
	pluginConfigs := make([]map[string]any, 0, len(plugins)+len(appConfigs))

	Normalized(plugins, func(d *Descriptor) {
		g.Go(func() error { return m.load(gctx, loader, d) })

		pluginConfigs = append(pluginConfigs, d.Config)

		node := m.config.FetchOrPut(d.ModuleID, map[string]any{})
		if d.RootConfig {
			fc.Plugin(d.ModuleID, m.config.Data())
			return
		}
		ns, ok := node.(map[string]any)
		if !ok {
			m.log.WithField("plugin", d.ModuleID).Warnf("namespace holds %T, registering without config", node)
		}
		fc.Plugin(d.ModuleID, ns)
	})

	if err := g.Wait(); err != nil {
		m.log.WithError(err).Error("plugin configuration aborted")
		return nil, err
	}

	merged := m.config.Merge(append(pluginConfigs, appConfigs...)...)
	m.log.WithFields(logrus.Fields{
		"plugins":     len(plugins),
		"app_configs": len(appConfigs),
	}).Info("plugin configuration merged")
	return merged, nil
}

func (m *Manager) load(ctx context.Context, loader ModuleLoader, d *Descriptor) error {
	log := m.log.WithField("plugin", d.ModuleID)
	mod, err := loader.LoadModule(ctx, d.ModuleID)
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrModuleLoad, d.ModuleID, err)
	}
	m.fill.Lock()
	tree.FillDefaults(d.Config, mod.Config)
	m.fill.Unlock()
	log.WithField("defaults", len(mod.Config)).Debug("plugin module loaded")
	return nil
}
