package plugin

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/varalys/plugconf/internal/inject"
)

// Configure hooks the plugin manager into a host's configuration phase. It
// takes the container's singleton Manager, building it over the container's
// shared tree on first use, and hands callback a ConfigureFunc bound to fc.
// The callback's error is returned.
func Configure(fc FrameworkConfiguration, callback func(ConfigureFunc) error) error {
	m, err := inject.GetOrProvide[*Manager](fc.Container(), newManager)
	if err != nil {
		return fmt.Errorf("resolve plugin manager: %w", err)
	}
	return callback(func(ctx context.Context, plugins []Entry, appConfigs []map[string]any) (map[string]any, error) {
		return m.Configure(ctx, fc, plugins, appConfigs)
	})
}

func newManager(c inject.Container) (any, error) {
	cfg, err := inject.ConfigTree(c)
	if err != nil {
		return nil, err
	}
	var opts []Option
	if log, err := inject.Get[logrus.FieldLogger](c); err == nil {
		opts = append(opts, WithLogger(log))
	}
	return NewManager(cfg, opts...), nil
}
