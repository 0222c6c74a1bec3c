package plugconf

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/varalys/plugconf/internal/config"
	"github.com/varalys/plugconf/internal/host"
	"github.com/varalys/plugconf/internal/loader"
	"github.com/varalys/plugconf/internal/logging"
	"github.com/varalys/plugconf/internal/plugin"
	"github.com/varalys/plugconf/internal/report"
	"github.com/varalys/plugconf/pkg/core"
)

// settings is the effective configuration of one command run.
type settings struct {
	Modules   []string
	Plugins   []plugin.Entry
	Configs   []string
	EnvPrefix string
	EnvFiles  []string
	Format    report.Format
	NoColor   bool
	LogLevel  string

	// ConfigFiles are the plugconf config files whose edits change these
	// settings, existing or not.
	ConfigFiles []string
}

// watchFiles lists every individual file a rerun of s depends on.
func (s settings) watchFiles() []string {
	out := append([]string(nil), s.ConfigFiles...)
	out = append(out, s.Configs...)
	return append(out, s.EnvFiles...)
}

// loadSettings resolves flags and config files. Precedence: CLI > local (or
// --config) > global.
func loadSettings() (settings, error) {
	var s settings
	dir, err := filepath.Abs(flagDir)
	if err != nil {
		return s, err
	}

	var gcfg, lcfg config.FileConfig
	if c, err := config.LoadGlobal(); err == nil {
		gcfg = c
	}
	if p, err := config.GlobalPath(); err == nil {
		s.ConfigFiles = append(s.ConfigFiles, p)
	}
	if flagConfigFile != "" {
		c, err := config.LoadFile(flagConfigFile)
		if err != nil {
			return s, fmt.Errorf("load config: %w", err)
		}
		lcfg = c
		s.ConfigFiles = append(s.ConfigFiles, flagConfigFile)
	} else {
		if c, err := config.LoadLocal(dir); err == nil {
			lcfg = c
		}
		for _, name := range config.LocalNames {
			s.ConfigFiles = append(s.ConfigFiles, filepath.Join(dir, name))
		}
	}

	var cliPlugins []plugin.Entry
	for _, v := range flagPlugins {
		cliPlugins = append(cliPlugins, pluginEntry(v))
	}

	s.Modules = pickSlice(flagModules, lcfg.Modules, gcfg.Modules)
	if len(s.Modules) == 0 {
		s.Modules = []string{filepath.Join(dir, "modules")}
	}
	s.Plugins = pickSlice(cliPlugins, lcfg.Plugins, gcfg.Plugins)
	s.Configs = pickSlice(flagAppConfigs, lcfg.Configs, gcfg.Configs)
	s.EnvPrefix = pickString(flagEnvPrefix, lcfg.EnvPrefix, gcfg.EnvPrefix)
	s.EnvFiles = pickSlice(flagEnvFiles, lcfg.EnvFiles, gcfg.EnvFiles)
	s.NoColor = pickBool(flagNoColor, lcfg.NoColor, gcfg.NoColor)
	s.LogLevel = pickString(flagLogLevel, lcfg.LogLevel, gcfg.LogLevel)
	if s.Format, err = report.ParseFormat(pickString(flagFormat, lcfg.Format, gcfg.Format)); err != nil {
		return s, err
	}
	return s, nil
}

// pluginEntry turns a --plugin value into an entry. A "root:" prefix
// registers the plugin with the whole tree.
func pluginEntry(v string) plugin.Entry {
	if id, ok := strings.CutPrefix(v, "root:"); ok {
		return plugin.Def(plugin.Descriptor{ModuleID: id, RootConfig: true})
	}
	return plugin.ID(v)
}

func newLogger(cmd *cobra.Command, s settings) *logrus.Logger {
	return logging.New(logging.Config{Level: s.LogLevel, JSON: flagLogJSON, Output: cmd.ErrOrStderr()})
}

// session is one pass of plugin configuration through the bundled host.
type session struct {
	framework *host.Framework
	loader    *loader.FileLoader
	merged    map[string]any
}

// resolve runs the plugin manager over s inside a fresh host, then lets the
// host read what each plugin was registered with. s is not modified, so the
// same settings can be resolved again.
func resolve(ctx context.Context, s settings, log logrus.FieldLogger) (*session, error) {
	log = log.WithField("session", ulid.Make().String())
	fl := loader.NewFileLoader(s.Modules, log)
	fw := host.New(fl, host.WithLogger(log))

	appConfigs, err := config.LoadAppConfigs(s.Configs)
	if err != nil {
		return nil, err
	}
	if s.EnvPrefix != "" {
		env, err := config.LoadEnv(s.EnvPrefix, s.EnvFiles...)
		if err != nil {
			return nil, err
		}
		appConfigs = append(appConfigs, env)
	}

	plugins := make([]plugin.Entry, len(s.Plugins))
	for i, e := range s.Plugins {
		plugins[i] = e.Clone()
	}

	var merged map[string]any
	err = core.Configure(fw, func(configure core.ConfigureFunc) error {
		var err error
		merged, err = configure(ctx, plugins, appConfigs)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := fw.Apply(ctx); err != nil {
		return nil, err
	}
	return &session{framework: fw, loader: fl, merged: merged}, nil
}
