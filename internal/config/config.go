package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/maps"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"

	"github.com/varalys/plugconf/internal/loader"
	"github.com/varalys/plugconf/internal/plugin"
)

// FileConfig is the on-disk YAML configuration shape for plugconf.
type FileConfig struct {
	// Modules lists the directories searched for plugin module files.
	Modules []string `yaml:"modules,omitempty"`
	// Plugins is the plugin list handed to the manager.
	Plugins []plugin.Entry `yaml:"plugins,omitempty"`
	// Configs lists app config files, merged in order after the plugins.
	Configs []string `yaml:"configs,omitempty"`

	// EnvFiles are dotenv files read alongside the process environment.
	EnvFiles []string `yaml:"env_files,omitempty"`

	EnvPrefix *string `yaml:"env_prefix,omitempty"`
	Format    *string `yaml:"format,omitempty"`
	NoColor   *bool   `yaml:"no_color,omitempty"`
	LogLevel  *string `yaml:"log_level,omitempty"`

	// Path is the file the config was read from.
	Path string `yaml:"-"`
}

// LocalNames are the project config file names LoadLocal tries, in order.
var LocalNames = []string{".plugconf.yml", ".plugconf.yaml", "plugconf.yml", "plugconf.yaml"}

// LoadFile reads a YAML config file from the provided path. Relative module
// and config paths are resolved against the file's directory.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Path = path
	base := filepath.Dir(path)
	cfg.Modules = resolveAll(base, cfg.Modules)
	cfg.Configs = resolveAll(base, cfg.Configs)
	cfg.EnvFiles = resolveAll(base, cfg.EnvFiles)
	return cfg, nil
}

// LoadLocal searches dir for the first of LocalNames.
func LoadLocal(dir string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range LocalNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, errors.New("no local config")
}

// GlobalPath returns where the global config file lives, whether or not it
// exists: under XDG_CONFIG_HOME, else ~/.config.
func GlobalPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return "", errors.New("no config dir")
	}
	return filepath.Join(base, "plugconf", "config.yml"), nil
}

// LoadGlobal loads the file at GlobalPath.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	p, err := GlobalPath()
	if err != nil {
		return cfg, err
	}
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return cfg, errors.New("no global config")
}

// LoadAppConfigs reads each app config file in order.
func LoadAppConfigs(paths []string) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(paths))
	for _, p := range paths {
		doc, err := loader.ReadDocument(p)
		if err != nil {
			return nil, fmt.Errorf("app config: %w", err)
		}
		out = append(out, doc)
	}
	return out, nil
}

// LoadEnv builds an app config from environment variables starting with
// prefix. The prefix is stripped, names are lowercased and a double
// underscore separates path segments, so PLUGCONF_API__URL sets api.url.
// Variables from dotenv files are read first, in order, and the process
// environment wins over them. Values stay strings.
func LoadEnv(prefix string, envFiles ...string) (map[string]any, error) {
	if prefix == "" {
		return map[string]any{}, nil
	}
	if !strings.HasSuffix(prefix, "_") {
		prefix += "_"
	}
	key := func(s string) string {
		name := strings.ToLower(strings.TrimPrefix(s, prefix))
		return strings.ReplaceAll(name, "__", ".")
	}

	flat := map[string]any{}
	for _, f := range envFiles {
		vars, err := godotenv.Read(f)
		if err != nil {
			return nil, fmt.Errorf("read env file: %w", err)
		}
		for name, v := range vars {
			if strings.HasPrefix(name, prefix) {
				flat[key(name)] = v
			}
		}
	}
	out := maps.Unflatten(flat, ".")

	k := koanf.New(".")
	if err := k.Load(env.Provider(prefix, ".", key), nil); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	maps.Merge(k.Raw(), out)
	return out, nil
}

func resolveAll(base string, paths []string) []string {
	for i, p := range paths {
		if p != "" && !filepath.IsAbs(p) {
			paths[i] = filepath.Join(base, p)
		}
	}
	return paths
}
