package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return p
}

const sampleConfig = `modules:
  - modules
  - /opt/plugconf/modules
plugins:
  - aurelia-api
  - module: aurelia-authentication
    root: true
    config:
      aurelia-authentication:
        endpoint: auth
configs:
  - app.yaml
env_files: [.env]
env_prefix: APP
format: yaml
no_color: true
`

func TestLoadFile_Basic(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, "plugconf.yaml", sampleConfig)
	cfg, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	assert.Equal(t, []string{filepath.Join(dir, "modules"), "/opt/plugconf/modules"}, cfg.Modules)
	assert.Equal(t, []string{filepath.Join(dir, "app.yaml")}, cfg.Configs)
	assert.Equal(t, []string{filepath.Join(dir, ".env")}, cfg.EnvFiles)
	require.Len(t, cfg.Plugins, 2)
	assert.Equal(t, "aurelia-api", cfg.Plugins[0].ModuleID())
	assert.True(t, cfg.Plugins[1].IsDescriptor())
	if cfg.EnvPrefix == nil || *cfg.EnvPrefix != "APP" {
		t.Fatalf("expected env_prefix=APP, got %#v", cfg.EnvPrefix)
	}
	if cfg.Format == nil || *cfg.Format != "yaml" {
		t.Fatalf("expected format=yaml, got %#v", cfg.Format)
	}
	if cfg.NoColor == nil || !*cfg.NoColor {
		t.Fatalf("expected no_color=true")
	}
	assert.Nil(t, cfg.LogLevel)
	assert.Equal(t, p, cfg.Path)
}

func TestLoadFile_Invalid(t *testing.T) {
	p := writeTemp(t, t.TempDir(), "plugconf.yaml", "plugins: {not: a list}\n")
	_, err := LoadFile(p)
	assert.Error(t, err)
}

func TestLoadLocal_PrefersDotfile(t *testing.T) {
	dir := t.TempDir()
	// place both, expect the dotfile to be picked first by search order
	writeTemp(t, dir, "plugconf.yaml", "format: json\n")
	writeTemp(t, dir, ".plugconf.yaml", "format: yaml\n")
	cfg, err := LoadLocal(dir)
	if err != nil {
		t.Fatalf("LoadLocal: %v", err)
	}
	if cfg.Format == nil || *cfg.Format != "yaml" {
		t.Fatalf("expected format=yaml from .plugconf.yaml, got %#v", cfg.Format)
	}
	assert.Equal(t, filepath.Join(dir, ".plugconf.yaml"), cfg.Path)
}

func TestLoadLocal_NoConfig(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadLocal(dir); err == nil {
		t.Fatal("expected error when no local config exists")
	}
}

func TestLoadGlobal_XDG_Config(t *testing.T) {
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, "plugconf")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeTemp(t, cfgDir, "config.yml", "log_level: debug\nmodules: [shared]\n")
	t.Setenv("XDG_CONFIG_HOME", dir)
	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatalf("LoadGlobal: %v", err)
	}
	if cfg.LogLevel == nil || *cfg.LogLevel != "debug" {
		t.Fatalf("expected log_level=debug from global config, got %#v", cfg.LogLevel)
	}
	assert.Equal(t, []string{filepath.Join(cfgDir, "shared")}, cfg.Modules)

	p, err := GlobalPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfgDir, "config.yml"), p)
	assert.Equal(t, p, cfg.Path)
}

func TestLoadGlobal_NoConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	// Simulate no HOME as well by clearing HOME; LoadGlobal should error
	t.Setenv("HOME", "")
	if _, err := LoadGlobal(); err == nil {
		t.Fatal("expected error when no global config dir exists")
	}
}

func TestLoadAppConfigs_KeepsOrder(t *testing.T) {
	dir := t.TempDir()
	a := writeTemp(t, dir, "a.yaml", "api:\n  url: first\n")
	b := writeTemp(t, dir, "b.jsonc", "{\"api\": {\"url\": \"second\"}, // override\n}")

	docs, err := LoadAppConfigs([]string{a, b})
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{
		{"api": map[string]any{"url": "first"}},
		{"api": map[string]any{"url": "second"}},
	}, docs)

	_, err = LoadAppConfigs([]string{filepath.Join(dir, "missing.yaml")})
	assert.Error(t, err)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("PLUGCONF_TEST_API__URL", "https://example.test")
	t.Setenv("PLUGCONF_TEST_DEBUG", "true")
	t.Setenv("OTHER_API__URL", "ignored")

	got, err := LoadEnv("PLUGCONF_TEST")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"api":   map[string]any{"url": "https://example.test"},
		"debug": "true",
	}, got)

	empty, err := LoadEnv("")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestLoadEnv_DotenvFiles(t *testing.T) {
	dir := t.TempDir()
	first := writeTemp(t, dir, "base.env", "PLUGCONF_DOT_API__URL=https://file.example.test\nPLUGCONF_DOT_API__TIMEOUT=5s\nUNRELATED=1\n")
	second := writeTemp(t, dir, "local.env", "PLUGCONF_DOT_API__TIMEOUT=10s\n")
	t.Setenv("PLUGCONF_DOT_API__URL", "https://process.example.test")

	got, err := LoadEnv("PLUGCONF_DOT_", first, second)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"api": map[string]any{"url": "https://process.example.test", "timeout": "10s"},
	}, got)

	_, err = LoadEnv("PLUGCONF_DOT", filepath.Join(dir, "missing.env"))
	assert.Error(t, err)
}
