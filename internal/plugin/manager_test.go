package plugin_test

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varalys/plugconf/internal/host"
	"github.com/varalys/plugconf/internal/inject"
	"github.com/varalys/plugconf/internal/loader"
	"github.com/varalys/plugconf/internal/plugin"
	"github.com/varalys/plugconf/internal/tree"
)

type loaderFunc func(ctx context.Context, moduleID string) (plugin.Module, error)

func (f loaderFunc) LoadModule(ctx context.Context, moduleID string) (plugin.Module, error) {
	return f(ctx, moduleID)
}

// recordingFramework remembers what each registered config looked like at
// registration time.
type recordingFramework struct {
	loader    plugin.ModuleLoader
	container *host.Container

	ids     []string
	configs []map[string]any
	sizes   []int
}

func newRecordingFramework(l plugin.ModuleLoader) *recordingFramework {
	return &recordingFramework{loader: l, container: host.NewContainer()}
}

func (f *recordingFramework) Loader() plugin.ModuleLoader  { return f.loader }
func (f *recordingFramework) Container() inject.Container { return f.container }
func (f *recordingFramework) Plugin(id string, cfg map[string]any) {
	f.ids = append(f.ids, id)
	f.configs = append(f.configs, cfg)
	f.sizes = append(f.sizes, len(cfg))
}

func samePointer(a, b any) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

func TestConfigure_DescriptorOverridesModuleDefaults(t *testing.T) {
	modules := loader.MapLoader{
		"p": {Config: map[string]any{"a": 2, "b": 3}},
	}
	override := map[string]any{"a": 1}
	cfg := tree.New(nil)
	m := plugin.NewManager(cfg)

	merged, err := m.Configure(context.Background(), newRecordingFramework(modules),
		[]plugin.Entry{plugin.Def(plugin.Descriptor{ModuleID: "p", Config: override})}, nil)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"a": 1, "b": 3}, override)
	assert.Equal(t, 1, merged["a"])
	assert.Equal(t, 3, merged["b"])
	assert.Equal(t, map[string]any{}, merged["p"], "namespace is created even when nothing is written to it")
}

func TestConfigure_AppConfigsMergeLastInOrder(t *testing.T) {
	modules := loader.MapLoader{
		"api":  {Config: map[string]any{"api": map[string]any{"url": "default", "retries": 1}}},
		"auth": {Config: map[string]any{"auth": map[string]any{"provider": "none"}, "shared": map[string]any{"k": "auth"}}},
	}
	m := plugin.NewManager(tree.New(nil))

	merged, err := m.Configure(context.Background(), newRecordingFramework(modules), plugin.IDs("api", "auth"), []map[string]any{
		{"api": map[string]any{"url": "app-1"}, "shared": map[string]any{"k": "first"}},
		{"api": map[string]any{"url": "app-2"}, "shared": map[string]any{"k": "second"}},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"url": "app-2", "retries": 1}, merged["api"])
	assert.Equal(t, map[string]any{"provider": "none"}, merged["auth"])
	assert.Equal(t, map[string]any{"k": "second"}, merged["shared"])
}

func TestConfigure_RegistersBeforeMergeWithLiveReference(t *testing.T) {
	modules := loader.MapLoader{
		"api": {Config: map[string]any{"api": map[string]any{"url": "default"}}},
	}
	cfg := tree.New(nil)
	fw := newRecordingFramework(modules)

	_, err := plugin.NewManager(cfg).Configure(context.Background(), fw, plugin.IDs("api"), nil)
	require.NoError(t, err)

	require.Equal(t, []string{"api"}, fw.ids)
	assert.Equal(t, 0, fw.sizes[0], "registered config is empty at registration time")
	assert.Equal(t, map[string]any{"url": "default"}, fw.configs[0], "and populated once configure returns")
	assert.True(t, samePointer(fw.configs[0], cfg.Fetch("api")))
}

func TestConfigure_RootConfigGetsWholeTree(t *testing.T) {
	modules := loader.MapLoader{
		"root":   {Config: map[string]any{"root": map[string]any{"x": 1}}},
		"scoped": {},
	}
	cfg := tree.New(nil)
	fw := newRecordingFramework(modules)

	_, err := plugin.NewManager(cfg).Configure(context.Background(), fw, []plugin.Entry{
		plugin.Def(plugin.Descriptor{ModuleID: "root", RootConfig: true}),
		plugin.ID("scoped"),
	}, nil)
	require.NoError(t, err)

	require.Len(t, fw.configs, 2)
	assert.True(t, samePointer(fw.configs[0], cfg.Data()))
	assert.Contains(t, fw.configs[0], "scoped")
	assert.True(t, samePointer(fw.configs[1], cfg.Fetch("scoped")))
}

func TestConfigure_LoadFailureSkipsMerge(t *testing.T) {
	boom := errors.New("boom")
	l := loaderFunc(func(_ context.Context, id string) (plugin.Module, error) {
		if id == "bad" {
			return plugin.Module{}, boom
		}
		return plugin.Module{Config: map[string]any{"good": map[string]any{"loaded": true}}}, nil
	})
	cfg := tree.New(nil)
	fw := newRecordingFramework(l)

	merged, err := plugin.NewManager(cfg).Configure(context.Background(), fw, plugin.IDs("good", "bad"),
		[]map[string]any{{"app": "value"}})

	require.Error(t, err)
	assert.Nil(t, merged)
	assert.ErrorIs(t, err, plugin.ErrModuleLoad)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `"bad"`)

	assert.Equal(t, map[string]any{"good": map[string]any{}, "bad": map[string]any{}}, cfg.Data(),
		"namespaces and registrations from the first pass remain, nothing was merged")
	assert.Equal(t, []string{"good", "bad"}, fw.ids)
}

func TestConfigure_LoadsConcurrently(t *testing.T) {
	const n = 4
	var started atomic.Int32
	all := make(chan struct{})
	var once sync.Once

	l := loaderFunc(func(ctx context.Context, id string) (plugin.Module, error) {
		if started.Add(1) == n {
			once.Do(func() { close(all) })
		}
		select {
		case <-all:
			return plugin.Module{Config: map[string]any{id: map[string]any{"ok": true}}}, nil
		case <-ctx.Done():
			return plugin.Module{}, ctx.Err()
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	merged, err := plugin.NewManager(tree.New(nil)).Configure(ctx, newRecordingFramework(l),
		plugin.IDs("a", "b", "c", "d"), nil)
	require.NoError(t, err, "every load must be in flight at once")
	for _, id := range []string{"a", "b", "c", "d"} {
		assert.Equal(t, map[string]any{"ok": true}, merged[id])
	}
}

func TestConfigure_FirstFailureCancelsOthers(t *testing.T) {
	boom := errors.New("boom")
	l := loaderFunc(func(ctx context.Context, id string) (plugin.Module, error) {
		if id == "bad" {
			return plugin.Module{}, boom
		}
		<-ctx.Done()
		return plugin.Module{}, ctx.Err()
	})

	done := make(chan error, 1)
	go func() {
		_, err := plugin.NewManager(tree.New(nil)).Configure(context.Background(), newRecordingFramework(l),
			plugin.IDs("slow", "bad"), nil)
		done <- err
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, boom)
	case <-time.After(5 * time.Second):
		t.Fatal("configure did not return after a load failed")
	}
}

func TestConfigure_EmptyPluginListMergesAppConfigs(t *testing.T) {
	merged, err := plugin.NewManager(tree.New(map[string]any{"pre": 1})).Configure(context.Background(),
		newRecordingFramework(loader.MapLoader{}), nil, []map[string]any{{"app": true}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"pre": 1, "app": true}, merged)
}

func TestConfigure_ModuleWithoutExports(t *testing.T) {
	merged, err := plugin.NewManager(tree.New(nil)).Configure(context.Background(),
		newRecordingFramework(loader.MapLoader{"bare": {}}), plugin.IDs("bare"), nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"bare": map[string]any{}}, merged)
}

func TestConfigure_ScalarNamespaceRegistersNil(t *testing.T) {
	cfg := tree.New(map[string]any{"flag": true})
	fw := newRecordingFramework(loader.MapLoader{"flag": {}})

	_, err := plugin.NewManager(cfg).Configure(context.Background(), fw, plugin.IDs("flag"), nil)
	require.NoError(t, err)
	require.Len(t, fw.configs, 1)
	assert.Nil(t, fw.configs[0])
	assert.Equal(t, true, cfg.Fetch("flag"))
}
