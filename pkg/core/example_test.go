package core_test

import (
	"context"
	"fmt"

	"github.com/varalys/plugconf/pkg/core"
)

// ExampleConfigure merges a module's defaults, a plugin override and an app
// config, then resolves the plugin's namespace.
func ExampleConfigure() {
	fw := core.NewHost(core.MapLoader{
		"aurelia-api": {Config: map[string]any{
			"aurelia-api": map[string]any{"endpoint": "https://api.example.test", "retries": 1},
		}},
	})

	err := core.Configure(fw, func(configure core.ConfigureFunc) error {
		_, err := configure(context.Background(),
			[]core.Entry{core.Def(core.Descriptor{
				ModuleID: "aurelia-api",
				Config:   map[string]any{"aurelia-api": map[string]any{"retries": 3}},
			})},
			[]map[string]any{{"aurelia-api": map[string]any{"endpoint": "https://staging.example.test"}}},
		)
		return err
	})
	if err != nil {
		fmt.Println("configure:", err)
		return
	}

	ns, _ := fw.Container().Get(core.Of("aurelia-api"))
	cfg := ns.(map[string]any)
	fmt.Println(cfg["endpoint"], cfg["retries"])
	// Output: https://staging.example.test 3
}

// ExampleConfig shows dotted-path access to a configuration tree.
func ExampleConfig() {
	cfg := core.NewConfig(nil)
	cfg.Put("auth.providers.github.scope", "read:user")
	cfg.Merge(map[string]any{"auth": map[string]any{"providers": map[string]any{"github": map[string]any{"scope": "repo"}}}})
	fmt.Println(cfg.Fetch("auth.providers.github.scope"))
	fmt.Println(cfg.FetchOr("auth.providers.gitlab", "none"))
	// Output:
	// repo
	// none
}
