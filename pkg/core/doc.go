// Package core provides a small, stable facade over plugconf's internal
// packages for hosts embedding the plugin manager. It re-exports the plugin
// entry types, the configuration tree and the namespace resolver without
// exposing the internal packages themselves.
//
// Example:
//
//	err := core.Configure(host, func(configure core.ConfigureFunc) error {
//		_, err := configure(ctx, core.IDs("aurelia-api"), appConfigs)
//		return err
//	})
//	apiConfig, err := host.Container().Get(core.Of("aurelia-api"))
package core
