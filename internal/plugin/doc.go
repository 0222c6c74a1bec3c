// Package plugin normalizes plugin lists and drives the configuration pass:
// load each plugin module, fill the plugin's config with the module's
// exported defaults, register the plugin with the host and finally merge
// every plugin config and application config into the shared tree.
//
// Registration happens before the merge. Hosts receive a live map that is
// empty at registration time and populated once Configure returns; they must
// defer reading it until then.
package plugin
