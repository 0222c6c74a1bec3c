// Package plugconf provides the command-line interface for plugconf. It wires
// the plugin manager into a small bundled host, configures subcommands
// (resolve, plugins, modules, config init), parses flags, and executes the
// selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/varalys/plugconf/cmd/plugconf"
//	func main() { plugconf.Execute() }
package plugconf
