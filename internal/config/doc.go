// Package config loads plugconf configuration from local and global YAML files
// with precedence rules, and reads the app configs (files and environment)
// merged after the plugins. It is internal; CLI code maps flags and files into
// a resolve session.
package config
