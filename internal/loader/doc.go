// Package loader loads plugin modules from YAML, JSON and JSONC files.
//
// A module file is a document whose "config" key holds the module's exported
// default configuration:
//
//	# modules/aurelia-api.yaml
//	config:
//	  aurelia-api:
//	    endpoints:
//	      default: https://api.example.test
//
// Documents are parsed with koanf; JSONC comments are stripped with
// tidwall/jsonc first.
package loader
