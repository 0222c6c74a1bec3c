// Package tree implements the shared configuration tree: a nested map
// addressed by dotted paths ("api.endpoints.default") with get, put and
// deep-merge operations.
//
// The recursive merge is delegated to github.com/knadh/koanf/maps. Nested
// maps merge key by key, scalars and slices are replaced by the later source.
// Namespace maps created through FetchOrPut keep their identity across
// merges, which is what lets plugin hosts hold a reference before it is
// populated.
package tree
