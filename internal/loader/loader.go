package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	doublestar "github.com/bmatcuk/doublestar/v4"
	"github.com/sirupsen/logrus"

	"github.com/varalys/plugconf/internal/logging"
	"github.com/varalys/plugconf/internal/plugin"
)

// ErrModuleNotFound is returned when no root holds a module file for an id.
var ErrModuleNotFound = errors.New("module not found")

// ExportKey is the document key holding a module's exported configuration.
const ExportKey = "config"

// FileLoader loads plugin modules from module files under a list of roots.
// Module "a/b" is the first of <root>/a/b.yaml, .yml, .json or .jsonc found
// across the roots, in order.
type FileLoader struct {
	roots []string
	log   logrus.FieldLogger
}

// NewFileLoader returns a FileLoader over roots. A nil log discards output.
func NewFileLoader(roots []string, log logrus.FieldLogger) *FileLoader {
	if log == nil {
		log = logging.Discard()
	}
	return &FileLoader{roots: append([]string(nil), roots...), log: log}
}

// Roots returns the directories searched for modules.
func (l *FileLoader) Roots() []string { return append([]string(nil), l.roots...) }

// LoadModule implements plugin.ModuleLoader. The module's exports are read
// from the document's "config" key; a document without it exports nothing.
func (l *FileLoader) LoadModule(ctx context.Context, moduleID string) (plugin.Module, error) {
	if err := ctx.Err(); err != nil {
		return plugin.Module{}, err
	}
	p, err := l.Locate(moduleID)
	if err != nil {
		return plugin.Module{}, err
	}
	doc, err := ReadDocument(p)
	if err != nil {
		return plugin.Module{}, err
	}
	l.log.WithFields(logrus.Fields{"module": moduleID, "path": p}).Debug("module file read")

	var mod plugin.Module
	switch exp := doc[ExportKey].(type) {
	case map[string]any:
		mod.Config = exp
	case nil:
	default:
		return plugin.Module{}, fmt.Errorf("module %q: %s must be a mapping, got %T", moduleID, ExportKey, exp)
	}
	return mod, nil
}

// Locate returns the path of the module file for moduleID.
func (l *FileLoader) Locate(moduleID string) (string, error) {
	rel := filepath.FromSlash(moduleID)
	if moduleID == "" || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: invalid module id %q", ErrModuleNotFound, moduleID)
	}
	for _, root := range l.roots {
		for _, ext := range Extensions {
			p := filepath.Join(root, rel+ext)
			if st, err := os.Stat(p); err == nil && !st.IsDir() {
				return p, nil
			}
		}
	}
	if hint := l.suggest(moduleID); hint != "" {
		return "", fmt.Errorf("%w: %q (did you mean %q?)", ErrModuleNotFound, moduleID, hint)
	}
	return "", fmt.Errorf("%w: %q (searched %s)", ErrModuleNotFound, moduleID, strings.Join(l.roots, ", "))
}

// suggest returns the known module id closest to moduleID, or "" when none
// is close enough to be a likely typo.
func (l *FileLoader) suggest(moduleID string) string {
	mods, err := l.Modules()
	if err != nil {
		return ""
	}
	best, bestDist := "", max(2, len(moduleID)/3)+1
	for _, m := range mods {
		if d := levenshtein.ComputeDistance(moduleID, m.ID); d < bestDist {
			best, bestDist = m.ID, d
		}
	}
	return best
}

// ModuleInfo describes a module file found under a root.
type ModuleInfo struct {
	ID   string
	Path string
}

// Modules lists the modules found under the roots, sorted by id. When an id
// exists under several roots, or with several extensions, the one LoadModule
// would pick is reported.
func (l *FileLoader) Modules() ([]ModuleInfo, error) {
	seen := map[string]bool{}
	var out []ModuleInfo
	for _, root := range l.roots {
		matches, err := doublestar.Glob(os.DirFS(root), "**/*.{yaml,yml,json,jsonc}")
		if err != nil {
			return nil, fmt.Errorf("list modules in %s: %w", root, err)
		}
		sort.SliceStable(matches, func(i, j int) bool { return extRank(matches[i]) < extRank(matches[j]) })
		for _, m := range matches {
			id := strings.TrimSuffix(m, path.Ext(m))
			if seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, ModuleInfo{ID: id, Path: filepath.Join(root, filepath.FromSlash(m))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func extRank(name string) int {
	ext := strings.ToLower(path.Ext(name))
	for i, e := range Extensions {
		if e == ext {
			return i
		}
	}
	return len(Extensions)
}

// MapLoader serves modules from memory.
type MapLoader map[string]plugin.Module

// LoadModule implements plugin.ModuleLoader.
func (m MapLoader) LoadModule(ctx context.Context, moduleID string) (plugin.Module, error) {
	if err := ctx.Err(); err != nil {
		return plugin.Module{}, err
	}
	mod, ok := m[moduleID]
	if !ok {
		return plugin.Module{}, fmt.Errorf("%w: %q", ErrModuleNotFound, moduleID)
	}
	return mod, nil
}
