// Package watch re-runs a callback when plugin module files or app config
// files change on disk.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/varalys/plugconf/internal/loader"
	"github.com/varalys/plugconf/internal/logging"
)

// DefaultDebounce is how long the watcher waits for a burst of events to
// settle before calling back.
const DefaultDebounce = 200 * time.Millisecond

// Watcher watches module roots recursively and a set of individual files.
type Watcher struct {
	fs       *fsnotify.Watcher
	roots    []string
	files    map[string]bool
	debounce time.Duration
	log      logrus.FieldLogger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the settle delay.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithLogger sets the watcher's logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(w *Watcher) { w.log = l }
}

// New starts watching every directory under roots and the parent directory
// of each file. Files need not exist yet. Missing roots, and files whose
// directory is missing, are skipped.
func New(roots, files []string, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{fs: fsw, files: map[string]bool{}, debounce: DefaultDebounce, log: logging.Discard()}
	for _, opt := range opts {
		opt(w)
	}
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			fsw.Close()
			return nil, err
		}
		if _, err := os.Stat(abs); err != nil {
			w.log.WithField("root", root).Warn("module root not found, not watching it")
			continue
		}
		w.roots = append(w.roots, abs)
		if err := w.addTree(abs); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fsw.Close()
			return nil, err
		}
		if _, err := os.Stat(filepath.Dir(abs)); err != nil {
			w.log.WithField("file", f).Debug("parent directory not found, not watching file")
			continue
		}
		w.files[abs] = true
		if err := fsw.Add(filepath.Dir(abs)); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Run calls onChange once per settled burst of relevant events until ctx is
// done. Watcher errors are logged, not returned.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.log.WithFields(logrus.Fields{"path": event.Name, "op": event.Op.String()}).Debug("change detected")
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			onChange()

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Error("file watcher error")
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if w.files[ev.Name] {
		return true
	}
	if !w.underRoot(ev.Name) {
		return false
	}
	if ev.Op&fsnotify.Create != 0 {
		if st, err := os.Stat(ev.Name); err == nil && st.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				w.log.WithError(err).WithField("dir", ev.Name).Warn("cannot watch new directory")
			}
			return true
		}
	}
	return slices.Contains(loader.Extensions, strings.ToLower(filepath.Ext(ev.Name)))
}

func (w *Watcher) underRoot(p string) bool {
	for _, root := range w.roots {
		if rel, err := filepath.Rel(root, p); err == nil && filepath.IsLocal(rel) {
			return true
		}
	}
	return false
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fs.Add(p)
		}
		return nil
	})
}
