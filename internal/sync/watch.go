package sync

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// watcher tracks the files under a set of source dirs and reports changes in batches.
type watcher struct {
	fs        *fsnotify.Watcher
	include   *regexp.Regexp
	recursive bool
	roots     []string
	files     map[string]bool
}

func newWatcher(dirs []string, include string, recursive bool) (*watcher, error) {
	// anchored at the start, like a filename match
	re, err := regexp.Compile("^(?:" + include + ")")
	if err != nil {
		return nil, fmt.Errorf("invalid include pattern %q: %w", include, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify.NewWatcher: %w", err)
	}

	w := &watcher{fs: fsw, include: re, recursive: recursive, files: map[string]bool{}}
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			log.Warn().Msgf("not a directory: cannot watch %s. Skipping...", dir)
			continue
		}
		w.roots = append(w.roots, dir)
		if err := w.addTree(dir); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func (w *watcher) matches(path string) bool {
	return w.include.MatchString(filepath.Base(path))
}

// addTree watches dir and, if recursive, its non-hidden subdirs. Files found on the
// way are recorded.
func (w *watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Debug().Err(err).Msgf("skipped %s", path)
			return nil
		}
		if d.IsDir() {
			if path != dir && (!w.recursive || hidden(d.Name())) {
				log.Debug().Msgf("skipped %s: not a dir or invalid pattern", path)
				return fs.SkipDir
			}
			if err := w.fs.Add(path); err != nil {
				return fmt.Errorf("watch directory %s: %w", path, err)
			}
			return nil
		}
		if d.Type().IsRegular() && w.matches(path) {
			w.files[path] = true
		}
		return nil
	})
}

// Files returns the currently tracked files, sorted.
func (w *watcher) Files() []string {
	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

func (w *watcher) Close() error {
	return w.fs.Close()
}

// Watch calls onChange with the files written or created since the last call. Events
// are debounced: onChange fires once nothing changed for the given interval.
func (w *watcher) Watch(ctx context.Context, debounce time.Duration, onChange func([]string)) error {
	pending := map[string]bool{}
	var timer *time.Timer
	var flush <-chan time.Time
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
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !w.track(event.Name) {
				continue
			}
			log.Debug().Msgf("changed: %s", event.Name)
			pending[event.Name] = true
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			flush = timer.C

		case <-flush:
			flush = nil
			changed := make([]string, 0, len(pending))
			for f := range pending {
				changed = append(changed, f)
			}
			clear(pending)
			slices.Sort(changed)
			onChange(changed)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("fsnotify watcher error")
		}
	}
}

// track decides whether a path reported by fsnotify is a file to push. New dirs are
// added to the watch when recursive.
func (w *watcher) track(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if info.IsDir() {
		if w.recursive && !hidden(filepath.Base(path)) {
			if err := w.addTree(path); err != nil {
				log.Warn().Err(err).Msgf("cannot watch %s", path)
			}
		}
		return false
	}
	if !info.Mode().IsRegular() || !w.matches(path) || w.inHiddenDir(path) {
		return false
	}
	w.files[path] = true
	return true
}

func (w *watcher) inHiddenDir(path string) bool {
	for _, root := range w.roots {
		rel, err := filepath.Rel(root, filepath.Dir(path))
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		for _, part := range strings.Split(rel, string(filepath.Separator)) {
			if part != "." && hidden(part) {
				return true
			}
		}
		return false
	}
	return false
}
