// Package watch re-runs a build whenever one of a set of files changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
	"github.com/yaklabco/mmake/internal/log"
)

// ErrNoBuild is returned by Run when Params.Build is nil.
var ErrNoBuild = errors.New("watch: no build function")

// BuildFunc rebuilds after a change and returns the files to watch from
// then on. If it fails, the previous set of files stays watched.
type BuildFunc func(ctx context.Context) ([]string, error)

// Params configures Run.
type Params struct {
	// Paths are the files watched until the first rebuild.
	Paths []string
	// Ignore holds glob patterns; a change to a file whose base name or
	// path matches one of them never triggers a rebuild.
	Ignore []string
	// Debounce is how long the files must stay quiet before Build runs.
	Debounce time.Duration
	Build    BuildFunc
	Logger   *slog.Logger
}

type watchLoop struct {
	watcher  *fsnotify.Watcher
	ignore   []glob.Glob
	logger   *slog.Logger
	files    map[string]bool
	dirs     map[string]bool
	debounce time.Duration
}

// Run watches params.Paths and calls params.Build once the watched files
// have been quiet for params.Debounce after a change. Builds run on the
// calling goroutine and never overlap. Build errors are logged. Run
// returns nil once ctx is cancelled.
func Run(ctx context.Context, params Params) error {
	if params.Build == nil {
		return ErrNoBuild
	}
	ignore, err := CompileIgnore(params.Ignore)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	loop := &watchLoop{
		watcher:  watcher,
		ignore:   ignore,
		logger:   params.Logger,
		files:    map[string]bool{},
		dirs:     map[string]bool{},
		debounce: params.Debounce,
	}
	if loop.logger == nil {
		loop.logger = slog.Default()
	}
	if err := loop.setPaths(params.Paths); err != nil {
		return err
	}

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !loop.relevant(event) {
				continue
			}
			loop.logger.Debug("file changed", slog.String(log.Path, event.Name), slog.String(log.Event, event.Op.String()))
			pending = time.After(loop.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			loop.logger.Warn("file watcher error", slog.Any(log.Error, err))

		case <-pending:
			pending = nil
			paths, err := params.Build(ctx)
			if err != nil {
				loop.logger.Error("build failed", slog.Any(log.Error, err))
				continue
			}
			if err := loop.setPaths(paths); err != nil {
				loop.logger.Error("updating watched files", slog.Any(log.Error, err))
			}
		}
	}
}

// CompileIgnore compiles ignore patterns. '/' is the separator for '*'.
func CompileIgnore(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// Ignored reports whether a change to path is ignored by any of globs.
func Ignored(globs []glob.Glob, path string) bool {
	slashed := filepath.ToSlash(path)
	base := filepath.Base(path)
	for _, g := range globs {
		if g.Match(base) || g.Match(slashed) {
			return true
		}
	}
	return false
}

func (l *watchLoop) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return l.files[abs] && !Ignored(l.ignore, event.Name)
}

// setPaths watches the parent directories of paths, so files that are
// replaced or recreated keep being seen.
func (l *watchLoop) setPaths(paths []string) error {
	files := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", path, err)
		}
		files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	for dir := range dirs {
		if l.dirs[dir] {
			continue
		}
		if err := l.watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		l.logger.Debug("watching directory", slog.String(log.Dir, dir))
	}
	for dir := range l.dirs {
		if !dirs[dir] {
			_ = l.watcher.Remove(dir)
		}
	}

	l.files = files
	l.dirs = dirs
	return nil
}
