// Package resolve brings targets of a rule set up to date.
//
// Resolving a target first resolves its prerequisites, depth first and in
// declaration order, and then rebuilds the target if it is missing, if a
// rebuild is forced, or if any prerequisite is missing or newer than it.
// Names without a rule must be existing files. The first failure aborts
// the whole resolution.
package resolve

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/yaklabco/mmake/internal/ish"
	"github.com/yaklabco/mmake/internal/log"
	"github.com/yaklabco/mmake/pkg/rules"
	"github.com/yaklabco/mmake/pkg/target"
)

// Engine resolves targets of one RuleSet. It is not safe for concurrent use.
type Engine struct {
	rules  *rules.RuleSet
	force  bool
	silent bool
	stdout io.Writer
	runner Runner
	dir    string
	logger *slog.Logger

	// targets currently being resolved, outermost first
	visiting []string
}

// New returns an Engine for rs. Without options commands are echoed to
// os.Stdout and run by an ish.Runner attached to the process's stdio.
func New(rs *rules.RuleSet, opts ...Option) *Engine {
	engine := &Engine{
		rules:  rs,
		stdout: os.Stdout,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(engine)
	}
	if engine.runner == nil {
		engine.runner = &ish.Runner{
			Dir:    engine.dir,
			Stdin:  os.Stdin,
			Stdout: os.Stdout,
			Stderr: os.Stderr,
		}
	}
	return engine
}

// Resolve brings name up to date.
func (e *Engine) Resolve(ctx context.Context, name string) error {
	e.visiting = e.visiting[:0]
	return e.resolve(ctx, name)
}

func (e *Engine) resolve(ctx context.Context, name string) error {
	if idx := slices.Index(e.visiting, name); idx >= 0 {
		path := append(slices.Clone(e.visiting[idx:]), name)
		return &CyclicDependencyError{Path: path}
	}

	rule, found := e.rules.Lookup(name)
	if !found {
		return e.checkSource(name)
	}

	e.visiting = append(e.visiting, name)
	defer func() { e.visiting = e.visiting[:len(e.visiting)-1] }()

	for _, prereq := range rule.Prerequisites {
		if err := e.resolve(ctx, prereq); err != nil {
			return err
		}
	}

	reason, err := e.staleness(rule)
	if err != nil {
		return err
	}
	if reason == "" {
		e.logger.Debug("target is up to date", slog.String(log.Target, name))
		return nil
	}

	e.logger.Debug("rebuilding target", slog.String(log.Target, name), slog.String(log.Reason, reason))
	return e.rebuild(ctx, rule)
}

func (e *Engine) checkSource(name string) error {
	exists, err := target.Exists(e.path(name))
	if err != nil {
		return &MetadataError{Target: name, Path: e.path(name), Err: err}
	}
	if !exists {
		return &MissingTargetError{Target: name}
	}
	return nil
}

// staleness returns why rule must be rebuilt, or "" if it is up to date.
func (e *Engine) staleness(rule rules.Rule) (string, error) {
	targetPath := e.path(rule.Target)
	mTime, exists, err := target.ModTime(targetPath)
	if err != nil {
		return "", &MetadataError{Target: rule.Target, Path: targetPath, Err: err}
	}
	if !exists {
		return "target does not exist", nil
	}
	if e.force {
		return "rebuild forced", nil
	}

	paths := make([]string, 0, len(rule.Prerequisites))
	for _, prereq := range rule.Prerequisites {
		paths = append(paths, e.path(prereq))
	}
	source, newer, err := target.PathNewer(mTime, paths...)
	if err != nil {
		return "", &MetadataError{Target: rule.Target, Path: source, Err: err}
	}
	if newer {
		return fmt.Sprintf("%s is newer or missing", source), nil
	}
	return "", nil
}

func (e *Engine) rebuild(ctx context.Context, rule rules.Rule) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", rule.Target, err)
	}

	if !e.silent {
		if _, err := fmt.Fprintln(e.stdout, rule.CommandLine()); err != nil {
			return fmt.Errorf("echoing command for %s: %w", rule.Target, err)
		}
	}

	code, err := e.runner.Run(ctx, rule.Command)
	if err != nil {
		return &SpawnError{Target: rule.Target, Command: rule.Command, Err: err}
	}
	if code != 0 {
		return &BuildFailureError{Target: rule.Target, Command: rule.Command, Code: code}
	}
	return nil
}

func (e *Engine) path(name string) string {
	if e.dir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(e.dir, name)
}
