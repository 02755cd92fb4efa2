package resolve

import (
	"context"
	"io"
	"log/slog"
)

// Runner spawns a command and waits for it to terminate. A non-nil error
// means the program could not be launched; otherwise exitCode is the
// status the program exited with.
type Runner interface {
	Run(ctx context.Context, argv []string) (exitCode int, err error)
}

// RunnerFunc adapts an ordinary function to the Runner interface.
type RunnerFunc func(ctx context.Context, argv []string) (int, error)

// Run calls f(ctx, argv).
func (f RunnerFunc) Run(ctx context.Context, argv []string) (int, error) {
	return f(ctx, argv)
}

// Option configures an Engine.
type Option func(*Engine)

// WithForce rebuilds every rule-backed target that is visited, stale or not.
func WithForce(force bool) Option {
	return func(e *Engine) { e.force = force }
}

// WithSilent stops the engine from echoing commands before running them.
func WithSilent(silent bool) Option {
	return func(e *Engine) { e.silent = silent }
}

// WithStdout sets where commands are echoed.
func WithStdout(w io.Writer) Option {
	return func(e *Engine) {
		if w != nil {
			e.stdout = w
		}
	}
}

// WithRunner sets the Runner used to execute commands.
func WithRunner(r Runner) Option {
	return func(e *Engine) {
		if r != nil {
			e.runner = r
		}
	}
}

// WithDir resolves relative target and prerequisite names against dir.
func WithDir(dir string) Option {
	return func(e *Engine) { e.dir = dir }
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}
