// Package ish spawns rebuild commands as child processes and waits for them.
package ish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/samber/lo"
	"github.com/yaklabco/mmake/internal/dryrun"
	"github.com/yaklabco/mmake/internal/log"
	"github.com/yaklabco/mmake/pkg/env"
)

// ErrEmptyCommand is returned when Run is given no program to execute.
var ErrEmptyCommand = errors.New("empty command")

// Runner executes commands directly (program looked up on PATH, no shell),
// inheriting the parent's environment plus Env.
type Runner struct {
	Dir     string
	Env     map[string]string
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	DryRun  bool
	Verbose bool
}

// Run executes argv[0] with argv[1:] as its arguments and waits for it.
// A command that ran to completion yields its exit code and a nil error,
// whatever that code is. A non-nil error means the command could not be
// started or did not exit normally.
func (r *Runner) Run(ctx context.Context, argv []string) (int, error) {
	if len(argv) == 0 {
		return 1, ErrEmptyCommand
	}

	cmd, args := argv[0], argv[1:]
	theCmd := dryrun.WrapIf(ctx, r.DryRun || dryrun.IsRequested(), cmd, args...)
	theCmd.Dir = r.Dir
	theCmd.Env = env.ToAssignments(lo.Assign(env.GetMap(), r.Env))
	theCmd.Stdin = r.Stdin
	theCmd.Stdout = r.Stdout
	theCmd.Stderr = r.Stderr

	if r.Verbose {
		quoted := make([]string, 0, len(args))
		for i := range args {
			quoted = append(quoted, fmt.Sprintf("%q", args[i]))
		}
		log.SimpleConsoleLogger.Println("exec:", cmd, strings.Join(quoted, " "))
	}

	err := theCmd.Run()
	if err == nil {
		return 0, nil
	}
	if CmdRan(err) {
		return ExitStatus(err), nil
	}
	return ExitStatus(err), fmt.Errorf(`failed to run "%s": %w`, strings.Join(argv, " "), err)
}

// CmdRan examines the error to determine if it was generated as a result of a
// command running via os/exec.Command.
func CmdRan(err error) bool {
	if err == nil {
		return true
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.Exited()
	}
	return false
}

type exitStatuser interface {
	ExitStatus() int
}

// ExitStatus returns the exit status of the error if it is an exec.ExitError
// or if it implements ExitStatus() int.
func ExitStatus(err error) int {
	if err == nil {
		return 0
	}
	var exit exitStatuser
	if errors.As(err, &exit) {
		return exit.ExitStatus()
	}
	var e *exec.ExitError
	if errors.As(err, &e) {
		if code := e.ExitCode(); code > 0 {
			return code
		}
	}
	return 1
}
