// Package dryrun implements mmake's dry-run mode, in which rebuild
// commands are printed instead of executed.
//
// Dry-run mode is on when SetRequested(true) has been called or when the
// `MMAKE_DRYRUN` environment variable held a true value (see env.ParseBool)
// at the first call to IsRequested. Callers that carry their own flag can use WrapIf directly.
package dryrun

import (
	"context"
	"os/exec"
	"sync"

	"github.com/yaklabco/mmake/pkg/env"
)

// RequestedEnv is the environment variable that indicates the user requested dryrun mode.
const RequestedEnv = "MMAKE_DRYRUN"

//nolint:gochecknoglobals // Once/mutex patterns.
var (
	dryRunMu                sync.Mutex
	dryRunRequestedValue    bool
	dryRunRequestedEnvValue bool
	dryRunRequestedEnvOnce  sync.Once
)

// SetRequested sets the dryrun requested state to the specified boolean value.
func SetRequested(value bool) {
	dryRunMu.Lock()
	defer dryRunMu.Unlock()
	dryRunRequestedValue = value
}

// IsRequested checks if dry-run mode was requested, either explicitly or via an environment variable.
func IsRequested() bool {
	dryRunRequestedEnvOnce.Do(func() {
		dryRunRequestedEnvValue = env.FailsafeParseBoolEnv(RequestedEnv, false)
	})

	dryRunMu.Lock()
	defer dryRunMu.Unlock()
	return dryRunRequestedEnvValue || dryRunRequestedValue
}

// WrapIf returns exec.CommandContext(ctx, cmd, args...) unless enabled is
// true, in which case it returns a command that just prints what would
// have been run, prefixed with "DRYRUN: ".
func WrapIf(ctx context.Context, enabled bool, cmd string, args ...string) *exec.Cmd {
	if !enabled {
		return exec.CommandContext(ctx, cmd, args...)
	}

	return exec.CommandContext(ctx, "echo", append([]string{"DRYRUN: " + cmd}, args...)...) //nolint:gosec // It's echo!
}
