package resolve

import (
	"errors"
	"fmt"
	"strings"
)

// MissingTargetError means a name has no rule and no file on disk.
type MissingTargetError struct {
	Target string
}

func (e *MissingTargetError) Error() string {
	return e.Target + ": is not a file"
}

// MetadataError means the file metadata of an existing target or
// prerequisite could not be read.
type MetadataError struct {
	Target string
	Path   string
	Err    error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("%s: reading metadata of %s: %v", e.Target, e.Path, e.Err)
}

func (e *MetadataError) Unwrap() error { return e.Err }

// SpawnError means the command of a rule could not be started.
type SpawnError struct {
	Target  string
	Command []string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("%s: %v", e.Target, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// BuildFailureError means the command of a rule ran and exited with a
// non-zero status.
type BuildFailureError struct {
	Target  string
	Command []string
	Code    int
}

func (e *BuildFailureError) Error() string {
	return fmt.Sprintf("%s: %q exited with status %d", e.Target, strings.Join(e.Command, " "), e.Code)
}

// ExitStatus returns the exit status of the failed command.
func (e *BuildFailureError) ExitStatus() int {
	return e.Code
}

// CyclicDependencyError means a target was reached again while it was
// still being resolved. Path starts and ends with the same target.
type CyclicDependencyError struct {
	Path []string
}

func (e *CyclicDependencyError) Error() string {
	if len(e.Path) == 0 {
		return "cyclic dependency detected"
	}
	return "cyclic dependency detected: " + strings.Join(e.Path, " -> ")
}

// ExitStatuser is implemented by errors that carry a process exit status.
type ExitStatuser interface {
	ExitStatus() int
}

// ExitStatus queries the error for an exit status. If the error is nil, it
// returns 0. If the error does not implement ExitStatus() int, it returns 1.
// Otherwise it returns the value from ExitStatus().
func ExitStatus(err error) int {
	if err == nil {
		return 0
	}
	var exit ExitStatuser
	if errors.As(err, &exit) {
		if code := exit.ExitStatus(); code != 0 {
			return code
		}
	}
	return 1
}
