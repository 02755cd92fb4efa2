// Package fsutils resolves filesystem paths.
package fsutils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotDir is returned by Dir when the path exists but is not a directory.
var ErrNotDir = errors.New("not a directory")

// TruePath returns the absolute path of path with every symlink resolved,
// repeating until neither step changes the result.
func TruePath(path string) (string, error) {
	var prevAbsPath string
	var prevResolvedPath string

	changeFound := true
	for changeFound {
		changeFound = false

		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		if absPath != prevAbsPath {
			prevAbsPath = absPath
			changeFound = true
		}

		resolvedPath, err := filepath.EvalSymlinks(absPath)
		if err != nil {
			return "", fmt.Errorf("failed to resolve symlinks: %w", err)
		}
		if resolvedPath != prevResolvedPath {
			prevResolvedPath = resolvedPath
			changeFound = true
		}

		path = resolvedPath
	}

	return path, nil
}

// Dir resolves path with TruePath and checks that it names a directory.
func Dir(path string) (string, error) {
	resolved, err := TruePath(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s: %w", resolved, ErrNotDir)
	}
	return resolved, nil
}
