// Package target answers the filesystem questions the resolver asks about
// a target: does it exist, when was it last modified, and is any of its
// prerequisites newer.
package target

import (
	"errors"
	"io/fs"
	"os"
	"time"
)

// ModTime returns the modification time of path. A path that does not
// exist is reported as exists == false with a nil error; any other stat
// failure is returned as is.
func ModTime(path string) (time.Time, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return info.ModTime(), true, nil
}

// Exists reports whether path names an existing filesystem entry.
func Exists(path string) (bool, error) {
	_, exists, err := ModTime(path)
	return exists, err
}

// PathNewer checks whether any of the sources is newer than the target
// time. A source that does not exist counts as newer. It stops at the
// first such source and returns it.
func PathNewer(target time.Time, sources ...string) (string, bool, error) {
	for _, source := range sources {
		mTime, exists, err := ModTime(source)
		if err != nil {
			return source, false, err
		}
		if !exists || mTime.After(target) {
			return source, true, nil
		}
	}
	return "", false, nil
}
