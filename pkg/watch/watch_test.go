package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileIgnore(t *testing.T) {
	globs, err := CompileIgnore([]string{"*.o", "build/**"})
	require.NoError(t, err)

	assert.True(t, Ignored(globs, filepath.Join("src", "a.o")))
	assert.True(t, Ignored(globs, "build/out/x.c"))
	assert.False(t, Ignored(globs, filepath.Join("src", "a.c")))
	assert.False(t, Ignored(nil, "a.o"))

	_, err = CompileIgnore([]string{"[unclosed"})
	require.Error(t, err)
}

func TestRun_NoBuild(t *testing.T) {
	require.ErrorIs(t, Run(t.Context(), Params{}), ErrNoBuild)
}

func TestRun_StopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Params{
			Paths: []string{filepath.Join(dir, "a.c")},
			Build: func(context.Context) ([]string, error) { return nil, nil },
		})
	}()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_RebuildsOnChange(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "a.c")
	ignored := filepath.Join(dir, "a.o")
	require.NoError(t, os.WriteFile(source, []byte("v1"), 0o644))
	require.NoError(t, os.WriteFile(ignored, []byte("v1"), 0o644))

	var builds atomic.Int32
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Params{
			Paths:    []string{source, ignored},
			Ignore:   []string{"*.o"},
			Debounce: 50 * time.Millisecond,
			Build: func(context.Context) ([]string, error) {
				builds.Add(1)
				return []string{source, ignored}, nil
			},
		})
	}()

	// Give the watcher time to register its directories.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(ignored, []byte("v2"), 0o644))
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(0), builds.Load(), "changes to ignored files must not rebuild")

	require.NoError(t, os.WriteFile(source, []byte("v2"), 0o644))
	require.Eventually(t, func() bool { return builds.Load() >= 1 }, 5*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestRun_BuildErrorKeepsWatching(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "a.c")
	require.NoError(t, os.WriteFile(source, []byte("v1"), 0o644))

	var builds atomic.Int32
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Params{
			Paths:    []string{source},
			Debounce: 20 * time.Millisecond,
			Build: func(context.Context) ([]string, error) {
				builds.Add(1)
				return nil, errors.New("boom")
			},
		})
	}()

	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(source, []byte("v2"), 0o644))
	require.Eventually(t, func() bool { return builds.Load() >= 1 }, 5*time.Second, 20*time.Millisecond)

	time.Sleep(200 * time.Millisecond)
	before := builds.Load()
	require.NoError(t, os.WriteFile(source, []byte("v3"), 0o644))
	require.Eventually(t, func() bool { return builds.Load() > before }, 5*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
