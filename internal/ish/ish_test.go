package ish

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRunner() (*Runner, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &Runner{Stdout: stdout, Stderr: stderr}, stdout, stderr
}

func TestRunOutputs(t *testing.T) {
	runner, stdout, stderr := newRunner()

	code, err := runner.Run(t.Context(), []string{os.Args[0], "-helper", "-stderr=foo", "-stdout=bar"})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "foo", strings.TrimSpace(stderr.String()))
	assert.Equal(t, "bar", strings.TrimSpace(stdout.String()))
}

func TestRunArgsVerbatim(t *testing.T) {
	runner, stdout, _ := newRunner()

	code, err := runner.Run(t.Context(), []string{os.Args[0], "-printArgs", "--", "$HOME", "a*b"})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "[$HOME a*b]", strings.TrimSpace(stdout.String()))
}

func TestRunExitCode(t *testing.T) {
	runner, _, _ := newRunner()

	code, err := runner.Run(t.Context(), []string{os.Args[0], "-helper", "-exit=3"})
	require.NoError(t, err, "a command that ran is not a spawn error")
	assert.Equal(t, 3, code)
}

func TestRunNotFound(t *testing.T) {
	runner, _, _ := newRunner()

	code, err := runner.Run(t.Context(), []string{"mmake-no-such-program-xyz", "arg"})
	require.Error(t, err)
	assert.Equal(t, 1, code)
	assert.Contains(t, err.Error(), `failed to run "mmake-no-such-program-xyz arg"`)
}

func TestRunEmpty(t *testing.T) {
	runner, _, _ := newRunner()

	_, err := runner.Run(t.Context(), nil)
	require.ErrorIs(t, err, ErrEmptyCommand)
}

func TestRunEnvAndDir(t *testing.T) {
	dir := t.TempDir()
	runner, stdout, _ := newRunner()
	runner.Env = map[string]string{"MMAKE_ISH_TEST": "baz"}
	runner.Dir = dir

	_, err := runner.Run(t.Context(), []string{os.Args[0], "-printVar", "MMAKE_ISH_TEST"})
	require.NoError(t, err)
	assert.Equal(t, "baz", strings.TrimSpace(stdout.String()))

	stdout.Reset()
	_, err = runner.Run(t.Context(), []string{os.Args[0], "-printDir"})
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(strings.TrimSpace(stdout.String()))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRunDryRun(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("echo is a shell builtin on windows")
	}
	runner, stdout, _ := newRunner()
	runner.DryRun = true

	code, err := runner.Run(t.Context(), []string{"cc", "-o", "out", "a.c"})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "DRYRUN: cc -o out a.c\n", stdout.String())
}

type statusErr int

func (s statusErr) Error() string   { return "status" }
func (s statusErr) ExitStatus() int { return int(s) }

func TestExitStatus(t *testing.T) {
	assert.Equal(t, 0, ExitStatus(nil))
	assert.Equal(t, 1, ExitStatus(errors.New("boom")))
	assert.Equal(t, 42, ExitStatus(statusErr(42)))
	assert.True(t, CmdRan(nil))
	assert.False(t, CmdRan(errors.New("boom")))
}
