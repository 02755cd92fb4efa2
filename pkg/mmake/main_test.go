package mmake

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yaklabco/mmake/pkg/resolve"
	"github.com/yaklabco/mmake/pkg/rules"
)

// helper renders a command line that re-runs this test binary as a
// helper process (see testmain_test.go).
func helper(args ...string) string {
	return strings.Join(append([]string{os.Args[0], "-helper"}, args...), " ")
}

type project struct {
	dir    string
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	logs   *bytes.Buffer
}

func newProject(t *testing.T, ruleText string, sources ...string) *project {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, rules.DefaultFileName), []byte(ruleText), 0o644))
	old := time.Now().Add(-time.Hour)
	for _, source := range sources {
		path := filepath.Join(dir, source)
		require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
		require.NoError(t, os.Chtimes(path, old, old))
	}
	return &project{dir: dir, stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}, logs: &bytes.Buffer{}}
}

func (p *project) params(args ...string) RunParams {
	return RunParams{
		BaseCtx:         context.Background(),
		Stdin:           strings.NewReader(""),
		Stdout:          p.stdout,
		Stderr:          p.stderr,
		WriterForLogger: p.logs,
		Dir:             p.dir,
		Args:            args,
	}
}

func (p *project) exists(name string) bool {
	_, err := os.Stat(filepath.Join(p.dir, name))
	return err == nil
}

func TestRun_BuildsDefaultTarget(t *testing.T) {
	cmd := helper("-touch", "out")
	proj := newProject(t, fmt.Sprintf("out: a.c b.c\n\t%s\n", cmd), "a.c", "b.c")

	require.NoError(t, Run(proj.params()))
	assert.True(t, proj.exists("out"))
	assert.Equal(t, cmd+"\n", proj.stdout.String())

	// A second run finds everything up to date.
	proj.stdout.Reset()
	require.NoError(t, Run(proj.params()))
	assert.Empty(t, proj.stdout.String())
}

func TestRun_CommandOutputGoesToStdout(t *testing.T) {
	proj := newProject(t, fmt.Sprintf("out:\n\t%s\n", helper("-stdout", "hello")))

	params := proj.params()
	params.Silent = true
	require.NoError(t, Run(params))
	assert.Equal(t, "hello\n", proj.stdout.String())
}

func TestRun_BuildFailureCarriesExitStatus(t *testing.T) {
	proj := newProject(t, fmt.Sprintf("out: a.c\n\t%s\n", helper("-exit", "3")), "a.c")

	err := Run(proj.params())
	require.Error(t, err)
	assert.Equal(t, 3, resolve.ExitStatus(err))
	assert.False(t, proj.exists("out"))
}

func TestRun_StopsAtFirstFailingTarget(t *testing.T) {
	ruleText := fmt.Sprintf("a:\n\t%s\n\nb:\n\t%s\n\nc:\n\t%s\n",
		helper("-touch", "a"), helper("-exit", "1"), helper("-touch", "c"))
	proj := newProject(t, ruleText)

	err := Run(proj.params("a", "b", "c"))
	var failure *resolve.BuildFailureError
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "b", failure.Target)
	assert.True(t, proj.exists("a"))
	assert.False(t, proj.exists("c"))
}

func TestRun_MissingSource(t *testing.T) {
	proj := newProject(t, fmt.Sprintf("out: a.c missing.c\n\t%s\n", helper("-touch", "out")), "a.c")

	err := Run(proj.params())
	require.Error(t, err)
	assert.Equal(t, "missing.c: is not a file", err.Error())
	assert.Empty(t, proj.stdout.String())
	assert.False(t, proj.exists("out"))
}

func TestRun_MissingRuleFile(t *testing.T) {
	proj := newProject(t, "out:\n\ttrue\n")

	params := proj.params()
	params.File = "nope"
	err := Run(params)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening rule file "+filepath.Join(proj.dir, "nope"))
}

func TestRun_ParseErrorNamesFileAndLine(t *testing.T) {
	proj := newProject(t, "out: a.c\n    cc -o out a.c\n")

	err := Run(proj.params())
	var parseErr *rules.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, rules.KindCommandNotTabbed, parseErr.Kind)
	assert.Equal(t,
		filepath.Join(proj.dir, rules.DefaultFileName)+`: line 2: command line for target "out" must start with a tab`,
		err.Error())
}

func TestRun_NotADirectory(t *testing.T) {
	proj := newProject(t, "out:\n\ttrue\n")

	params := proj.params()
	params.Dir = filepath.Join(proj.dir, rules.DefaultFileName)
	require.Error(t, Run(params))
}

func TestRun_DryRun(t *testing.T) {
	proj := newProject(t, "out: a.c\n\tcc -o out a.c\n", "a.c")

	params := proj.params()
	params.DryRun = true
	require.NoError(t, Run(params))
	assert.Equal(t, "cc -o out a.c\nDRYRUN: cc -o out a.c\n", proj.stdout.String())
	assert.False(t, proj.exists("out"))
}

func TestRun_ForceRebuilds(t *testing.T) {
	proj := newProject(t, fmt.Sprintf("out: a.c\n\t%s\n", helper("-touch", "out")), "a.c")
	require.NoError(t, Run(proj.params()))

	proj.stdout.Reset()
	params := proj.params()
	params.Force = true
	require.NoError(t, Run(params))
	assert.NotEmpty(t, proj.stdout.String())
}

func TestRun_WarnsAboutShadowedRules(t *testing.T) {
	proj := newProject(t, fmt.Sprintf("out:\n\t%s\n\nout:\n\tfalse\n", helper("-touch", "out")))

	require.NoError(t, Run(proj.params()))
	assert.Contains(t, proj.logs.String(), "duplicate rule ignored")
	assert.True(t, proj.exists("out"))
}

func TestRun_ModeConflicts(t *testing.T) {
	proj := newProject(t, "out:\n\ttrue\n")

	params := proj.params()
	params.List = true
	params.Print = true
	require.ErrorContains(t, Run(params), "only one of")

	params = proj.params()
	params.Check = true
	params.Watch = true
	require.ErrorContains(t, Run(params), "--watch cannot be combined")
}

func TestRun_Check(t *testing.T) {
	proj := newProject(t, "out: a.o b.o\n\tld\n\na.o: a.c\n\tcc a\n\nb.o: b.c\n\tcc b\n")

	params := proj.params()
	params.Check = true
	require.NoError(t, Run(params))
	assert.Equal(t, "a.o\nb.o\nout\n", proj.stdout.String())
}

func TestRun_CheckCycle(t *testing.T) {
	proj := newProject(t, "a: b\n\ttrue\nb: a\n\ttrue\n")

	params := proj.params()
	params.Check = true
	err := Run(params)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a -> b -> a")
}

func TestRun_CycleWhileBuilding(t *testing.T) {
	proj := newProject(t, "a: b\n\ttrue\nb: a\n\ttrue\n")

	err := Run(proj.params())
	var cycle *resolve.CyclicDependencyError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"a", "b", "a"}, cycle.Path)
}

func TestRun_Print(t *testing.T) {
	proj := newProject(t, "out:   a.c\tb.c  \n\t  cc   -o out  a.c\n\n\n")

	params := proj.params()
	params.Print = true
	require.NoError(t, Run(params))
	assert.Equal(t, "out: a.c b.c\n\tcc -o out a.c\n", proj.stdout.String())
}

func TestRun_WatchStopsWithContext(t *testing.T) {
	proj := newProject(t, fmt.Sprintf("out: a.c\n\t%s\n", helper("-touch", "out")), "a.c")

	ctx, cancel := context.WithCancel(context.Background())
	params := proj.params()
	params.BaseCtx = ctx
	params.Watch = true
	params.WatchDebounce = 20 * time.Millisecond

	done := make(chan error, 1)
	go func() { done <- Run(params) }()

	require.Eventually(t, func() bool { return proj.exists("out") }, 10*time.Second, 20*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("watch mode did not stop")
	}
}

func TestTargetNames(t *testing.T) {
	proj := newProject(t, "b:\n\ttrue\na:\n\ttrue\nb:\n\tfalse\n")

	names, err := TargetNames(proj.dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, names)

	_, err = TargetNames(proj.dir, "missing")
	require.Error(t, err)
}

func TestWatchPaths(t *testing.T) {
	rs, err := rules.Parse(strings.NewReader("out: a.o b.c\n\tld\na.o: a.c b.c\n\tcc\n"))
	require.NoError(t, err)

	params := RunParams{Dir: "/src", File: rules.DefaultFileName}
	assert.Equal(t, []string{
		filepath.Join("/src", rules.DefaultFileName),
		filepath.Join("/src", "b.c"),
		filepath.Join("/src", "a.c"),
	}, watchPaths(params, rs))
}
