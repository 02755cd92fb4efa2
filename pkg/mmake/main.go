// Package mmake ties the rule parser, the resolution engine and the
// secondary modes (--list, --check, --print, --watch) together behind Run.
package mmake

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/lo"
	"github.com/yaklabco/mmake/internal/dryrun"
	"github.com/yaklabco/mmake/internal/ish"
	"github.com/yaklabco/mmake/internal/log"
	"github.com/yaklabco/mmake/pkg/fsutils"
	"github.com/yaklabco/mmake/pkg/mmake/prettylog"
	"github.com/yaklabco/mmake/pkg/resolve"
	"github.com/yaklabco/mmake/pkg/rules"
	"github.com/yaklabco/mmake/pkg/watch"
)

const curDir = "."

// RunParams contains the args for invoking a run of mmake.
type RunParams struct {
	BaseCtx context.Context // BaseCtx is the base context for the run, often used for cancellation.

	Stdin           io.Reader // reader handed to rebuild commands
	Stdout          io.Writer // writer for command echo, command output and listings
	Stderr          io.Writer // writer for command error output
	WriterForLogger io.Writer // writer for log messages, defaults to Stderr

	Dir    string // directory to run in; relative target names resolve against it
	File   string // rule file, relative to Dir unless absolute
	Force  bool   // rebuild every visited target
	Silent bool   // do not echo commands
	DryRun bool   // print commands instead of executing them

	Debug   bool // turn on debug messages
	Verbose bool // trace command execution

	List  bool // list targets
	Check bool // check the rules for cycles and print a build order
	Print bool // print the rules in canonical form
	Watch bool // keep rebuilding when sources change

	EnableColor   bool          // allow colored output
	TargetColor   string        // color name for target names
	WatchDebounce time.Duration // quiet period before a watch rebuild
	WatchIgnore   []string      // glob patterns of files whose changes are ignored

	Args []string // targets to build, or filters for --list
}

// RuleFilePath returns the path of the rule file to read.
func (p RunParams) RuleFilePath() string {
	if filepath.IsAbs(p.File) {
		return p.File
	}
	return filepath.Join(p.Dir, p.File)
}

// Run is the entrypoint for running mmake. It exists external to the main
// function so it can be driven from tests and other programs.
func Run(params RunParams) error {
	preprocessRunParams(&params)

	if err := applyBasicRunParams(params); err != nil {
		return err
	}

	dir, err := fsutils.Dir(params.Dir)
	if err != nil {
		return fmt.Errorf("changing to %s: %w", params.Dir, err)
	}
	params.Dir = dir

	ruleSet, err := LoadRules(params.RuleFilePath())
	if err != nil {
		return err
	}
	warnShadowed(ruleSet)

	switch {
	case params.List:
		return renderTargetList(params.Stdout, ruleSet, listOptions{
			colorEnabled: enableColorForList(params.EnableColor),
			targetColor:  params.TargetColor,
			filters:      params.Args,
		})
	case params.Check:
		return checkRules(params.Stdout, ruleSet)
	case params.Print:
		return rules.Format(params.Stdout, ruleSet)
	}

	ctx := params.BaseCtx
	buildErr := build(ctx, params, ruleSet)
	if !params.Watch {
		return buildErr
	}
	if buildErr != nil {
		slog.Error("build failed", slog.Any(log.Error, buildErr))
	}

	return watch.Run(ctx, watch.Params{
		Paths:    watchPaths(params, ruleSet),
		Ignore:   params.WatchIgnore,
		Debounce: params.WatchDebounce,
		Logger:   slog.Default(),
		Build: func(ctx context.Context) ([]string, error) {
			reloaded, err := LoadRules(params.RuleFilePath())
			if err != nil {
				return nil, err
			}
			warnShadowed(reloaded)
			if err := build(ctx, params, reloaded); err != nil {
				slog.Error("build failed", slog.Any(log.Error, err))
			}
			return watchPaths(params, reloaded), nil
		},
	})
}

func preprocessRunParams(params *RunParams) {
	params.BaseCtx = cmp.Or(params.BaseCtx, context.Background())

	params.Stdin = cmp.Or(params.Stdin, io.Reader(os.Stdin))
	params.Stdout = cmp.Or(params.Stdout, io.Writer(os.Stdout))
	params.Stderr = cmp.Or(params.Stderr, io.Writer(os.Stderr))
	params.WriterForLogger = cmp.Or(params.WriterForLogger, params.Stderr)

	params.Dir = cmp.Or(params.Dir, curDir)
	params.File = cmp.Or(params.File, rules.DefaultFileName)
}

func howManyModes(params RunParams) int {
	return len(lo.Filter([]bool{params.List, params.Check, params.Print}, func(b bool, _ int) bool { return b }))
}

func applyBasicRunParams(params RunParams) error {
	logHandler := prettylog.SetupPrettyLogger(params.WriterForLogger)
	logHandler.SetLevel(prettylog.LevelFor(params.Debug, params.Verbose))

	dryrun.SetRequested(params.DryRun)

	if howManyModes(params) > 1 {
		return errors.New("only one of --list, --check or --print may be specified")
	}
	if params.Watch && howManyModes(params) > 0 {
		return errors.New("--watch cannot be combined with --list, --check or --print")
	}
	if params.WatchDebounce < 0 {
		return fmt.Errorf("negative watch debounce %s", params.WatchDebounce)
	}

	return nil
}

// LoadRules opens and parses the rule file at path. The file is closed
// before LoadRules returns.
func LoadRules(path string) (*rules.RuleSet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening rule file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	ruleSet, err := rules.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	slog.Debug("parsed rule file", slog.String(log.Filename, path), slog.Int("rules", ruleSet.Len()))
	return ruleSet, nil
}

func warnShadowed(ruleSet *rules.RuleSet) {
	for _, shadowed := range ruleSet.Shadowed() {
		first, _ := ruleSet.Lookup(shadowed.Target)
		slog.Warn("duplicate rule ignored, the first declaration wins",
			slog.String(log.Target, shadowed.Target),
			slog.Int(log.Line, shadowed.Line),
			slog.Int("first_line", first.Line),
		)
	}
}

// build resolves every target named in params.Args, or the default target,
// stopping at the first failure.
func build(ctx context.Context, params RunParams, ruleSet *rules.RuleSet) error {
	engine := resolve.New(ruleSet,
		resolve.WithForce(params.Force),
		resolve.WithSilent(params.Silent),
		resolve.WithStdout(params.Stdout),
		resolve.WithDir(params.Dir),
		resolve.WithLogger(slog.Default()),
		resolve.WithRunner(&ish.Runner{
			Dir:     params.Dir,
			Stdin:   params.Stdin,
			Stdout:  params.Stdout,
			Stderr:  params.Stderr,
			DryRun:  params.DryRun,
			Verbose: params.Verbose,
		}),
	)

	targets := params.Args
	if len(targets) == 0 {
		targets = []string{ruleSet.DefaultTarget()}
	}

	for _, target := range targets {
		start := time.Now()
		if err := engine.Resolve(ctx, target); err != nil {
			return err
		}
		slog.Debug("target resolved", slog.String(log.Target, target), slog.Duration(log.Duration, time.Since(start)))
	}
	return nil
}

// watchPaths returns the rule file and every prerequisite that no rule
// builds, i.e. the sources.
func watchPaths(params RunParams, ruleSet *rules.RuleSet) []string {
	paths := []string{params.RuleFilePath()}
	for _, rule := range ruleSet.Rules() {
		for _, prereq := range rule.Prerequisites {
			if _, ok := ruleSet.Lookup(prereq); ok {
				continue
			}
			if !filepath.IsAbs(prereq) {
				prereq = filepath.Join(params.Dir, prereq)
			}
			paths = append(paths, prereq)
		}
	}
	return lo.Uniq(paths)
}

func checkRules(out io.Writer, ruleSet *rules.RuleSet) error {
	order, err := ruleSet.Check()
	if err != nil {
		return err
	}
	for _, target := range order {
		if _, err := fmt.Fprintln(out, target); err != nil {
			return fmt.Errorf("writing build order: %w", err)
		}
	}
	return nil
}

// TargetNames returns the targets declared in the rule file, for shell
// completion.
func TargetNames(dir, file string) ([]string, error) {
	params := RunParams{Dir: dir, File: file}
	preprocessRunParams(&params)

	ruleSet, err := LoadRules(params.RuleFilePath())
	if err != nil {
		return nil, err
	}
	return ruleSet.Targets(), nil
}
