package mmake

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/yaklabco/mmake/cmd/mmake/version"
	"github.com/yaklabco/mmake/config"
	"github.com/yaklabco/mmake/pkg/mmake"
	"github.com/yaklabco/mmake/pkg/rules"
)

const (
	shortDescription = "mmake rebuilds stale targets of a two-line-per-rule mmakefile, " +
		"prerequisites first, by modification time."
)

type rootCmdOptions struct {
	runFunc func(params mmake.RunParams) error
}

type Option func(*rootCmdOptions)

// This is intentionally designed to be unusable from outside this package,
// as it exists purely for testing purposes.
func withRunFunc(fn func(params mmake.RunParams) error) Option {
	return func(opts *rootCmdOptions) {
		opts.runFunc = fn
	}
}

func NewRootCmd(ctx context.Context, opts ...Option) *cobra.Command {
	rootCmdOpts := &rootCmdOptions{
		runFunc: mmake.Run,
	}
	for _, opt := range opts {
		opt(rootCmdOpts)
	}

	var runParams mmake.RunParams
	var manageConfig bool
	rootCmd := &cobra.Command{
		Use:   "mmake [flags] [target...]",
		Short: shortDescription,
		Example: `	# Build the first target of ./mmakefile
	mmake

	# Build specific targets from another rule file, forcing a rebuild
	mmake -f build.mm -B out test

	# Show what would run without running it
	mmake -n

	# List targets, check the rules for cycles, reformat them
	mmake -l
	mmake --check
	mmake --print

	# Rebuild whenever a source changes
	mmake -w

	# Manage configuration
	mmake --config show`,
		Version: version.Colorized(),
		ValidArgsFunction: func(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			dir, err := cmd.Root().PersistentFlags().GetString("dir")
			if err != nil {
				return nil, cobra.ShellCompDirectiveError
			}
			file, err := cmd.Root().PersistentFlags().GetString("file")
			if err != nil {
				return nil, cobra.ShellCompDirectiveError
			}

			targets, err := mmake.TargetNames(dir, file)
			if err != nil {
				return nil, cobra.ShellCompDirectiveError
			}
			return targets, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if manageConfig {
				return runConfigCommand(cmd.OutOrStdout(), cmd.ErrOrStderr(), runParams.Dir, args)
			}

			cfg, err := config.Load(&config.LoadOptions{
				ProjectDir: runParams.Dir,
				Stderr:     cmd.ErrOrStderr(),
			})
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			applyConfig(cmd.Flags(), cfg, &runParams)

			runParams.Args = args
			runParams.Stdin = cmd.InOrStdin()
			runParams.Stdout = cmd.OutOrStdout()
			runParams.Stderr = cmd.ErrOrStderr()
			runParams.BaseCtx = cmd.Context() //nolint:fatcontext // intentionally setting context from cmd

			return rootCmdOpts.runFunc(runParams)
		},
	}
	rootCmd.SetContext(ctx)

	// Flags.
	rootCmd.PersistentFlags().StringVarP(&runParams.File, "file", "f", rules.DefaultFileName, "read rules from this file")
	rootCmd.PersistentFlags().BoolVarP(&runParams.Force, "force", "B", false, "rebuild every visited target, stale or not")
	rootCmd.PersistentFlags().BoolVarP(&runParams.Silent, "silent", "s", false, "do not echo commands before running them")
	rootCmd.PersistentFlags().StringVarP(&runParams.Dir, "dir", "C", "", "directory to run in")
	rootCmd.PersistentFlags().BoolVarP(&runParams.DryRun, "dryrun", "n", false, "print commands instead of executing them")
	rootCmd.PersistentFlags().BoolVarP(&runParams.Debug, "debug", "d", false, "turn on debug messages")
	rootCmd.PersistentFlags().BoolVarP(&runParams.Verbose, "verbose", "v", false, "trace every command execution")

	// Flags that are actually commands ("pseudo-flags").
	rootCmd.PersistentFlags().BoolVarP(&runParams.List, "list", "l", false, "list targets (arguments filter the list)")
	rootCmd.PersistentFlags().BoolVar(&runParams.Check, "check", false, "check the rules for cycles and print a build order")
	rootCmd.PersistentFlags().BoolVar(&runParams.Print, "print", false, "print the rules in canonical form")
	rootCmd.PersistentFlags().BoolVarP(&runParams.Watch, "watch", "w", false, "keep rebuilding when sources change")
	rootCmd.PersistentFlags().BoolVar(&manageConfig, "config", false, "manage mmake configuration (init, show, path)")

	return rootCmd
}

// applyConfig fills every setting whose flag was not given on the command
// line from cfg.
func applyConfig(flags *pflag.FlagSet, cfg *config.Config, params *mmake.RunParams) {
	if !flags.Changed("file") && cfg.File != "" {
		params.File = cfg.File
	}
	if !flags.Changed("force") {
		params.Force = cfg.Force
	}
	if !flags.Changed("silent") {
		params.Silent = cfg.Silent
	}
	if !flags.Changed("verbose") {
		params.Verbose = cfg.Verbose
	}
	if !flags.Changed("debug") {
		params.Debug = cfg.Debug
	}
	params.EnableColor = cfg.EnableColor
	params.TargetColor = cfg.TargetColor
	params.WatchDebounce = cfg.Watch.Debounce
	params.WatchIgnore = cfg.Watch.Ignore
}

// ExecuteWithFang runs the root Cobra command with Fang-specific options.
// Errors are reported as a single line on stderr.
func ExecuteWithFang(ctx context.Context, rootCmd *cobra.Command) error {
	//nolint:wrapcheck // top-level error from cobra, wrapping not needed
	return fang.Execute(
		ctx, rootCmd,
		fang.WithVersion(rootCmd.Version),
		fang.WithoutManpage(),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			_, _ = fmt.Fprintln(w, "mmake: "+err.Error())
		}),
	)
}
