package mmake

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/yaklabco/mmake/config"
)

// ConfigSubcommand represents a subcommand of `mmake --config`.
type ConfigSubcommand string

// Config subcommand constants.
const (
	ConfigInit ConfigSubcommand = "init"
	ConfigShow ConfigSubcommand = "show"
	ConfigPath ConfigSubcommand = "path"
)

// runConfigCommand handles `mmake --config [subcommand]`. projectDir is
// where the project config is looked up.
func runConfigCommand(stdout, stderr io.Writer, projectDir string, args []string) error {
	if len(args) == 0 {
		return runConfigShow(stdout, stderr, projectDir)
	}
	if len(args) > 1 {
		configUsage(stderr)
		return fmt.Errorf("--config takes at most one subcommand, got %d", len(args))
	}

	switch ConfigSubcommand(strings.ToLower(args[0])) {
	case ConfigInit:
		return runConfigInit(stdout)
	case ConfigShow:
		return runConfigShow(stdout, stderr, projectDir)
	case ConfigPath:
		return runConfigPath(stdout, stderr, projectDir)
	default:
		configUsage(stderr)
		return fmt.Errorf("unknown config subcommand %q", args[0])
	}
}

func runConfigInit(stdout io.Writer) error {
	path, err := config.WriteDefaultConfig()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(stdout, "Created config file: %s\n", path)
	return nil
}

func runConfigShow(stdout, stderr io.Writer, projectDir string) error {
	cfg, err := config.Load(&config.LoadOptions{ProjectDir: projectDir, Stderr: stderr})
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	_, _ = fmt.Fprintln(stdout, "# Effective mmake configuration")
	if cfg.ConfigFile() != "" {
		_, _ = fmt.Fprintf(stdout, "# Loaded from: %s\n", cfg.ConfigFile())
	} else {
		_, _ = fmt.Fprintln(stdout, "# (using defaults, no config file found)")
	}
	_, _ = fmt.Fprintln(stdout)
	_, _ = fmt.Fprintf(stdout, "file: %s\n", cfg.File)
	_, _ = fmt.Fprintf(stdout, "force: %v\n", cfg.Force)
	_, _ = fmt.Fprintf(stdout, "silent: %v\n", cfg.Silent)
	_, _ = fmt.Fprintf(stdout, "verbose: %v\n", cfg.Verbose)
	_, _ = fmt.Fprintf(stdout, "debug: %v\n", cfg.Debug)
	_, _ = fmt.Fprintf(stdout, "enable_color: %v\n", cfg.EnableColor)
	_, _ = fmt.Fprintf(stdout, "target_color: %s\n", cfg.TargetColor)
	_, _ = fmt.Fprintln(stdout, "watch:")
	_, _ = fmt.Fprintf(stdout, "  debounce: %s\n", cfg.Watch.Debounce)
	_, _ = fmt.Fprintf(stdout, "  ignore: [%s]\n", strings.Join(cfg.Watch.Ignore, ", "))

	return nil
}

func runConfigPath(stdout, stderr io.Writer, projectDir string) error {
	paths := config.ResolveXDGPaths()

	_, _ = fmt.Fprintln(stdout, "Configuration Paths:")
	_, _ = fmt.Fprintf(stdout, "  User config:    %s\n", paths.ConfigFilePath())
	_, _ = fmt.Fprintf(stdout, "  Project config: %s\n", filepath.Join(projectDir, config.ProjectConfigFileName+".yaml"))

	cfg, err := config.Load(&config.LoadOptions{ProjectDir: projectDir, Stderr: stderr})
	if err == nil && cfg.ConfigFile() != "" {
		_, _ = fmt.Fprintf(stdout, "\nActive config file: %s\n", cfg.ConfigFile())
	} else {
		_, _ = fmt.Fprintln(stdout, "\nNo config file currently loaded (using defaults)")
	}

	return nil
}

func configUsage(w io.Writer) {
	_, _ = fmt.Fprint(w, `
mmake --config [subcommand]

Manage mmake configuration.

Subcommands:
  init    Create a default configuration file
  show    Display effective configuration (default)
  path    Show configuration file paths

Examples:
  mmake --config           # Show effective configuration
  mmake --config init      # Create ~/.config/mmake/config.yaml
  mmake --config path      # Show config file locations
`[1:])
}
