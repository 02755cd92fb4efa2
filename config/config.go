package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/yaklabco/mmake/pkg/env"
)

// Config holds all mmake configuration values.
type Config struct {
	// File is the rule file read when -f is not given.
	File string `mapstructure:"file"`

	// Force rebuilds every visited target.
	Force bool `mapstructure:"force"`

	// Silent suppresses the echo of commands before they run.
	Silent bool `mapstructure:"silent"`

	// Verbose traces every command execution.
	Verbose bool `mapstructure:"verbose"`

	// Debug enables debug messages.
	Debug bool `mapstructure:"debug"`

	// EnableColor enables colored output in terminal.
	EnableColor bool `mapstructure:"enable_color"`

	// TargetColor is the ANSI color name for target names.
	TargetColor string `mapstructure:"target_color"`

	// Watch configures --watch.
	Watch WatchConfig `mapstructure:"watch"`

	// configFile is the path to the config file that was loaded (if any).
	configFile string
}

// WatchConfig holds the settings of watch mode.
type WatchConfig struct {
	// Debounce is how long the watched files must be quiet before a rebuild.
	Debounce time.Duration `mapstructure:"debounce"`

	// Ignore lists glob patterns of file names whose changes are ignored.
	Ignore []string `mapstructure:"ignore"`
}

// ConfigFile returns the path to the configuration file that was loaded,
// or an empty string if no file was loaded.
func (c *Config) ConfigFile() string {
	return c.configFile
}

// LoadOptions configures how configuration is loaded.
type LoadOptions struct {
	// ProjectDir is the directory to search for project-level config.
	// If empty, the current working directory is used.
	ProjectDir string

	// Stderr is where warnings are written.
	// If nil, os.Stderr is used.
	Stderr io.Writer

	// SkipProjectConfig skips loading project-level configuration.
	SkipProjectConfig bool

	// SkipUserConfig skips loading user-level configuration.
	SkipUserConfig bool

	// SkipEnv skips reading environment variables.
	SkipEnv bool
}

// Load reads configuration from all sources and returns a Config struct.
// Configuration is loaded in the following order (later sources override earlier):
//  1. Defaults
//  2. User config file (~/.config/mmake/config.yaml)
//  3. Project config file (./mmake.yaml)
//  4. Environment variables (MMAKE_*)
//
// Command-line flags are applied on top of the result by the caller.
// If opts is nil, default options are used.
func Load(opts *LoadOptions) (*Config, error) {
	if opts == nil {
		opts = &LoadOptions{}
	}

	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	viperInstance := viper.New()

	setDefaults(viperInstance)
	viperInstance.SetConfigType("yaml")

	var configFileUsed string

	if !opts.SkipUserConfig {
		paths := ResolveXDGPaths()
		viperInstance.SetConfigName(ConfigFileName)
		viperInstance.AddConfigPath(paths.ConfigDir())

		if err := viperInstance.ReadInConfig(); err != nil {
			var configFileNotFoundError viper.ConfigFileNotFoundError
			if !errors.As(err, &configFileNotFoundError) {
				return nil, fmt.Errorf("failed to read user config file: %w", err)
			}
		} else {
			configFileUsed = viperInstance.ConfigFileUsed()
		}
	}

	if !opts.SkipProjectConfig {
		projectDir := opts.ProjectDir
		if projectDir == "" {
			var err error
			projectDir, err = os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		projectConfigPath := filepath.Join(projectDir, ProjectConfigFileName+".yaml")
		if _, err := os.Stat(projectConfigPath); err == nil {
			viperInstance.SetConfigFile(projectConfigPath)
			if err := viperInstance.MergeInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read project config file: %w", err)
			}
			configFileUsed = projectConfigPath
		}
	}

	var cfg Config
	if err := viperInstance.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	var envWarnings []ValidationWarning
	if !opts.SkipEnv {
		envWarnings = applyEnvironmentOverrides(&cfg)
	}

	cfg.configFile = configFileUsed

	result := cfg.Validate()
	result.Warnings = append(envWarnings, result.Warnings...)
	if result.HasWarnings() {
		result.WriteWarnings(opts.Stderr)
	}
	if result.HasErrors() {
		return nil, errors.New(result.ErrorMessage())
	}

	return &cfg, nil
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
// Environment variables take precedence over config files. Values that cannot
// be parsed leave the setting untouched and produce a warning.
func applyEnvironmentOverrides(cfg *Config) []ValidationWarning {
	var warnings []ValidationWarning

	setBool := func(envVar string, dst *bool) {
		v := os.Getenv(envVar)
		if v == "" {
			return
		}
		b, err := env.ParseBool(v)
		if err != nil {
			warnings = append(warnings, ValidationWarning{Field: envVar, Message: err.Error()})
			return
		}
		*dst = b
	}

	if v := os.Getenv(EnvFile); v != "" {
		cfg.File = v
	}
	setBool(EnvForce, &cfg.Force)
	setBool(EnvSilent, &cfg.Silent)
	setBool(EnvVerbose, &cfg.Verbose)
	setBool(EnvDebug, &cfg.Debug)
	setBool(EnvEnableColor, &cfg.EnableColor)
	if v := os.Getenv(EnvTargetColor); v != "" {
		cfg.TargetColor = v
	}
	if v := os.Getenv(EnvWatchDebounce); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			warnings = append(warnings, ValidationWarning{Field: EnvWatchDebounce, Message: err.Error()})
		} else {
			cfg.Watch.Debounce = d
		}
	}
	if v := os.Getenv(EnvWatchIgnore); v != "" {
		var patterns []string
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				patterns = append(patterns, p)
			}
		}
		cfg.Watch.Ignore = patterns
	}

	return warnings
}

// DefaultConfig returns a Config with all default values.
func DefaultConfig() *Config {
	return &Config{
		File:        DefaultFile,
		Force:       DefaultForce,
		Silent:      DefaultSilent,
		Verbose:     DefaultVerbose,
		Debug:       DefaultDebug,
		EnableColor: DefaultEnableColor,
		TargetColor: DefaultTargetColor,
		Watch: WatchConfig{
			Debounce: DefaultWatchDebounce,
		},
	}
}

// WriteDefaultConfig writes a default configuration file to the user's config directory.
func WriteDefaultConfig() (string, error) {
	paths := ResolveXDGPaths()
	configDir := paths.ConfigDir()

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := paths.ConfigFilePath()

	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	if err := os.WriteFile(configPath, []byte(defaultConfigYAML()), 0o600); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return configPath, nil
}

// defaultConfigYAML returns the default configuration as YAML.
func defaultConfigYAML() string {
	return `# mmake configuration

# Rule file read when -f is not given.
file: ` + DefaultFile + `

# Rebuild every visited target, stale or not (-B).
force: false

# Do not echo commands before running them (-s).
silent: false

# Trace every command execution.
verbose: false

# Enable debug messages.
debug: false

# Enable colored output in terminal.
enable_color: true

# ANSI color for target names in --list.
# Options: Black, Red, Green, Yellow, Blue, Magenta, Cyan, White,
#          BrightBlack, BrightRed, BrightGreen, BrightYellow,
#          BrightBlue, BrightMagenta, BrightCyan, BrightWhite
target_color: ` + DefaultTargetColor + `

watch:
  # Quiet period after a change before --watch rebuilds.
  debounce: ` + DefaultWatchDebounce.String() + `
  # Glob patterns of files whose changes never trigger a rebuild.
  ignore: []
`
}
