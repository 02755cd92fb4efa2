package config

import (
	"time"

	"github.com/spf13/viper"
	"github.com/yaklabco/mmake/pkg/rules"
)

// Default configuration values.
const (
	// DefaultFile is the rule file read when none is named.
	DefaultFile = rules.DefaultFileName

	// DefaultForce is the default force-rebuild setting.
	DefaultForce = false

	// DefaultSilent is the default command echo setting.
	DefaultSilent = false

	// DefaultVerbose is the default verbose setting.
	DefaultVerbose = false

	// DefaultDebug is the default debug setting.
	DefaultDebug = false

	// DefaultEnableColor is the default color output setting.
	DefaultEnableColor = true

	// DefaultTargetColor is the default ANSI color for target names.
	DefaultTargetColor = "Cyan"

	// DefaultWatchDebounce is the default quiet period before a watch rebuild.
	DefaultWatchDebounce = 200 * time.Millisecond
)

// Environment variables that override configuration files.
const (
	EnvFile          = "MMAKE_FILE"
	EnvForce         = "MMAKE_FORCE"
	EnvSilent        = "MMAKE_SILENT"
	EnvVerbose       = "MMAKE_VERBOSE"
	EnvDebug         = "MMAKE_DEBUG"
	EnvEnableColor   = "MMAKE_ENABLE_COLOR"
	EnvTargetColor   = "MMAKE_TARGET_COLOR"
	EnvWatchDebounce = "MMAKE_WATCH_DEBOUNCE"
	EnvWatchIgnore   = "MMAKE_WATCH_IGNORE"
)

// setDefaults configures default values in the viper instance.
func setDefaults(viperInstance *viper.Viper) {
	viperInstance.SetDefault("file", DefaultFile)
	viperInstance.SetDefault("force", DefaultForce)
	viperInstance.SetDefault("silent", DefaultSilent)
	viperInstance.SetDefault("verbose", DefaultVerbose)
	viperInstance.SetDefault("debug", DefaultDebug)
	viperInstance.SetDefault("enable_color", DefaultEnableColor)
	viperInstance.SetDefault("target_color", DefaultTargetColor)
	viperInstance.SetDefault("watch.debounce", DefaultWatchDebounce)
	viperInstance.SetDefault("watch.ignore", []string{})
}
