package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/gobwas/glob"
	"github.com/yaklabco/mmake/pkg/ui"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Field   string
	Message string
}

func (w ValidationWarning) String() string {
	return fmt.Sprintf("config warning: %s: %s", w.Field, w.Message)
}

// ValidationResults holds the results of configuration validation.
type ValidationResults struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// HasErrors returns true if there are validation errors.
func (r ValidationResults) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are validation warnings.
func (r ValidationResults) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// ErrorMessage returns a combined error message for all validation errors.
func (r ValidationResults) ErrorMessage() string {
	if !r.HasErrors() {
		return ""
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// WriteWarnings writes all warnings to the given writer.
func (r ValidationResults) WriteWarnings(w io.Writer) {
	for _, warn := range r.Warnings {
		_, _ = fmt.Fprintln(w, warn.String())
	}
}

// Validate checks the configuration for errors and warnings.
// It returns errors for invalid values that would cause runtime issues,
// and warnings for issues that can be safely ignored.
func (c *Config) Validate() ValidationResults {
	var result ValidationResults

	if c.TargetColor != "" {
		if _, ok := ui.ParseColor(c.TargetColor); !ok {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "target_color",
				Message: fmt.Sprintf("invalid color %q, must be one of: %s", c.TargetColor, strings.Join(ui.ColorNames(), ", ")),
			})
		}
	}

	if strings.TrimSpace(c.File) == "" {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "file",
			Message: "empty, falling back to " + DefaultFile,
		})
	}

	if c.Watch.Debounce < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "watch.debounce",
			Message: fmt.Sprintf("must not be negative, got %s", c.Watch.Debounce),
		})
	}

	for _, pattern := range c.Watch.Ignore {
		if _, err := glob.Compile(pattern); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "watch.ignore",
				Message: fmt.Sprintf("invalid glob %q: %v", pattern, err),
			})
		}
	}

	return result
}
