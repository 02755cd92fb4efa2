package ui

import (
	"os"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/samber/lo"
)

// Color is an ANSI terminal color.
type Color int

//go:generate go tool golang.org/x/tools/cmd/stringer -type=Color
const (
	Black Color = iota
	Red
	Green
	Yellow
	Blue
	Magenta
	Cyan
	White
	BrightBlack
	BrightRed
	BrightGreen
	BrightYellow
	BrightBlue
	BrightMagenta
	BrightCyan
	BrightWhite
)

// DefaultTargetColor is used for target names when no color is configured.
const DefaultTargetColor = Cyan

//nolint:gochecknoglobals // lookup tables
var (
	allColors = []Color{
		Black, Red, Green, Yellow, Blue, Magenta, Cyan, White,
		BrightBlack, BrightRed, BrightGreen, BrightYellow,
		BrightBlue, BrightMagenta, BrightCyan, BrightWhite,
	}

	colorByLowerName = lo.KeyBy(allColors, func(c Color) string {
		return strings.ToLower(c.String())
	})

	// terminals that do not support ANSI color output
	noColorTERMs = lo.Keyify([]string{
		"dumb",
		"vt100",
		"cygwin",
		"xterm-mono",
	})
)

// ParseColor looks up a color by name, ignoring case.
func ParseColor(name string) (Color, bool) {
	c, ok := colorByLowerName[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// ColorNames returns the names of all colors in ANSI order.
func ColorNames() []string {
	return lo.Map(allColors, func(c Color, _ int) string { return c.String() })
}

// TerminalSupportsColor returns true if the given TERM value is not in the
// known-no-color blacklist. An empty term is treated as supporting colors
// (letting Lipgloss handle further TTY detection).
func TerminalSupportsColor(term string) bool {
	if term == "" {
		return true
	}
	_, blacklisted := noColorTERMs[term]
	return !blacklisted
}

// ColorEnabled reports whether styled output should carry colors.
// NO_COLOR always wins, then the TERM blacklist, then the configured value.
func ColorEnabled(configured bool) bool {
	if _, noColor := os.LookupEnv("NO_COLOR"); noColor {
		return false
	}
	if !TerminalSupportsColor(os.Getenv("TERM")) {
		return false
	}
	return configured
}

// TargetStyle returns a Lipgloss style that renders target names in the
// named color, falling back to DefaultTargetColor for unknown names.
func TargetStyle(colorName string) lipgloss.Style {
	c, ok := ParseColor(colorName)
	if !ok {
		c = DefaultTargetColor
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(strconv.Itoa(int(c))))
}
