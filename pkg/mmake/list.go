package mmake

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/term"
	"github.com/muesli/reflow/wordwrap"
	"github.com/samber/lo"
	"github.com/yaklabco/mmake/pkg/rules"
	"github.com/yaklabco/mmake/pkg/ui"
)

const (
	termWidthFloor    = 20
	fallbackTermWidth = 80
)

type listOptions struct {
	colorEnabled bool
	targetColor  string
	filters      []string
}

type listRow struct {
	name      string
	line      string
	prereqs   string
	isDefault bool
}

// renderTargetList renders the output of `mmake -l`: one row per target
// with its declaring line and its prerequisites, followed by any duplicate
// declarations that are never used.
func renderTargetList(out io.Writer, ruleSet *rules.RuleSet, opts listOptions) error {
	cs := ui.GetFangScheme()
	colorEnabled := opts.colorEnabled
	const indent = "  "

	titleStyle := lipgloss.NewStyle().Bold(colorEnabled)
	tableHeaderStyle := lipgloss.NewStyle().Bold(colorEnabled)
	defaultNameStyle := lipgloss.NewStyle().Bold(colorEnabled)
	shadowStyle := lipgloss.NewStyle()
	targetStyle := ui.TargetStyle(opts.targetColor)

	if colorEnabled {
		titleStyle = titleStyle.Foreground(cs.QuotedString)
		tableHeaderStyle = tableHeaderStyle.Foreground(cs.Base).Faint(true)
		defaultNameStyle = defaultNameStyle.Foreground(cs.Flag)
		shadowStyle = shadowStyle.Faint(true)
	}

	renderName := func(name string, isDefault bool) string {
		if !colorEnabled {
			if isDefault {
				return name + " (default)"
			}
			return name
		}
		if isDefault {
			return defaultNameStyle.Render(name)
		}
		return targetStyle.Render(name)
	}

	defaultTarget := ruleSet.DefaultTarget()
	rows := make([]listRow, 0, ruleSet.Len())
	for _, target := range ruleSet.Targets() {
		rule, _ := ruleSet.Lookup(target)
		rows = append(rows, listRow{
			name:      target,
			line:      strconv.Itoa(rule.Line),
			prereqs:   prereqText(rule),
			isDefault: target == defaultTarget,
		})
	}
	rows = applyTargetFilters(rows, opts.filters)

	_, _ = fmt.Fprintln(out, titleStyle.Render("Targets:"))
	writeTable(out, tableHeaderStyle, rows, renderName, indent)

	shadowed := ruleSet.Shadowed()
	if len(shadowed) > 0 {
		_, _ = fmt.Fprintln(out)
		_, _ = fmt.Fprintln(out, titleStyle.Render("Ignored duplicates:"))
		for _, rule := range shadowed {
			first, _ := ruleSet.Lookup(rule.Target)
			text := fmt.Sprintf("%s (line %d, shadowed by line %d)", rule.Target, rule.Line, first.Line)
			_, _ = fmt.Fprintln(out, indent+shadowStyle.Render(text))
		}
	}

	return nil
}

func prereqText(rule rules.Rule) string {
	if len(rule.Prerequisites) == 0 {
		return "-"
	}
	return strings.Join(rule.Prerequisites, " ")
}

// applyTargetFilters keeps the rows whose name or prerequisites contain
// every filter, ignoring case.
func applyTargetFilters(rows []listRow, filters []string) []listRow {
	needles := lo.FilterMap(filters, func(f string, _ int) (string, bool) {
		f = strings.ToLower(strings.TrimSpace(f))
		return f, f != ""
	})
	if len(needles) == 0 {
		return rows
	}

	return lo.Filter(rows, func(row listRow, _ int) bool {
		haystack := strings.ToLower(row.name + " " + row.prereqs)
		return lo.EveryBy(needles, func(n string) bool { return strings.Contains(haystack, n) })
	})
}

func writeTable(
	out io.Writer,
	headerStyle lipgloss.Style,
	rows []listRow,
	renderName func(name string, isDefault bool) string,
	indent string,
) {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(out, indent+"(no matching targets)")
		return
	}

	header := listRow{name: "NAME", line: "LINE", prereqs: "PREREQUISITES"}

	// Column widths (ANSI-aware via lipgloss.Width).
	maxName, maxLine := lipgloss.Width(header.name), lipgloss.Width(header.line)
	for _, row := range rows {
		maxName = max(maxName, lipgloss.Width(renderName(row.name, row.isDefault)))
		maxLine = max(maxLine, lipgloss.Width(row.line))
	}

	pad := func(text string, width int) string {
		textWidth := lipgloss.Width(text)
		if textWidth >= width {
			return text
		}
		return text + strings.Repeat(" ", width-textWidth)
	}

	headerLine := strings.Join([]string{
		pad(header.name, maxName),
		pad(header.line, maxLine),
		header.prereqs,
	}, "  ")
	_, _ = fmt.Fprintln(out, indent+headerStyle.Render(headerLine))

	termWidth := detectTermWidth(out)
	const gap = 2
	leftOffset := lipgloss.Width(indent) + maxName + gap + maxLine + gap
	prereqWidth := max(termWidth-leftOffset, termWidthFloor)
	spaceLeft := strings.Repeat(" ", leftOffset)

	// Prerequisites are word-wrapped with a hanging indent.
	for _, row := range rows {
		wrapped := wordwrap.String(row.prereqs, prereqWidth)
		wrapped = strings.ReplaceAll(wrapped, "\n", "\n"+spaceLeft)

		line := strings.Join([]string{
			pad(renderName(row.name, row.isDefault), maxName),
			pad(row.line, maxLine),
			wrapped,
		}, strings.Repeat(" ", gap))
		_, _ = fmt.Fprintln(out, indent+line)
	}
}

func enableColorForList(configured bool) bool {
	return ui.ColorEnabled(configured)
}

// detectTermWidth returns the terminal width to use for wrapping.
// It prefers the size of out when it is a terminal, falls back to
// $COLUMNS, then 80.
func detectTermWidth(out io.Writer) int {
	if f, ok := out.(*os.File); ok {
		if w, _, err := term.GetSize(f.Fd()); err == nil && w > 0 {
			return w
		}
	}
	if cols := os.Getenv("COLUMNS"); cols != "" {
		if v, err := strconv.Atoi(cols); err == nil && v > 0 {
			return v
		}
	}

	return fallbackTermWidth
}
