package rules

import (
	"fmt"
	"io"
	"strings"
)

// Format writes s in canonical mmakefile syntax: one header and one
// tab-indented command per rule, rules separated by a blank line.
// Parsing the output yields the same rules in the same order.
func Format(w io.Writer, s *RuleSet) error {
	var sb strings.Builder
	for i, rule := range s.rules {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(rule.Target)
		sb.WriteString(":")
		if len(rule.Prerequisites) > 0 {
			sb.WriteString(" ")
			sb.WriteString(strings.Join(rule.Prerequisites, " "))
		}
		sb.WriteString("\n\t")
		sb.WriteString(rule.CommandLine())
		sb.WriteString("\n")
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}
	return nil
}
