// Package rules holds the rule model of an mmakefile and the parser that
// produces it.
//
// An mmakefile is a sequence of two-line rules:
//
//	out: a.o b.o
//		cc -o out a.o b.o
//
// The first line names a target and its prerequisites, the second line
// starts with a tab and holds the command that rebuilds the target.
package rules

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Rule is one build step.
type Rule struct {
	Target        string
	Prerequisites []string
	// Command is the program followed by its arguments, passed verbatim.
	Command []string
	// Line is the 1-based line of the rule header, or 0 for rules built in code.
	Line int
}

// Program returns the executable named by the command.
func (r Rule) Program() string {
	return r.Command[0]
}

// Args returns the arguments passed to the program.
func (r Rule) Args() []string {
	return r.Command[1:]
}

// CommandLine renders the command words joined by single spaces.
func (r Rule) CommandLine() string {
	return strings.Join(r.Command, " ")
}

func (r Rule) validate() error {
	switch {
	case r.Target == "":
		return fmt.Errorf("%w: empty target", ErrInvalidRule)
	case strings.ContainsFunc(r.Target, isSpaceRune) || strings.Contains(r.Target, ":"):
		return fmt.Errorf("%w: target %q contains whitespace or ':'", ErrInvalidRule, r.Target)
	case len(r.Command) == 0:
		return fmt.Errorf("%w: target %q has no command", ErrInvalidRule, r.Target)
	}
	for _, prereq := range r.Prerequisites {
		if prereq == "" || strings.ContainsFunc(prereq, isSpaceRune) || strings.Contains(prereq, ":") {
			return fmt.Errorf("%w: target %q has malformed prerequisite %q", ErrInvalidRule, r.Target, prereq)
		}
	}
	return nil
}

// RuleSet is the ordered collection of rules read from one mmakefile.
// It is never empty.
type RuleSet struct {
	rules []Rule
	index map[string]int
}

// NewRuleSet builds a RuleSet from rules in declaration order. It fails
// with ErrNoRules if rules is empty.
func NewRuleSet(rules []Rule) (*RuleSet, error) {
	if len(rules) == 0 {
		return nil, ErrNoRules
	}

	set := &RuleSet{
		rules: make([]Rule, 0, len(rules)),
		index: make(map[string]int, len(rules)),
	}
	for i, rule := range rules {
		if err := rule.validate(); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}
		rule.Prerequisites = cloneWords(rule.Prerequisites)
		rule.Command = cloneWords(rule.Command)
		if _, seen := set.index[rule.Target]; !seen {
			set.index[rule.Target] = len(set.rules)
		}
		set.rules = append(set.rules, rule)
	}

	return set, nil
}

// DefaultTarget returns the target of the first declared rule.
func (s *RuleSet) DefaultTarget() string {
	return s.rules[0].Target
}

// Lookup returns the first rule, in declaration order, whose target is name.
func (s *RuleSet) Lookup(name string) (Rule, bool) {
	i, ok := s.index[name]
	if !ok {
		return Rule{}, false
	}
	return s.rules[i], true
}

// Len returns the number of declared rules, duplicates included.
func (s *RuleSet) Len() int {
	return len(s.rules)
}

// Rules returns a copy of all declared rules in declaration order.
func (s *RuleSet) Rules() []Rule {
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Targets returns the distinct target names in declaration order.
func (s *RuleSet) Targets() []string {
	return lo.Uniq(lo.Map(s.rules, func(r Rule, _ int) string { return r.Target }))
}

// Shadowed returns the rules that can never be looked up because an
// earlier rule declares the same target.
func (s *RuleSet) Shadowed() []Rule {
	return lo.Filter(s.rules, func(r Rule, i int) bool {
		return s.index[r.Target] != i
	})
}

func cloneWords(words []string) []string {
	if len(words) == 0 {
		return []string{}
	}
	out := make([]string, len(words))
	copy(out, words)
	return out
}
