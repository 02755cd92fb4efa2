package rules

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/yaklabco/mmake/pkg/toposort"
)

type ruleNode struct {
	rule Rule
}

func (n ruleNode) TPID() string              { return n.rule.Target }
func (n ruleNode) DependencyTPIDs() []string { return n.rule.Prerequisites }

// Check validates the name-reference graph between rules without touching
// the filesystem. Prerequisites with no rule are treated as source files.
// On success it returns every target in an order in which it could be
// built; a cycle yields an error wrapping toposort.ErrCircularDependency.
func (s *RuleSet) Check() ([]string, error) {
	nodes := lo.Map(s.Targets(), func(target string, _ int) ruleNode {
		rule, _ := s.Lookup(target)
		return ruleNode{rule: rule}
	})

	sorted, err := toposort.Sort(nodes, true)
	if err != nil {
		return nil, fmt.Errorf("checking rules: %w", err)
	}

	return lo.Map(sorted, func(n ruleNode, _ int) string { return n.TPID() }), nil
}
