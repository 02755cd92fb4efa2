package rules

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yaklabco/mmake/pkg/toposort"
)

func TestNewRuleSet_Empty(t *testing.T) {
	t.Parallel()

	set, err := NewRuleSet(nil)
	require.ErrorIs(t, err, ErrNoRules)
	assert.Nil(t, set)
}

func TestNewRuleSet_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rule Rule
	}{
		{"empty target", Rule{Command: []string{"true"}}},
		{"target with colon", Rule{Target: "a:b", Command: []string{"true"}}},
		{"target with space", Rule{Target: "a b", Command: []string{"true"}}},
		{"no command", Rule{Target: "a"}},
		{"bad prerequisite", Rule{Target: "a", Prerequisites: []string{""}, Command: []string{"true"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewRuleSet([]Rule{tt.rule})
			require.ErrorIs(t, err, ErrInvalidRule)
		})
	}
}

func TestNewRuleSet_CopiesInput(t *testing.T) {
	t.Parallel()

	prereqs := []string{"a.c"}
	set, err := NewRuleSet([]Rule{{Target: "out", Prerequisites: prereqs, Command: []string{"cc", "a.c"}}})
	require.NoError(t, err)

	prereqs[0] = "changed.c"
	rule, _ := set.Lookup("out")
	assert.Equal(t, []string{"a.c"}, rule.Prerequisites)

	rules := set.Rules()
	rules[0].Target = "other"
	assert.Equal(t, "out", set.DefaultTarget())
}

func TestLookup_Missing(t *testing.T) {
	t.Parallel()

	set, err := NewRuleSet([]Rule{{Target: "out", Command: []string{"true"}}})
	require.NoError(t, err)

	_, ok := set.Lookup("nope")
	assert.False(t, ok)
}

func TestFormat_RoundTrip(t *testing.T) {
	t.Parallel()

	input := "out:   a.o b.o\n" +
		"\t cc  -o out a.o b.o\n" +
		"\n\n" +
		"a.o: a.c\n" +
		"\tcc -c a.c\n" +
		"b.o : b.c\n" +
		"\tcc -c b.c\n" +
		"clean:\n" +
		"\trm -f out a.o b.o\n"

	set, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Format(&buf, set))
	assert.Equal(t, "out: a.o b.o\n\tcc -o out a.o b.o\n"+
		"\na.o: a.c\n\tcc -c a.c\n"+
		"\nb.o: b.c\n\tcc -c b.c\n"+
		"\nclean:\n\trm -f out a.o b.o\n", buf.String())

	again, err := Parse(&buf)
	require.NoError(t, err)

	stripLines := func(rules []Rule) []Rule {
		for i := range rules {
			rules[i].Line = 0
		}
		return rules
	}
	assert.Equal(t, stripLines(set.Rules()), stripLines(again.Rules()))
}

func TestCheck_BuildOrder(t *testing.T) {
	t.Parallel()

	input := "out: a.o b.o\n\tcc -o out a.o b.o\n" +
		"a.o: a.c common.h\n\tcc -c a.c\n" +
		"b.o: b.c common.h\n\tcc -c b.c\n"

	set, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	order, err := set.Check()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.o", "b.o", "out"}, order)
}

func TestCheck_Cycle(t *testing.T) {
	t.Parallel()

	input := "a: b\n\ttouch a\nb: c\n\ttouch b\nc: a\n\ttouch c\n"

	set, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	_, err = set.Check()
	require.ErrorIs(t, err, toposort.ErrCircularDependency)
	assert.Contains(t, err.Error(), "a -> b -> c -> a")
}
