package rules

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// DefaultFileName is the rule file read when none is named.
const DefaultFileName = "mmakefile"

// Parse reads every rule from r. It fails on the first syntax error and
// never returns a partial RuleSet.
func Parse(r io.Reader) (*RuleSet, error) {
	p := &parser{in: bufio.NewReader(r)}

	var parsed []Rule
	for {
		rule, ok, err := p.parseRule()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		parsed = append(parsed, rule)
	}

	if len(parsed) == 0 {
		return nil, &ParseError{Line: p.line, Kind: KindNoRules, Msg: "rule file is empty", Err: ErrNoRules}
	}

	return NewRuleSet(parsed)
}

type parser struct {
	in   *bufio.Reader
	line int
}

// nextLine returns the next physical line with its line break removed.
// ok is false once the input is exhausted; terminated is false when the
// line ran into end of input instead of a line break.
func (p *parser) nextLine() (text string, terminated, ok bool, err error) {
	s, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false, false, &ParseError{Line: p.line + 1, Kind: KindRead, Msg: "reading rule file", Err: err}
	}
	if s == "" {
		return "", false, false, nil
	}

	p.line++
	if strings.HasSuffix(s, "\n") {
		return s[:len(s)-1], true, true, nil
	}
	return s, false, true, nil
}

func (p *parser) nextHeader() (text string, terminated, ok bool, err error) {
	for {
		text, terminated, ok, err = p.nextLine()
		if err != nil || !ok {
			return "", false, false, err
		}
		if !isBlank(text) {
			return text, terminated, true, nil
		}
	}
}

// parseRule reads one header line and its command line. ok is false at a
// clean end of input.
func (p *parser) parseRule() (Rule, bool, error) {
	header, terminated, ok, err := p.nextHeader()
	if err != nil || !ok {
		return Rule{}, false, err
	}
	headerLine := p.line

	if isSpace(header[0]) {
		return Rule{}, false, newParseError(headerLine, KindHeaderIndented, "",
			"rule header must not start with whitespace")
	}

	cur := cursor{s: header}
	target := cur.word(":")
	if target == "" {
		return Rule{}, false, newParseError(headerLine, KindMissingTarget, "",
			"rule header has no target name")
	}

	cur.skipSpace()
	if !cur.expect(':') {
		return Rule{}, false, newParseError(headerLine, KindMissingColon, target,
			"expected ':' after target %q", target)
	}

	prereqs := []string{}
	for {
		cur.skipSpace()
		if cur.done() {
			break
		}
		word := cur.word("")
		if strings.Contains(word, ":") {
			return Rule{}, false, newParseError(headerLine, KindColonInPrereq, target,
				"prerequisite %q of target %q contains ':'", word, target)
		}
		prereqs = append(prereqs, word)
	}

	if !terminated {
		return Rule{}, false, newParseError(headerLine, KindUnterminatedHeader, target,
			"rule header for target %q is not terminated by a line break", target)
	}

	command, err := p.parseCommand(target)
	if err != nil {
		return Rule{}, false, err
	}

	return Rule{
		Target:        target,
		Prerequisites: prereqs,
		Command:       command,
		Line:          headerLine,
	}, true, nil
}

// parseCommand reads the line immediately following a header. Blank lines
// are not skipped here.
func (p *parser) parseCommand(target string) ([]string, error) {
	text, _, ok, err := p.nextLine()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newParseError(p.line+1, KindMissingCommand, target,
			"missing command line for target %q", target)
	}

	cur := cursor{s: text}
	if !cur.expect('\t') {
		return nil, newParseError(p.line, KindCommandNotTabbed, target,
			"command line for target %q must start with a tab", target)
	}

	var words []string
	for {
		cur.skipSpace()
		if cur.done() {
			break
		}
		words = append(words, cur.word(""))
	}

	if len(words) == 0 {
		return nil, newParseError(p.line, KindEmptyCommand, target,
			"command line for target %q is empty", target)
	}

	return words, nil
}

// cursor walks a single line.
type cursor struct {
	s   string
	pos int
}

func (c *cursor) done() bool {
	return c.pos >= len(c.s)
}

// skipSpace advances past horizontal whitespace.
func (c *cursor) skipSpace() {
	for !c.done() && isSpace(c.s[c.pos]) {
		c.pos++
	}
}

// word consumes a maximal run of bytes that are neither whitespace nor
// one of delims.
func (c *cursor) word(delims string) string {
	start := c.pos
	for !c.done() && !isSpace(c.s[c.pos]) && strings.IndexByte(delims, c.s[c.pos]) < 0 {
		c.pos++
	}
	return c.s[start:c.pos]
}

func (c *cursor) expect(b byte) bool {
	if c.done() || c.s[c.pos] != b {
		return false
	}
	c.pos++
	return true
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func isSpaceRune(r rune) bool {
	return r < 0x80 && isSpace(byte(r))
}

func isBlank(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isSpace(s[i]) {
			return false
		}
	}
	return true
}
