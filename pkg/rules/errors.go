package rules

import (
	"errors"
	"fmt"
)

var (
	// ErrNoRules is returned when a rule file or rule list contains no rules.
	ErrNoRules = errors.New("no rules found")

	// ErrInvalidRule is returned by NewRuleSet for a rule that could never
	// have come out of Parse.
	ErrInvalidRule = errors.New("invalid rule")
)

// ErrorKind classifies a ParseError.
type ErrorKind int

//go:generate go tool golang.org/x/tools/cmd/stringer -type=ErrorKind -trimprefix=Kind
const (
	KindRead ErrorKind = iota
	KindHeaderIndented
	KindMissingTarget
	KindMissingColon
	KindColonInPrereq
	KindUnterminatedHeader
	KindMissingCommand
	KindCommandNotTabbed
	KindEmptyCommand
	KindNoRules
)

// ParseError reports malformed rule-file syntax. Line is 1-based and
// points at the offending physical line.
type ParseError struct {
	Line   int
	Kind   ErrorKind
	Target string
	Msg    string
	Err    error
}

func newParseError(line int, kind ErrorKind, target string, format string, args ...any) *ParseError {
	return &ParseError{
		Line:   line,
		Kind:   kind,
		Target: target,
		Msg:    fmt.Sprintf(format, args...),
	}
}

func (e *ParseError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Line <= 0 {
		return msg
	}
	return fmt.Sprintf("line %d: %s", e.Line, msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
