package parser

import (
	"fmt"

	"github.com/jcnc-org/Snow-sub005/lang/token"
)

// ErrorKind classifies a parse error.
type ErrorKind int

const (
	MissingToken ErrorKind = iota
	UnexpectedToken
	UnsupportedFeature
)

// Error is a single parse diagnostic, carrying enough context to format a
// `file:line:column: message` report.
type Error struct {
	Kind     ErrorKind
	Filename string
	Pos      token.Pos
	Expected string // for MissingToken
	Found    string // for UnexpectedToken
	Feature  string // for UnsupportedFeature
}

func (e *Error) Error() string {
	line, col := e.Pos.LineCol()
	loc := fmt.Sprintf("%s:%d:%d", e.Filename, line, col)
	switch e.Kind {
	case MissingToken:
		return fmt.Sprintf("%s: expected %s", loc, e.Expected)
	case UnexpectedToken:
		return fmt.Sprintf("%s: unexpected token %s", loc, e.Found)
	case UnsupportedFeature:
		return fmt.Sprintf("%s: unsupported feature: %s", loc, e.Feature)
	default:
		return loc + ": parse error"
	}
}
