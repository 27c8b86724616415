package kerrors

import (
	"fmt"
	"strings"

	"github.com/QuEraComputing/kirin/lexer"
)

// ParseErrorKind distinguishes the textual-parser/pretty-printer
// collaborator's failure modes.
type ParseErrorKind int

const (
	InvalidHeader ParseErrorKind = iota
	UnknownStage
	MissingStageDeclaration
	EmitFailed
)

func (k ParseErrorKind) String() string {
	switch k {
	case InvalidHeader:
		return "InvalidHeader"
	case UnknownStage:
		return "UnknownStage"
	case MissingStageDeclaration:
		return "MissingStageDeclaration"
	case EmitFailed:
		return "EmitFailed"
	default:
		return "Unknown"
	}
}

// ParseError is the parser/pretty-printer collaborator's error type,
// carrying a source span: a message, the offending position, and the full
// source text so Format can print a caret pointing at the problem.
type ParseError struct {
	Kind    ParseErrorKind
	Message string
	Source  string
	File    string
	Pos     lexer.Position
}

func (e *ParseError) Error() string { return e.Format(false) }

// Format renders the error with a source-line and caret. When color is
// true, ANSI codes highlight the caret.
func (e *ParseError) Format(color bool) string {
	var sb strings.Builder

	if e.File != "" {
		fmt.Fprintf(&sb, "%s error in %s:%d:%d\n", e.Kind, e.File, e.Pos.Line, e.Pos.Column)
	} else {
		fmt.Fprintf(&sb, "%s error at line %d:%d\n", e.Kind, e.Pos.Line, e.Pos.Column)
	}

	if line := sourceLine(e.Source, e.Pos.Line); line != "" {
		prefix := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(prefix)+e.Pos.Column-1))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(e.Message)
	if color {
		sb.WriteString("\033[0m")
	}

	return sb.String()
}

func sourceLine(source string, lineNum int) string {
	if source == "" || lineNum < 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// NewParseError constructs a ParseError.
func NewParseError(kind ParseErrorKind, pos lexer.Position, message, source, file string) *ParseError {
	return &ParseError{Kind: kind, Message: message, Source: source, File: file, Pos: pos}
}
