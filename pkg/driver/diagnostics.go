package driver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/devgony/stc/pkg/analyzer"
	"github.com/devgony/stc/pkg/parser"
	"github.com/devgony/stc/pkg/source"
)

// DiagnosticLocation references a source position for diagnostics.
type DiagnosticLocation struct {
	Path   string
	Line   int
	Column int
}

func locate(d analyzer.Diagnostic) DiagnosticLocation {
	loc := DiagnosticLocation{Path: d.Path}
	if d.Node != nil {
		span := d.Node.Span()
		loc.Line, loc.Column = span.Start.Line, span.Start.Column
	}
	return loc
}

// DescribeDiagnostic formats a diagnostic as `path:line:col: severity CODE: message`.
func DescribeDiagnostic(d analyzer.Diagnostic) string {
	message := strings.TrimSpace(d.Message)
	prefix := fmt.Sprintf("%s %s: ", d.Severity, d.Code)
	if location := formatDiagnosticLocation(locate(d)); location != "" {
		prefix = location + ": " + prefix
	}
	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteString(message)
	for _, note := range d.Notes {
		sb.WriteString("\n  note: ")
		sb.WriteString(note.Message)
	}
	return sb.String()
}

// DescribeWithSource appends the offending source line when it is known.
func DescribeWithSource(d analyzer.Diagnostic, sources *source.Map) string {
	out := DescribeDiagnostic(d)
	loc := locate(d)
	file, ok := sources.File(loc.Path)
	if !ok || loc.Line == 0 {
		return out
	}
	line, ok := file.Line(loc.Line)
	if !ok {
		return out
	}
	caret := strings.Repeat(" ", max(loc.Column-1, 0)) + "^"
	return out + "\n  " + line + "\n  " + caret
}

// DescribeError formats a fatal load error; parse errors keep their position.
func DescribeError(err error) string {
	var perr *parser.ParseError
	if errors.As(err, &perr) {
		loc := formatDiagnosticLocation(DiagnosticLocation{Path: perr.Path, Line: perr.Line, Column: perr.Column})
		return fmt.Sprintf("%s: error: %s", loc, perr.Message)
	}
	return err.Error()
}

func formatDiagnosticLocation(loc DiagnosticLocation) string {
	path := strings.TrimSpace(loc.Path)
	line := loc.Line
	column := loc.Column
	switch {
	case path != "" && line > 0 && column > 0:
		return fmt.Sprintf("%s:%d:%d", path, line, column)
	case path != "" && line > 0:
		return fmt.Sprintf("%s:%d", path, line)
	case path != "":
		return path
	case line > 0 && column > 0:
		return fmt.Sprintf("line %d, column %d", line, column)
	case line > 0:
		return fmt.Sprintf("line %d", line)
	default:
		return ""
	}
}
