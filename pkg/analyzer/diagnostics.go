package analyzer

import (
	"fmt"

	"github.com/devgony/stc/pkg/ast"
)

// Severity conveys the diagnostic level.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Code is the numeric diagnostic code printed as TSxxxx.
type Code int

const (
	CodeDuplicateIdentifier Code = 2300
	CodeNameNotFound        Code = 2304
	CodeNoExportedMember    Code = 2305
	CodeModuleNotFound      Code = 2307
	CodeCircularBase        Code = 2310
	CodeGenericArity        Code = 2314
	CodeNotGeneric          Code = 2315
	CodeNotAssignable       Code = 2322
	CodePropertyMissing     Code = 2339
	CodeCircularAlias       Code = 2456
	CodeDepthExceeded       Code = 2589
	CodeNamespaceMember     Code = 2694
	CodeNamespaceAsType     Code = 2709
	CodeBigIntTarget        Code = 2737
	CodeValueAsType         Code = 2749
	CodeCircularInit        Code = 7022
)

func (c Code) String() string { return fmt.Sprintf("TS%d", int(c)) }

// DiagnosticNote captures secondary context for a diagnostic.
type DiagnosticNote struct {
	Message string
	Node    ast.Node
}

// Diagnostic is a problem found in the analysed program. Diagnostics are
// accumulated, never returned as errors.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Node     ast.Node
	Path     string
	Notes    []DiagnosticNote
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s: %s", d.Severity, d.Code, d.Message)
}

func (a *Analyzer) report(code Code, node ast.Node, format string, args ...any) {
	a.addDiagnostic(Diagnostic{
		Severity: SeverityError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Node:     node,
		Path:     a.path,
	})
}

func (a *Analyzer) addDiagnostic(diag Diagnostic) {
	if diag.Message == "" {
		return
	}
	if diag.Path == "" {
		diag.Path = a.path
	}
	a.diags = append(a.diags, diag)
	a.logger.Debug("diagnostic", "path", diag.Path, "code", diag.Code.String(), "message", diag.Message)
}

// Diagnostics returns the diagnostics recorded so far in report order.
func (a *Analyzer) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), a.diags...)
}

// HasErrors reports whether any error diagnostic was recorded.
func (a *Analyzer) HasErrors() bool {
	for _, d := range a.diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
