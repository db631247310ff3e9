package processor

import "fmt"

// Severity classifies a diagnostic.
type Severity int

const (
	SeverityNote Severity = iota
	SeverityWarning
	SeverityError
)

// String returns the lower-case severity name.
func (s Severity) String() string {
	switch s {
	case SeverityNote:
		return "note"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Diagnostics receives human-facing messages from the coordinator.
type Diagnostics interface {
	Report(sev Severity, msg string)
}

// DiagnosticsFunc adapts a function to Diagnostics.
type DiagnosticsFunc func(sev Severity, msg string)

// Report implements Diagnostics.
func (f DiagnosticsFunc) Report(sev Severity, msg string) { f(sev, msg) }

type nopDiagnostics struct{}

func (nopDiagnostics) Report(Severity, string) {}
