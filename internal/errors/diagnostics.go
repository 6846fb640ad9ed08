package errors

import (
	"fmt"
	"strings"
)

// Diagnostics accumulates independent failures from one compilation pass.
// The resolver and emitter collect errors within a single node's subtree —
// both operands of a binary expression, every statement of a block — and
// surface them together, so one compilation can report several unrelated
// problems instead of stopping at the first.
type Diagnostics struct {
	errs []error
}

// Add records err; a nil err is ignored. A DiagnosticList is flattened so
// nested accumulators never produce nested numbering.
func (d *Diagnostics) Add(err error) {
	if err == nil {
		return
	}
	if list, ok := err.(*DiagnosticList); ok {
		d.errs = append(d.errs, list.Errors...)
		return
	}
	d.errs = append(d.errs, err)
}

// Len returns the number of errors recorded so far.
func (d *Diagnostics) Len() int { return len(d.errs) }

// Err returns nil when nothing was recorded, the error itself when exactly
// one was, and a DiagnosticList otherwise.
func (d *Diagnostics) Err() error {
	switch len(d.errs) {
	case 0:
		return nil
	case 1:
		return d.errs[0]
	default:
		return &DiagnosticList{Errors: d.errs}
	}
}

// Combine merges any number of errors (nils included) into a single error
// value: nil if all are nil, the sole error if one, a DiagnosticList
// otherwise.
func Combine(errs ...error) error {
	var d Diagnostics
	for _, err := range errs {
		d.Add(err)
	}
	return d.Err()
}

// DiagnosticList is several independent failures reported together.
type DiagnosticList struct {
	Errors []error
}

func (l *DiagnosticList) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d errors:", len(l.Errors))
	for i, err := range l.Errors {
		msg := strings.ReplaceAll(err.Error(), "\n", "\n   ")
		fmt.Fprintf(&sb, "\n#%d: %s", i+1, msg)
	}
	return sb.String()
}

// Unwrap exposes the underlying errors to errors.Is/As traversal.
func (l *DiagnosticList) Unwrap() []error { return l.Errors }
