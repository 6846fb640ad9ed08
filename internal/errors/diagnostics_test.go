package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestDiagnosticsEmptyIsNil(t *testing.T) {
	var d Diagnostics
	d.Add(nil)
	if err := d.Err(); err != nil {
		t.Fatalf("expected nil for an empty accumulator, got %v", err)
	}
}

func TestDiagnosticsSingleErrorPassesThrough(t *testing.T) {
	var d Diagnostics
	sole := fmt.Errorf("only failure")
	d.Add(sole)
	if err := d.Err(); err != sole {
		t.Fatalf("a single error should surface unwrapped, got %v", err)
	}
}

func TestDiagnosticsListNumbersEachError(t *testing.T) {
	var d Diagnostics
	d.Add(fmt.Errorf("first failure"))
	d.Add(nil)
	d.Add(fmt.Errorf("second failure"))

	err := d.Err()
	list, ok := err.(*DiagnosticList)
	if !ok {
		t.Fatalf("expected a DiagnosticList, got %T", err)
	}
	if len(list.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(list.Errors))
	}
	msg := err.Error()
	for _, want := range []string{"2 errors:", "#1: first failure", "#2: second failure"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in:\n%s", want, msg)
		}
	}
}

func TestDiagnosticsFlattensNestedLists(t *testing.T) {
	var inner Diagnostics
	inner.Add(fmt.Errorf("left operand"))
	inner.Add(fmt.Errorf("right operand"))

	var outer Diagnostics
	outer.Add(inner.Err())
	outer.Add(fmt.Errorf("sibling statement"))

	list, ok := outer.Err().(*DiagnosticList)
	if !ok {
		t.Fatalf("expected a DiagnosticList, got %T", outer.Err())
	}
	if len(list.Errors) != 3 {
		t.Fatalf("nested lists should flatten to 3 errors, got %d", len(list.Errors))
	}
}

func TestCombine(t *testing.T) {
	if Combine(nil, nil) != nil {
		t.Fatalf("all-nil Combine should be nil")
	}
	sole := fmt.Errorf("boom")
	if Combine(nil, sole) != sole {
		t.Fatalf("single-error Combine should pass it through")
	}
	combined := Combine(fmt.Errorf("a"), fmt.Errorf("b"))
	if _, ok := combined.(*DiagnosticList); !ok {
		t.Fatalf("expected a DiagnosticList, got %T", combined)
	}
}
