package resolve

import (
	"fmt"
	"strings"

	"github.com/rosy-lang/rosyc/internal/types"
)

// resolutionError is a plain internal resolver failure (a recipe referenced
// a slot that was never resolved); it is always a bug in the resolver
// itself rather than a user-facing diagnostic, so it carries no box.
type resolutionError struct{ msg string }

func newResolutionError(msg string) error { return &resolutionError{msg: msg} }
func (e *resolutionError) Error() string  { return e.msg }

// TypeConflictError reports that an operator has no defined result for the
// pair of operand kinds it was given — the resolver's most common
// user-facing diagnostic.
type TypeConflictError struct {
	Operator    string
	Left, Right types.Descriptor
}

func newTypeConflictError(op string, left, right types.Descriptor) error {
	return &TypeConflictError{Operator: op, Left: left, Right: right}
}

func (e *TypeConflictError) Error() string {
	return fmt.Sprintf(
		"\n╭─ Type Conflict ─────────────────────────────────────────\n"+
			"│\n"+
			"│  No rule for %s %s %s\n"+
			"│\n"+
			"│  The operator tables in internal/types/optable.go define\n"+
			"│  which kind combinations %s accepts; this pair is not one\n"+
			"│  of them.\n"+
			"│\n"+
			"╰──────────────────────────────────────────────────────────",
		e.Left, e.Operator, e.Right, e.Operator,
	)
}

// UndeclaredError is the scope-violation diagnostic for a name no
// enclosing scope declares.
type UndeclaredError struct{ Name string }

func newUndeclaredError(name string) error { return &UndeclaredError{Name: name} }

func (e *UndeclaredError) Error() string {
	return fmt.Sprintf("undeclared name '%s': no enclosing scope declares it", e.Name)
}

// RedeclarationError reports a second declaration of a name inside the
// scope that already declares it.
type RedeclarationError struct {
	Name  string
	Scope []string
}

func newRedeclarationError(name string, scope []string) error {
	return &RedeclarationError{Name: name, Scope: append([]string{}, scope...)}
}

func (e *RedeclarationError) Error() string {
	where := "the global scope"
	if len(e.Scope) > 0 {
		where = "'" + strings.Join(e.Scope, " > ") + "'"
	}
	return fmt.Sprintf("variable '%s' is declared twice in %s", e.Name, where)
}

// newDeclaredConflictError reports an assignment whose type disagrees with
// the variable's explicit declaration, with a split-the-variable fix.
func newDeclaredConflictError(name string, declared, assigned types.Descriptor) error {
	return &resolutionError{msg: fmt.Sprintf(
		"\n╭─ Type Conflict ─────────────────────────────────────────\n"+
			"│\n"+
			"│  Variable '%s' is declared as %s but is assigned a\n"+
			"│  value of type %s.\n"+
			"│\n"+
			"│  Either:\n"+
			"│    - Change the explicit type to match the assignment, or\n"+
			"│    - Split into separate variables: %s_%s  and  %s_%s\n"+
			"│\n"+
			"╰──────────────────────────────────────────────────────────",
		name, declared, assigned, name, declared.Base, name, assigned.Base,
	)}
}

// newInferredConflictError reports two assignments to the same inferred
// variable that produce different types.
func newInferredConflictError(name string, first, second types.Descriptor) error {
	return &resolutionError{msg: fmt.Sprintf(
		"\n╭─ Type Conflict ─────────────────────────────────────────\n"+
			"│\n"+
			"│  Variable '%s' is assigned conflicting types:\n"+
			"│    - First inferred as:  %s\n"+
			"│    - Then assigned as:   %s\n"+
			"│\n"+
			"│  Type elision requires each variable to have exactly one\n"+
			"│  type. Either:\n"+
			"│    - Add an explicit type: VARIABLE (%s) %s ;\n"+
			"│    - Split into separate variables: %s_%s  and  %s_%s\n"+
			"│\n"+
			"╰──────────────────────────────────────────────────────────",
		name, first, second, first.Base, name, name, first.Base, name, second.Base,
	)}
}

// newArityError reports a call site whose argument count does not match the
// callee's declared parameter count.
func newArityError(callee string, want, got int) error {
	return &resolutionError{msg: fmt.Sprintf(
		"call to '%s' passes %d argument(s); it declares %d parameter(s)", callee, got, want)}
}

// newArgumentTypeError reports a call-site argument whose type does not
// equal the declared parameter type.
func newArgumentTypeError(callee, param string, want, got types.Descriptor) error {
	return &resolutionError{msg: fmt.Sprintf(
		"argument '%s' of '%s' expects %s, but the call site passes %s", param, callee, want, got)}
}

// buildResolutionError ports the upstream resolver's boxed "unresolved
// slots" report: cycles are separated from slots with simply no applicable
// rule, each with a suggested fix.
func (r *Resolver) buildResolutionError(unresolved []*graphNode) error {
	var cycleSlots, noInfoSlots []*graphNode
	for _, node := range unresolved {
		hasUnresolvedDep := false
		for _, dep := range node.dependsOn {
			if depNode, ok := r.nodes[dep.Key()]; ok && depNode.resolved == nil {
				hasUnresolvedDep = true
				break
			}
		}
		if hasUnresolvedDep {
			cycleSlots = append(cycleSlots, node)
		} else {
			noInfoSlots = append(noInfoSlots, node)
		}
	}

	total := len(unresolved)
	plural := "s"
	if total == 1 {
		plural = ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\n╭─ Type Resolution Failed ─────────────────────────────────\n│\n│  %d unresolved type%s found:\n│", total, plural)

	if len(cycleSlots) > 0 {
		b.WriteString("\n│  Circular dependencies detected:\n│")
		for _, node := range cycleSlots {
			fmt.Fprintf(&b, "\n│    x %s depends on:", node.slot)
			for _, dep := range node.dependsOn {
				if depNode, ok := r.nodes[dep.Key()]; ok && depNode.resolved == nil {
					fmt.Fprintf(&b, "\n│        -> %s", dep)
				}
			}
			if reason, ok := ruleReason(node.rule); ok {
				fmt.Fprintf(&b, "\n│        (%s)", reason)
			}
		}
		b.WriteString("\n│\n│    Break the cycle by adding an explicit type annotation\n│    to at least one of the slots above.\n│")
	}

	for _, node := range noInfoSlots {
		reasonHint := ""
		if reason, ok := ruleReason(node.rule); ok {
			reasonHint = "\n    - Attempted: " + reason
		}
		var hint string
		switch node.slot.Kind {
		case SlotVariable:
			hint = fmt.Sprintf(
				"  x Could not determine the type of %s\n"+
					"    - It is declared but never assigned a value with a known type.%s\n"+
					"    - Try assigning it a value (e.g. %s := 0;) or adding an explicit type.\n"+
					"    -> Add an explicit type: VARIABLE (RE) %s ;",
				node.slot, reasonHint, node.slot.Name, node.slot.Name,
			)
		case SlotFunctionReturn:
			hint = fmt.Sprintf(
				"  x Could not determine the return type of function '%s'\n"+
					"    - The function body doesn't assign a known-type value to '%s'.%s\n"+
					"    -> Add an explicit return type: FUNCTION (RE) %s ... ;",
				node.slot.Name, node.slot.Name, reasonHint, node.slot.Name,
			)
		case SlotArgument:
			hint = fmt.Sprintf(
				"  x Could not determine the type of argument '%s' of '%s'\n"+
					"    - No call site passes a value with a known type for this argument.%s\n"+
					"    -> Add an explicit type: %s (RE)",
				node.slot.Name, node.slot.Callable, reasonHint, node.slot.Name,
			)
		}
		for _, line := range strings.Split(hint, "\n") {
			fmt.Fprintf(&b, "\n│  %s", line)
		}
		b.WriteString("\n│")
	}

	b.WriteString("\n│  The type resolver builds a dependency graph and resolves\n")
	b.WriteString("│  types from leaves inward. If a slot has no path to a\n")
	b.WriteString("│  known type, or is part of a cycle, it cannot be resolved.\n")
	b.WriteString("│\n╰──────────────────────────────────────────────────────────")

	return newResolutionError(b.String())
}
