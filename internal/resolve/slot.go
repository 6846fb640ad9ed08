// Package resolve implements the type resolver: a three-phase pass between
// parsing and emission that assigns a types.Descriptor to every variable,
// function return, and procedure/function argument — including the ones the
// source leaves unannotated — then type-checks every expression in the
// program against internal/types' operator tables.
//
// Phase 1 (Discovery) walks the AST twice: the first walk registers every
// declaration as a dependency-graph node, the second walks assignments and
// call sites installing inference rules on the unannotated nodes. Phase 2
// resolves the graph leaves-inward via Kahn's algorithm, reporting cycles
// and dead ends together in one boxed diagnostic. Phase 3 (Application)
// publishes every resolved slot into the symbol table and callable
// signatures the emitter consults.
package resolve

import (
	"fmt"
	"strings"
)

// SlotKind distinguishes the three kinds of type slot the resolver tracks.
type SlotKind int

const (
	SlotVariable SlotKind = iota
	SlotFunctionReturn
	SlotArgument
)

// Slot uniquely identifies one type slot in the dependency graph: a
// variable declaration, a function's return type, or one formal argument of
// a function or procedure. Scope is the enclosing function/procedure name
// chain, empty at the top level.
type Slot struct {
	Scope    []string
	Kind     SlotKind
	Callable string // only set for SlotArgument: the owning function/procedure name
	Name     string
}

// Key returns a value usable as a map key; Slot itself is not comparable
// because Scope is a slice.
func (s Slot) Key() string {
	return strings.Join(s.Scope, ">") + "\x00" + fmt.Sprint(s.Kind) + "\x00" + s.Callable + "\x00" + s.Name
}

func (s Slot) String() string {
	scope := "global scope"
	if len(s.Scope) > 0 {
		scope = "'" + strings.Join(s.Scope, " > ") + "'"
	}
	switch s.Kind {
	case SlotVariable:
		if len(s.Scope) == 0 {
			return fmt.Sprintf("variable '%s'", s.Name)
		}
		return fmt.Sprintf("variable '%s' (in %s)", s.Name, scope)
	case SlotFunctionReturn:
		if len(s.Scope) == 0 {
			return fmt.Sprintf("return type of function '%s'", s.Name)
		}
		return fmt.Sprintf("return type of function '%s' (in %s)", s.Name, scope)
	case SlotArgument:
		if len(s.Scope) == 0 {
			return fmt.Sprintf("argument '%s' of '%s'", s.Name, s.Callable)
		}
		return fmt.Sprintf("argument '%s' of '%s' (in %s)", s.Name, s.Callable, scope)
	default:
		return fmt.Sprintf("slot %s/%d/%s/%s", strings.Join(s.Scope, ">"), s.Kind, s.Callable, s.Name)
	}
}
