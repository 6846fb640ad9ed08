// Package emit implements the code generator: a post-order walk of the
// resolved AST that produces TGT (Rust-like) source text plus, for every
// function and procedure declaration, the set of captured enclosing-scope
// variables it needs forwarded as extra by-reference parameters.
package emit

import "github.com/rosy-lang/rosyc/internal/ast"

// ScopeKind classifies a name visible in an emission context: HigherScope
// names are the ones a callable must capture.
type ScopeKind int

const (
	Local ScopeKind = iota
	Argument
	HigherScope
)

// emitContext is value-copied on every scope entry (if/loop/while/ploop/fit
// bodies, and nested function/procedure bodies): a child scope never
// mutates its parent's map.
type emitContext struct {
	scopePath []string
	variables map[string]ScopeKind
	inLoop    bool
}

func newRootContext() *emitContext {
	return &emitContext{variables: map[string]ScopeKind{}}
}

func (c *emitContext) clone() *emitContext {
	vars := make(map[string]ScopeKind, len(c.variables))
	for k, v := range c.variables {
		vars[k] = v
	}
	return &emitContext{
		scopePath: append([]string{}, c.scopePath...),
		variables: vars,
		inLoop:    c.inLoop,
	}
}

// enterCallable builds the child context for a nested function or procedure
// body named name: every name visible in the parent becomes HigherScope
// (captured if referenced), then the callable's own parameters are bound as
// Argument.
func (c *emitContext) enterCallable(name string, params []ast.Param) *emitContext {
	child := &emitContext{
		scopePath: append(append([]string{}, c.scopePath...), name),
		variables: make(map[string]ScopeKind, len(c.variables)+len(params)),
	}
	for k := range c.variables {
		child.variables[k] = HigherScope
	}
	for _, p := range params {
		child.variables[p.Name] = Argument
	}
	return child
}

func (c *emitContext) declareLocal(name string) { c.variables[name] = Local }

func (c *emitContext) kindOf(name string) (ScopeKind, bool) {
	k, ok := c.variables[name]
	return k, ok
}
