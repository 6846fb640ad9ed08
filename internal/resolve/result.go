package resolve

import (
	"github.com/rosy-lang/rosyc/internal/ast"
	"github.com/rosy-lang/rosyc/internal/types"
)

// SymbolTable answers "what type is this variable, in this scope" for the
// emitter, filled in by the application phase once every slot carries a
// resolved type.
type SymbolTable struct {
	variables map[string]types.Descriptor
}

// Lookup returns the resolved type of a variable declared in scope (or any
// enclosing scope reachable by walking scope shorter-and-shorter).
func (t *SymbolTable) Lookup(scope []string, name string) (types.Descriptor, bool) {
	for i := len(scope); i >= 0; i-- {
		key := Slot{Scope: scope[:i], Kind: SlotVariable, Name: name}.Key()
		if d, ok := t.variables[key]; ok {
			return d, true
		}
	}
	return types.Descriptor{}, false
}

// Result is everything the emitter needs from type resolution: every
// variable's type, and every function/procedure's callable signature.
type Result struct {
	Symbols    *SymbolTable
	Functions  map[string]*FunctionSignature
	Procedures map[string]*ProcedureSignature
}

// Resolve runs the three resolution phases over prog — Discovery (two AST
// walks: declarations, then assignments and call sites), topological
// resolution via Kahn's algorithm, and Application — followed by a final
// type-checking pass, producing the symbol table and callable signatures
// the emitter consults.
func Resolve(prog *ast.Program) (*Result, error) {
	r := newResolver()

	if err := r.discoverSlots(prog.Statements, newScope(nil)); err != nil {
		return nil, err
	}
	if err := r.discoverInference(prog.Statements, newScope(nil)); err != nil {
		return nil, err
	}
	if err := r.topologicalResolve(); err != nil {
		return nil, err
	}

	result := r.buildResult()

	checkScope := newScope(nil)
	r.rebuildChildVariables(checkScope, "")
	if err := r.typecheckProgram(prog.Statements, checkScope); err != nil {
		return nil, err
	}

	return result, nil
}

// buildResult is the application phase: every resolved slot is published
// into the symbol table or a callable signature. The AST itself stays
// untouched — types live beside it, keyed by slot identity, which is this
// implementation's rendering of "fill in the None type fields".
func (r *Resolver) buildResult() *Result {
	symbols := &SymbolTable{variables: map[string]types.Descriptor{}}
	for key, node := range r.nodes {
		if node.slot.Kind == SlotVariable && node.resolved != nil {
			symbols.variables[key] = *node.resolved
		}
	}

	functions := make(map[string]*FunctionSignature, len(r.functions))
	for name, slots := range r.functions {
		sig := &FunctionSignature{Name: name, ParamNames: append([]string{}, slots.paramNames...)}
		for _, ps := range slots.paramSlots {
			d, _ := r.resolvedType(ps)
			sig.ParamTypes = append(sig.ParamTypes, d)
		}
		sig.ReturnType, _ = r.resolvedType(slots.returnSlot)
		functions[name] = sig
	}

	procedures := make(map[string]*ProcedureSignature, len(r.procedures))
	for name, slots := range r.procedures {
		sig := &ProcedureSignature{Name: name, ParamNames: append([]string{}, slots.paramNames...)}
		for _, ps := range slots.paramSlots {
			d, _ := r.resolvedType(ps)
			sig.ParamTypes = append(sig.ParamTypes, d)
		}
		procedures[name] = sig
	}

	return &Result{Symbols: symbols, Functions: functions, Procedures: procedures}
}
