package resolve

import (
	"github.com/rosy-lang/rosyc/internal/ast"
	"github.com/rosy-lang/rosyc/internal/types"
)

type graphNode struct {
	slot      Slot
	rule      Rule
	dependsOn []Slot
	resolved  *types.Descriptor
}

// FunctionSignature is a resolved function's callable shape, consulted by
// both the type-checker and the emitter.
type FunctionSignature struct {
	Name       string
	ParamNames []string
	ParamTypes []types.Descriptor
	ReturnType types.Descriptor
}

// ProcedureSignature is a resolved procedure's callable shape.
type ProcedureSignature struct {
	Name       string
	ParamNames []string
	ParamTypes []types.Descriptor
}

// callableSlots records where a callable's type slots live in the graph, so
// call-site discovery and signature building can find them by name.
type callableSlots struct {
	returnSlot Slot // functions only
	paramSlots []Slot
	paramNames []string
}

// scopeContext tracks what's visible while walking one lexical scope: the
// enclosing scope path and the slot each visible name resolves to. Child
// scopes link to their parent rather than copying, which reads the same as
// the upstream resolver's cloned-map contexts but shares the immutable part.
type scopeContext struct {
	scopePath []string
	variables map[string]Slot
	parent    *scopeContext
}

func newScope(path []string) *scopeContext {
	return &scopeContext{scopePath: append([]string{}, path...), variables: map[string]Slot{}}
}

func (c *scopeContext) child(name string) *scopeContext {
	child := newScope(append(append([]string{}, c.scopePath...), name))
	child.parent = c
	return child
}

// lookup finds name in this scope or any enclosing scope.
func (c *scopeContext) lookup(name string) (Slot, bool) {
	for s := c; s != nil; s = s.parent {
		if slot, ok := s.variables[name]; ok {
			return slot, true
		}
	}
	return Slot{}, false
}

// declaredHere reports whether name was declared in this scope itself,
// ignoring enclosing scopes; redeclaration in the same scope is an error,
// shadowing an outer name is not.
func (c *scopeContext) declaredHere(name string) bool {
	_, ok := c.variables[name]
	return ok
}

// Resolver runs the three-phase type resolution pass over a parsed program.
type Resolver struct {
	nodes      map[string]*graphNode
	functions  map[string]*callableSlots
	procedures map[string]*callableSlots
}

func newResolver() *Resolver {
	return &Resolver{
		nodes:      map[string]*graphNode{},
		functions:  map[string]*callableSlots{},
		procedures: map[string]*callableSlots{},
	}
}

// insertSlot registers slot in the graph. An explicit annotation resolves
// the node immediately, which lets discovery's conflict checks evaluate
// recipes against annotated slots before the topological phase runs.
func (r *Resolver) insertSlot(slot Slot, explicit *types.Descriptor) {
	if _, exists := r.nodes[slot.Key()]; exists {
		return
	}
	node := &graphNode{slot: slot, rule: UnresolvedRule{}}
	if explicit != nil {
		t := *explicit
		node.rule = ExplicitRule{Type: t}
		node.resolved = &t
	}
	r.nodes[slot.Key()] = node
}

// resolvedType returns a slot's type if it has been resolved.
func (r *Resolver) resolvedType(slot Slot) (types.Descriptor, bool) {
	node, ok := r.nodes[slot.Key()]
	if !ok || node.resolved == nil {
		return types.Descriptor{}, false
	}
	return *node.resolved, true
}

func toDescriptor(t *ast.TypeExpr) *types.Descriptor {
	if t == nil {
		return nil
	}
	return &types.Descriptor{Base: types.Base(t.Base), Dims: append([]int{}, t.Dims...)}
}

// discoverSlots is Phase 1's first pass: register every declaration as a
// graph node, recursing into callable bodies with a nested scope. Explicit
// annotations produce Explicit rules; everything else starts Unresolved and
// is given a rule by the second pass (discoverInference) or reported.
func (r *Resolver) discoverSlots(stmts []ast.Statement, ctx *scopeContext) error {
	for _, stmt := range stmts {
		if err := r.registerDeclaration(stmt, ctx); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) registerDeclaration(stmt ast.Statement, ctx *scopeContext) error {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		for _, name := range s.Names {
			if ctx.declaredHere(name) {
				return newRedeclarationError(name, ctx.scopePath)
			}
			slot := Slot{Scope: ctx.scopePath, Kind: SlotVariable, Name: name}
			r.insertSlot(slot, toDescriptor(s.Type))
			ctx.variables[name] = slot
		}

	case *ast.FunctionDecl:
		inner := ctx.child(s.Name)
		slots := &callableSlots{}
		for _, p := range s.Params {
			argSlot := Slot{Scope: ctx.scopePath, Kind: SlotArgument, Callable: s.Name, Name: p.Name}
			r.insertSlot(argSlot, toDescriptor(p.Type))
			slots.paramSlots = append(slots.paramSlots, argSlot)
			slots.paramNames = append(slots.paramNames, p.Name)
			r.bindParam(inner, argSlot, p)
		}
		retSlot := Slot{Scope: ctx.scopePath, Kind: SlotFunctionReturn, Name: s.Name}
		r.insertSlot(retSlot, toDescriptor(s.ReturnType))
		slots.returnSlot = retSlot
		r.functions[s.Name] = slots

		if err := r.discoverSlots(s.Body, inner); err != nil {
			return err
		}

		// With no explicit return type, the return slot mirrors the
		// implicit return variable declared as the body's first statement.
		if s.ReturnType == nil {
			innerRet := Slot{Scope: inner.scopePath, Kind: SlotVariable, Name: s.Name}
			if _, ok := r.nodes[innerRet.Key()]; ok {
				node := r.nodes[retSlot.Key()]
				node.rule = MirrorRule{
					Source: innerRet,
					Reason: "inferred from assignment to return variable '" + s.Name + "'",
				}
				node.dependsOn = append(node.dependsOn, innerRet)
			}
		}

	case *ast.ProcedureDecl:
		inner := ctx.child(s.Name)
		slots := &callableSlots{}
		for _, p := range s.Params {
			argSlot := Slot{Scope: ctx.scopePath, Kind: SlotArgument, Callable: s.Name, Name: p.Name}
			r.insertSlot(argSlot, toDescriptor(p.Type))
			slots.paramSlots = append(slots.paramSlots, argSlot)
			slots.paramNames = append(slots.paramNames, p.Name)
			r.bindParam(inner, argSlot, p)
		}
		r.procedures[s.Name] = slots

		if err := r.discoverSlots(s.Body, inner); err != nil {
			return err
		}

	case *ast.IfStatement:
		if err := r.discoverSlots(s.Then, ctx); err != nil {
			return err
		}
		for _, ei := range s.ElseIfs {
			if err := r.discoverSlots(ei.Body, ctx); err != nil {
				return err
			}
		}
		return r.discoverSlots(s.Else, ctx)

	case *ast.LoopStatement:
		r.registerLoopIterator(s.Iterator, ctx)
		return r.discoverSlots(s.Body, ctx)

	case *ast.PLoopStatement:
		r.registerLoopIterator(s.Iterator, ctx)
		return r.discoverSlots(s.Body, ctx)

	case *ast.WhileStatement:
		return r.discoverSlots(s.Body, ctx)

	case *ast.FitStatement:
		return r.discoverSlots(s.Body, ctx)
	}
	return nil
}

// bindParam makes a callable's parameter visible inside its body: a
// variable slot in the inner scope, explicitly typed when annotated and
// mirroring the argument slot otherwise (so a call-site inference for the
// argument flows through to body uses of the name).
func (r *Resolver) bindParam(inner *scopeContext, argSlot Slot, p ast.Param) {
	varSlot := Slot{Scope: inner.scopePath, Kind: SlotVariable, Name: p.Name}
	r.insertSlot(varSlot, toDescriptor(p.Type))
	if p.Type == nil {
		node := r.nodes[varSlot.Key()]
		node.rule = MirrorRule{
			Source: argSlot,
			Reason: "takes the type of parameter '" + p.Name + "' of '" + argSlot.Callable + "'",
		}
		node.dependsOn = append(node.dependsOn, argSlot)
	}
	inner.variables[p.Name] = varSlot
}

// registerLoopIterator gives a LOOP/PLOOP iterator an implicit RE slot: SRC
// loop bounds are always RE expressions, and the iterator needs no VARIABLE
// statement of its own.
func (r *Resolver) registerLoopIterator(name string, ctx *scopeContext) {
	desc := types.Scalar(types.RE)
	slot := Slot{Scope: ctx.scopePath, Kind: SlotVariable, Name: name}
	r.insertSlot(slot, &desc)
	ctx.variables[name] = slot
}
