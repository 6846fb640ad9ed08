package resolve

import (
	"fmt"

	"github.com/rosy-lang/rosyc/internal/ast"
)

// discoverInference is Phase 1's second pass: with every declaration
// registered, walk assignments and call sites to give Unresolved slots an
// InferredFrom rule. Assignments install a recipe mirroring the RHS
// expression's type structure; call sites wire an untyped parameter to the
// first call-site argument passed for it. Conflicting information — a new
// assignment whose evaluable type disagrees with the declared or previously
// inferred type — is a fatal type-conflict diagnostic.
func (r *Resolver) discoverInference(stmts []ast.Statement, ctx *scopeContext) error {
	for _, stmt := range stmts {
		if err := r.inferStatement(stmt, ctx); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) inferStatement(stmt ast.Statement, ctx *scopeContext) error {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		for _, name := range s.Names {
			ctx.variables[name] = Slot{Scope: ctx.scopePath, Kind: SlotVariable, Name: name}
		}

	case *ast.AssignStatement:
		return r.inferAssignment(s, ctx)

	case *ast.WriteStatement:
		if err := r.wireExprCallSites(s.Channel, ctx); err != nil {
			return err
		}
		for _, a := range s.Args {
			if err := r.wireExprCallSites(a, ctx); err != nil {
				return err
			}
		}

	case *ast.ExprStatement:
		return r.wireCallSite(s.Call, ctx)

	case *ast.DAInitStatement:
		if err := r.wireExprCallSites(s.Order, ctx); err != nil {
			return err
		}
		return r.wireExprCallSites(s.NumVars, ctx)

	case *ast.IfStatement:
		if err := r.wireExprCallSites(s.Condition, ctx); err != nil {
			return err
		}
		if err := r.discoverInference(s.Then, childOf(ctx)); err != nil {
			return err
		}
		for _, ei := range s.ElseIfs {
			if err := r.wireExprCallSites(ei.Condition, ctx); err != nil {
				return err
			}
			if err := r.discoverInference(ei.Body, childOf(ctx)); err != nil {
				return err
			}
		}
		return r.discoverInference(s.Else, childOf(ctx))

	case *ast.LoopStatement:
		if err := r.wireExprCallSites(s.Start, ctx); err != nil {
			return err
		}
		if err := r.wireExprCallSites(s.End, ctx); err != nil {
			return err
		}
		inner := childOf(ctx)
		inner.variables[s.Iterator] = Slot{Scope: ctx.scopePath, Kind: SlotVariable, Name: s.Iterator}
		return r.discoverInference(s.Body, inner)

	case *ast.PLoopStatement:
		if err := r.wireExprCallSites(s.Start, ctx); err != nil {
			return err
		}
		if err := r.wireExprCallSites(s.End, ctx); err != nil {
			return err
		}
		inner := childOf(ctx)
		inner.variables[s.Iterator] = Slot{Scope: ctx.scopePath, Kind: SlotVariable, Name: s.Iterator}
		return r.discoverInference(s.Body, inner)

	case *ast.WhileStatement:
		if err := r.wireExprCallSites(s.Condition, ctx); err != nil {
			return err
		}
		return r.discoverInference(s.Body, childOf(ctx))

	case *ast.FitStatement:
		for _, e := range []ast.Expression{s.Eps, s.MaxIter, s.Algorithm} {
			if err := r.wireExprCallSites(e, ctx); err != nil {
				return err
			}
		}
		return r.discoverInference(s.Body, childOf(ctx))

	case *ast.FunctionDecl:
		inner := ctx.child(s.Name)
		for _, p := range s.Params {
			inner.variables[p.Name] = Slot{Scope: inner.scopePath, Kind: SlotVariable, Name: p.Name}
		}
		return r.discoverInference(s.Body, inner)

	case *ast.ProcedureDecl:
		inner := ctx.child(s.Name)
		for _, p := range s.Params {
			inner.variables[p.Name] = Slot{Scope: inner.scopePath, Kind: SlotVariable, Name: p.Name}
		}
		return r.discoverInference(s.Body, inner)
	}
	return nil
}

// childOf opens a same-path nested block scope (if/loop body): names
// declared inside stay inside, names from the enclosing scope stay visible.
func childOf(ctx *scopeContext) *scopeContext {
	child := newScope(ctx.scopePath)
	child.parent = ctx
	return child
}

func (r *Resolver) inferAssignment(s *ast.AssignStatement, ctx *scopeContext) error {
	if err := r.wireExprCallSites(s.Value, ctx); err != nil {
		return err
	}
	for _, idx := range s.Target.Indices {
		if err := r.wireExprCallSites(idx, ctx); err != nil {
			return err
		}
	}

	slot, ok := ctx.lookup(s.Target.Name)
	if !ok {
		// Undeclared target; the type-check phase reports it with position.
		return nil
	}
	node, ok := r.nodes[slot.Key()]
	if !ok {
		return nil
	}

	// Indexed assignment writes an element, not the variable itself; it
	// carries no information about the declared array type.
	if len(s.Target.Indices) > 0 {
		return nil
	}

	recipe := r.buildRecipe(s.Value, ctx)

	if node.resolved != nil {
		// Already explicitly typed: a new assignment must agree when its
		// recipe is evaluable now (it may depend on not-yet-resolved slots,
		// in which case the final type check catches any mismatch).
		if assigned, err := r.evaluateRecipe(recipe); err == nil && !assigned.Equal(*node.resolved) {
			return newDeclaredConflictError(s.Target.Name, *node.resolved, assigned)
		}
		return nil
	}

	if prev, ok := node.rule.(InferredRule); ok {
		prevType, prevErr := r.evaluateRecipe(prev.Recipe)
		newType, newErr := r.evaluateRecipe(recipe)
		if prevErr == nil && newErr == nil && !prevType.Equal(newType) {
			return newInferredConflictError(s.Target.Name, prevType, newType)
		}
	}

	node.rule = InferredRule{Recipe: recipe, Reason: "inferred from assignment"}
	node.dependsOn = recipeSlots(recipe)
	return nil
}

// wireCallSite connects an untyped parameter slot of the callee to the
// first call-site argument passed for it: the parameter's rule becomes an
// InferredFrom over the argument expression's recipe. Later call sites
// leave an already-wired parameter alone. Argument expressions are walked
// too, so nested calls wire their own callees.
func (r *Resolver) wireCallSite(call *ast.CallExpr, ctx *scopeContext) error {
	for _, a := range call.Args {
		if err := r.wireExprCallSites(a, ctx); err != nil {
			return err
		}
	}

	slots, ok := r.functions[call.Callee]
	if !ok {
		slots, ok = r.procedures[call.Callee]
	}
	if !ok {
		return nil // intrinsic or undeclared; type check reports the latter
	}

	for i, argExpr := range call.Args {
		if i >= len(slots.paramSlots) {
			break // arity mismatch, reported by the type-check phase
		}
		paramSlot := slots.paramSlots[i]
		node, ok := r.nodes[paramSlot.Key()]
		if !ok || node.resolved != nil {
			continue
		}
		if _, unresolved := node.rule.(UnresolvedRule); !unresolved {
			continue
		}
		recipe := r.buildRecipe(argExpr, ctx)
		node.rule = InferredRule{
			Recipe: recipe,
			Reason: fmt.Sprintf("inferred from argument %d at call site of '%s'", i+1, call.Callee),
		}
		node.dependsOn = recipeSlots(recipe)
	}
	return nil
}

// wireExprCallSites walks an expression tree wiring every user-callable
// call site found inside it.
func (r *Resolver) wireExprCallSites(expr ast.Expression, ctx *scopeContext) error {
	switch e := expr.(type) {
	case *ast.CallExpr:
		return r.wireCallSite(e, ctx)
	case *ast.UnaryExpr:
		return r.wireExprCallSites(e.Operand, ctx)
	case *ast.BinaryExpr:
		if err := r.wireExprCallSites(e.Left, ctx); err != nil {
			return err
		}
		return r.wireExprCallSites(e.Right, ctx)
	case *ast.ConcatExpr:
		for _, t := range e.Terms {
			if err := r.wireExprCallSites(t, ctx); err != nil {
				return err
			}
		}
	case *ast.VariableRef:
		for _, idx := range e.Indices {
			if err := r.wireExprCallSites(idx, ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// recipeSlots collects every slot identity a recipe reads, forming the
// dependency edges of the graph node the recipe is installed on.
func recipeSlots(recipe Recipe) []Slot {
	var out []Slot
	var walk func(rec Recipe)
	walk = func(rec Recipe) {
		switch v := rec.(type) {
		case VariableRecipe:
			out = append(out, v.Slot)
		case FunctionCallRecipe:
			out = append(out, v.ReturnSlot)
		case IndexRecipe:
			walk(v.Inner)
		case BinaryOpRecipe:
			walk(v.Left)
			walk(v.Right)
		case ComparisonRecipe:
			walk(v.Left)
			walk(v.Right)
		case ConcatRecipe:
			for _, t := range v.Terms {
				walk(t)
			}
		case SinRecipe:
			walk(v.Inner)
		case LengthRecipe:
			walk(v.Inner)
		}
	}
	walk(recipe)
	return out
}
