package resolve

import (
	"fmt"

	"github.com/rosy-lang/rosyc/internal/ast"
	"github.com/rosy-lang/rosyc/internal/errors"
	"github.com/rosy-lang/rosyc/internal/types"
)

// typecheckProgram walks every statement, evaluating the recipe built for
// each expression so that operator misuse (an add/sub/mult/div/extract/
// concat/SIN/LENGTH call with no table entry for its operand kinds) is
// reported before emission rather than producing nonsense target code.
// Statement failures accumulate: one pass reports every independently
// broken statement in the block.
func (r *Resolver) typecheckProgram(stmts []ast.Statement, ctx *scopeContext) error {
	var diags errors.Diagnostics
	for _, stmt := range stmts {
		diags.Add(r.typecheckStatement(stmt, ctx))
	}
	return diags.Err()
}

func (r *Resolver) typecheckStatement(stmt ast.Statement, ctx *scopeContext) error {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		return nil

	case *ast.AssignStatement:
		return errors.Combine(r.checkExpr(s.Target, ctx), r.checkExpr(s.Value, ctx))

	case *ast.WriteStatement:
		var diags errors.Diagnostics
		diags.Add(r.checkExpr(s.Channel, ctx))
		for _, a := range s.Args {
			diags.Add(r.checkExpr(a, ctx))
		}
		return diags.Err()

	case *ast.ReadStatement:
		var diags errors.Diagnostics
		diags.Add(r.checkExpr(s.Channel, ctx))
		for _, t := range s.Targets {
			diags.Add(r.checkExpr(t, ctx))
		}
		return diags.Err()

	case *ast.ExprStatement:
		// A statement-level call may name a procedure, which has no value
		// and therefore no recipe; its arguments are checked directly.
		if _, isProc := r.procedures[s.Call.Callee]; isProc {
			return r.checkCallSite(s.Call, ctx)
		}
		return r.checkExpr(s.Call, ctx)

	case *ast.LoopStatement:
		return errors.Combine(
			r.checkExprIs(s.Start, ctx, types.RE, "LOOP start bound"),
			r.checkExprIs(s.End, ctx, types.RE, "LOOP end bound"),
			r.typecheckProgram(s.Body, ctx),
		)

	case *ast.WhileStatement:
		return errors.Combine(
			r.checkExprIs(s.Condition, ctx, types.LO, "WHILE condition"),
			r.typecheckProgram(s.Body, ctx),
		)

	case *ast.IfStatement:
		var diags errors.Diagnostics
		diags.Add(r.checkExprIs(s.Condition, ctx, types.LO, "IF condition"))
		diags.Add(r.typecheckProgram(s.Then, ctx))
		for _, ei := range s.ElseIfs {
			diags.Add(r.checkExprIs(ei.Condition, ctx, types.LO, "ELSEIF condition"))
			diags.Add(r.typecheckProgram(ei.Body, ctx))
		}
		diags.Add(r.typecheckProgram(s.Else, ctx))
		return diags.Err()

	case *ast.PLoopStatement:
		return errors.Combine(
			r.checkExprIs(s.Start, ctx, types.RE, "PLOOP start bound"),
			r.checkExprIs(s.End, ctx, types.RE, "PLOOP end bound"),
			r.typecheckProgram(s.Body, ctx),
			r.checkExpr(s.Output, ctx),
		)

	case *ast.FunctionDecl:
		inner := ctx.child(s.Name)
		r.rebuildChildVariables(inner, s.Name)
		return r.typecheckProgram(s.Body, inner)

	case *ast.ProcedureDecl:
		inner := ctx.child(s.Name)
		r.rebuildChildVariables(inner, s.Name)
		return r.typecheckProgram(s.Body, inner)

	case *ast.FitStatement:
		return errors.Combine(
			r.checkExprIs(s.Eps, ctx, types.RE, "FIT tolerance"),
			r.checkExprIs(s.MaxIter, ctx, types.RE, "FIT iteration limit"),
			r.checkExprIs(s.Algorithm, ctx, types.RE, "FIT algorithm number"),
			r.typecheckProgram(s.Body, ctx),
		)

	case *ast.DAInitStatement:
		return errors.Combine(
			r.checkExprIs(s.Order, ctx, types.RE, "DAINI order"),
			r.checkExprIs(s.NumVars, ctx, types.RE, "DAINI variable count"),
		)

	case *ast.BreakStatement:
		return nil

	default:
		return nil
	}
}

// rebuildChildVariables repopulates a freshly-created child scope's
// variable map by scanning nodes for slots that belong to it: discovery and
// typechecking walk the AST independently, so the scope trees must agree on
// shape, not share state.
func (r *Resolver) rebuildChildVariables(ctx *scopeContext, _ string) {
	for _, node := range r.nodes {
		if node.slot.Kind != SlotVariable {
			continue
		}
		if len(node.slot.Scope) != len(ctx.scopePath) {
			continue
		}
		match := true
		for i, seg := range node.slot.Scope {
			if seg != ctx.scopePath[i] {
				match = false
				break
			}
		}
		if match {
			ctx.variables[node.slot.Name] = node.slot
		}
	}
}

// checkExprIs evaluates an expression's type and requires a specific scalar
// base kind, used for the positions the language fixes: IF/ELSEIF/WHILE
// conditions are LO, LOOP/PLOOP bounds and FIT parameters are RE.
func (r *Resolver) checkExprIs(expr ast.Expression, ctx *scopeContext, want types.Base, what string) error {
	recipe := r.buildRecipe(expr, ctx)
	d, err := r.evaluateRecipe(recipe)
	if err != nil {
		return err
	}
	if d.Base != want || d.IsArray() {
		return newResolutionError(fmt.Sprintf("%s must be %s, got %s", what, want, d))
	}
	return r.checkExprCallSites(expr, ctx)
}

func (r *Resolver) checkExpr(expr ast.Expression, ctx *scopeContext) error {
	recipe := r.buildRecipe(expr, ctx)
	if _, err := r.evaluateRecipe(recipe); err != nil {
		return err
	}
	return r.checkExprCallSites(expr, ctx)
}

// checkExprCallSites verifies every user-callable call site inside an
// expression: argument count must equal the declared parameter count, and
// each argument's type must equal the resolved parameter type.
func (r *Resolver) checkExprCallSites(expr ast.Expression, ctx *scopeContext) error {
	switch e := expr.(type) {
	case *ast.CallExpr:
		return r.checkCallSite(e, ctx)
	case *ast.UnaryExpr:
		return r.checkExprCallSites(e.Operand, ctx)
	case *ast.BinaryExpr:
		if err := r.checkExprCallSites(e.Left, ctx); err != nil {
			return err
		}
		return r.checkExprCallSites(e.Right, ctx)
	case *ast.ConcatExpr:
		for _, t := range e.Terms {
			if err := r.checkExprCallSites(t, ctx); err != nil {
				return err
			}
		}
	case *ast.VariableRef:
		for _, idx := range e.Indices {
			if err := r.checkExprCallSites(idx, ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Resolver) checkCallSite(call *ast.CallExpr, ctx *scopeContext) error {
	slots, ok := r.functions[call.Callee]
	if !ok {
		slots, ok = r.procedures[call.Callee]
	}
	if !ok {
		return nil // intrinsics are shape-checked by their recipes
	}

	if len(call.Args) != len(slots.paramSlots) {
		return newArityError(call.Callee, len(slots.paramSlots), len(call.Args))
	}
	var diags errors.Diagnostics
	for i, argExpr := range call.Args {
		diags.Add(r.checkExprCallSites(argExpr, ctx))
		argType, err := r.evaluateRecipe(r.buildRecipe(argExpr, ctx))
		if err != nil {
			diags.Add(err)
			continue
		}
		paramType, resolved := r.resolvedType(slots.paramSlots[i])
		if !resolved {
			continue // already reported by the resolution phase
		}
		if !argType.Equal(paramType) {
			diags.Add(newArgumentTypeError(call.Callee, slots.paramNames[i], paramType, argType))
		}
	}
	return diags.Err()
}
