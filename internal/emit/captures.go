package emit

import (
	"sort"

	"github.com/rosy-lang/rosyc/internal/ast"
)

// captureRegistry maps a function/procedure name to the sorted list of
// enclosing-scope variable names it (transitively) captures.
type captureRegistry map[string][]string

// intrinsicCallees are the built-in conversion/SIN/LENGTH names that a
// CallExpr.Callee may hold without naming a user-declared callable: they
// never need a captured-variable entry in the registry.
var intrinsicCallees = map[string]bool{
	"ST": true, "RE": true, "LO": true, "CM": true, "VE": true, "DA": true, "CD": true,
	"LENGTH": true, "SIN": true,
}

// buildCaptureRegistry computes, for every function/procedure declared
// anywhere in the program (including nested ones), the exact transitive set
// of HigherScope names its body references, by computing each callable's
// direct captures first and then
// fixpoint-forwarding through call sites so that a callable calling another
// captured-needing callable also captures what its callee needs but cannot
// supply from its own locals.
func buildCaptureRegistry(stmts []ast.Statement) captureRegistry {
	registry := captureRegistry{}
	ownNames := map[string]map[string]bool{}
	callSites := map[string]map[string]bool{}

	collectDirectCaptures(stmts, newRootContext(), registry, ownNames, callSites)
	fixpointForwardCaptures(registry, ownNames, callSites)

	return registry
}

// collectDirectCaptures walks the program once, recording for every
// callable: its direct HigherScope references, the set of names it owns
// (its own parameters and locals), and the set of other callables it calls.
func collectDirectCaptures(stmts []ast.Statement, ctx *emitContext, registry captureRegistry, ownNames map[string]map[string]bool, callSites map[string]map[string]bool) map[string]bool {
	captured := map[string]bool{}

	var walkBody func(body []ast.Statement, bctx *emitContext) map[string]bool
	walkBody = func(body []ast.Statement, bctx *emitContext) map[string]bool {
		return collectDirectCaptures(body, bctx, registry, ownNames, callSites)
	}

	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.VarDecl:
			for _, n := range s.Names {
				ctx.declareLocal(n)
			}

		case *ast.AssignStatement:
			mergeInto(captured, exprCaptures(s.Target, ctx))
			mergeInto(captured, exprCaptures(s.Value, ctx))

		case *ast.WriteStatement:
			mergeInto(captured, exprCaptures(s.Channel, ctx))
			for _, a := range s.Args {
				mergeInto(captured, exprCaptures(a, ctx))
			}

		case *ast.ReadStatement:
			mergeInto(captured, exprCaptures(s.Channel, ctx))
			for _, t := range s.Targets {
				mergeInto(captured, exprCaptures(t, ctx))
			}

		case *ast.ExprStatement:
			mergeInto(captured, exprCaptures(s.Call, ctx))

		case *ast.DAInitStatement:
			mergeInto(captured, exprCaptures(s.Order, ctx))
			mergeInto(captured, exprCaptures(s.NumVars, ctx))

		case *ast.LoopStatement:
			mergeInto(captured, exprCaptures(s.Start, ctx))
			mergeInto(captured, exprCaptures(s.End, ctx))
			inner := ctx.clone()
			inner.declareLocal(s.Iterator)
			mergeInto(captured, walkBody(s.Body, inner))

		case *ast.WhileStatement:
			mergeInto(captured, exprCaptures(s.Condition, ctx))
			mergeInto(captured, walkBody(s.Body, ctx.clone()))

		case *ast.IfStatement:
			mergeInto(captured, exprCaptures(s.Condition, ctx))
			mergeInto(captured, walkBody(s.Then, ctx.clone()))
			for _, ei := range s.ElseIfs {
				mergeInto(captured, exprCaptures(ei.Condition, ctx))
				mergeInto(captured, walkBody(ei.Body, ctx.clone()))
			}
			mergeInto(captured, walkBody(s.Else, ctx.clone()))

		case *ast.PLoopStatement:
			mergeInto(captured, exprCaptures(s.Start, ctx))
			mergeInto(captured, exprCaptures(s.End, ctx))
			inner := ctx.clone()
			inner.declareLocal(s.Iterator)
			mergeInto(captured, walkBody(s.Body, inner))
			mergeInto(captured, exprCaptures(s.Output, ctx))

		case *ast.FitStatement:
			mergeInto(captured, exprCaptures(s.Eps, ctx))
			mergeInto(captured, exprCaptures(s.MaxIter, ctx))
			mergeInto(captured, exprCaptures(s.Algorithm, ctx))
			inner := ctx.clone()
			for _, name := range s.FitVariables {
				inner.declareLocal(name)
			}
			mergeInto(captured, walkBody(s.Body, inner))

		case *ast.FunctionDecl:
			own := map[string]bool{}
			for _, p := range s.Params {
				own[p.Name] = true
			}
			collectOwnLocals(s.Body, own)
			ownNames[s.Name] = own
			callSites[s.Name] = collectCallSites(s.Body)

			child := ctx.enterCallable(s.Name, s.Params)
			bodyCaptured := walkBody(s.Body, child)
			registry[s.Name] = sortedKeys(bodyCaptured)

		case *ast.ProcedureDecl:
			own := map[string]bool{}
			for _, p := range s.Params {
				own[p.Name] = true
			}
			collectOwnLocals(s.Body, own)
			ownNames[s.Name] = own
			callSites[s.Name] = collectCallSites(s.Body)

			child := ctx.enterCallable(s.Name, s.Params)
			bodyCaptured := walkBody(s.Body, child)
			registry[s.Name] = sortedKeys(bodyCaptured)
		}
	}
	return captured
}

// fixpointForwardCaptures propagates a callee's unmet captures up through
// its callers: if F calls G, and G captures a name F does not own, F must
// also capture that name (so it can forward it). Iterates to a fixpoint,
// bounded by the number of callables (no cycle can grow the sets forever
// since every registry is a subset of the whole program's variable names).
func fixpointForwardCaptures(registry captureRegistry, ownNames map[string]map[string]bool, callSites map[string]map[string]bool) {
	maxRounds := len(registry) + 1
	for round := 0; round < maxRounds; round++ {
		changed := false
		for caller, callees := range callSites {
			have := map[string]bool{}
			for _, n := range registry[caller] {
				have[n] = true
			}
			for callee := range callees {
				for _, needed := range registry[callee] {
					if ownNames[caller][needed] || have[needed] {
						continue
					}
					have[needed] = true
					changed = true
				}
			}
			if changed {
				registry[caller] = sortedKeys(have)
			}
		}
		if !changed {
			break
		}
	}
}

// collectOwnLocals gathers every name declared by VARIABLE statements
// anywhere in a callable's own body (recursing through control-flow
// constructs but not into nested function/procedure declarations, which own
// their names separately).
func collectOwnLocals(stmts []ast.Statement, into map[string]bool) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.VarDecl:
			for _, n := range s.Names {
				into[n] = true
			}
		case *ast.LoopStatement:
			into[s.Iterator] = true
			collectOwnLocals(s.Body, into)
		case *ast.PLoopStatement:
			into[s.Iterator] = true
			collectOwnLocals(s.Body, into)
		case *ast.WhileStatement:
			collectOwnLocals(s.Body, into)
		case *ast.IfStatement:
			collectOwnLocals(s.Then, into)
			for _, ei := range s.ElseIfs {
				collectOwnLocals(ei.Body, into)
			}
			collectOwnLocals(s.Else, into)
		case *ast.FitStatement:
			collectOwnLocals(s.Body, into)
		}
	}
}

// collectCallSites finds every user-callable name invoked anywhere in a
// body, as both statement-level procedure calls and expression-level
// function calls.
func collectCallSites(stmts []ast.Statement) map[string]bool {
	sites := map[string]bool{}
	var walkExpr func(e ast.Expression)
	walkExpr = func(e ast.Expression) {
		switch v := e.(type) {
		case *ast.CallExpr:
			if !intrinsicCallees[v.Callee] {
				sites[v.Callee] = true
			}
			for _, a := range v.Args {
				walkExpr(a)
			}
		case *ast.BinaryExpr:
			walkExpr(v.Left)
			walkExpr(v.Right)
		case *ast.UnaryExpr:
			walkExpr(v.Operand)
		case *ast.ConcatExpr:
			for _, t := range v.Terms {
				walkExpr(t)
			}
		case *ast.VariableRef:
			for _, idx := range v.Indices {
				walkExpr(idx)
			}
		}
	}

	var walk func(stmts []ast.Statement)
	walk = func(stmts []ast.Statement) {
		for _, stmt := range stmts {
			switch s := stmt.(type) {
			case *ast.AssignStatement:
				walkExpr(s.Target)
				walkExpr(s.Value)
			case *ast.WriteStatement:
				walkExpr(s.Channel)
				for _, a := range s.Args {
					walkExpr(a)
				}
			case *ast.ReadStatement:
				walkExpr(s.Channel)
				for _, t := range s.Targets {
					walkExpr(t)
				}
			case *ast.ExprStatement:
				walkExpr(s.Call)
			case *ast.DAInitStatement:
				walkExpr(s.Order)
				walkExpr(s.NumVars)
			case *ast.LoopStatement:
				walkExpr(s.Start)
				walkExpr(s.End)
				walk(s.Body)
			case *ast.PLoopStatement:
				walkExpr(s.Start)
				walkExpr(s.End)
				walk(s.Body)
				walkExpr(s.Output)
			case *ast.WhileStatement:
				walkExpr(s.Condition)
				walk(s.Body)
			case *ast.IfStatement:
				walkExpr(s.Condition)
				walk(s.Then)
				for _, ei := range s.ElseIfs {
					walkExpr(ei.Condition)
					walk(ei.Body)
				}
				walk(s.Else)
			case *ast.FitStatement:
				walkExpr(s.Eps)
				walkExpr(s.MaxIter)
				walkExpr(s.Algorithm)
				walk(s.Body)
			}
		}
	}
	walk(stmts)
	return sites
}

func exprCaptures(e ast.Expression, ctx *emitContext) map[string]bool {
	out := map[string]bool{}
	var walk func(e ast.Expression)
	walk = func(e ast.Expression) {
		switch v := e.(type) {
		case *ast.Identifier:
			if k, ok := ctx.kindOf(v.Name); ok && k == HigherScope {
				out[v.Name] = true
			}
		case *ast.VariableRef:
			if k, ok := ctx.kindOf(v.Name); ok && k == HigherScope {
				out[v.Name] = true
			}
			for _, idx := range v.Indices {
				walk(idx)
			}
		case *ast.UnaryExpr:
			walk(v.Operand)
		case *ast.BinaryExpr:
			walk(v.Left)
			walk(v.Right)
		case *ast.ConcatExpr:
			for _, t := range v.Terms {
				walk(t)
			}
		case *ast.CallExpr:
			for _, a := range v.Args {
				walk(a)
			}
		}
	}
	walk(e)
	return out
}

func mergeInto(dst, src map[string]bool) {
	for k := range src {
		dst[k] = true
	}
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
