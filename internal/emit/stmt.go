package emit

import (
	"fmt"
	"strings"

	"github.com/rosy-lang/rosyc/internal/ast"
	"github.com/rosy-lang/rosyc/internal/errors"
	"github.com/rosy-lang/rosyc/internal/types"
)

// emitBlock emits a sequence of statements, one Rust statement (or block)
// per line, each prefixed with indent as given (callers pass the deeper
// indent of a nested body). A failing statement is
// recorded and the walk continues, so a block surfaces every independently
// broken statement in one report.
func (em *Emitter) emitBlock(stmts []ast.Statement, scope []string, ctx *emitContext, indent string) (string, error) {
	var b strings.Builder
	var diags errors.Diagnostics
	for _, stmt := range stmts {
		text, err := em.emitStatement(stmt, scope, ctx, indent)
		if err != nil {
			diags.Add(err)
			continue
		}
		if text == "" {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	if err := diags.Err(); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (em *Emitter) emitStatement(stmt ast.Statement, scope []string, ctx *emitContext, indent string) (string, error) {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		return em.emitVarDecl(s, scope, ctx, indent)

	case *ast.AssignStatement:
		return em.emitAssign(s, scope, ctx, indent)

	case *ast.WriteStatement:
		return em.emitWrite(s, scope, ctx, indent)

	case *ast.ReadStatement:
		return em.emitRead(s, scope, ctx, indent)

	case *ast.ExprStatement:
		text, err := em.emitCallExpr(s.Call, scope, ctx)
		if err != nil {
			return "", err
		}
		return indent + text + ";", nil

	case *ast.LoopStatement:
		return em.emitLoop(s, scope, ctx, indent)

	case *ast.WhileStatement:
		return em.emitWhile(s, scope, ctx, indent)

	case *ast.IfStatement:
		return em.emitIf(s, scope, ctx, indent)

	case *ast.PLoopStatement:
		return em.emitPLoop(s, scope, ctx, indent)

	case *ast.FitStatement:
		return em.emitFit(s, scope, ctx, indent)

	case *ast.DAInitStatement:
		order, err := em.emitExpr(s.Order, scope, ctx)
		if err != nil {
			return "", err
		}
		numVars, err := em.emitExpr(s.NumVars, scope, ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%srosy_runtime::taylor::init_taylor((%s) as u32, (%s) as usize).expect(\"init_taylor\");", indent, order, numVars), nil

	case *ast.BreakStatement:
		if !ctx.inLoop {
			return "", fmt.Errorf("emit: BREAK outside of a loop")
		}
		return indent + "break;", nil

	case *ast.FunctionDecl:
		return em.emitFunctionDecl(s, scope, ctx, indent)

	case *ast.ProcedureDecl:
		return em.emitProcedureDecl(s, scope, ctx, indent)

	default:
		return "", fmt.Errorf("emit: unhandled statement variant %T", stmt)
	}
}

func (em *Emitter) emitVarDecl(s *ast.VarDecl, scope []string, ctx *emitContext, indent string) (string, error) {
	var b strings.Builder
	var diags errors.Diagnostics
	for i, name := range s.Names {
		if i > 0 {
			b.WriteString("\n")
		}
		d, ok := em.lookupType(scope, name)
		if !ok {
			diags.Add(fmt.Errorf("emit: no resolved type for variable %s", name))
			continue
		}
		fmt.Fprintf(&b, "%slet mut %s: %s = %s;", indent, name, rustType(d), defaultValue(d))
		ctx.declareLocal(name)
	}
	if err := diags.Err(); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (em *Emitter) emitAssign(s *ast.AssignStatement, scope []string, ctx *emitContext, indent string) (string, error) {
	value, valueErr := em.emitExpr(s.Value, scope, ctx)
	value = fmt.Sprintf("(%s).to_owned()", value)

	kind, _ := ctx.kindOf(s.Target.Name)
	if len(s.Target.Indices) == 0 {
		if valueErr != nil {
			return "", valueErr
		}
		lhs := s.Target.Name
		if kind != Local {
			lhs = "*" + s.Target.Name
		}
		return fmt.Sprintf("%s%s = %s;", indent, lhs, value), nil
	}

	lhs, lhsErr := em.readVariableRef(s.Target, scope, ctx)
	if err := errors.Combine(lhsErr, valueErr); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%s = %s;", indent, lhs, value), nil
}

func (em *Emitter) emitWrite(s *ast.WriteStatement, scope []string, ctx *emitContext, indent string) (string, error) {
	if len(s.Args) == 0 {
		return indent + "println!();", nil
	}
	parts := make([]string, len(s.Args))
	var diags errors.Diagnostics
	for i, a := range s.Args {
		text, err := em.emitExpr(a, scope, ctx)
		diags.Add(err)
		parts[i] = fmt.Sprintf("(&%s).rosy_display()", text)
	}
	if err := diags.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf("%sprintln!(\"{}\", vec![%s].join(\"\"));", indent, strings.Join(parts, ", ")), nil
}

func (em *Emitter) emitRead(s *ast.ReadStatement, scope []string, ctx *emitContext, indent string) (string, error) {
	var b strings.Builder
	var diags errors.Diagnostics
	for i, target := range s.Targets {
		if i > 0 {
			b.WriteString("\n")
		}
		d, ok := em.lookupType(scope, target.Name)
		if !ok {
			diags.Add(fmt.Errorf("emit: no resolved type for READ target %s", target.Name))
			continue
		}
		switch d.Base {
		case types.RE, types.ST, types.LO:
		default:
			diags.Add(fmt.Errorf("emit: READ target %s has kind %s, which cannot be parsed from a line of input", target.Name, d.Base))
			continue
		}
		lhs, err := em.readVariableRef(target, scope, ctx)
		if err != nil {
			diags.Add(err)
			continue
		}
		fmt.Fprintf(&b, "%s%s = rosy_runtime::from_stdin::<%s>();", indent, lhs, rustType(d))
	}
	if err := diags.Err(); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (em *Emitter) emitIf(s *ast.IfStatement, scope []string, ctx *emitContext, indent string) (string, error) {
	var diags errors.Diagnostics
	cond, err := em.emitExpr(s.Condition, scope, ctx)
	diags.Add(err)
	body, err := em.emitBlock(s.Then, scope, ctx.clone(), indent+"\t")
	diags.Add(err)

	var b strings.Builder
	fmt.Fprintf(&b, "%sif %s {\n%s%s}", indent, cond, body, indent)

	for _, ei := range s.ElseIfs {
		eiCond, err := em.emitExpr(ei.Condition, scope, ctx)
		diags.Add(err)
		eiBody, err := em.emitBlock(ei.Body, scope, ctx.clone(), indent+"\t")
		diags.Add(err)
		fmt.Fprintf(&b, " else if %s {\n%s%s}", eiCond, eiBody, indent)
	}

	if len(s.Else) > 0 {
		elseBody, err := em.emitBlock(s.Else, scope, ctx.clone(), indent+"\t")
		diags.Add(err)
		fmt.Fprintf(&b, " else {\n%s%s}", elseBody, indent)
	}
	if err := diags.Err(); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (em *Emitter) emitLoop(s *ast.LoopStatement, scope []string, ctx *emitContext, indent string) (string, error) {
	start, serr := em.emitExpr(s.Start, scope, ctx)
	end, eerr := em.emitExpr(s.End, scope, ctx)
	if err := errors.Combine(serr, eerr); err != nil {
		return "", err
	}

	inner := ctx.clone()
	inner.declareLocal(s.Iterator)
	inner.inLoop = true
	body, err := em.emitBlock(s.Body, scope, inner, indent+"\t\t")
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"%sfor __%s_raw in ((%s) as i64)..=((%s) as i64) {\n%s\t\tlet mut %s: f64 = __%s_raw as f64;\n%s%s}",
		indent, s.Iterator, start, end, indent, s.Iterator, s.Iterator, body, indent,
	), nil
}

func (em *Emitter) emitWhile(s *ast.WhileStatement, scope []string, ctx *emitContext, indent string) (string, error) {
	cond, err := em.emitExpr(s.Condition, scope, ctx)
	if err != nil {
		return "", err
	}
	inner := ctx.clone()
	inner.inLoop = true
	body, err := em.emitBlock(s.Body, scope, inner, indent+"\t")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%swhile %s {\n%s%s}", indent, cond, body, indent), nil
}

// emitPLoop lowers a parallel loop: the iterator is
// the local worker's group index plus one, the body runs once locally, and
// the runtime's coordinate routine broadcasts/collects results into the
// declared output array across the worker's communication group.
func (em *Emitter) emitPLoop(s *ast.PLoopStatement, scope []string, ctx *emitContext, indent string) (string, error) {
	start, serr := em.emitExpr(s.Start, scope, ctx)
	end, eerr := em.emitExpr(s.End, scope, ctx)
	if err := errors.Combine(serr, eerr); err != nil {
		return "", err
	}

	rule := 1
	if s.CommutivityRule != nil {
		rule = *s.CommutivityRule
	}

	inner := ctx.clone()
	inner.declareLocal(s.Iterator)
	body, err := em.emitBlock(s.Body, scope, inner, indent+"\t")
	if err != nil {
		return "", err
	}

	output, err := em.readVariableRef(s.Output, scope, ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s{\n", indent)
	fmt.Fprintf(&b, "%s\tlet __num_groups: u64 = (((%s) - (%s)) as i64 + 1) as u64;\n", indent, end, start)
	fmt.Fprintf(&b, "%s\tlet mut %s: f64 = (rosy_runtime::mpi::context().group_index(__num_groups) as f64) + 1.0_f64;\n", indent, s.Iterator)
	b.WriteString(body)
	fmt.Fprintf(&b, "%s\trosy_runtime::mpi::context().coordinate(&mut %s, %d, __num_groups).expect(\"ploop coordinate\");\n", indent, output, rule)
	fmt.Fprintf(&b, "%s}", indent)
	return b.String(), nil
}

// emitFit lowers a FIT block: knobs are packed into a
// mutable vector, the runtime's optimizer drives a closure that unpacks
// the vector into the named variables, runs the body, and repacks the
// named objectives as the closure's return value.
func (em *Emitter) emitFit(s *ast.FitStatement, scope []string, ctx *emitContext, indent string) (string, error) {
	var nameDiags errors.Diagnostics
	for _, name := range s.FitVariables {
		if d, ok := em.lookupType(scope, name); !ok || d.Base != types.RE {
			nameDiags.Add(fmt.Errorf("emit: FIT knob %s must be a declared RE variable", name))
		}
	}
	for _, name := range s.Objectives {
		if d, ok := em.lookupType(scope, name); !ok || d.Base != types.RE {
			nameDiags.Add(fmt.Errorf("emit: FIT objective %s must be a declared RE variable", name))
		}
	}
	if err := nameDiags.Err(); err != nil {
		return "", err
	}

	eps, epsErr := em.emitExpr(s.Eps, scope, ctx)
	maxIter, maxErr := em.emitExpr(s.MaxIter, scope, ctx)
	algo, algoErr := em.emitExpr(s.Algorithm, scope, ctx)
	if err := errors.Combine(epsErr, maxErr, algoErr); err != nil {
		return "", err
	}

	inner := ctx.clone()
	for _, name := range s.FitVariables {
		inner.declareLocal(name)
	}
	body, err := em.emitBlock(s.Body, scope, inner, indent+"\t")
	if err != nil {
		return "", err
	}

	knobReads := make([]string, len(s.FitVariables))
	for i, name := range s.FitVariables {
		knobReads[i] = em.readName(name, ctx)
	}
	objectiveReads := make([]string, len(s.Objectives))
	for i, name := range s.Objectives {
		objectiveReads[i] = em.readName(name, inner)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s{\n", indent)
	fmt.Fprintf(&b, "%s\tlet mut __knobs: Vec<f64> = vec![%s];\n", indent, strings.Join(knobReads, ", "))
	fmt.Fprintf(&b, "%s\trosy_runtime::optimizer::run_fit(&mut __knobs, %s, (%s) as u64, (%s) as u8, |__knobs: &mut Vec<f64>| -> Vec<f64> {\n",
		indent, eps, maxIter, algo)
	for i, name := range s.FitVariables {
		fmt.Fprintf(&b, "%s\t\tlet mut %s: f64 = __knobs[%d];\n", indent, name, i)
	}
	b.WriteString(body)
	fmt.Fprintf(&b, "%s\t\tvec![%s]\n", indent, strings.Join(objectiveReads, ", "))
	fmt.Fprintf(&b, "%s\t}).expect(\"run_fit\");\n", indent)
	// The optimum lands in the knob vector; write it back into the named
	// variables so the surrounding program sees the fitted values.
	for i, name := range s.FitVariables {
		lhs := name
		if kind, _ := ctx.kindOf(name); kind != Local {
			lhs = "*" + name
		}
		fmt.Fprintf(&b, "%s\t%s = __knobs[%d];\n", indent, lhs, i)
	}
	fmt.Fprintf(&b, "%s}", indent)
	return b.String(), nil
}
