package emit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rosy-lang/rosyc/internal/ast"
	"github.com/rosy-lang/rosyc/internal/errors"
	"github.com/rosy-lang/rosyc/internal/lexer"
	"github.com/rosy-lang/rosyc/internal/types"
)

// binOpMethod maps a source binary operator to the runtime's trait-method
// name, grounded on rosy_lib/operators/{add,sub,mult,div,extract}.rs's
// RosyAdd/RosySub/RosyMult/RosyDiv/RosyExtract traits.
func binOpMethod(op lexer.TokenType) (string, bool) {
	switch op {
	case lexer.PLUS:
		return "rosy_add", true
	case lexer.MINUS:
		return "rosy_sub", true
	case lexer.STAR:
		return "rosy_mult", true
	case lexer.SLASH:
		return "rosy_div", true
	case lexer.PIPE:
		return "rosy_extract", true
	default:
		return "", false
	}
}

func compareOpRust(op lexer.TokenType) (string, bool) {
	switch op {
	case lexer.EQ:
		return "==", true
	case lexer.NOT_EQ:
		return "!=", true
	case lexer.LT:
		return "<", true
	case lexer.GT:
		return ">", true
	case lexer.LT_EQ:
		return "<=", true
	case lexer.GT_EQ:
		return ">=", true
	default:
		return "", false
	}
}

// emitExpr walks e producing the Rust text of its value. scope names the
// current scope path (for symbol-table lookups) and ctx tracks which names
// are Local/Argument/HigherScope for deref decisions.
func (em *Emitter) emitExpr(e ast.Expression, scope []string, ctx *emitContext) (string, error) {
	switch v := e.(type) {
	case *ast.NumberLiteral:
		return fmt.Sprintf("%s_f64", strconv.FormatFloat(v.Value, 'g', -1, 64)), nil

	case *ast.StringLiteral:
		return strconv.Quote(v.Value) + ".to_string()", nil

	case *ast.BoolLiteral:
		if v.Value {
			return "true", nil
		}
		return "false", nil

	case *ast.Identifier:
		return em.readName(v.Name, ctx), nil

	case *ast.VariableRef:
		return em.readVariableRef(v, scope, ctx)

	case *ast.UnaryExpr:
		inner, err := em.emitExpr(v.Operand, scope, ctx)
		if err != nil {
			return "", err
		}
		switch v.Op {
		case lexer.MINUS:
			return fmt.Sprintf("(-(%s))", inner), nil
		case lexer.NOT:
			return fmt.Sprintf("(!(%s))", inner), nil
		}
		return "", fmt.Errorf("emit: unsupported unary operator %v", v.Op)

	case *ast.BinaryExpr:
		return em.emitBinaryExpr(v, scope, ctx)

	case *ast.ConcatExpr:
		return em.emitConcatExpr(v, scope, ctx)

	case *ast.CallExpr:
		return em.emitCallExpr(v, scope, ctx)

	default:
		return "", fmt.Errorf("emit: unhandled expression variant %T", e)
	}
}

func (em *Emitter) emitBinaryExpr(v *ast.BinaryExpr, scope []string, ctx *emitContext) (string, error) {
	// Both operands emit regardless of how the first fares, so one bad
	// subtree does not hide an independent failure in its sibling.
	left, lerr := em.emitExpr(v.Left, scope, ctx)
	right, rerr := em.emitExpr(v.Right, scope, ctx)
	if err := errors.Combine(lerr, rerr); err != nil {
		return "", err
	}
	if method, ok := binOpMethod(v.Op); ok {
		return fmt.Sprintf("(&%s).%s(&%s).expect(\"%s\")", left, method, right, method), nil
	}
	if sym, ok := compareOpRust(v.Op); ok {
		return fmt.Sprintf("(%s %s %s)", left, sym, right), nil
	}
	return "", fmt.Errorf("emit: unsupported binary operator %v", v.Op)
}

func (em *Emitter) emitConcatExpr(v *ast.ConcatExpr, scope []string, ctx *emitContext) (string, error) {
	if len(v.Terms) == 0 {
		return `String::new()`, nil
	}
	texts := make([]string, len(v.Terms))
	var diags errors.Diagnostics
	for i, term := range v.Terms {
		text, err := em.emitExpr(term, scope, ctx)
		texts[i] = text
		diags.Add(err)
	}
	if err := diags.Err(); err != nil {
		return "", err
	}
	acc := texts[0]
	for _, text := range texts[1:] {
		acc = fmt.Sprintf("(&%s).rosy_concat(&%s).expect(\"rosy_concat\")", acc, text)
	}
	return acc, nil
}

// intrinsicTypeNames mirrors resolve's intrinsicConversions table: the
// type-name callees (ST, RE, LO, CM, VE, DA, CD) that name a built-in
// conversion rather than a declared callable. SIN and LENGTH are matched
// separately below.
var intrinsicTypeNames = map[string]types.Base{
	"ST": types.ST, "RE": types.RE, "LO": types.LO, "CM": types.CM,
	"VE": types.VE, "DA": types.DA, "CD": types.CD,
}

func (em *Emitter) emitCallExpr(v *ast.CallExpr, scope []string, ctx *emitContext) (string, error) {
	if base, ok := intrinsicTypeNames[v.Callee]; ok {
		if len(v.Args) != 1 {
			return "", fmt.Errorf("emit: intrinsic %s expects exactly one argument", v.Callee)
		}
		arg, err := em.emitExpr(v.Args[0], scope, ctx)
		if err != nil {
			return "", err
		}
		// DA(n) constructs the n-th independent differential-algebra
		// variable; every other type name is a conversion.
		if base == types.DA {
			return fmt.Sprintf("rosy_runtime::da((%s) as u64)", arg), nil
		}
		return fmt.Sprintf("rosy_runtime::to_%s(&%s)", strings.ToLower(string(base)), arg), nil
	}

	switch v.Callee {
	case "LENGTH":
		if len(v.Args) != 1 {
			return "", fmt.Errorf("emit: LENGTH expects exactly one argument")
		}
		arg, err := em.emitExpr(v.Args[0], scope, ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("rosy_runtime::length(&%s)", arg), nil

	case "SIN":
		if len(v.Args) != 1 {
			return "", fmt.Errorf("emit: SIN expects exactly one argument")
		}
		arg, err := em.emitExpr(v.Args[0], scope, ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("rosy_runtime::sin(&%s).expect(\"sin\")", arg), nil
	}

	return em.emitUserCall(v, scope, ctx)
}

// emitUserCall emits a call to a declared function or procedure: the
// argument list is the callee's captured variables (per the capture
// registry, looked up by name in the caller's own scope) followed by the
// emitted argument expressions. Function arguments travel by immutable
// reference, procedure arguments by mutable reference, matching the
// emitted declarations.
func (em *Emitter) emitUserCall(v *ast.CallExpr, scope []string, ctx *emitContext) (string, error) {
	ref := "&"
	if _, isProc := em.result.Procedures[v.Callee]; isProc {
		ref = "&mut "
	}

	captured := em.registry[v.Callee]
	args := make([]string, 0, len(captured)+len(v.Args))
	for _, name := range captured {
		args = append(args, forwardCapture(name, ctx))
	}
	var diags errors.Diagnostics
	for _, a := range v.Args {
		text, err := em.emitExpr(a, scope, ctx)
		diags.Add(err)
		args = append(args, ref+text)
	}
	if err := diags.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s(%s)", v.Callee, joinArgs(args)), nil
}

// forwardCapture renders the argument a caller passes for one of its own
// captured names: if the caller itself already holds name by mutable
// reference (it is itself Argument/HigherScope there, i.e. forwarding a
// capture it received from its own caller), pass the reference through
// unchanged; otherwise take a fresh mutable reference to the local.
func forwardCapture(name string, ctx *emitContext) string {
	if kind, ok := ctx.kindOf(name); ok && kind != Local {
		return name
	}
	return "&mut " + name
}

func joinArgs(args []string) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += ", "
		}
		out += a
	}
	return out
}

// readName renders a bare-name reference for use as a value: Local names
// are already owned, Argument/HigherScope names are held by reference and
// must be dereferenced to read their current value.
func (em *Emitter) readName(name string, ctx *emitContext) string {
	if kind, ok := ctx.kindOf(name); ok && kind != Local {
		return "(*" + name + ")"
	}
	return name
}

// readVariableRef renders an indexed reference, subtracting 1 from each
// index (SRC is 1-indexed) and casting to usize. Indexing works through
// Rust's Deref coercion regardless of whether the base name is owned or
// held by mutable reference, so no extra deref is needed here.
func (em *Emitter) readVariableRef(v *ast.VariableRef, scope []string, ctx *emitContext) (string, error) {
	if len(v.Indices) == 0 {
		return em.readName(v.Name, ctx), nil
	}
	text := v.Name
	for _, idx := range v.Indices {
		idxText, err := em.emitExpr(idx, scope, ctx)
		if err != nil {
			return "", err
		}
		text += fmt.Sprintf("[((%s) as i64 - 1) as usize]", idxText)
	}
	return text, nil
}

// lookupType exposes the resolver's symbol table to statement
// emission for cases (variable declarations) that need a type rather than
// a value.
func (em *Emitter) lookupType(scope []string, name string) (types.Descriptor, bool) {
	return em.result.Symbols.Lookup(scope, name)
}
