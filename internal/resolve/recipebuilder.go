package resolve

import (
	"github.com/rosy-lang/rosyc/internal/ast"
	"github.com/rosy-lang/rosyc/internal/lexer"
	"github.com/rosy-lang/rosyc/internal/types"
)

// intrinsicConversions names SRC's type-conversion call-forms: ST(x)
// stringifies, RE(x)/LO(x)/CM(x)/VE(x)/DA(x)/CD(x) cast to their named
// kind. Each always yields the named base regardless of its argument.
var intrinsicConversions = map[string]types.Base{
	"ST": types.ST, "RE": types.RE, "LO": types.LO,
	"CM": types.CM, "VE": types.VE, "DA": types.DA, "CD": types.CD,
}

// buildRecipe translates an ast.Expression into a Recipe the evaluator can
// later resolve, given the slots visible in ctx. Dispatch is a type switch
// over the closed ast.Expression set rather than a method on the AST
// nodes, keeping the ast package free of resolver imports.
func (r *Resolver) buildRecipe(expr ast.Expression, ctx *scopeContext) Recipe {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return LiteralRecipe{Type: types.Scalar(types.RE)}
	case *ast.StringLiteral:
		return LiteralRecipe{Type: types.Scalar(types.ST)}
	case *ast.BoolLiteral:
		return LiteralRecipe{Type: types.Scalar(types.LO)}
	case *ast.Identifier:
		return r.variableRecipe(e.Name, ctx)
	case *ast.VariableRef:
		base := r.variableRecipe(e.Name, ctx)
		if len(e.Indices) == 0 {
			return base
		}
		return IndexRecipe{Inner: base, Count: len(e.Indices)}
	case *ast.UnaryExpr:
		// Unary minus preserves its operand's type; NOT always yields LO.
		if e.Op == lexer.NOT {
			return LiteralRecipe{Type: types.Scalar(types.LO)}
		}
		return r.buildRecipe(e.Operand, ctx)
	case *ast.BinaryExpr:
		return r.binaryRecipe(e, ctx)
	case *ast.ConcatExpr:
		terms := make([]Recipe, len(e.Terms))
		for i, t := range e.Terms {
			terms[i] = r.buildRecipe(t, ctx)
		}
		return ConcatRecipe{Terms: terms}
	case *ast.CallExpr:
		return r.callRecipe(e, ctx)
	default:
		return UnknownRecipe{}
	}
}

func (r *Resolver) variableRecipe(name string, ctx *scopeContext) Recipe {
	if slot, ok := ctx.lookup(name); ok {
		return VariableRecipe{Slot: slot}
	}
	return UndeclaredRecipe{Name: name}
}

// UndeclaredRecipe marks a reference to a name no enclosing scope declares;
// evaluating it produces the scope-violation diagnostic.
type UndeclaredRecipe struct{ Name string }

func (UndeclaredRecipe) isRecipe() {}

// IndexRecipe strips Count array dimensions from Inner's resolved type,
// used for an indexed variable reference like X[I].
type IndexRecipe struct {
	Inner Recipe
	Count int
}

func (IndexRecipe) isRecipe() {}

// ComparisonRecipe type-checks its operands (surfacing any nested error)
// but always yields LO: every SRC comparison operator produces a logical
// result regardless of the compared kinds.
type ComparisonRecipe struct{ Left, Right Recipe }

func (ComparisonRecipe) isRecipe() {}

func (r *Resolver) binaryRecipe(e *ast.BinaryExpr, ctx *scopeContext) Recipe {
	left := r.buildRecipe(e.Left, ctx)
	right := r.buildRecipe(e.Right, ctx)
	switch e.Op {
	case lexer.PLUS:
		return BinaryOpRecipe{Op: OpAdd, Left: left, Right: right}
	case lexer.MINUS:
		return BinaryOpRecipe{Op: OpSub, Left: left, Right: right}
	case lexer.STAR:
		return BinaryOpRecipe{Op: OpMult, Left: left, Right: right}
	case lexer.SLASH:
		return BinaryOpRecipe{Op: OpDiv, Left: left, Right: right}
	case lexer.PIPE:
		return BinaryOpRecipe{Op: OpExtract, Left: left, Right: right}
	case lexer.EQ, lexer.NOT_EQ, lexer.LT, lexer.GT, lexer.LT_EQ, lexer.GT_EQ:
		return ComparisonRecipe{Left: left, Right: right}
	default:
		return UnknownRecipe{}
	}
}

func (r *Resolver) callRecipe(e *ast.CallExpr, ctx *scopeContext) Recipe {
	if base, ok := intrinsicConversions[e.Callee]; ok {
		return LiteralRecipe{Type: types.Scalar(base)}
	}
	if e.Callee == "LENGTH" && len(e.Args) == 1 {
		return LengthRecipe{Inner: r.buildRecipe(e.Args[0], ctx)}
	}
	if e.Callee == "SIN" && len(e.Args) == 1 {
		return SinRecipe{Inner: r.buildRecipe(e.Args[0], ctx)}
	}
	if slots, ok := r.functions[e.Callee]; ok {
		return FunctionCallRecipe{ReturnSlot: slots.returnSlot}
	}
	return UndeclaredRecipe{Name: e.Callee}
}
