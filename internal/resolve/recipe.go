package resolve

import "github.com/rosy-lang/rosyc/internal/types"

// BinaryOpKind names the binary operators a Recipe can apply, mirroring the
// upstream resolver's BinaryOpKind enum (add/sub/mult/div/extract are kept
// distinct from concat, which normalizes to n-ary form).
type BinaryOpKind int

const (
	OpAdd BinaryOpKind = iota
	OpSub
	OpMult
	OpDiv
	OpExtract
)

// Recipe describes how to compute an expression's type once its dependency
// slots are resolved. It is evaluateRecipe's input, not a runtime value.
type Recipe interface{ isRecipe() }

type LiteralRecipe struct{ Type types.Descriptor }

type VariableRecipe struct{ Slot Slot }

// FunctionCallRecipe is a call site's type: it mirrors the callee's
// FunctionReturn slot rather than re-deriving anything.
type FunctionCallRecipe struct{ ReturnSlot Slot }

type BinaryOpRecipe struct {
	Op          BinaryOpKind
	Left, Right Recipe
}

type ConcatRecipe struct{ Terms []Recipe }

type SinRecipe struct{ Inner Recipe }

type LengthRecipe struct{ Inner Recipe }

// UnknownRecipe marks an expression shape the recipe builder could not
// characterize; evaluating it is always an error.
type UnknownRecipe struct{}

func (LiteralRecipe) isRecipe()      {}
func (VariableRecipe) isRecipe()     {}
func (FunctionCallRecipe) isRecipe() {}
func (BinaryOpRecipe) isRecipe()     {}
func (ConcatRecipe) isRecipe()       {}
func (SinRecipe) isRecipe()          {}
func (LengthRecipe) isRecipe()       {}
func (UnknownRecipe) isRecipe()      {}
