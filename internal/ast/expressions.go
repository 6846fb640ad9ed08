package ast

import (
	"strings"

	"github.com/rosy-lang/rosyc/internal/lexer"
)

func (*Identifier) expressionNode()     {}
func (*NumberLiteral) expressionNode()  {}
func (*StringLiteral) expressionNode()  {}
func (*BoolLiteral) expressionNode()    {}
func (*VariableRef) expressionNode()    {}
func (*UnaryExpr) expressionNode()      {}
func (*BinaryExpr) expressionNode()     {}
func (*ConcatExpr) expressionNode()     {}
func (*CallExpr) expressionNode()       {}

// Identifier is a bare name reference with no array indices: a scalar
// variable, a function/procedure name being called, or a loop iterator.
type Identifier struct {
	Token lexer.Token
	Name  string
}

func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) Pos() lexer.Position  { return i.Token.Position }
func (i *Identifier) String() string       { return i.Name }

// NumberLiteral is a real-valued numeric literal (SRC has no separate
// integer literal kind; integral values are just RE values).
type NumberLiteral struct {
	Token lexer.Token
	Value float64
	Raw   string
}

func (n *NumberLiteral) TokenLiteral() string { return n.Token.Literal }
func (n *NumberLiteral) Pos() lexer.Position  { return n.Token.Position }
func (n *NumberLiteral) String() string       { return n.Raw }

// StringLiteral is a double-quoted string literal.
type StringLiteral struct {
	Token lexer.Token
	Value string
}

func (s *StringLiteral) TokenLiteral() string { return s.Token.Literal }
func (s *StringLiteral) Pos() lexer.Position  { return s.Token.Position }
func (s *StringLiteral) String() string       { return `"` + s.Value + `"` }

// BoolLiteral is the TRUE/FALSE logical literal.
type BoolLiteral struct {
	Token lexer.Token
	Value bool
}

func (b *BoolLiteral) TokenLiteral() string { return b.Token.Literal }
func (b *BoolLiteral) Pos() lexer.Position  { return b.Token.Position }
func (b *BoolLiteral) String() string {
	if b.Value {
		return "TRUE"
	}
	return "FALSE"
}

// VariableRef is a variable reference with zero or more array index
// expressions: X, X[I], or X[I, J] for a doubly-dimensioned array. All
// indices are 1-based, per SRC convention.
type VariableRef struct {
	Token   lexer.Token
	Name    string
	Indices []Expression
}

func (v *VariableRef) TokenLiteral() string { return v.Token.Literal }
func (v *VariableRef) Pos() lexer.Position  { return v.Token.Position }
func (v *VariableRef) String() string {
	if len(v.Indices) == 0 {
		return v.Name
	}
	parts := make([]string, len(v.Indices))
	for i, idx := range v.Indices {
		parts[i] = idx.String()
	}
	return v.Name + "[" + strings.Join(parts, ", ") + "]"
}

// UnaryExpr is a prefix operator expression: unary minus or logical NOT.
type UnaryExpr struct {
	Token   lexer.Token
	Op      lexer.TokenType
	Operand Expression
}

func (u *UnaryExpr) TokenLiteral() string { return u.Token.Literal }
func (u *UnaryExpr) Pos() lexer.Position  { return u.Token.Position }
func (u *UnaryExpr) String() string       { return "(" + u.Token.Literal + " " + u.Operand.String() + ")" }

// BinaryExpr is a binary operator application: arithmetic (+ - * /),
// extraction (|), or comparison (= # < > <= >=). Concatenation (&) is
// represented separately by ConcatExpr since it is normalized to an n-ary
// form during AST construction.
type BinaryExpr struct {
	Token lexer.Token
	Op    lexer.TokenType
	Left  Expression
	Right Expression
}

func (b *BinaryExpr) TokenLiteral() string { return b.Token.Literal }
func (b *BinaryExpr) Pos() lexer.Position  { return b.Token.Position }
func (b *BinaryExpr) String() string {
	return "(" + b.Left.String() + " " + b.Token.Literal + " " + b.Right.String() + ")"
}

// ConcatExpr is an n-ary & chain: A & B & C is built as one ConcatExpr
// with three Terms rather than a nested binary tree, per the AST Builder's
// concat-normalization rule.
type ConcatExpr struct {
	Token lexer.Token
	Terms []Expression
}

func (c *ConcatExpr) TokenLiteral() string { return c.Token.Literal }
func (c *ConcatExpr) Pos() lexer.Position  { return c.Token.Position }
func (c *ConcatExpr) String() string {
	parts := make([]string, len(c.Terms))
	for i, t := range c.Terms {
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, " & ") + ")"
}

// CallExpr is a call site: either a user-declared procedure/function, or
// one of the built-in intrinsics (ST, RE, LO, CM, VE, DA, CD conversions;
// LENGTH; SIN). The resolver distinguishes the two by name lookup against
// the declared-callables table versus the fixed intrinsic table — the AST
// itself carries no distinction, keeping the node set closed.
type CallExpr struct {
	Token  lexer.Token
	Callee string
	Args   []Expression
}

func (c *CallExpr) TokenLiteral() string { return c.Token.Literal }
func (c *CallExpr) Pos() lexer.Position  { return c.Token.Position }
func (c *CallExpr) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return c.Callee + "(" + strings.Join(parts, ", ") + ")"
}
