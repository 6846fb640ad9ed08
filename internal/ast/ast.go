// Package ast defines the SRC abstract syntax tree: two closed sum types,
// Statement and Expression, each implemented by a fixed set of concrete
// node structs. The package holds data only — type resolution and code
// emission are separate passes (internal/resolve, internal/emit) that
// dispatch on these node types by exhaustive type switch.
package ast

import "github.com/rosy-lang/rosyc/internal/lexer"

// Node is the root of every AST type.
type Node interface {
	TokenLiteral() string
	Pos() lexer.Position
	String() string
}

// Expression is any SRC node that produces a value.
type Expression interface {
	Node
	expressionNode()
}

// Statement is any SRC node executed for effect.
type Statement interface {
	Node
	statementNode()
}

// Program is the root of a parsed SRC source file: a BEGIN...END block.
type Program struct {
	Token      lexer.Token
	Statements []Statement
}

func (p *Program) TokenLiteral() string { return p.Token.Literal }
func (p *Program) Pos() lexer.Position  { return p.Token.Position }
func (p *Program) String() string {
	s := "BEGIN\n"
	for _, stmt := range p.Statements {
		s += stmt.String() + "\n"
	}
	return s + "END;"
}
