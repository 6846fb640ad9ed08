package ast

import (
	"strconv"
	"strings"

	"github.com/rosy-lang/rosyc/internal/lexer"
)

func (*VarDecl) statementNode()        {}
func (*AssignStatement) statementNode() {}
func (*WriteStatement) statementNode() {}
func (*ReadStatement) statementNode()  {}
func (*ExprStatement) statementNode()  {}
func (*LoopStatement) statementNode()  {}
func (*WhileStatement) statementNode() {}
func (*IfStatement) statementNode()    {}
func (*PLoopStatement) statementNode() {}
func (*BreakStatement) statementNode() {}
func (*ProcedureDecl) statementNode()  {}
func (*FunctionDecl) statementNode()   {}
func (*FitStatement) statementNode()    {}
func (*DAInitStatement) statementNode() {}

// TypeExpr names a declared type: a base kind plus zero or more constant
// array dimensions, e.g. (RE), (RE[3]), (VE[2][4]).
type TypeExpr struct {
	Token lexer.Token
	Base  string
	Dims  []int
}

func (t *TypeExpr) String() string {
	s := t.Base
	for _, d := range t.Dims {
		s += "[" + strconv.Itoa(d) + "]"
	}
	return s
}

// Param is one formal parameter of a procedure or function declaration.
type Param struct {
	Name string
	Type *TypeExpr
}

// VarDecl declares one or more variables of the same type:
// VARIABLE (RE) X Y;
type VarDecl struct {
	Token lexer.Token
	Type  *TypeExpr
	Names []string
}

func (v *VarDecl) TokenLiteral() string { return v.Token.Literal }
func (v *VarDecl) Pos() lexer.Position  { return v.Token.Position }
func (v *VarDecl) String() string {
	if v.Type == nil {
		return "VARIABLE " + strings.Join(v.Names, " ") + ";"
	}
	return "VARIABLE (" + v.Type.String() + ") " + strings.Join(v.Names, " ") + ";"
}

// AssignStatement assigns Value to Target: X := expr;
type AssignStatement struct {
	Token  lexer.Token
	Target *VariableRef
	Value  Expression
}

func (a *AssignStatement) TokenLiteral() string { return a.Token.Literal }
func (a *AssignStatement) Pos() lexer.Position  { return a.Token.Position }
func (a *AssignStatement) String() string {
	return a.Target.String() + " := " + a.Value.String() + ";"
}

// WriteStatement writes Args to the given output Channel:
// WRITE 6 ST(X) & " " & ST(Y);
type WriteStatement struct {
	Token   lexer.Token
	Channel Expression
	Args    []Expression
}

func (w *WriteStatement) TokenLiteral() string { return w.Token.Literal }
func (w *WriteStatement) Pos() lexer.Position  { return w.Token.Position }
func (w *WriteStatement) String() string {
	parts := make([]string, len(w.Args))
	for i, a := range w.Args {
		parts[i] = a.String()
	}
	return "WRITE " + w.Channel.String() + " " + strings.Join(parts, " & ") + ";"
}

// ReadStatement reads values from Channel into Targets:
// READ 5 X Y;
type ReadStatement struct {
	Token   lexer.Token
	Channel Expression
	Targets []*VariableRef
}

func (r *ReadStatement) TokenLiteral() string { return r.Token.Literal }
func (r *ReadStatement) Pos() lexer.Position  { return r.Token.Position }
func (r *ReadStatement) String() string {
	parts := make([]string, len(r.Targets))
	for i, t := range r.Targets {
		parts[i] = t.String()
	}
	return "READ " + r.Channel.String() + " " + strings.Join(parts, " ") + ";"
}

// ExprStatement is a procedure call used as a statement: MyProc(X, Y);
type ExprStatement struct {
	Token lexer.Token
	Call  *CallExpr
}

func (e *ExprStatement) TokenLiteral() string { return e.Token.Literal }
func (e *ExprStatement) Pos() lexer.Position  { return e.Token.Position }
func (e *ExprStatement) String() string       { return e.Call.String() + ";" }

// LoopStatement is a counted loop: LOOP I 1 10; ... ENDLOOP;
type LoopStatement struct {
	Token    lexer.Token
	Iterator string
	Start    Expression
	End      Expression
	Body     []Statement
}

func (l *LoopStatement) TokenLiteral() string { return l.Token.Literal }
func (l *LoopStatement) Pos() lexer.Position  { return l.Token.Position }
func (l *LoopStatement) String() string {
	return "LOOP " + l.Iterator + " " + l.Start.String() + " " + l.End.String() + "; ... ENDLOOP;"
}

// WhileStatement is a condition-tested loop: WHILE cond; ... ENDWHILE;
type WhileStatement struct {
	Token     lexer.Token
	Condition Expression
	Body      []Statement
}

func (w *WhileStatement) TokenLiteral() string { return w.Token.Literal }
func (w *WhileStatement) Pos() lexer.Position  { return w.Token.Position }
func (w *WhileStatement) String() string {
	return "WHILE " + w.Condition.String() + "; ... ENDWHILE;"
}

// ElseIfClause is one ELSEIF arm of an IfStatement.
type ElseIfClause struct {
	Condition Expression
	Body      []Statement
}

// IfStatement is IF cond; ... [ELSEIF cond; ...]* [ELSE ...] ENDIF;
type IfStatement struct {
	Token     lexer.Token
	Condition Expression
	Then      []Statement
	ElseIfs   []ElseIfClause
	Else      []Statement
}

func (i *IfStatement) TokenLiteral() string { return i.Token.Literal }
func (i *IfStatement) Pos() lexer.Position  { return i.Token.Position }
func (i *IfStatement) String() string {
	return "IF " + i.Condition.String() + "; ... ENDIF;"
}

// PLoopStatement is a parallel loop:
// PLOOP I 1 N; ... ENDPLOOP [rule] OUTPUT;
//
// CommutivityRule is nil when the clause is omitted. The field is named
// for the canonical "commutivity_rule" spelling; the parser additionally
// accepts the sibling "commutivityfrom_rule" spelling found in the
// upstream implementation and reports it as a non-fatal, preserved typo
// rather than rewriting it.
type PLoopStatement struct {
	Token            lexer.Token
	Iterator         string
	Start            Expression
	End              Expression
	Body             []Statement
	CommutivityRule  *int
	Output           *VariableRef
}

func (p *PLoopStatement) TokenLiteral() string { return p.Token.Literal }
func (p *PLoopStatement) Pos() lexer.Position  { return p.Token.Position }
func (p *PLoopStatement) String() string {
	return "PLOOP " + p.Iterator + " " + p.Start.String() + " " + p.End.String() + "; ... ENDPLOOP " + p.Output.String() + ";"
}

// DAInitStatement configures the process-wide Taylor system:
// DAINI order nvars; must run before any DA/CD value is constructed.
type DAInitStatement struct {
	Token   lexer.Token
	Order   Expression
	NumVars Expression
}

func (d *DAInitStatement) TokenLiteral() string { return d.Token.Literal }
func (d *DAInitStatement) Pos() lexer.Position  { return d.Token.Position }
func (d *DAInitStatement) String() string {
	return "DAINI " + d.Order.String() + " " + d.NumVars.String() + ";"
}

// BreakStatement exits the innermost enclosing LOOP/WHILE/PLOOP.
type BreakStatement struct {
	Token lexer.Token
}

func (b *BreakStatement) TokenLiteral() string { return b.Token.Literal }
func (b *BreakStatement) Pos() lexer.Position  { return b.Token.Position }
func (b *BreakStatement) String() string       { return "BREAK;" }

// ProcedureDecl is PROCEDURE name [(TYPE)] p1 [(TYPE)] p2 ...; ... ENDPROCEDURE;
type ProcedureDecl struct {
	Token  lexer.Token
	Name   string
	Params []Param
	Body   []Statement
}

func (p *ProcedureDecl) TokenLiteral() string { return p.Token.Literal }
func (p *ProcedureDecl) Pos() lexer.Position  { return p.Token.Position }
func (p *ProcedureDecl) String() string {
	return "PROCEDURE " + p.Name + "(...); ... ENDPROCEDURE;"
}

// FunctionDecl is FUNCTION name [(TYPE)] p1 ... [(RETTYPE)]; ... ENDFUNCTION;
//
// Per the implicit-return-variable invariant, the first statement of Body
// is always a VarDecl declaring a variable named Name with type
// ReturnType, filled in at build time by the AST builder. ReturnType is nil
// when the source omits it; the resolver then mirrors the inner return
// variable's inferred type.
type FunctionDecl struct {
	Token      lexer.Token
	Name       string
	Params     []Param
	ReturnType *TypeExpr
	Body       []Statement
}

func (f *FunctionDecl) TokenLiteral() string { return f.Token.Literal }
func (f *FunctionDecl) Pos() lexer.Position  { return f.Token.Position }
func (f *FunctionDecl) String() string {
	if f.ReturnType == nil {
		return "FUNCTION " + f.Name + "(...); ... ENDFUNCTION;"
	}
	return "FUNCTION " + f.Name + "(...) (" + f.ReturnType.String() + "); ... ENDFUNCTION;"
}

// FitStatement is a numeric-optimization block:
// FIT var1 var2 ...; ... ENDFIT eps max algo obj1 obj2 ...;
type FitStatement struct {
	Token        lexer.Token
	FitVariables []string
	Body         []Statement
	Eps          Expression
	MaxIter      Expression
	Algorithm    Expression
	Objectives   []string
}

func (f *FitStatement) TokenLiteral() string { return f.Token.Literal }
func (f *FitStatement) Pos() lexer.Position  { return f.Token.Position }
func (f *FitStatement) String() string {
	return "FIT " + strings.Join(f.FitVariables, " ") + "; ... ENDFIT " +
		f.Eps.String() + " " + f.MaxIter.String() + " " + f.Algorithm.String() + " " +
		strings.Join(f.Objectives, " ") + ";"
}
