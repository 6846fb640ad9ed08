// Package parser implements a hand-written recursive-descent parser with
// precedence climbing for expressions, realizing the PEG grammar of SRC as
// ordinary Go control flow rather than a separate grammar file.
package parser

import (
	"fmt"

	"github.com/rosy-lang/rosyc/internal/ast"
	"github.com/rosy-lang/rosyc/internal/lexer"
)

// Parser consumes tokens from a Lexer and builds an *ast.Program. Errors
// are accumulated rather than raised immediately, so a single pass can
// report more than one syntax error. Warnings are non-fatal notices
// (deprecated spellings) reported alongside a successful parse.
type Parser struct {
	l        *lexer.Lexer
	errors   []string
	warnings []string

	curToken  lexer.Token
	peekToken lexer.Token
}

// New creates a Parser reading tokens from l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns all syntax errors accumulated during parsing.
func (p *Parser) Errors() []string { return p.errors }

// Warnings returns all non-fatal notices accumulated during parsing.
func (p *Parser) Warnings() []string { return p.warnings }

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) errorf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	p.errors = append(p.errors, fmt.Sprintf("%s at %d:%d", msg, p.curToken.Position.Line, p.curToken.Position.Column))
}

func (p *Parser) warnf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	p.warnings = append(p.warnings, fmt.Sprintf("%s at %d:%d", msg, p.curToken.Position.Line, p.curToken.Position.Column))
}

func (p *Parser) curIs(tt lexer.TokenType) bool  { return p.curToken.Type == tt }
func (p *Parser) peekIs(tt lexer.TokenType) bool { return p.peekToken.Type == tt }

// expect consumes the current token if it matches tt, advancing past it,
// and reports a syntax error otherwise. Returns the consumed token.
func (p *Parser) expect(tt lexer.TokenType) lexer.Token {
	tok := p.curToken
	if !p.curIs(tt) {
		p.errorf("expected %s, found %s %q", tt, p.curToken.Type, p.curToken.Literal)
		return tok
	}
	p.nextToken()
	return tok
}

// ParseProgram parses a full BEGIN ... END; compilation unit.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{Token: p.curToken}
	p.expect(lexer.BEGIN)
	prog.Statements = p.parseStatementsUntil(lexer.END)
	p.expect(lexer.END)
	p.expect(lexer.SEMICOLON)
	return prog
}

// parseStatementsUntil parses statements until the current token is one of
// enders (which is left unconsumed) or EOF.
func (p *Parser) parseStatementsUntil(enders ...lexer.TokenType) []ast.Statement {
	var stmts []ast.Statement
	for !p.curIs(lexer.EOF) && !p.isOneOf(enders) {
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		} else {
			// Avoid an infinite loop on unrecoverable syntax errors by
			// skipping the offending token.
			p.nextToken()
		}
	}
	return stmts
}

func (p *Parser) isOneOf(types []lexer.TokenType) bool {
	for _, tt := range types {
		if p.curIs(tt) {
			return true
		}
	}
	return false
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case lexer.VARIABLE:
		return p.parseVarDecl()
	case lexer.WRITE:
		return p.parseWrite()
	case lexer.READ:
		return p.parseRead()
	case lexer.DAINI:
		return p.parseDAInit()
	case lexer.LOOP:
		return p.parseLoop()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.IF:
		return p.parseIf()
	case lexer.PLOOP:
		return p.parsePLoop()
	case lexer.BREAK:
		return p.parseBreak()
	case lexer.PROCEDURE:
		return p.parseProcedureDecl()
	case lexer.FUNCTION:
		return p.parseFunctionDecl()
	case lexer.FIT:
		return p.parseFit()
	case lexer.IDENT:
		return p.parseIdentLedStatement()
	default:
		p.errorf("unexpected token %s %q at start of statement", p.curToken.Type, p.curToken.Literal)
		return nil
	}
}

// parseIdentLedStatement disambiguates an assignment (X := ...; or
// X[I] := ...;) from a bare procedure call (MyProc(...);) — both start
// with an identifier.
func (p *Parser) parseIdentLedStatement() ast.Statement {
	tok := p.curToken
	name := p.curToken.Literal
	p.nextToken()

	if p.curIs(lexer.LPAREN) {
		call := p.finishCallExpr(tok, name)
		p.expect(lexer.SEMICOLON)
		return &ast.ExprStatement{Token: tok, Call: call}
	}

	ref := &ast.VariableRef{Token: tok, Name: name}
	if p.curIs(lexer.LBRACK) {
		ref.Indices = p.parseIndexList()
	}

	assignTok := p.expect(lexer.ASSIGN)
	value := p.parseExpression(lowestPrecedence)
	p.expect(lexer.SEMICOLON)
	return &ast.AssignStatement{Token: assignTok, Target: ref, Value: value}
}

func (p *Parser) parseIndexList() []ast.Expression {
	p.expect(lexer.LBRACK)
	var indices []ast.Expression
	indices = append(indices, p.parseExpression(lowestPrecedence))
	for p.curIs(lexer.COMMA) {
		p.nextToken()
		indices = append(indices, p.parseExpression(lowestPrecedence))
	}
	p.expect(lexer.RBRACK)
	return indices
}

func (p *Parser) parseVarDecl() ast.Statement {
	tok := p.curToken
	p.nextToken() // VARIABLE
	typ := p.parseTypeExpr()

	var names []string
	for p.curIs(lexer.IDENT) {
		names = append(names, p.curToken.Literal)
		p.nextToken()
	}
	p.expect(lexer.SEMICOLON)
	return &ast.VarDecl{Token: tok, Type: typ, Names: names}
}

func (p *Parser) parseTypeExpr() *ast.TypeExpr {
	p.expect(lexer.LPAREN)
	tok := p.curToken
	base := p.expect(lexer.IDENT).Literal
	te := &ast.TypeExpr{Token: tok, Base: base}
	for p.curIs(lexer.LBRACK) {
		p.nextToken()
		n := p.expect(lexer.NUMBER)
		dim := int(parseNumberLiteral(n.Literal))
		te.Dims = append(te.Dims, dim)
		p.expect(lexer.RBRACK)
	}
	p.expect(lexer.RPAREN)
	return te
}

func (p *Parser) parseWrite() ast.Statement {
	tok := p.curToken
	p.nextToken()
	channel := p.parseExpression(additive)
	var args []ast.Expression
	if !p.curIs(lexer.SEMICOLON) {
		args = p.parseConcatArgs()
	}
	p.expect(lexer.SEMICOLON)
	return &ast.WriteStatement{Token: tok, Channel: channel, Args: args}
}

// parseConcatArgs parses a bare sequence of & separated expressions into
// the flat argument list WRITE takes (the AST builder treats the whole
// tail as a single concatenation, so it returns the ConcatExpr's terms
// directly, or a single-element slice for a lone expression). A WRITE
// with no expressions at all (just a channel) is valid per spec and
// produces a blank line; the caller checks for that case before calling
// this function.
func (p *Parser) parseConcatArgs() []ast.Expression {
	first := p.parseExpression(lowestPrecedence)
	if concat, ok := first.(*ast.ConcatExpr); ok {
		return concat.Terms
	}
	return []ast.Expression{first}
}

func (p *Parser) parseRead() ast.Statement {
	tok := p.curToken
	p.nextToken()
	channel := p.parseExpression(additive)

	var targets []*ast.VariableRef
	for p.curIs(lexer.IDENT) {
		refTok := p.curToken
		name := p.curToken.Literal
		p.nextToken()
		ref := &ast.VariableRef{Token: refTok, Name: name}
		if p.curIs(lexer.LBRACK) {
			ref.Indices = p.parseIndexList()
		}
		targets = append(targets, ref)
	}
	p.expect(lexer.SEMICOLON)
	return &ast.ReadStatement{Token: tok, Channel: channel, Targets: targets}
}

func (p *Parser) parseDAInit() ast.Statement {
	tok := p.curToken
	p.nextToken()
	order := p.parseExpression(additive)
	numVars := p.parseExpression(additive)
	p.expect(lexer.SEMICOLON)
	return &ast.DAInitStatement{Token: tok, Order: order, NumVars: numVars}
}

func (p *Parser) parseLoop() ast.Statement {
	tok := p.curToken
	p.nextToken()
	iterator := p.expect(lexer.IDENT).Literal
	start := p.parseExpression(additive)
	end := p.parseExpression(additive)
	p.expect(lexer.SEMICOLON)
	body := p.parseStatementsUntil(lexer.ENDLOOP)
	p.expect(lexer.ENDLOOP)
	p.expect(lexer.SEMICOLON)
	return &ast.LoopStatement{Token: tok, Iterator: iterator, Start: start, End: end, Body: body}
}

func (p *Parser) parseWhile() ast.Statement {
	tok := p.curToken
	p.nextToken()
	cond := p.parseExpression(lowestPrecedence)
	p.expect(lexer.SEMICOLON)
	body := p.parseStatementsUntil(lexer.ENDWHILE)
	p.expect(lexer.ENDWHILE)
	p.expect(lexer.SEMICOLON)
	return &ast.WhileStatement{Token: tok, Condition: cond, Body: body}
}

func (p *Parser) parseIf() ast.Statement {
	tok := p.curToken
	p.nextToken()
	cond := p.parseExpression(lowestPrecedence)
	p.expect(lexer.SEMICOLON)
	then := p.parseStatementsUntil(lexer.ELSEIF, lexer.ELSE, lexer.ENDIF)

	stmt := &ast.IfStatement{Token: tok, Condition: cond, Then: then}
	for p.curIs(lexer.ELSEIF) {
		p.nextToken()
		c := p.parseExpression(lowestPrecedence)
		p.expect(lexer.SEMICOLON)
		body := p.parseStatementsUntil(lexer.ELSEIF, lexer.ELSE, lexer.ENDIF)
		stmt.ElseIfs = append(stmt.ElseIfs, ast.ElseIfClause{Condition: c, Body: body})
	}
	if p.curIs(lexer.ELSE) {
		p.nextToken()
		p.expect(lexer.SEMICOLON)
		stmt.Else = p.parseStatementsUntil(lexer.ENDIF)
	}
	p.expect(lexer.ENDIF)
	p.expect(lexer.SEMICOLON)
	return stmt
}

// commutivityKeyword is the ENDPLOOP clause's canonical keyword spelling;
// commutivityFromKeyword is the sibling typo found in parts of the
// upstream tree, accepted with a deprecation warning rather than silently
// corrected or rejected.
const commutivityKeyword = "commutivity_rule"
const commutivityFromKeyword = "commutivityfrom_rule"

func (p *Parser) parsePLoop() ast.Statement {
	tok := p.curToken
	p.nextToken()
	iterator := p.expect(lexer.IDENT).Literal
	start := p.parseExpression(additive)
	end := p.parseExpression(additive)
	p.expect(lexer.SEMICOLON)
	body := p.parseStatementsUntil(lexer.ENDPLOOP)
	p.expect(lexer.ENDPLOOP)

	stmt := &ast.PLoopStatement{Token: tok, Iterator: iterator, Start: start, End: end, Body: body}

	// An optional commutivity-rule clause may precede the output variable:
	// a rule number, optionally introduced by the commutivity_rule keyword.
	// The keyword lexes as an ordinary identifier, so it is matched by
	// literal; it only reads as a keyword here, directly after ENDPLOOP
	// with a number or output name following.
	if p.curIs(lexer.IDENT) {
		switch p.curToken.Literal {
		case commutivityKeyword:
			p.nextToken()
		case commutivityFromKeyword:
			p.warnf("deprecated spelling %q; use %q", commutivityFromKeyword, commutivityKeyword)
			p.nextToken()
		}
	}
	if p.curIs(lexer.NUMBER) {
		n := int(parseNumberLiteral(p.curToken.Literal))
		stmt.CommutivityRule = &n
		p.nextToken()
	}

	outTok := p.curToken
	outName := p.expect(lexer.IDENT).Literal
	stmt.Output = &ast.VariableRef{Token: outTok, Name: outName}
	p.expect(lexer.SEMICOLON)
	return stmt
}

func (p *Parser) parseBreak() ast.Statement {
	tok := p.curToken
	p.nextToken()
	p.expect(lexer.SEMICOLON)
	return &ast.BreakStatement{Token: tok}
}

// parseProcedureParams parses a run of formal parameters, each either an
// annotated "(TYPE) name" pair or a bare "name" whose type the resolver
// infers from the first call site.
func (p *Parser) parseProcedureParams() []ast.Param {
	var params []ast.Param
	for {
		switch {
		case p.curIs(lexer.LPAREN):
			typ := p.parseTypeExpr()
			name := p.expect(lexer.IDENT).Literal
			params = append(params, ast.Param{Name: name, Type: typ})
		case p.curIs(lexer.IDENT):
			params = append(params, ast.Param{Name: p.curToken.Literal})
			p.nextToken()
		default:
			return params
		}
	}
}

// parseFunctionParamsAndReturn parses the same parameter run as
// parseProcedureParams, but a final type group with no following identifier
// is the function's return type rather than another parameter. Both untyped
// parameters and a missing return type are allowed; the resolver fills them
// in.
func (p *Parser) parseFunctionParamsAndReturn() ([]ast.Param, *ast.TypeExpr) {
	var params []ast.Param
	var ret *ast.TypeExpr
	for {
		switch {
		case p.curIs(lexer.LPAREN):
			typ := p.parseTypeExpr()
			if p.curIs(lexer.IDENT) {
				name := p.curToken.Literal
				p.nextToken()
				params = append(params, ast.Param{Name: name, Type: typ})
				continue
			}
			ret = typ
			return params, ret
		case p.curIs(lexer.IDENT):
			params = append(params, ast.Param{Name: p.curToken.Literal})
			p.nextToken()
		default:
			return params, ret
		}
	}
}

func (p *Parser) parseProcedureDecl() ast.Statement {
	tok := p.curToken
	p.nextToken()
	name := p.expect(lexer.IDENT).Literal
	params := p.parseProcedureParams()
	p.expect(lexer.SEMICOLON)
	body := p.parseStatementsUntil(lexer.ENDPROCEDURE)
	p.expect(lexer.ENDPROCEDURE)
	p.expect(lexer.SEMICOLON)
	return &ast.ProcedureDecl{Token: tok, Name: name, Params: params, Body: body}
}

// parseFunctionDecl parses FUNCTION name (TYPE) p1 (TYPE) p2 ... (RETTYPE);
// body ENDFUNCTION;. Per the implicit-return-variable invariant, the AST
// builder prepends a VarDecl for Name:ReturnType as the body's first
// statement — with a nil type when the return type is left for the resolver
// to infer from body assignments.
func (p *Parser) parseFunctionDecl() ast.Statement {
	tok := p.curToken
	p.nextToken()
	name := p.expect(lexer.IDENT).Literal
	params, retType := p.parseFunctionParamsAndReturn()
	p.expect(lexer.SEMICOLON)
	body := p.parseStatementsUntil(lexer.ENDFUNCTION)
	p.expect(lexer.ENDFUNCTION)
	p.expect(lexer.SEMICOLON)

	implicitReturn := &ast.VarDecl{Token: tok, Type: retType, Names: []string{name}}
	body = append([]ast.Statement{implicitReturn}, body...)

	return &ast.FunctionDecl{Token: tok, Name: name, Params: params, ReturnType: retType, Body: body}
}

func (p *Parser) parseFit() ast.Statement {
	tok := p.curToken
	p.nextToken()

	var fitVars []string
	for p.curIs(lexer.IDENT) {
		fitVars = append(fitVars, p.curToken.Literal)
		p.nextToken()
	}
	p.expect(lexer.SEMICOLON)
	body := p.parseStatementsUntil(lexer.ENDFIT)
	p.expect(lexer.ENDFIT)

	eps := p.parseExpression(additive)
	maxIter := p.parseExpression(additive)
	algo := p.parseExpression(additive)

	var objectives []string
	for p.curIs(lexer.IDENT) {
		objectives = append(objectives, p.curToken.Literal)
		p.nextToken()
	}
	p.expect(lexer.SEMICOLON)

	return &ast.FitStatement{
		Token: tok, FitVariables: fitVars, Body: body,
		Eps: eps, MaxIter: maxIter, Algorithm: algo, Objectives: objectives,
	}
}
