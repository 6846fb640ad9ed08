package parser

import (
	"strconv"

	"github.com/rosy-lang/rosyc/internal/ast"
	"github.com/rosy-lang/rosyc/internal/lexer"
)

// Precedence bands, lowest to highest: concatenation binds loosest so that
// WRITE's bare "a & b & c" argument list parses as one chain; call/index
// binds tightest so postfix forms always apply before any operator.
const (
	lowestPrecedence = iota
	concatPrecedence
	extractPrecedence
	comparisonPrecedence
	additive
	multiplicative
	unaryPrecedence
	callPrecedence
)

var precedences = map[lexer.TokenType]int{
	lexer.AMP:    concatPrecedence,
	lexer.PIPE:   extractPrecedence,
	lexer.EQ:     comparisonPrecedence,
	lexer.NOT_EQ: comparisonPrecedence,
	lexer.LT:     comparisonPrecedence,
	lexer.GT:     comparisonPrecedence,
	lexer.LT_EQ:  comparisonPrecedence,
	lexer.GT_EQ:  comparisonPrecedence,
	lexer.PLUS:   additive,
	lexer.MINUS:  additive,
	lexer.STAR:   multiplicative,
	lexer.SLASH:  multiplicative,
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return lowestPrecedence
}

// parseExpression implements precedence-climbing: it parses a prefix term
// and then repeatedly folds in infix operators whose precedence exceeds
// minPrecedence. Comparisons are non-associative: a < b < c is a syntax
// error, not a left fold.
func (p *Parser) parseExpression(minPrecedence int) ast.Expression {
	left := p.parsePrefix()

	for {
		prec, ok := precedences[p.curToken.Type]
		if !ok || prec <= minPrecedence {
			break
		}

		switch {
		case p.curToken.Type == lexer.AMP:
			left = p.parseConcatTail(left)
		case prec == comparisonPrecedence:
			left = p.parseComparisonTail(left)
		default:
			left = p.parseBinaryTail(left)
		}
	}
	return left
}

// parseComparisonTail folds in a single comparison operator and then
// rejects a directly following one: comparisons do not associate, so
// chains must be parenthesized explicitly.
func (p *Parser) parseComparisonTail(left ast.Expression) ast.Expression {
	expr := p.parseBinaryTail(left)
	if prec, ok := precedences[p.curToken.Type]; ok && prec == comparisonPrecedence {
		p.errorf("comparison operators are non-associative; parenthesize before chaining %q", p.curToken.Literal)
		// Consume the rest of the chain so recovery resumes at the
		// statement boundary instead of re-reporting per operator.
		p.nextToken()
		p.parseExpression(comparisonPrecedence)
	}
	return expr
}

// parseConcatTail collects a run of A & B & C ... into one ConcatExpr,
// normalizing concatenation to n-ary form at construction time.
func (p *Parser) parseConcatTail(first ast.Expression) ast.Expression {
	tok := p.curToken
	terms := []ast.Expression{first}
	for p.curIs(lexer.AMP) {
		p.nextToken()
		terms = append(terms, p.parseExpression(concatPrecedence))
	}
	return &ast.ConcatExpr{Token: tok, Terms: terms}
}

func (p *Parser) parseBinaryTail(left ast.Expression) ast.Expression {
	tok := p.curToken
	prec := precedences[tok.Type]
	p.nextToken()
	right := p.parseExpression(prec)
	return &ast.BinaryExpr{Token: tok, Op: tok.Type, Left: left, Right: right}
}

func (p *Parser) parsePrefix() ast.Expression {
	switch p.curToken.Type {
	case lexer.MINUS, lexer.NOT:
		tok := p.curToken
		p.nextToken()
		operand := p.parseExpression(unaryPrecedence)
		return &ast.UnaryExpr{Token: tok, Op: tok.Type, Operand: operand}
	case lexer.NUMBER:
		return p.parseNumberLiteralExpr()
	case lexer.STRING:
		tok := p.curToken
		p.nextToken()
		return &ast.StringLiteral{Token: tok, Value: tok.Literal}
	case lexer.TRUE, lexer.FALSE:
		tok := p.curToken
		p.nextToken()
		return &ast.BoolLiteral{Token: tok, Value: tok.Type == lexer.TRUE}
	case lexer.LPAREN:
		p.nextToken()
		expr := p.parseExpression(lowestPrecedence)
		p.expect(lexer.RPAREN)
		return expr
	case lexer.IDENT:
		return p.parseIdentPrimary()
	default:
		p.errorf("unexpected token %s %q in expression", p.curToken.Type, p.curToken.Literal)
		tok := p.curToken
		p.nextToken()
		return &ast.NumberLiteral{Token: tok, Value: 0, Raw: "0"}
	}
}

func (p *Parser) parseNumberLiteralExpr() ast.Expression {
	tok := p.curToken
	p.nextToken()
	return &ast.NumberLiteral{Token: tok, Value: parseNumberLiteral(tok.Literal), Raw: tok.Literal}
}

func parseNumberLiteral(lit string) float64 {
	v, _ := strconv.ParseFloat(lit, 64)
	return v
}

// parseIdentPrimary parses an identifier-led primary expression: a bare
// name, an indexed variable reference (X[I]), or a call (F(a, b)).
func (p *Parser) parseIdentPrimary() ast.Expression {
	tok := p.curToken
	name := p.curToken.Literal
	p.nextToken()

	if p.curIs(lexer.LPAREN) {
		return p.finishCallExpr(tok, name)
	}
	if p.curIs(lexer.LBRACK) {
		indices := p.parseIndexList()
		return &ast.VariableRef{Token: tok, Name: name, Indices: indices}
	}
	return &ast.Identifier{Token: tok, Name: name}
}

func (p *Parser) finishCallExpr(tok lexer.Token, name string) *ast.CallExpr {
	p.expect(lexer.LPAREN)
	var args []ast.Expression
	if !p.curIs(lexer.RPAREN) {
		args = append(args, p.parseExpression(lowestPrecedence))
		for p.curIs(lexer.COMMA) {
			p.nextToken()
			args = append(args, p.parseExpression(lowestPrecedence))
		}
	}
	p.expect(lexer.RPAREN)
	return &ast.CallExpr{Token: tok, Callee: name, Args: args}
}
