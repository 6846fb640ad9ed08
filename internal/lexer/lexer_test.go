package lexer

import "testing"

func TestNextTokenBasic(t *testing.T) {
	input := `BEGIN
    VARIABLE (RE) X Y;
    X := 1.5;
    Y := X + 2.0E-3;
    WRITE 6 ST(Y);
END;`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{BEGIN, "BEGIN"},
		{VARIABLE, "VARIABLE"},
		{LPAREN, "("},
		{IDENT, "RE"},
		{RPAREN, ")"},
		{IDENT, "X"},
		{IDENT, "Y"},
		{SEMICOLON, ";"},
		{IDENT, "X"},
		{ASSIGN, ":="},
		{NUMBER, "1.5"},
		{SEMICOLON, ";"},
		{IDENT, "Y"},
		{ASSIGN, ":="},
		{IDENT, "X"},
		{PLUS, "+"},
		{NUMBER, "2.0E-3"},
		{SEMICOLON, ";"},
		{WRITE, "WRITE"},
		{NUMBER, "6"},
		{IDENT, "ST"},
		{LPAREN, "("},
		{IDENT, "Y"},
		{RPAREN, ")"},
		{SEMICOLON, ";"},
		{END, "END"},
		{SEMICOLON, ";"},
		{EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("test[%d] - wrong token type. expected=%s, got=%s (literal %q)", i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("test[%d] - wrong literal. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestBlockComments(t *testing.T) {
	input := `{ this is a comment }BEGIN{ another }END;`
	l := New(input)

	expect := []TokenType{BEGIN, END, SEMICOLON, EOF}
	for i, want := range expect {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("token[%d]: expected %s got %s", i, want, tok.Type)
		}
	}
}

func TestUnterminatedComment(t *testing.T) {
	l := New(`{ never closed`)
	tok := l.NextToken()
	if tok.Type != EOF {
		t.Fatalf("expected EOF after unterminated comment, got %s", tok.Type)
	}
	if len(l.Errors()) != 1 {
		t.Fatalf("expected 1 lexer error, got %d", len(l.Errors()))
	}
}

func TestStringLiteralWithEscapedQuote(t *testing.T) {
	l := New(`"he said ""hi"""`)
	tok := l.NextToken()
	if tok.Type != STRING {
		t.Fatalf("expected STRING, got %s", tok.Type)
	}
	if tok.Literal != `he said "hi"` {
		t.Fatalf("unexpected literal: %q", tok.Literal)
	}
}

func TestPeekAndSaveRestore(t *testing.T) {
	l := New("X := Y;")
	state := l.SaveState()

	first := l.NextToken()
	if first.Type != IDENT || first.Literal != "X" {
		t.Fatalf("unexpected first token: %#v", first)
	}

	l.RestoreState(state)
	replay := l.NextToken()
	if replay.Type != IDENT || replay.Literal != "X" {
		t.Fatalf("restore did not rewind: %#v", replay)
	}

	peeked := l.Peek(1)
	if peeked.Type != IDENT || peeked.Literal != "Y" {
		t.Fatalf("peek(1) expected Y, got %#v", peeked)
	}
}

func TestOperatorsAndComparisons(t *testing.T) {
	input := `& | = # < > <= >=`
	want := []TokenType{AMP, PIPE, EQ, NOT_EQ, LT, GT, LT_EQ, GT_EQ, EOF}
	l := New(input)
	for i, tt := range want {
		tok := l.NextToken()
		if tok.Type != tt {
			t.Fatalf("token[%d]: expected %s got %s", i, tt, tok.Type)
		}
	}
}
