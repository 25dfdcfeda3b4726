package lexer

import (
	"testing"

	"github.com/dr8co/tacc/token"
)

// TestNextToken checks the token stream, in source order, for a snippet
// covering declarations, control flow, and a mix of operators.
func TestNextToken(t *testing.T) {
	input := `int add(int x, int y) {
    return x + y;
}

void main() {
    int total = 0;
    char c = 'a';
    // a comment
    while (total < 10) {
        total = total + 1;
    }
    if (x >= 5 && y <= 10 || !done) {
        total = add(total, 1);
    }
}
`
	tests := []struct {
		expectedType    token.Type
		expectedLiteral string
	}{
		{token.KwInt, "int"},
		{token.Ident, "add"},
		{token.Lparen, "("},
		{token.KwInt, "int"},
		{token.Ident, "x"},
		{token.Comma, ","},
		{token.KwInt, "int"},
		{token.Ident, "y"},
		{token.Rparen, ")"},
		{token.Lbrace, "{"},
		{token.KwReturn, "return"},
		{token.Ident, "x"},
		{token.Plus, "+"},
		{token.Ident, "y"},
		{token.Semicolon, ";"},
		{token.Rbrace, "}"},
		{token.KwVoid, "void"},
		{token.Ident, "main"},
		{token.Lparen, "("},
		{token.Rparen, ")"},
		{token.Lbrace, "{"},
		{token.KwInt, "int"},
		{token.Ident, "total"},
		{token.Assign, "="},
		{token.Int, "0"},
		{token.Semicolon, ";"},
		{token.KwChar, "char"},
		{token.Ident, "c"},
		{token.Assign, "="},
		{token.Char, "a"},
		{token.Semicolon, ";"},
		{token.KwWhile, "while"},
		{token.Lparen, "("},
		{token.Ident, "total"},
		{token.Lt, "<"},
		{token.Int, "10"},
		{token.Rparen, ")"},
		{token.Lbrace, "{"},
		{token.Ident, "total"},
		{token.Assign, "="},
		{token.Ident, "total"},
		{token.Plus, "+"},
		{token.Int, "1"},
		{token.Semicolon, ";"},
		{token.Rbrace, "}"},
		{token.KwIf, "if"},
		{token.Lparen, "("},
		{token.Ident, "x"},
		{token.Gte, ">="},
		{token.Int, "5"},
		{token.And, "&&"},
		{token.Ident, "y"},
		{token.Lte, "<="},
		{token.Int, "10"},
		{token.Or, "||"},
		{token.Bang, "!"},
		{token.Ident, "done"},
		{token.Rparen, ")"},
		{token.Lbrace, "{"},
		{token.Ident, "total"},
		{token.Assign, "="},
		{token.Ident, "add"},
		{token.Lparen, "("},
		{token.Ident, "total"},
		{token.Comma, ","},
		{token.Int, "1"},
		{token.Rparen, ")"},
		{token.Semicolon, ";"},
		{token.Rbrace, "}"},
		{token.Rbrace, "}"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (literal %q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestLineTracking(t *testing.T) {
	input := "int a;\nint b;\n"
	l := New(input)

	tok := l.NextToken() // int
	if tok.Line != 1 {
		t.Fatalf("expected line 1, got %d", tok.Line)
	}
	for i := 0; i < 3; i++ {
		l.NextToken()
	}
	tok = l.NextToken() // b on line 2
	if tok.Line != 2 {
		t.Fatalf("expected line 2, got %d", tok.Line)
	}
}

func TestUnterminatedStringLiteral(t *testing.T) {
	l := New(`"unterminated`)
	tok := l.NextToken()
	if tok.Type != token.Illegal {
		t.Fatalf("expected Illegal for unterminated string, got %s", tok.Type)
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	l := New("int a; // trailing comment\nint b;")
	var types []token.Type
	for {
		tok := l.NextToken()
		if tok.Type == token.EOF {
			break
		}
		types = append(types, tok.Type)
	}
	want := []token.Type{token.KwInt, token.Ident, token.Semicolon, token.KwInt, token.Ident, token.Semicolon}
	if len(types) != len(want) {
		t.Fatalf("expected %d tokens with comment skipped, got %d: %v", len(want), len(types), types)
	}
}
