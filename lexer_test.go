// lexer_test.go
package gilgamesh

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func toks(t *testing.T, src string) []Token {
	t.Helper()
	ts, err := NewLexer(src).Scan()
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	return ts
}

func typesWithoutEOF(tokens []Token) []TokenType {
	if len(tokens) == 0 {
		return nil
	}
	end := len(tokens)
	if tokens[end-1].Type == EOF {
		end--
	}
	out := make([]TokenType, 0, end)
	for i := 0; i < end; i++ {
		out = append(out, tokens[i].Type)
	}
	return out
}

func wantTypes(t *testing.T, src string, want []TokenType) []Token {
	t.Helper()
	got := toks(t, src)
	if diff := cmp.Diff(want, typesWithoutEOF(got)); diff != "" {
		t.Fatalf("source:\n%s\ntoken types mismatch (-want +got):\n%s", src, diff)
	}
	return got
}

func wantLexError(t *testing.T, src, substr string) {
	t.Helper()
	_, err := NewLexer(src).Scan()
	if err == nil {
		t.Fatalf("expected lex error for %q, got none", src)
	}
	var le *LexError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LexError, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), substr) {
		t.Fatalf("error %q does not mention %q", err.Error(), substr)
	}
}

func Test_Lexer_SimpleAssignment(t *testing.T) {
	got := wantTypes(t, "x = 5\n", []TokenType{IDENT, ASSIGN, NUMBER, NEWLINE})
	if got[2].Literal.(float64) != 5 {
		t.Fatalf("number literal = %v, want 5", got[2].Literal)
	}
}

func Test_Lexer_BoxedNumeral(t *testing.T) {
	got := wantTypes(t, "x = !3.14!\n", []TokenType{IDENT, ASSIGN, NUMBER, NEWLINE})
	if got[2].Literal.(float64) != 3.14 {
		t.Fatalf("boxed numeral = %v, want 3.14", got[2].Literal)
	}
}

func Test_Lexer_BoxedNumeral_Unterminated(t *testing.T) {
	wantLexError(t, "x = !3.14\n", "numeral")
}

func Test_Lexer_BangEquals_IsNotBoxedNumeral(t *testing.T) {
	wantTypes(t, "x != 3\n", []TokenType{IDENT, NEQ, NUMBER, NEWLINE})
}

func Test_Lexer_ObjectIdentifier(t *testing.T) {
	got := wantTypes(t, "@Base@ = [\n    x = 1\n]\n", []TokenType{
		OBJIDENT, ASSIGN, LBRACKET, NEWLINE,
		INDENT, IDENT, ASSIGN, NUMBER, NEWLINE, DEDENT,
		RBRACKET, NEWLINE,
	})
	if got[0].Literal.(string) != "Base" {
		t.Fatalf("object ident name = %q, want %q", got[0].Literal, "Base")
	}
}

func Test_Lexer_ObjectIdentifier_Unterminated(t *testing.T) {
	wantLexError(t, "@Base = 1\n", "@")
}

func Test_Lexer_IndentDedent_Balanced(t *testing.T) {
	src := "if [x < 3]\n    print(x)\n    if [x < 1]\n        print(0)\nprint(9)\n"
	got := toks(t, src)
	depth := 0
	for _, tk := range got {
		switch tk.Type {
		case INDENT:
			depth++
		case DEDENT:
			depth--
		}
		if depth < 0 {
			t.Fatalf("DEDENT without matching INDENT at line %d", tk.Line)
		}
	}
	if depth != 0 {
		t.Fatalf("unbalanced INDENT/DEDENT: depth %d at EOF", depth)
	}
}

func Test_Lexer_DedentToUnknownLevel(t *testing.T) {
	src := "if [x]\n        print(1)\n    print(2)\n"
	wantLexError(t, src, "unindent")
}

func Test_Lexer_TabsExpandToFourColumns(t *testing.T) {
	// A tab and four spaces land on the same indentation level.
	src := "if [x]\n\tprint(1)\n    print(2)\n"
	got := toks(t, src)
	indents, dedents := 0, 0
	for _, tk := range got {
		switch tk.Type {
		case INDENT:
			indents++
		case DEDENT:
			dedents++
		}
	}
	if indents != 1 || dedents != 1 {
		t.Fatalf("got %d INDENT / %d DEDENT, want 1 / 1", indents, dedents)
	}
}

func Test_Lexer_BlankAndCommentLines_IgnoreIndentation(t *testing.T) {
	src := "while [x < 2]\n    x = x + 1\n\n# comment at column zero\n    x = x + 1\n"
	wantTypes(t, src, []TokenType{
		WHILE, LBRACKET, IDENT, LESS, NUMBER, RBRACKET, NEWLINE,
		INDENT, IDENT, ASSIGN, IDENT, PLUS, NUMBER, NEWLINE,
		IDENT, ASSIGN, IDENT, PLUS, NUMBER, NEWLINE, DEDENT,
	})
}

func Test_Lexer_TwoCharOperators(t *testing.T) {
	wantTypes(t, "a == b != c <= d >= e\n", []TokenType{
		IDENT, EQ, IDENT, NEQ, IDENT, LESS_EQ, IDENT, GREATER_EQ, IDENT, NEWLINE,
	})
	wantTypes(t, "a += 1\nb -= 2\nc *= 3\nd /= 4\n", []TokenType{
		IDENT, PLUS_EQ, NUMBER, NEWLINE,
		IDENT, MINUS_EQ, NUMBER, NEWLINE,
		IDENT, MULT_EQ, NUMBER, NEWLINE,
		IDENT, DIV_EQ, NUMBER, NEWLINE,
	})
}

func Test_Lexer_Keywords(t *testing.T) {
	wantTypes(t, "func f()\n    return null\n", []TokenType{
		FUNC, IDENT, LPAREN, RPAREN, NEWLINE,
		INDENT, RETURN, NULL, NEWLINE, DEDENT,
	})
	// "function" is an accepted alias for "func".
	got := wantTypes(t, "function f()\n    return true\n", []TokenType{
		FUNC, IDENT, LPAREN, RPAREN, NEWLINE,
		INDENT, RETURN, BOOLEAN, NEWLINE, DEDENT,
	})
	if got[7].Literal.(bool) != true {
		t.Fatalf("boolean literal = %v, want true", got[7].Literal)
	}
}

func Test_Lexer_Strings_BothQuoteStyles_NoEscapes(t *testing.T) {
	got := wantTypes(t, `x = "a\n" + 'b'`+"\n", []TokenType{
		IDENT, ASSIGN, STRING, PLUS, STRING, NEWLINE,
	})
	// No escape processing: the backslash-n stays two characters.
	if got[2].Literal.(string) != `a\n` {
		t.Fatalf("string literal = %q, want %q", got[2].Literal, `a\n`)
	}
	if got[4].Literal.(string) != "b" {
		t.Fatalf("string literal = %q, want %q", got[4].Literal, "b")
	}
}

func Test_Lexer_String_Unterminated(t *testing.T) {
	wantLexError(t, "x = \"abc\n", "string")
}

func Test_Lexer_MissingFinalNewline(t *testing.T) {
	wantTypes(t, "x = 1", []TokenType{IDENT, ASSIGN, NUMBER, NEWLINE})
}

func Test_Lexer_TrailingIndentUnwoundAtEOF(t *testing.T) {
	src := "if [x]\n    print(1)"
	got := toks(t, src)
	if got[len(got)-1].Type != EOF {
		t.Fatalf("last token = %v, want EOF", got[len(got)-1].Type)
	}
	if got[len(got)-2].Type != DEDENT {
		t.Fatalf("second-to-last token = %v, want DEDENT", got[len(got)-2].Type)
	}
}

func Test_Lexer_LineAndColumnPositions(t *testing.T) {
	got := toks(t, "x = 1\ny = 2\n")
	if got[0].Line != 1 || got[0].Col != 0 {
		t.Fatalf("x at %d:%d, want 1:0", got[0].Line, got[0].Col)
	}
	var y Token
	for _, tk := range got {
		if tk.Type == IDENT && tk.Lexeme == "y" {
			y = tk
		}
	}
	if y.Line != 2 || y.Col != 0 {
		t.Fatalf("y at %d:%d, want 2:0", y.Line, y.Col)
	}
}

func Test_Lexer_Deterministic(t *testing.T) {
	src := "func f(a, b)\n    return a + b\nprint(f(1, 2))\n"
	a := toks(t, src)
	b := toks(t, src)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("two scans of identical input differ:\n%s", diff)
	}
}
