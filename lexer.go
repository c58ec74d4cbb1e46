// lexer.go — indentation-aware scanner for Gilgamesh source.
//
// The lexer makes a single forward pass over UTF-8 source text and emits a
// flat token slice terminated by EOF. Block structure is carried by synthetic
// INDENT / DEDENT tokens derived from an indentation stack (4-column tab
// expansion), with a NEWLINE token closing every logical line. Blank lines and
// full-line '#' comments never touch the indentation stack.
//
// Greedy priority order when scanning a line:
//  1. '#' comments (discarded to end of line)
//  2. boxed numerals  !5!  !3.14!   (legacy form; same NUMBER token)
//  3. string literals "..." or '...'  (no escape processing)
//  4. object identifiers  @Name@
//  5. keywords / boolean / null, then bare identifiers
//  6. bare digit sequences
//  7. two-char operators (==, !=, <=, >=, +=, -=, *=, /=) before their
//     one-char prefixes
//
// Tokenization is pure: identical input always yields identical output.
// Malformed input (unterminated string, unterminated @...@, unterminated
// boxed numeral, bad dedent) is a fatal *LexError carrying line/column.
package gilgamesh

import (
	"fmt"
	"strconv"
)

// TokenType represents the kind of token.
type TokenType int

const (
	// Structural
	EOF TokenType = iota
	NEWLINE
	INDENT // Literal holds the new absolute indentation width (int)
	DEDENT

	// Literals & identifiers
	IDENT
	OBJIDENT // @Name@ — distinct object-definition namespace
	NUMBER
	STRING
	BOOLEAN
	NULL

	// Punctuation
	LPAREN    // "("
	RPAREN    // ")"
	LBRACKET  // "["
	RBRACKET  // "]"
	COMMA     // ","
	DOT       // "."
	SEMICOLON // ";"

	// Operators
	ASSIGN     // "="
	PLUS_EQ    // "+="
	MINUS_EQ   // "-="
	MULT_EQ    // "*="
	DIV_EQ     // "/="
	EQ         // "=="
	NEQ        // "!="
	LESS       // "<"
	LESS_EQ    // "<="
	GREATER    // ">"
	GREATER_EQ // ">="
	PLUS       // "+"
	MINUS      // "-"
	MULT       // "*"
	DIV        // "/"

	// Keywords
	FUNC
	IF
	ELIF
	ELSE
	WHILE
	FOR
	TO
	RETURN
	BREAK
	CONTINUE
	IMPORT
	VAR
	EVAL
	AND
	OR
	NOT
)

var tokenNames = [...]string{
	EOF: "EOF", NEWLINE: "NEWLINE", INDENT: "INDENT", DEDENT: "DEDENT",
	IDENT: "IDENT", OBJIDENT: "OBJIDENT", NUMBER: "NUMBER", STRING: "STRING",
	BOOLEAN: "BOOLEAN", NULL: "NULL",
	LPAREN: "LPAREN", RPAREN: "RPAREN", LBRACKET: "LBRACKET", RBRACKET: "RBRACKET",
	COMMA: "COMMA", DOT: "DOT", SEMICOLON: "SEMICOLON",
	ASSIGN: "ASSIGN", PLUS_EQ: "PLUS_EQ", MINUS_EQ: "MINUS_EQ",
	MULT_EQ: "MULT_EQ", DIV_EQ: "DIV_EQ",
	EQ: "EQ", NEQ: "NEQ", LESS: "LESS", LESS_EQ: "LESS_EQ",
	GREATER: "GREATER", GREATER_EQ: "GREATER_EQ",
	PLUS: "PLUS", MINUS: "MINUS", MULT: "MULT", DIV: "DIV",
	FUNC: "FUNC", IF: "IF", ELIF: "ELIF", ELSE: "ELSE", WHILE: "WHILE",
	FOR: "FOR", TO: "TO", RETURN: "RETURN", BREAK: "BREAK",
	CONTINUE: "CONTINUE", IMPORT: "IMPORT", VAR: "VAR", EVAL: "EVAL",
	AND: "AND", OR: "OR", NOT: "NOT",
}

func (t TokenType) String() string {
	if int(t) < len(tokenNames) && tokenNames[t] != "" {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token is a lexical token with optional literal value.
type Token struct {
	Type    TokenType
	Lexeme  string      // raw text slice
	Literal interface{} // parsed value for literals
	Line    int         // 1-based
	Col     int         // 0-based
}

var keywords = map[string]TokenType{
	"func":     FUNC,
	"function": FUNC, // accepted alias
	"if":       IF,
	"elif":     ELIF,
	"else":     ELSE,
	"while":    WHILE,
	"for":      FOR,
	"to":       TO,
	"return":   RETURN,
	"break":    BREAK,
	"continue": CONTINUE,
	"import":   IMPORT,
	"var":      VAR,
	"eval":     EVAL,
	"and":      AND,
	"or":       OR,
	"not":      NOT,
	"true":     BOOLEAN,
	"false":    BOOLEAN,
	"null":     NULL,
}

const tabWidth = 4

// Lexer scans a Gilgamesh source string into tokens.
type Lexer struct {
	src    string
	start  int // start index of current token
	cur    int // current index
	line   int // 1-based
	col    int // 0-based column within line
	tokens []Token

	indents     []int // indentation stack; base level 0 always present
	atLineStart bool

	tokStartLine int
	tokStartCol  int
}

// NewLexer creates a new lexer for the given source.
func NewLexer(src string) *Lexer {
	return &Lexer{
		src:         src,
		line:        1,
		indents:     []int{0},
		atLineStart: true,
	}
}

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	return l.src[l.cur], true
}

func (l *Lexer) peekN(n int) (byte, bool) {
	idx := l.cur + n
	if idx >= len(l.src) {
		return 0, false
	}
	return l.src[idx], true
}

func (l *Lexer) advance() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	return ch, true
}

func (l *Lexer) addToken(tt TokenType, lit interface{}) {
	l.tokens = append(l.tokens, Token{
		Type:    tt,
		Lexeme:  l.src[l.start:l.cur],
		Literal: lit,
		Line:    l.tokStartLine,
		Col:     l.tokStartCol,
	})
	l.start = l.cur
}

// emit appends a synthetic token with no lexeme (INDENT/DEDENT/NEWLINE/EOF).
func (l *Lexer) emit(tt TokenType, lit interface{}) {
	l.tokens = append(l.tokens, Token{Type: tt, Literal: lit, Line: l.line, Col: l.col})
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' }
func isAlphaNum(b byte) bool {
	return isAlpha(b) || isDigit(b)
}

func (l *Lexer) err(msg string) error {
	return &LexError{Line: l.line, Col: l.col, Msg: msg}
}

// ----- indentation handling -----

// handleLineStart measures the indentation of the coming line and emits
// INDENT/DEDENT tokens against the stack. Blank lines and full-line comments
// are consumed here without touching the stack.
func (l *Lexer) handleLineStart() error {
	for {
		width := 0
		for {
			b, ok := l.peek()
			if !ok {
				return nil // EOF handled by Scan
			}
			if b == ' ' {
				width++
				l.advance()
				continue
			}
			if b == '\t' {
				width = (width/tabWidth + 1) * tabWidth
				l.advance()
				continue
			}
			break
		}
		b, ok := l.peek()
		if !ok {
			return nil
		}
		if b == '\n' || b == '\r' {
			l.advance() // blank line
			continue
		}
		if b == '#' {
			l.skipComment()
			if b2, ok2 := l.peek(); ok2 && b2 == '\n' {
				l.advance()
			}
			continue
		}

		top := l.indents[len(l.indents)-1]
		switch {
		case width > top:
			l.indents = append(l.indents, width)
			l.emit(INDENT, width)
		case width < top:
			for len(l.indents) > 1 && l.indents[len(l.indents)-1] > width {
				l.indents = l.indents[:len(l.indents)-1]
				l.emit(DEDENT, nil)
			}
			if l.indents[len(l.indents)-1] != width {
				return l.err("unindent does not match any outer indentation level")
			}
		}
		l.atLineStart = false
		l.start = l.cur
		return nil
	}
}

func (l *Lexer) skipComment() {
	for {
		b, ok := l.peek()
		if !ok || b == '\n' {
			return
		}
		l.advance()
	}
}

// ----- scanners -----

// scanNumber parses a bare digit sequence with an optional fraction.
func (l *Lexer) scanNumber() (float64, error) {
	for {
		b, ok := l.peek()
		if !ok || !isDigit(b) {
			break
		}
		l.advance()
	}
	if b, ok := l.peek(); ok && b == '.' {
		if b2, ok2 := l.peekN(1); ok2 && isDigit(b2) {
			l.advance() // consume '.'
			for {
				b, ok := l.peek()
				if !ok || !isDigit(b) {
					break
				}
				l.advance()
			}
		}
	}
	v, convErr := strconv.ParseFloat(l.src[l.start:l.cur], 64)
	if convErr != nil {
		return 0, l.err("invalid numeric literal")
	}
	return v, nil
}

// scanBoxedNumber parses !N! or !N.N!. The leading '!' is already consumed.
func (l *Lexer) scanBoxedNumber() (float64, error) {
	digitStart := l.cur
	for {
		b, ok := l.peek()
		if !ok || !isDigit(b) {
			break
		}
		l.advance()
	}
	if b, ok := l.peek(); ok && b == '.' {
		l.advance()
		for {
			b, ok := l.peek()
			if !ok || !isDigit(b) {
				break
			}
			l.advance()
		}
	}
	digitEnd := l.cur
	b, ok := l.peek()
	if !ok || b != '!' {
		return 0, l.err("boxed numeral was not terminated with '!'")
	}
	l.advance() // closing '!'
	v, convErr := strconv.ParseFloat(l.src[digitStart:digitEnd], 64)
	if convErr != nil {
		return 0, l.err("invalid boxed numeral")
	}
	return v, nil
}

// scanString parses a quoted literal. No escape processing: the delimiter
// itself may not appear inside, and the literal may not span lines.
func (l *Lexer) scanString(del byte) (string, error) {
	start := l.cur
	for {
		b, ok := l.peek()
		if !ok || b == '\n' {
			return "", l.err("string was not terminated")
		}
		if b == del {
			s := l.src[start:l.cur]
			l.advance() // closing delimiter
			return s, nil
		}
		l.advance()
	}
}

// scanObjIdent parses @Name@. The leading '@' is already consumed.
func (l *Lexer) scanObjIdent() (string, error) {
	start := l.cur
	for {
		b, ok := l.peek()
		if !ok || b == '\n' {
			return "", l.err("object identifier was not terminated with '@'")
		}
		if b == '@' {
			name := l.src[start:l.cur]
			l.advance()
			if name == "" {
				return "", l.err("empty object identifier")
			}
			return name, nil
		}
		if !isAlphaNum(b) {
			return "", l.err(fmt.Sprintf("invalid character %q in object identifier", b))
		}
		l.advance()
	}
}

func (l *Lexer) scanIdentifier() string {
	for {
		b, ok := l.peek()
		if !ok || !isAlphaNum(b) {
			break
		}
		l.advance()
	}
	return l.src[l.start:l.cur]
}

// twoChar emits `long` when the next byte is '=', otherwise `short`.
func (l *Lexer) twoChar(short, long TokenType) {
	if b, ok := l.peek(); ok && b == '=' {
		l.advance()
		l.addToken(long, nil)
		return
	}
	l.addToken(short, nil)
}

// ----- main scanner -----

func (l *Lexer) scanToken() error {
	l.tokStartLine = l.line
	l.tokStartCol = l.col
	l.start = l.cur

	ch, ok := l.advance()
	if !ok {
		return nil
	}

	switch ch {
	case '\n':
		l.emit(NEWLINE, nil)
		l.atLineStart = true
		return nil
	case ' ', '\t', '\r':
		return nil
	case '#':
		l.skipComment()
		return nil
	case '(':
		l.addToken(LPAREN, nil)
		return nil
	case ')':
		l.addToken(RPAREN, nil)
		return nil
	case '[':
		l.addToken(LBRACKET, nil)
		return nil
	case ']':
		l.addToken(RBRACKET, nil)
		return nil
	case ',':
		l.addToken(COMMA, nil)
		return nil
	case '.':
		l.addToken(DOT, nil)
		return nil
	case ';':
		l.addToken(SEMICOLON, nil)
		return nil
	case '=':
		l.twoChar(ASSIGN, EQ)
		return nil
	case '<':
		l.twoChar(LESS, LESS_EQ)
		return nil
	case '>':
		l.twoChar(GREATER, GREATER_EQ)
		return nil
	case '+':
		l.twoChar(PLUS, PLUS_EQ)
		return nil
	case '-':
		l.twoChar(MINUS, MINUS_EQ)
		return nil
	case '*':
		l.twoChar(MULT, MULT_EQ)
		return nil
	case '/':
		l.twoChar(DIV, DIV_EQ)
		return nil
	case '!':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			l.addToken(NEQ, nil)
			return nil
		}
		if b, ok := l.peek(); ok && (isDigit(b) || b == '.') {
			v, err := l.scanBoxedNumber()
			if err != nil {
				return err
			}
			l.addToken(NUMBER, v)
			return nil
		}
		return l.err("unexpected character: '!'")
	case '@':
		name, err := l.scanObjIdent()
		if err != nil {
			return err
		}
		l.addToken(OBJIDENT, name)
		return nil
	case '"', '\'':
		s, err := l.scanString(ch)
		if err != nil {
			return err
		}
		l.addToken(STRING, s)
		return nil
	}

	if isDigit(ch) {
		l.cur = l.start // rescan from the first digit
		l.col = l.tokStartCol
		v, err := l.scanNumber()
		if err != nil {
			return err
		}
		l.addToken(NUMBER, v)
		return nil
	}

	if isAlpha(ch) {
		l.cur = l.start
		l.col = l.tokStartCol
		lex := l.scanIdentifier()
		if tt, isKw := keywords[lex]; isKw {
			switch tt {
			case BOOLEAN:
				l.addToken(BOOLEAN, lex == "true")
			case NULL:
				l.addToken(NULL, nil)
			default:
				l.addToken(tt, lex)
			}
			return nil
		}
		l.addToken(IDENT, lex)
		return nil
	}

	return l.err(fmt.Sprintf("unexpected character: %q", ch))
}

// Scan tokenizes the entire source. The returned slice always ends with EOF,
// and the indentation stack is fully unwound (one DEDENT per open level) even
// when the source omits trailing dedents.
func (l *Lexer) Scan() ([]Token, error) {
	for !l.isAtEnd() {
		if l.atLineStart {
			if err := l.handleLineStart(); err != nil {
				return nil, err
			}
			continue
		}
		if err := l.scanToken(); err != nil {
			return nil, err
		}
	}
	// Close the final logical line when the source lacks a trailing newline.
	if !l.atLineStart && len(l.tokens) > 0 {
		last := l.tokens[len(l.tokens)-1]
		if last.Type != NEWLINE {
			l.emit(NEWLINE, nil)
		}
	}
	for len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		l.emit(DEDENT, nil)
	}
	l.emit(EOF, nil)
	return l.tokens, nil
}
