// parser.go — recursive-descent parser for Gilgamesh.
//
// The parser consumes the token stream produced by the indentation-aware
// lexer (see lexer.go) and builds the typed AST defined in ast.go, rooted at
// *Program. It uses one-token lookahead everywhere except two places that
// need a two-token peek:
//
//   - IDENT followed by an assignment operator is an assignment statement,
//     never an expression statement;
//   - IDENT followed by OBJIDENT is the parent-qualified object definition.
//
// Expression precedence, low to high:
//
//	or  <  and  <  == != < <= > >=  <  + -  <  * /  <  unary - not  <  postfix
//
// The comparison level chains left-associatively. Postfix chains are member
// access (`.name`) and calls (`(args)`), resolved left to right.
//
// Blocks are NEWLINE INDENT stmt+ DEDENT. Object-definition bodies add `[`
// before the newline and `]` after the dedent. NEWLINE tokens between
// statements are skipped.
//
// A call-shaped suffix after a reserved type-constructor name (Color, Point,
// Size, Rect — a compile-time set) is not parsed as an expression: the raw
// token span is captured verbatim, tracking nested bracket balance, into a
// TypeConstruction node for the interpreter and host bridge to consume.
//
// All parse errors are fatal *ParseError values carrying the offending token;
// there is no resynchronization or partial-AST recovery. In interactive mode
// an error at EOF is flagged AtEOF so a REPL can prompt for more input.
package gilgamesh

import "fmt"

// typeConstructors is the reserved constructor-name set. Membership is a
// static check made at parse time.
var typeConstructors = map[string]bool{
	"Color": true,
	"Point": true,
	"Size":  true,
	"Rect":  true,
}

// Parse tokenizes and parses a complete source string.
func Parse(src string) (*Program, error) {
	return parse(src, false)
}

// ParseInteractive parses in REPL-friendly mode: errors caused by running out
// of input are flagged AtEOF (see IsIncomplete in errors.go).
func ParseInteractive(src string) (*Program, error) {
	return parse(src, true)
}

func parse(src string, interactive bool) (*Program, error) {
	toks, err := NewLexer(src).Scan()
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, interactive: interactive}
	return p.program()
}

// parseExprTokens parses one standalone expression from a raw token slice
// (used to consume captured type-constructor arguments).
func parseExprTokens(toks []Token) (Expr, error) {
	toks = append(append([]Token(nil), toks...), Token{Type: EOF})
	p := &parser{toks: toks}
	e, err := p.expression()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, p.errAt(p.peek(), "unexpected token after expression")
	}
	return e, nil
}

type parser struct {
	toks        []Token
	i           int
	interactive bool
}

// ----- token basics -----

func (p *parser) peek() Token {
	if p.i >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.i]
}

func (p *parser) peekN(n int) Token {
	if p.i+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i+n]
}

func (p *parser) prev() Token { return p.toks[p.i-1] }

func (p *parser) atEnd() bool { return p.peek().Type == EOF }

func (p *parser) match(tt ...TokenType) bool {
	for _, t := range tt {
		if p.peek().Type == t {
			p.i++
			return true
		}
	}
	return false
}

func (p *parser) need(t TokenType, msg string) (Token, error) {
	if p.match(t) {
		return p.prev(), nil
	}
	return Token{}, p.errAt(p.peek(), msg)
}

func (p *parser) errAt(tok Token, msg string) error {
	return &ParseError{
		Line:  tok.Line,
		Col:   tok.Col,
		Msg:   msg,
		Tok:   tok,
		AtEOF: p.interactive && tok.Type == EOF,
	}
}

func (p *parser) skipNewlines() {
	for p.peek().Type == NEWLINE {
		p.i++
	}
}

// endStmt consumes the statement terminator. EOF and DEDENT are tolerated so
// callers never need a trailing newline (the lexer normally supplies one).
func (p *parser) endStmt() error {
	switch p.peek().Type {
	case NEWLINE:
		p.i++
		return nil
	case EOF, DEDENT:
		return nil
	}
	return p.errAt(p.peek(), "expected end of statement")
}

// ----- program / blocks -----

func (p *parser) program() (*Program, error) {
	prog := &Program{}
	p.skipNewlines()
	for !p.atEnd() {
		s, err := p.statement()
		if err != nil {
			return nil, err
		}
		prog.Body = append(prog.Body, s)
		p.skipNewlines()
	}
	return prog, nil
}

// block parses NEWLINE INDENT stmt+ DEDENT.
func (p *parser) block() ([]Stmt, error) {
	if _, err := p.need(NEWLINE, "expected newline before indented block"); err != nil {
		return nil, err
	}
	p.skipNewlines()
	if _, err := p.need(INDENT, "expected indented block"); err != nil {
		return nil, err
	}
	var body []Stmt
	p.skipNewlines()
	for p.peek().Type != DEDENT && !p.atEnd() {
		s, err := p.statement()
		if err != nil {
			return nil, err
		}
		body = append(body, s)
		p.skipNewlines()
	}
	if _, err := p.need(DEDENT, "expected dedent to close block"); err != nil {
		return nil, err
	}
	return body, nil
}

// bracketCond parses `[ expr ]` (the bracketed test of if/elif/while).
func (p *parser) bracketCond() (Expr, error) {
	if _, err := p.need(LBRACKET, "expected '[' before condition"); err != nil {
		return nil, err
	}
	e, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.need(RBRACKET, "expected ']' after condition"); err != nil {
		return nil, err
	}
	return e, nil
}

// ----- statement dispatch -----

func isAssignOp(t TokenType) bool {
	switch t {
	case ASSIGN, PLUS_EQ, MINUS_EQ, MULT_EQ, DIV_EQ:
		return true
	}
	return false
}

func (p *parser) statement() (Stmt, error) {
	switch p.peek().Type {
	case FUNC:
		return p.funcDecl()
	case IF:
		return p.ifStmt()
	case WHILE:
		return p.whileStmt()
	case FOR:
		return p.forStmt()
	case RETURN:
		return p.returnStmt()
	case BREAK:
		tok := p.peek()
		p.i++
		return &BreakStmt{Line: tok.Line}, p.endStmt()
	case CONTINUE:
		tok := p.peek()
		p.i++
		return &ContinueStmt{Line: tok.Line}, p.endStmt()
	case IMPORT:
		return p.importStmt()
	case VAR:
		s, err := p.varDecl()
		if err != nil {
			return nil, err
		}
		return s, p.endStmt()
	case OBJIDENT:
		return p.objectDef("")
	case IDENT:
		if p.peekN(1).Type == OBJIDENT {
			parent := p.peek().Literal.(string)
			p.i++
			return p.objectDef(parent)
		}
		if isAssignOp(p.peekN(1).Type) {
			s, err := p.identAssign()
			if err != nil {
				return nil, err
			}
			return s, p.endStmt()
		}
	}
	return p.exprStmt()
}

// ----- statement sub-parsers -----

func (p *parser) funcDecl() (Stmt, error) {
	kw := p.peek()
	p.i++ // 'func'
	name, err := p.need(IDENT, "expected function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.need(LPAREN, "expected '(' after function name"); err != nil {
		return nil, err
	}
	var params []string
	if p.peek().Type != RPAREN {
		for {
			pn, err := p.need(IDENT, "expected parameter name")
			if err != nil {
				return nil, err
			}
			params = append(params, pn.Literal.(string))
			if !p.match(COMMA) {
				break
			}
		}
	}
	if _, err := p.need(RPAREN, "expected ')' after parameters"); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &FuncDecl{Name: name.Literal.(string), Params: params, Body: body, Line: kw.Line}, nil
}

// objectDef parses `@Name@ = [ <indented properties> ]` with an optional,
// already-consumed parent identifier.
func (p *parser) objectDef(parent string) (Stmt, error) {
	tok, err := p.need(OBJIDENT, "expected object identifier")
	if err != nil {
		return nil, err
	}
	if _, err := p.need(ASSIGN, "expected '=' after object identifier"); err != nil {
		return nil, err
	}
	if _, err := p.need(LBRACKET, "expected '[' to open object body"); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	if _, err := p.need(RBRACKET, "expected ']' to close object body"); err != nil {
		return nil, err
	}
	if err := p.endStmt(); err != nil {
		return nil, err
	}
	return &ObjectDef{Name: tok.Literal.(string), Parent: parent, Body: body, Line: tok.Line}, nil
}

// varDecl parses `var[name] = expr` without consuming the terminator.
func (p *parser) varDecl() (Stmt, error) {
	kw := p.peek()
	p.i++ // 'var'
	if _, err := p.need(LBRACKET, "expected '[' after var"); err != nil {
		return nil, err
	}
	name, err := p.need(IDENT, "expected variable name")
	if err != nil {
		return nil, err
	}
	if _, err := p.need(RBRACKET, "expected ']' after variable name"); err != nil {
		return nil, err
	}
	if _, err := p.need(ASSIGN, "expected '=' in declaration"); err != nil {
		return nil, err
	}
	val, err := p.expression()
	if err != nil {
		return nil, err
	}
	return &VarDecl{Name: name.Literal.(string), Value: val, Line: kw.Line}, nil
}

// identAssign parses `name <op> expr` without consuming the terminator.
func (p *parser) identAssign() (Stmt, error) {
	name := p.peek()
	p.i++
	op := p.peek()
	p.i++
	val, err := p.expression()
	if err != nil {
		return nil, err
	}
	return &Assign{
		Target: &Ident{Name: name.Literal.(string), Line: name.Line},
		Op:     op.Type,
		Value:  val,
		Line:   name.Line,
	}, nil
}

func (p *parser) ifStmt() (Stmt, error) {
	kw := p.peek()
	p.i++ // 'if'
	test, err := p.bracketCond()
	if err != nil {
		return nil, err
	}
	cons, err := p.block()
	if err != nil {
		return nil, err
	}
	out := &IfStmt{Test: test, Consequent: cons, Line: kw.Line}
	for p.peek().Type == ELIF {
		p.i++
		etest, err := p.bracketCond()
		if err != nil {
			return nil, err
		}
		ebody, err := p.block()
		if err != nil {
			return nil, err
		}
		out.Elifs = append(out.Elifs, ElifClause{Test: etest, Body: ebody})
	}
	if p.peek().Type == ELSE {
		p.i++
		alt, err := p.block()
		if err != nil {
			return nil, err
		}
		out.Alternate = alt
	}
	return out, nil
}

func (p *parser) whileStmt() (Stmt, error) {
	kw := p.peek()
	p.i++ // 'while'
	test, err := p.bracketCond()
	if err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{Test: test, Body: body, Line: kw.Line}, nil
}

// forStmt dispatches between the C-style form `for [init; test; update]` and
// the range form `for i = start to end`.
func (p *parser) forStmt() (Stmt, error) {
	kw := p.peek()
	p.i++ // 'for'
	if p.peek().Type == LBRACKET {
		return p.forCStyle(kw)
	}
	return p.forRange(kw)
}

func (p *parser) forCStyle(kw Token) (Stmt, error) {
	p.i++ // '['
	out := &ForStmt{Line: kw.Line}
	var err error
	if p.peek().Type != SEMICOLON {
		if out.Init, err = p.smallAssign(); err != nil {
			return nil, err
		}
	}
	if _, err := p.need(SEMICOLON, "expected ';' after loop initializer"); err != nil {
		return nil, err
	}
	if p.peek().Type != SEMICOLON {
		if out.Test, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.need(SEMICOLON, "expected ';' after loop condition"); err != nil {
		return nil, err
	}
	if p.peek().Type != RBRACKET {
		if out.Update, err = p.smallAssign(); err != nil {
			return nil, err
		}
	}
	if _, err := p.need(RBRACKET, "expected ']' to close loop header"); err != nil {
		return nil, err
	}
	if out.Body, err = p.block(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *parser) forRange(kw Token) (Stmt, error) {
	name, err := p.need(IDENT, "expected loop iterator name")
	if err != nil {
		return nil, err
	}
	if _, err := p.need(ASSIGN, "expected '=' after loop iterator"); err != nil {
		return nil, err
	}
	start, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.need(TO, "expected 'to' in range loop"); err != nil {
		return nil, err
	}
	end, err := p.expression()
	if err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &ForRangeStmt{
		Iterator: name.Literal.(string),
		Start:    start,
		End:      end,
		Body:     body,
		Line:     kw.Line,
	}, nil
}

// smallAssign parses the assignment-or-declaration forms allowed inside a
// C-style loop header: `var[x] = e` or `x <op> e`.
func (p *parser) smallAssign() (Stmt, error) {
	if p.peek().Type == VAR {
		return p.varDecl()
	}
	if p.peek().Type == IDENT && isAssignOp(p.peekN(1).Type) {
		return p.identAssign()
	}
	return nil, p.errAt(p.peek(), "expected assignment in loop header")
}

func (p *parser) returnStmt() (Stmt, error) {
	kw := p.peek()
	p.i++ // 'return'
	out := &ReturnStmt{Line: kw.Line}
	if p.peek().Type != NEWLINE && p.peek().Type != EOF && p.peek().Type != DEDENT {
		v, err := p.expression()
		if err != nil {
			return nil, err
		}
		out.Value = v
	}
	return out, p.endStmt()
}

// importStmt consumes every token through end of line into one dotted module
// name, which tolerates filename extensions (`import shapes.circle.gil`).
func (p *parser) importStmt() (Stmt, error) {
	kw := p.peek()
	p.i++ // 'import'
	name := ""
	for p.peek().Type != NEWLINE && p.peek().Type != EOF && p.peek().Type != DEDENT {
		tok := p.peek()
		switch tok.Type {
		case IDENT, DOT:
			name += tok.Lexeme
		default:
			return nil, p.errAt(tok, "unexpected token in module name")
		}
		p.i++
	}
	if name == "" {
		return nil, p.errAt(p.peek(), "expected module name after import")
	}
	return &ImportStmt{ModuleName: name, Line: kw.Line}, p.endStmt()
}

// exprStmt parses a bare expression statement. When the parsed expression is
// a member access followed by an assignment operator, the statement is
// re-shaped into a property assignment (`obj.prop = e`).
func (p *parser) exprStmt() (Stmt, error) {
	tok := p.peek()
	e, err := p.expression()
	if err != nil {
		return nil, err
	}
	if m, okMember := e.(*MemberExpr); okMember && isAssignOp(p.peek().Type) {
		op := p.peek()
		p.i++
		val, err := p.expression()
		if err != nil {
			return nil, err
		}
		return &Assign{Target: m, Op: op.Type, Value: val, Line: tok.Line}, p.endStmt()
	}
	return &ExprStmt{X: e, Line: tok.Line}, p.endStmt()
}

// ----- expressions -----

func (p *parser) expression() (Expr, error) { return p.exprOr() }

func (p *parser) exprOr() (Expr, error) {
	left, err := p.exprAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == OR {
		op := p.peek()
		p.i++
		right, err := p.exprAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: OR, Left: left, Right: right, Line: op.Line}
	}
	return left, nil
}

func (p *parser) exprAnd() (Expr, error) {
	left, err := p.exprCompare()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == AND {
		op := p.peek()
		p.i++
		right, err := p.exprCompare()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: AND, Left: left, Right: right, Line: op.Line}
	}
	return left, nil
}

func (p *parser) exprCompare() (Expr, error) {
	left, err := p.exprAdditive()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().Type {
		case EQ, NEQ, LESS, LESS_EQ, GREATER, GREATER_EQ:
			op := p.peek()
			p.i++
			right, err := p.exprAdditive()
			if err != nil {
				return nil, err
			}
			left = &BinaryExpr{Op: op.Type, Left: left, Right: right, Line: op.Line}
		default:
			return left, nil
		}
	}
}

func (p *parser) exprAdditive() (Expr, error) {
	left, err := p.exprMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == PLUS || p.peek().Type == MINUS {
		op := p.peek()
		p.i++
		right, err := p.exprMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op.Type, Left: left, Right: right, Line: op.Line}
	}
	return left, nil
}

func (p *parser) exprMultiplicative() (Expr, error) {
	left, err := p.exprUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == MULT || p.peek().Type == DIV {
		op := p.peek()
		p.i++
		right, err := p.exprUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op.Type, Left: left, Right: right, Line: op.Line}
	}
	return left, nil
}

func (p *parser) exprUnary() (Expr, error) {
	if p.peek().Type == MINUS || p.peek().Type == NOT {
		op := p.peek()
		p.i++
		x, err := p.exprUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: op.Type, X: x, Line: op.Line}, nil
	}
	return p.exprPostfix()
}

// exprPostfix parses a primary expression followed by member/call chains.
func (p *parser) exprPostfix() (Expr, error) {
	e, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().Type {
		case DOT:
			dot := p.peek()
			p.i++
			prop, err := p.need(IDENT, "expected property name after '.'")
			if err != nil {
				return nil, err
			}
			e = &MemberExpr{Object: e, Property: prop.Literal.(string), Line: dot.Line}
		case LPAREN:
			paren := p.peek()
			p.i++
			args, err := p.callArgs()
			if err != nil {
				return nil, err
			}
			e = &CallExpr{Callee: e, Args: args, Line: paren.Line}
		default:
			return e, nil
		}
	}
}

// callArgs parses the argument list after an already-consumed '('.
func (p *parser) callArgs() ([]Expr, error) {
	var args []Expr
	if p.peek().Type != RPAREN {
		for {
			a, err := p.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if !p.match(COMMA) {
				break
			}
		}
	}
	if _, err := p.need(RPAREN, "expected ')' after arguments"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser) primary() (Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case NUMBER, STRING, BOOLEAN:
		p.i++
		return &Literal{Value: tok.Literal, Line: tok.Line}, nil
	case NULL:
		p.i++
		return &Literal{Value: nil, Line: tok.Line}, nil
	case IDENT:
		name := tok.Literal.(string)
		if typeConstructors[name] && p.peekN(1).Type == LPAREN {
			return p.typeConstruction(tok)
		}
		p.i++
		return &Ident{Name: name, Line: tok.Line}, nil
	case EVAL:
		p.i++
		if _, err := p.need(LPAREN, "expected '(' after eval"); err != nil {
			return nil, err
		}
		arg, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.need(RPAREN, "expected ')' after eval argument"); err != nil {
			return nil, err
		}
		return &EvalCall{Argument: arg, Line: tok.Line}, nil
	case LBRACKET:
		p.i++
		var elems []Expr
		if p.peek().Type != RBRACKET {
			for {
				e, err := p.expression()
				if err != nil {
					return nil, err
				}
				elems = append(elems, e)
				if !p.match(COMMA) {
					break
				}
			}
		}
		if _, err := p.need(RBRACKET, "expected ']' after array elements"); err != nil {
			return nil, err
		}
		return &ArrayLit{Elements: elems, Line: tok.Line}, nil
	case LPAREN:
		p.i++
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.need(RPAREN, "expected ')' after expression"); err != nil {
			return nil, err
		}
		return e, nil
	}
	return nil, p.errAt(tok, "expected expression")
}

// typeConstruction captures the raw token span of `Name( ... )` without
// recursing into it as an expression. Bracket balance is tracked so nested
// parentheses and array brackets survive verbatim.
func (p *parser) typeConstruction(nameTok Token) (Expr, error) {
	p.i++ // constructor name
	p.i++ // '('
	depth := 0
	var raw []Token
	for {
		tok := p.peek()
		switch tok.Type {
		case EOF, NEWLINE:
			return nil, p.errAt(tok, fmt.Sprintf("unterminated %s constructor", nameTok.Literal.(string)))
		case LPAREN, LBRACKET:
			depth++
		case RBRACKET:
			depth--
		case RPAREN:
			if depth == 0 {
				p.i++
				return &TypeConstruction{
					Callee:    nameTok.Literal.(string),
					RawTokens: raw,
					Line:      nameTok.Line,
				}, nil
			}
			depth--
		}
		raw = append(raw, tok)
		p.i++
	}
}
