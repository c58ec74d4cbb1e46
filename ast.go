// ast.go — syntax tree produced by the parser.
//
// Nodes are tagged Go structs behind two small marker interfaces, Stmt and
// Expr. Every node remembers the line of its leading token so runtime errors
// can point back into the source.
package gilgamesh

// Node is implemented by every AST node.
type Node interface {
	Pos() int // 1-based source line of the leading token
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Program is the AST root: top-level statements in source order.
type Program struct {
	Body []Stmt
}

// ----- statements -----

// FuncDecl declares a named function: `func name(a, b)` + indented body.
type FuncDecl struct {
	Name   string
	Params []string
	Body   []Stmt
	Line   int
}

// ObjectDef executes a bracketed, indented property body in an isolated frame
// and freezes the result as an object. Parent names an object whose current
// properties seed the new one (one-time shallow copy).
type ObjectDef struct {
	Name   string // from @Name@
	Parent string // optional parent identifier; "" when absent
	Body   []Stmt
	Line   int
}

// VarDecl is the bracket-qualified declaration form: `var[x] = expr`.
// It always binds in the innermost frame, shadowing outer bindings.
type VarDecl struct {
	Name  string
	Value Expr
	Line  int
}

// Assign covers `x = e`, compound forms (`+=` etc.), and property assignment
// `obj.prop = e`. Target is an *Ident or a *MemberExpr.
type Assign struct {
	Target Expr
	Op     TokenType // ASSIGN, PLUS_EQ, MINUS_EQ, MULT_EQ, DIV_EQ
	Value  Expr
	Line   int
}

// IfStmt is an if / elif* / else? chain.
type IfStmt struct {
	Test       Expr
	Consequent []Stmt
	Elifs      []ElifClause
	Alternate  []Stmt // nil when no else
	Line       int
}

type ElifClause struct {
	Test Expr
	Body []Stmt
}

type WhileStmt struct {
	Test Expr
	Body []Stmt
	Line int
}

// ForStmt is the C-style loop: `for [init; test; update]`.
// Init and Update are statements (assignments or declarations); any of the
// three slots may be nil.
type ForStmt struct {
	Init   Stmt
	Test   Expr
	Update Stmt
	Body   []Stmt
	Line   int
}

// ForRangeStmt is the range loop: `for i = start to end` (inclusive bounds).
type ForRangeStmt struct {
	Iterator string
	Start    Expr
	End      Expr
	Body     []Stmt
	Line     int
}

type ReturnStmt struct {
	Value Expr // nil for a bare return
	Line  int
}

type BreakStmt struct{ Line int }

type ContinueStmt struct{ Line int }

// ImportStmt binds a host-resolved module under the leading dotted segment.
type ImportStmt struct {
	ModuleName string // full dotted name as written, e.g. "shapes.circle"
	Line       int
}

type ExprStmt struct {
	X    Expr
	Line int
}

func (s *FuncDecl) Pos() int     { return s.Line }
func (s *ObjectDef) Pos() int    { return s.Line }
func (s *VarDecl) Pos() int      { return s.Line }
func (s *Assign) Pos() int       { return s.Line }
func (s *IfStmt) Pos() int       { return s.Line }
func (s *WhileStmt) Pos() int    { return s.Line }
func (s *ForStmt) Pos() int      { return s.Line }
func (s *ForRangeStmt) Pos() int { return s.Line }
func (s *ReturnStmt) Pos() int   { return s.Line }
func (s *BreakStmt) Pos() int    { return s.Line }
func (s *ContinueStmt) Pos() int { return s.Line }
func (s *ImportStmt) Pos() int   { return s.Line }
func (s *ExprStmt) Pos() int     { return s.Line }

func (*FuncDecl) stmtNode()     {}
func (*ObjectDef) stmtNode()    {}
func (*VarDecl) stmtNode()      {}
func (*Assign) stmtNode()       {}
func (*IfStmt) stmtNode()       {}
func (*WhileStmt) stmtNode()    {}
func (*ForStmt) stmtNode()      {}
func (*ForRangeStmt) stmtNode() {}
func (*ReturnStmt) stmtNode()   {}
func (*BreakStmt) stmtNode()    {}
func (*ContinueStmt) stmtNode() {}
func (*ImportStmt) stmtNode()   {}
func (*ExprStmt) stmtNode()     {}

// ----- expressions -----

// Literal holds a constant: float64, string, bool, or nil for null.
type Literal struct {
	Value interface{}
	Line  int
}

type Ident struct {
	Name string
	Line int
}

type ArrayLit struct {
	Elements []Expr
	Line     int
}

type BinaryExpr struct {
	Op    TokenType
	Left  Expr
	Right Expr
	Line  int
}

type UnaryExpr struct {
	Op   TokenType // MINUS or NOT
	X    Expr
	Line int
}

type CallExpr struct {
	Callee Expr
	Args   []Expr
	Line   int
}

type MemberExpr struct {
	Object   Expr
	Property string
	Line     int
}

// EvalCall is `eval(expr)`: runtime re-tokenization and re-parse of a string,
// memoized per interpreter instance.
type EvalCall struct {
	Argument Expr
	Line     int
}

// TypeConstruction captures a bracketed argument span verbatim when a call
// suffix follows a reserved constructor name (Color, Point, Size, Rect). The
// raw tokens exclude the outer parentheses; consumption is deferred to the
// interpreter and the host bridge.
type TypeConstruction struct {
	Callee    string
	RawTokens []Token
	Line      int
}

func (e *Literal) Pos() int          { return e.Line }
func (e *Ident) Pos() int            { return e.Line }
func (e *ArrayLit) Pos() int         { return e.Line }
func (e *BinaryExpr) Pos() int       { return e.Line }
func (e *UnaryExpr) Pos() int        { return e.Line }
func (e *CallExpr) Pos() int         { return e.Line }
func (e *MemberExpr) Pos() int       { return e.Line }
func (e *EvalCall) Pos() int         { return e.Line }
func (e *TypeConstruction) Pos() int { return e.Line }

func (*Literal) exprNode()          {}
func (*Ident) exprNode()            {}
func (*ArrayLit) exprNode()         {}
func (*BinaryExpr) exprNode()       {}
func (*UnaryExpr) exprNode()        {}
func (*CallExpr) exprNode()         {}
func (*MemberExpr) exprNode()       {}
func (*EvalCall) exprNode()         {}
func (*TypeConstruction) exprNode() {}
