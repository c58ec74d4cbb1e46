// interpreter_exec.go — tree-walking execution engine.
//
// Statement execution threads an explicit tagged result through every call:
//
//	ctrlNormal(value) | ctrlReturn(value) | ctrlBreak | ctrlContinue
//
// Block execution runs statements strictly in source order and stops at the
// first non-normal tag, propagating it upward. ctrlReturn is consumed only at
// the boundary of the function call that produced the active frame;
// ctrlBreak/ctrlContinue only by the nearest enclosing loop.
//
// The interrupt flag is polled at the top of every block and every loop
// iteration; loops additionally tick the cooperative Yield hook.
package gilgamesh

// ctrlTag is the control-flow signal attached to every statement result.
type ctrlTag int

const (
	ctrlNormal ctrlTag = iota
	ctrlReturn
	ctrlBreak
	ctrlContinue
)

type result struct {
	ctrl ctrlTag
	val  Value
}

func normal(v Value) result { return result{ctrl: ctrlNormal, val: v} }

// execBlock executes statements in order. The returned normal value is the
// last statement's value (Null for an empty block).
func (ip *Interpreter) execBlock(body []Stmt, env *Env) (result, error) {
	line := 0
	if len(body) > 0 {
		line = body[0].Pos()
	}
	if err := ip.checkInterrupt(line); err != nil {
		return result{}, err
	}
	last := Null
	for _, s := range body {
		res, err := ip.execStmt(s, env)
		if err != nil {
			return result{}, err
		}
		if res.ctrl != ctrlNormal {
			return res, nil
		}
		last = res.val
	}
	return normal(last), nil
}

func (ip *Interpreter) execStmt(s Stmt, env *Env) (result, error) {
	switch st := s.(type) {
	case *FuncDecl:
		// The closure captures env by reference, never by copy.
		env.Define(st.Name, FuncVal(&Func{
			Name:   st.Name,
			Params: st.Params,
			Body:   st.Body,
			Env:    env,
		}))
		return normal(Null), nil

	case *ObjectDef:
		return ip.execObjectDef(st, env)

	case *VarDecl:
		v, err := ip.evalExpr(st.Value, env)
		if err != nil {
			return result{}, err
		}
		env.Define(st.Name, v)
		return normal(Null), nil

	case *Assign:
		return ip.execAssign(st, env)

	case *IfStmt:
		return ip.execIf(st, env)

	case *WhileStmt:
		return ip.execWhile(st, env)

	case *ForStmt:
		return ip.execFor(st, env)

	case *ForRangeStmt:
		return ip.execForRange(st, env)

	case *ReturnStmt:
		v := Null
		if st.Value != nil {
			var err error
			if v, err = ip.evalExpr(st.Value, env); err != nil {
				return result{}, err
			}
		}
		return result{ctrl: ctrlReturn, val: v}, nil

	case *BreakStmt:
		return result{ctrl: ctrlBreak}, nil

	case *ContinueStmt:
		return result{ctrl: ctrlContinue}, nil

	case *ImportStmt:
		return ip.execImport(st, env)

	case *ExprStmt:
		v, err := ip.evalExpr(st.X, env)
		if err != nil {
			return result{}, err
		}
		return normal(v), nil
	}
	return result{}, rtErr(ErrGeneric, s.Pos(), "unhandled statement")
}

// ----- control flow -----

func (ip *Interpreter) execIf(st *IfStmt, env *Env) (result, error) {
	t, err := ip.evalExpr(st.Test, env)
	if err != nil {
		return result{}, err
	}
	if truthy(t) {
		return ip.execBlock(st.Consequent, env)
	}
	for _, e := range st.Elifs {
		t, err := ip.evalExpr(e.Test, env)
		if err != nil {
			return result{}, err
		}
		if truthy(t) {
			return ip.execBlock(e.Body, env)
		}
	}
	if st.Alternate != nil {
		return ip.execBlock(st.Alternate, env)
	}
	return normal(Null), nil
}

func (ip *Interpreter) execWhile(st *WhileStmt, env *Env) (result, error) {
	for {
		if err := ip.checkInterrupt(st.Line); err != nil {
			return result{}, err
		}
		ip.tickLoop()
		t, err := ip.evalExpr(st.Test, env)
		if err != nil {
			return result{}, err
		}
		if !truthy(t) {
			return normal(Null), nil
		}
		res, err := ip.execBlock(st.Body, env)
		if err != nil {
			return result{}, err
		}
		switch res.ctrl {
		case ctrlBreak:
			return normal(Null), nil
		case ctrlReturn:
			return res, nil
		}
		// ctrlContinue ends the iteration early; the loop proceeds.
	}
}

func (ip *Interpreter) execFor(st *ForStmt, env *Env) (result, error) {
	if st.Init != nil {
		if _, err := ip.execStmt(st.Init, env); err != nil {
			return result{}, err
		}
	}
	for {
		if err := ip.checkInterrupt(st.Line); err != nil {
			return result{}, err
		}
		ip.tickLoop()
		if st.Test != nil {
			t, err := ip.evalExpr(st.Test, env)
			if err != nil {
				return result{}, err
			}
			if !truthy(t) {
				return normal(Null), nil
			}
		}
		res, err := ip.execBlock(st.Body, env)
		if err != nil {
			return result{}, err
		}
		if res.ctrl == ctrlBreak {
			return normal(Null), nil
		}
		if res.ctrl == ctrlReturn {
			return res, nil
		}
		// ctrlContinue still runs the update clause.
		if st.Update != nil {
			if _, err := ip.execStmt(st.Update, env); err != nil {
				return result{}, err
			}
		}
	}
}

func (ip *Interpreter) execForRange(st *ForRangeStmt, env *Env) (result, error) {
	startV, err := ip.evalExpr(st.Start, env)
	if err != nil {
		return result{}, err
	}
	endV, err := ip.evalExpr(st.End, env)
	if err != nil {
		return result{}, err
	}
	if startV.Tag != VTNum || endV.Tag != VTNum {
		return result{}, rtErr(ErrGeneric, st.Line, "range loop bounds must be numbers")
	}
	// Inclusive bounds: `for i = 1 to 3` binds i to 1, 2, 3.
	for i := startV.Data.(float64); i <= endV.Data.(float64); i++ {
		if err := ip.checkInterrupt(st.Line); err != nil {
			return result{}, err
		}
		ip.tickLoop()
		env.Define(st.Iterator, Num(i))
		res, err := ip.execBlock(st.Body, env)
		if err != nil {
			return result{}, err
		}
		if res.ctrl == ctrlBreak {
			break
		}
		if res.ctrl == ctrlReturn {
			return res, nil
		}
	}
	return normal(Null), nil
}

// ----- assignment -----

func (ip *Interpreter) execAssign(st *Assign, env *Env) (result, error) {
	switch target := st.Target.(type) {
	case *Ident:
		v, err := ip.assignValue(st, env, func() (Value, error) {
			old, ok := env.Get(target.Name)
			if !ok {
				return Null, rtErr(ErrUndefinedVariable, st.Line, "undefined variable: %s", target.Name)
			}
			return old, nil
		})
		if err != nil {
			return result{}, err
		}
		if !env.Assign(target.Name, v) {
			env.Define(target.Name, v)
		}
		return normal(Null), nil

	case *MemberExpr:
		objV, err := ip.evalExpr(target.Object, env)
		if err != nil {
			return result{}, err
		}
		if objV.Tag == VTNull {
			return result{}, rtErr(ErrNullPropertyAccess, st.Line, "cannot set property %q of null", target.Property)
		}
		if objV.Tag != VTObject {
			return result{}, rtErr(ErrGeneric, st.Line, "cannot set property %q on %s", target.Property, typeName(objV))
		}
		obj := objV.Data.(*Object)
		v, err := ip.assignValue(st, env, func() (Value, error) {
			old, _ := obj.Get(target.Property) // missing reads as null
			return old, nil
		})
		if err != nil {
			return result{}, err
		}
		obj.Set(target.Property, v)
		return normal(Null), nil
	}
	return result{}, rtErr(ErrGeneric, st.Line, "invalid assignment target")
}

// assignValue evaluates the right-hand side, folding in the old value for
// compound operators.
func (ip *Interpreter) assignValue(st *Assign, env *Env, old func() (Value, error)) (Value, error) {
	rhs, err := ip.evalExpr(st.Value, env)
	if err != nil {
		return Null, err
	}
	if st.Op == ASSIGN {
		return rhs, nil
	}
	prev, err := old()
	if err != nil {
		return Null, err
	}
	var op TokenType
	switch st.Op {
	case PLUS_EQ:
		op = PLUS
	case MINUS_EQ:
		op = MINUS
	case MULT_EQ:
		op = MULT
	case DIV_EQ:
		op = DIV
	default:
		return Null, rtErr(ErrGeneric, st.Line, "invalid assignment operator")
	}
	return ip.binaryOp(op, prev, rhs, st.Line)
}

// ----- objects -----

// execObjectDef runs the property body in an isolated frame (no access to the
// enclosing scope), seeded by a one-time shallow copy of the parent's current
// properties, and freezes the frame's ordered bindings into the new object.
func (ip *Interpreter) execObjectDef(st *ObjectDef, env *Env) (result, error) {
	frame := NewEnv(nil)
	if st.Parent != "" {
		pv, ok := env.Get(st.Parent)
		if !ok {
			return result{}, rtErr(ErrUndefinedVariable, st.Line, "undefined parent object: %s", st.Parent)
		}
		if pv.Tag != VTObject {
			return result{}, rtErr(ErrGeneric, st.Line, "parent %s is not an object", st.Parent)
		}
		parent := pv.Data.(*Object)
		for _, k := range parent.Keys {
			frame.Define(k, parent.Entries[k])
		}
	}
	res, err := ip.execBlock(st.Body, frame)
	if err != nil {
		return result{}, err
	}
	if res.ctrl != ctrlNormal {
		return result{}, rtErr(ErrGeneric, st.Line, "illegal control flow in object body")
	}
	env.Define(st.Name, ObjVal(frame.snapshot()))
	return normal(Null), nil
}

// ----- expressions -----

func (ip *Interpreter) evalExpr(e Expr, env *Env) (Value, error) {
	switch ex := e.(type) {
	case *Literal:
		switch v := ex.Value.(type) {
		case nil:
			return Null, nil
		case bool:
			return Bool(v), nil
		case float64:
			return Num(v), nil
		case string:
			return Str(v), nil
		}
		return Null, rtErr(ErrGeneric, ex.Line, "invalid literal")

	case *Ident:
		v, ok := env.Get(ex.Name)
		if !ok {
			return Null, rtErr(ErrUndefinedVariable, ex.Line, "undefined variable: %s", ex.Name)
		}
		return v, nil

	case *ArrayLit:
		out := make([]Value, 0, len(ex.Elements))
		for _, el := range ex.Elements {
			v, err := ip.evalExpr(el, env)
			if err != nil {
				return Null, err
			}
			out = append(out, v)
		}
		return Arr(out), nil

	case *UnaryExpr:
		x, err := ip.evalExpr(ex.X, env)
		if err != nil {
			return Null, err
		}
		switch ex.Op {
		case MINUS:
			if x.Tag != VTNum {
				return Null, rtErr(ErrGeneric, ex.Line, "unary '-' needs a number, got %s", typeName(x))
			}
			return Num(-x.Data.(float64)), nil
		case NOT:
			return Bool(!truthy(x)), nil
		}
		return Null, rtErr(ErrGeneric, ex.Line, "invalid unary operator")

	case *BinaryExpr:
		return ip.evalBinary(ex, env)

	case *CallExpr:
		callee, err := ip.evalExpr(ex.Callee, env)
		if err != nil {
			return Null, err
		}
		args := make([]Value, 0, len(ex.Args))
		for _, a := range ex.Args {
			v, err := ip.evalExpr(a, env)
			if err != nil {
				return Null, err
			}
			args = append(args, v)
		}
		return ip.callValue(callee, args, calleeName(ex.Callee), ex.Line)

	case *MemberExpr:
		objV, err := ip.evalExpr(ex.Object, env)
		if err != nil {
			return Null, err
		}
		if objV.Tag == VTNull {
			return Null, rtErr(ErrNullPropertyAccess, ex.Line, "cannot read property %q of null", ex.Property)
		}
		if objV.Tag != VTObject {
			return Null, rtErr(ErrGeneric, ex.Line, "cannot read property %q of %s", ex.Property, typeName(objV))
		}
		v, _ := objV.Data.(*Object).Get(ex.Property) // missing reads as null
		return v, nil

	case *EvalCall:
		return ip.evalEval(ex, env)

	case *TypeConstruction:
		return ip.evalConstruction(ex, env)
	}
	return Null, rtErr(ErrGeneric, e.Pos(), "unhandled expression")
}

// evalBinary evaluates the left operand first, always. The logical operators
// are literal short-circuit: the right operand is not evaluated when the left
// decides the result.
func (ip *Interpreter) evalBinary(ex *BinaryExpr, env *Env) (Value, error) {
	left, err := ip.evalExpr(ex.Left, env)
	if err != nil {
		return Null, err
	}
	switch ex.Op {
	case AND:
		if !truthy(left) {
			return left, nil
		}
		return ip.evalExpr(ex.Right, env)
	case OR:
		if truthy(left) {
			return left, nil
		}
		return ip.evalExpr(ex.Right, env)
	}
	right, err := ip.evalExpr(ex.Right, env)
	if err != nil {
		return Null, err
	}
	return ip.binaryOp(ex.Op, left, right, ex.Line)
}

// ----- calls -----

func calleeName(e Expr) string {
	switch c := e.(type) {
	case *Ident:
		return c.Name
	case *MemberExpr:
		return c.Property
	case *CallExpr:
		return calleeName(c.Callee)
	default:
		return "expression"
	}
}

// callValue invokes a function or builtin. Parameters bind positionally:
// extra arguments are ignored and missing arguments bind to null. The body's
// ctrlReturn is consumed here; a break/continue escaping the body is an
// error.
func (ip *Interpreter) callValue(callee Value, args []Value, name string, line int) (Value, error) {
	switch callee.Tag {
	case VTFunc:
		f := callee.Data.(*Func)
		frame := NewEnv(f.Env)
		for i, p := range f.Params {
			if i < len(args) {
				frame.Define(p, args[i])
			} else {
				frame.Define(p, Null)
			}
		}
		res, err := ip.execBlock(f.Body, frame)
		if err != nil {
			return Null, err
		}
		switch res.ctrl {
		case ctrlReturn:
			return res.val, nil
		case ctrlBreak:
			return Null, rtErr(ErrGeneric, line, "'break' outside loop")
		case ctrlContinue:
			return Null, rtErr(ErrGeneric, line, "'continue' outside loop")
		}
		return Null, nil

	case VTBuiltin:
		b := callee.Data.(*Builtin)
		v, err := b.Fn(ip, args)
		if err != nil {
			if _, isRT := err.(*RuntimeError); isRT {
				return Null, err
			}
			return Null, rtErr(ErrGeneric, line, "%s: %v", b.Name, err)
		}
		return v, nil
	}
	return Null, rtErr(ErrNotCallable, line, "%s is not callable (%s)", name, typeName(callee))
}

// ----- eval -----

// evalEval re-tokenizes and re-parses a source string, memoized per
// interpreter instance by exact source text. A single expression-statement
// program evaluates in the *current* calling scope and returns its value;
// anything else runs as a block in the current scope and returns the last
// statement's result.
func (ip *Interpreter) evalEval(ex *EvalCall, env *Env) (Value, error) {
	argV, err := ip.evalExpr(ex.Argument, env)
	if err != nil {
		return Null, err
	}
	if argV.Tag != VTStr {
		return Null, rtErr(ErrGeneric, ex.Line, "eval needs a string, got %s", typeName(argV))
	}
	src := argV.Data.(string)

	prog, hit := ip.evalCache[src]
	if !hit {
		prog, err = ip.parse(src)
		if err != nil {
			return Null, err
		}
		ip.evalCache[src] = prog
	}

	if len(prog.Body) == 1 {
		if es, isExpr := prog.Body[0].(*ExprStmt); isExpr {
			return ip.evalExpr(es.X, env)
		}
	}
	res, err := ip.execBlock(prog.Body, env)
	if err != nil {
		return Null, err
	}
	if res.ctrl == ctrlReturn {
		return res.val, nil
	}
	if res.ctrl != ctrlNormal {
		return Null, rtErr(ErrGeneric, ex.Line, "illegal control flow in eval")
	}
	return res.val, nil
}

// ----- import -----

// execImport resolves the dotted module name through the host bridge and
// binds the result under the name's leading dotted segment.
func (ip *Interpreter) execImport(st *ImportStmt, env *Env) (result, error) {
	res, err := ip.Host.Resolve(st.ModuleName)
	if err != nil {
		return result{}, rtErr(ErrImportResolution, st.Line, "cannot resolve module %q: %v", st.ModuleName, err)
	}
	var v Value
	switch res.Kind {
	case ResolveObject:
		v = res.Value
	case ResolveReference:
		v, err = ip.Host.Load(res.Ref)
		if err != nil {
			return result{}, rtErr(ErrImportResolution, st.Line, "cannot load module %q: %v", st.ModuleName, err)
		}
	default:
		return result{}, rtErr(ErrImportResolution, st.Line, "unknown resolution kind for %q", st.ModuleName)
	}
	env.Define(leadingSegment(st.ModuleName), v)
	return normal(Null), nil
}

func leadingSegment(name string) string {
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			return name[:i]
		}
	}
	return name
}

// ----- deferred type construction -----

// evalConstruction parses the captured raw token span into comma-separated
// argument expressions, evaluates them left to right, and defers the actual
// construction to the host bridge.
func (ip *Interpreter) evalConstruction(ex *TypeConstruction, env *Env) (Value, error) {
	var args []Value
	for _, segment := range splitRawArgs(ex.RawTokens) {
		arg, err := parseExprTokens(segment)
		if err != nil {
			return Null, rtErr(ErrGeneric, ex.Line, "bad %s constructor argument: %v", ex.Callee, err)
		}
		v, err := ip.evalExpr(arg, env)
		if err != nil {
			return Null, err
		}
		args = append(args, v)
	}
	v, err := ip.Host.Construct(ex.Callee, args)
	if err != nil {
		return Null, rtErr(ErrGeneric, ex.Line, "%s: %v", ex.Callee, err)
	}
	return v, nil
}

// splitRawArgs splits a captured token span on top-level commas, tracking
// nested bracket balance.
func splitRawArgs(toks []Token) [][]Token {
	if len(toks) == 0 {
		return nil
	}
	var out [][]Token
	depth := 0
	start := 0
	for i, t := range toks {
		switch t.Type {
		case LPAREN, LBRACKET:
			depth++
		case RPAREN, RBRACKET:
			depth--
		case COMMA:
			if depth == 0 {
				out = append(out, toks[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, toks[start:])
	return out
}
