// interpreter.go — public API surface of the Gilgamesh runtime.
//
// OVERVIEW
// --------
// This file exposes the runtime value model, lexical environments, and the
// Interpreter entry points. The execution engine itself lives in
// interpreter_exec.go (statements, calls, objects, eval, import) and
// interpreter_ops.go (operators, coercion, truthiness).
//
// EXECUTION & SCOPING
// -------------------
// Code evaluates against *Env frames chained via parent pointers. Lookup and
// assignment walk outward from the innermost frame; a plain assignment that
// finds no existing binding creates one in the innermost frame, while the
// bracket-qualified `var[x] = e` always binds innermost. The interpreter owns
// two well-known frames:
//
//   - Core:   builtins (print, input, len, str, num). Parent of Global.
//   - Global: persistent program state. It survives across RunSource calls on
//     one instance, so later scripts see earlier scripts' definitions.
//
// COOPERATIVE EXECUTION
// ---------------------
// One goroutine owns an Interpreter at a time. Loop constructs call the Yield
// hook every YieldEvery iterations so a host event loop is never starved, and
// an atomic interrupt flag — settable from any goroutine via Interrupt() — is
// polled at the top of every block and loop iteration. When set, execution
// unwinds immediately to the RunSource caller with ErrInterrupted; host
// resources acquired through builtins must release themselves.
//
// ERRORS
// ------
// All entry points return (Value, error). Failures are structured *LexError,
// *ParseError, or *RuntimeError values (see errors.go); the interpreter never
// intercepts its own errors.
package gilgamesh

import (
	"fmt"
	"sync/atomic"
)

////////////////////////////////////////////////////////////////////////////////
//                                VALUE MODEL
////////////////////////////////////////////////////////////////////////////////

// ValueTag enumerates the runtime kinds a Value may hold.
type ValueTag int

const (
	VTNull    ValueTag = iota // no payload
	VTBool                    // bool
	VTNum                     // float64 (all numbers are double precision)
	VTStr                     // string
	VTArray                   // []Value
	VTObject                  // *Object (insertion-ordered)
	VTFunc                    // *Func (closure)
	VTBuiltin                 // *Builtin (host-supplied callable)
)

// Value is the universal runtime carrier. Tag selects which Go type Data
// holds (see ValueTag).
type Value struct {
	Tag  ValueTag
	Data interface{}
}

// Null is the singleton null Value.
var Null = Value{Tag: VTNull}

func Bool(b bool) Value       { return Value{Tag: VTBool, Data: b} }
func Num(f float64) Value     { return Value{Tag: VTNum, Data: f} }
func Str(s string) Value      { return Value{Tag: VTStr, Data: s} }
func Arr(xs []Value) Value    { return Value{Tag: VTArray, Data: xs} }
func ObjVal(o *Object) Value  { return Value{Tag: VTObject, Data: o} }
func FuncVal(f *Func) Value   { return Value{Tag: VTFunc, Data: f} }
func BuiltinVal(b *Builtin) Value {
	return Value{Tag: VTBuiltin, Data: b}
}

// String renders the value the way print does.
func (v Value) String() string { return Stringify(v) }

// Object is an insertion-ordered name→value mapping. Keys records insertion
// order; order-sensitive consumers must iterate Keys.
type Object struct {
	Entries map[string]Value
	Keys    []string
}

// NewObject returns an empty ordered object.
func NewObject() *Object {
	return &Object{Entries: map[string]Value{}}
}

// Get returns the property named key and a presence flag.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.Entries[key]
	return v, ok
}

// Set writes a property, appending key to the insertion order on first write.
func (o *Object) Set(key string, v Value) {
	if _, ok := o.Entries[key]; !ok {
		o.Keys = append(o.Keys, key)
	}
	o.Entries[key] = v
}

// Copy returns a one-time shallow copy: same property values, fresh mapping.
// Later mutation of the source never affects the copy.
func (o *Object) Copy() *Object {
	out := &Object{
		Entries: make(map[string]Value, len(o.Entries)),
		Keys:    append([]string(nil), o.Keys...),
	}
	for k, v := range o.Entries {
		out.Entries[k] = v
	}
	return out
}

// Func is a user-defined function: a closure over its defining environment.
// The environment is captured by reference, not copied, so the body observes
// later mutations of outer bindings.
type Func struct {
	Name   string
	Params []string
	Body   []Stmt
	Env    *Env
}

// BuiltinFn is the implementation signature for host builtins. Arguments
// arrive already evaluated, left to right.
type BuiltinFn func(ip *Interpreter, args []Value) (Value, error)

// Builtin is an opaque callable supplied by the embedding environment.
type Builtin struct {
	Name string
	Fn   BuiltinFn
}

////////////////////////////////////////////////////////////////////////////////
//                                ENVIRONMENTS
////////////////////////////////////////////////////////////////////////////////

// Env is a lexical binding frame with a parent link. It additionally tracks
// insertion order of its own bindings, which feeds object and module
// snapshots.
type Env struct {
	parent *Env
	table  map[string]Value
	order  []string
}

// NewEnv creates a frame with the given parent (which may be nil).
func NewEnv(parent *Env) *Env {
	return &Env{parent: parent, table: map[string]Value{}}
}

// Define binds name in this frame, shadowing any outer binding.
func (e *Env) Define(name string, v Value) {
	if _, ok := e.table[name]; !ok {
		e.order = append(e.order, name)
	}
	e.table[name] = v
}

// Assign walks outward and mutates the nearest existing binding. It reports
// whether a binding was found; callers decide how to handle a miss.
func (e *Env) Assign(name string, v Value) bool {
	for f := e; f != nil; f = f.parent {
		if _, ok := f.table[name]; ok {
			f.table[name] = v
			return true
		}
	}
	return false
}

// Get walks outward and returns the nearest visible binding.
func (e *Env) Get(name string) (Value, bool) {
	for f := e; f != nil; f = f.parent {
		if v, ok := f.table[name]; ok {
			return v, true
		}
	}
	return Value{}, false
}

// snapshot freezes this frame's own bindings (parents excluded) into an
// ordered object.
func (e *Env) snapshot() *Object {
	out := NewObject()
	for _, k := range e.order {
		out.Set(k, e.table[k])
	}
	return out
}

////////////////////////////////////////////////////////////////////////////////
//                                INTERPRETER
////////////////////////////////////////////////////////////////////////////////

// DefaultYieldEvery is the loop-iteration cadence at which the Yield hook
// fires when the embedder does not choose one.
const DefaultYieldEvery = 1000

// Interpreter is a single cooperative thread of Gilgamesh execution.
//
// Fields:
//   - Core / Global — the builtin and persistent program environments.
//   - Host — the embedding bridge (print/input sinks, module resolution,
//     type construction). Defaults to NewStdHost() when nil is passed.
//   - Yield / YieldEvery — cooperative-scheduling hook and its cadence.
type Interpreter struct {
	Core   *Env
	Global *Env
	Host   Host

	Yield      func()
	YieldEvery int

	interrupted atomic.Bool
	loopTicks   int

	evalCache  map[string]*Program
	parseCount int
}

// NewInterpreter constructs a ready interpreter. Core is populated with the
// builtins; Global is an empty child of Core and persists across runs. A nil
// host gets the standard host (stdout/stdin, registry-backed module
// resolution with the random and time builtin modules installed).
func NewInterpreter(host Host) *Interpreter {
	if host == nil {
		host = NewStdHost()
	}
	ip := &Interpreter{
		Host:       host,
		YieldEvery: DefaultYieldEvery,
		evalCache:  map[string]*Program{},
	}
	ip.Core = NewEnv(nil)
	ip.Global = NewEnv(ip.Core)
	registerCoreBuiltins(ip)
	return ip
}

// RunSource parses and executes src in the persistent Global environment and
// returns the last top-level statement's value (Null for an empty program).
func (ip *Interpreter) RunSource(src string) (Value, error) {
	prog, err := ip.parse(src)
	if err != nil {
		return Null, err
	}
	return ip.RunProgram(prog)
}

// RunProgram executes a pre-parsed program in Global.
func (ip *Interpreter) RunProgram(prog *Program) (Value, error) {
	res, err := ip.execBlock(prog.Body, ip.Global)
	if err != nil {
		return Null, err
	}
	switch res.ctrl {
	case ctrlReturn:
		// A top-level return terminates the program with its payload.
		return res.val, nil
	case ctrlBreak:
		return Null, rtErr(ErrGeneric, 0, "'break' outside loop")
	case ctrlContinue:
		return Null, rtErr(ErrGeneric, 0, "'continue' outside loop")
	}
	return res.val, nil
}

// Interrupt requests cancellation. It is safe to call from any goroutine;
// the running script unwinds at the next block or loop boundary.
func (ip *Interpreter) Interrupt() { ip.interrupted.Store(true) }

// ClearInterrupt re-arms the interpreter after an interrupt.
func (ip *Interpreter) ClearInterrupt() { ip.interrupted.Store(false) }

// ParseCount reports how many source strings this instance has parsed. The
// eval cache keeps the count flat for repeated identical eval sources.
func (ip *Interpreter) ParseCount() int { return ip.parseCount }

// RegisterBuiltin installs a host callable into Core under name.
func (ip *Interpreter) RegisterBuiltin(name string, fn BuiltinFn) {
	ip.Core.Define(name, BuiltinVal(&Builtin{Name: name, Fn: fn}))
}

// parse is the single counted parse entry point; eval's memoization relies on
// every real parse flowing through here.
func (ip *Interpreter) parse(src string) (*Program, error) {
	ip.parseCount++
	return Parse(src)
}

// checkInterrupt is polled at the top of every block and loop iteration.
func (ip *Interpreter) checkInterrupt(line int) error {
	if ip.interrupted.Load() {
		return rtErr(ErrInterrupted, line, "execution interrupted")
	}
	return nil
}

// tickLoop counts one loop iteration and fires the Yield hook on cadence.
func (ip *Interpreter) tickLoop() {
	if ip.Yield == nil {
		return
	}
	every := ip.YieldEvery
	if every <= 0 {
		every = DefaultYieldEvery
	}
	ip.loopTicks++
	if ip.loopTicks%every == 0 {
		ip.Yield()
	}
}

func typeName(v Value) string {
	switch v.Tag {
	case VTNull:
		return "null"
	case VTBool:
		return "boolean"
	case VTNum:
		return "number"
	case VTStr:
		return "string"
	case VTArray:
		return "array"
	case VTObject:
		return "object"
	case VTFunc:
		return "function"
	case VTBuiltin:
		return "builtin"
	default:
		return fmt.Sprintf("tag(%d)", v.Tag)
	}
}
