// interpreter_test.go
package gilgamesh

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestInterp returns an interpreter whose print output is captured in the
// returned buffer.
func newTestInterp(t *testing.T) (*Interpreter, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := NewStdHost()
	h.Out = &buf
	h.In = strings.NewReader("")
	return NewInterpreter(h), &buf
}

func run(t *testing.T, src string) (Value, string) {
	t.Helper()
	ip, buf := newTestInterp(t)
	v, err := ip.RunSource(src)
	require.NoError(t, err, "source:\n%s", src)
	return v, buf.String()
}

func runErr(t *testing.T, src string) error {
	t.Helper()
	ip, _ := newTestInterp(t)
	_, err := ip.RunSource(src)
	require.Error(t, err, "source:\n%s", src)
	return err
}

func wantKind(t *testing.T, err error, kind ErrKind) *RuntimeError {
	t.Helper()
	re, ok := err.(*RuntimeError)
	require.True(t, ok, "got %T: %v", err, err)
	require.Equal(t, kind, re.Kind, "error: %v", err)
	return re
}

func Test_Interp_VarDeclAndPrint(t *testing.T) {
	_, out := run(t, "var[x] = 5\nprint(x)\n")
	require.Equal(t, "5\n", out)
}

func Test_Interp_AssignmentWithoutVarDefines(t *testing.T) {
	_, out := run(t, "x = 2\nx += 3\nprint(x)\n")
	require.Equal(t, "5\n", out)
}

func Test_Interp_UndefinedVariable(t *testing.T) {
	err := runErr(t, "print(nope)\n")
	wantKind(t, err, ErrUndefinedVariable)
}

func Test_Interp_WhileLoop(t *testing.T) {
	src := "i = 0\nwhile [i < 3]\n    print(i)\n    i += 1\n"
	_, out := run(t, src)
	require.Equal(t, "0\n1\n2\n", out)
}

func Test_Interp_ForRange_InclusiveBounds(t *testing.T) {
	_, out := run(t, "for i = 1 to 3\n    print(i)\n")
	require.Equal(t, "1\n2\n3\n", out)
}

func Test_Interp_ForRange_NonNumericBound(t *testing.T) {
	err := runErr(t, "for i = 1 to \"x\"\n    print(i)\n")
	wantKind(t, err, ErrGeneric)
}

func Test_Interp_ForCStyle(t *testing.T) {
	_, out := run(t, "for [i = 0; i < 3; i += 1]\n    print(i)\n")
	require.Equal(t, "0\n1\n2\n", out)
}

func Test_Interp_BreakAndContinue(t *testing.T) {
	src := `for i = 1 to 10
    if [i == 3]
        continue
    if [i == 5]
        break
    print(i)
`
	_, out := run(t, src)
	require.Equal(t, "1\n2\n4\n", out)
}

func Test_Interp_BreakOutsideLoop(t *testing.T) {
	err := runErr(t, "break\n")
	require.Contains(t, err.Error(), "'break' outside loop")
}

func Test_Interp_FunctionCallAndReturn(t *testing.T) {
	src := "func add(a, b)\n    return a + b\nprint(add(2, 3))\n"
	_, out := run(t, src)
	require.Equal(t, "5\n", out)
}

func Test_Interp_MissingArgumentIsNull(t *testing.T) {
	src := "func f(a, b)\n    return b\nprint(f(1))\n"
	_, out := run(t, src)
	require.Equal(t, "null\n", out)
}

func Test_Interp_ExtraArgumentsIgnored(t *testing.T) {
	src := "func f(a)\n    return a\nprint(f(1, 2, 3))\n"
	_, out := run(t, src)
	require.Equal(t, "1\n", out)
}

func Test_Interp_NoReturnYieldsNull(t *testing.T) {
	src := "func f()\n    x = 1\nprint(f())\n"
	_, out := run(t, src)
	require.Equal(t, "null\n", out)
}

func Test_Interp_ClosureCapturesByReference(t *testing.T) {
	src := `count = 0
func bump()
    count += 1
    return count
bump()
bump()
print(count)
`
	_, out := run(t, src)
	require.Equal(t, "2\n", out)
}

func Test_Interp_Recursion(t *testing.T) {
	src := `func fib(n)
    if [n < 2]
        return n
    return fib(n - 1) + fib(n - 2)
print(fib(10))
`
	_, out := run(t, src)
	require.Equal(t, "55\n", out)
}

func Test_Interp_NotCallable(t *testing.T) {
	err := runErr(t, "x = 5\nx(1)\n")
	re := wantKind(t, err, ErrNotCallable)
	require.Contains(t, re.Error(), "not callable")
}

// ----- objects -----

func Test_Interp_ObjectDefinitionAndAccess(t *testing.T) {
	src := `@P@ = [
    x = 3
    y = 4
]
print(P.x + P.y)
`
	_, out := run(t, src)
	require.Equal(t, "7\n", out)
}

func Test_Interp_ObjectBodyIsIsolated(t *testing.T) {
	// Outer bindings are not visible inside an object body.
	src := `outer = 1
@P@ = [
    x = outer
]
`
	err := runErr(t, src)
	wantKind(t, err, ErrUndefinedVariable)
}

func Test_Interp_ObjectInheritance_CopiesAtDefinition(t *testing.T) {
	src := `@Base@ = [
    x = 10
]
Base @Child@ = [
    y = 2
]
Base.x = 99
print(Child.x)
print(Child.y)
`
	_, out := run(t, src)
	require.Equal(t, "10\n2\n", out)
}

func Test_Interp_ObjectInheritance_ChildOverrides(t *testing.T) {
	src := `@Base@ = [
    x = 1
    z = 3
]
Base @Child@ = [
    x = 2
]
print(Child.x)
print(Child.z)
`
	_, out := run(t, src)
	require.Equal(t, "2\n3\n", out)
}

func Test_Interp_ObjectInheritance_UnknownParent(t *testing.T) {
	err := runErr(t, "Ghost @Child@ = [\n    x = 1\n]\n")
	wantKind(t, err, ErrUndefinedVariable)
}

func Test_Interp_PropertyAssignment(t *testing.T) {
	src := `@P@ = [
    x = 1
]
P.x = 5
P.x += 2
print(P.x)
`
	_, out := run(t, src)
	require.Equal(t, "7\n", out)
}

func Test_Interp_PropertyAssignment_NewKey(t *testing.T) {
	src := `@P@ = [
    a = 1
]
P.b = 2
print(P)
`
	_, out := run(t, src)
	require.Equal(t, "{a: 1, b: 2}\n", out)
}

func Test_Interp_MissingPropertyReadsNull(t *testing.T) {
	src := `@P@ = [
    a = 1
]
print(P.missing)
`
	_, out := run(t, src)
	require.Equal(t, "null\n", out)
}

func Test_Interp_NullPropertyAccess(t *testing.T) {
	err := runErr(t, "x = null\nprint(x.y)\n")
	re := wantKind(t, err, ErrNullPropertyAccess)
	require.Contains(t, re.Error(), `cannot read property "y" of null`)
}

func Test_Interp_NullPropertySet(t *testing.T) {
	err := runErr(t, "x = null\nx.y = 1\n")
	wantKind(t, err, ErrNullPropertyAccess)
}

func Test_Interp_ObjectMethod(t *testing.T) {
	src := `@Math@ = [
    func double(n)
        return n * 2
]
print(Math.double(21))
`
	_, out := run(t, src)
	require.Equal(t, "42\n", out)
}

// ----- operators and coercion -----

func Test_Interp_Arithmetic(t *testing.T) {
	v, _ := run(t, "x = (1 + 2) * 3 - 4 / 2\nx\n")
	require.Equal(t, float64(7), v.Data)
}

func Test_Interp_DivisionByZero_IEEE(t *testing.T) {
	v, _ := run(t, "1 / 0\n")
	require.True(t, math.IsInf(v.Data.(float64), 1))

	v, _ = run(t, "-1 / 0\n")
	require.True(t, math.IsInf(v.Data.(float64), -1))

	v, _ = run(t, "0 / 0\n")
	require.True(t, math.IsNaN(v.Data.(float64)))
}

func Test_Interp_StringConcatCoercesOtherSide(t *testing.T) {
	_, out := run(t, `print("n=" + 5)` + "\n")
	require.Equal(t, "n=5\n", out)
	_, out = run(t, `print(5 + "!")` + "\n")
	require.Equal(t, "5!\n", out)
}

func Test_Interp_ArithmeticOnStringsFails(t *testing.T) {
	err := runErr(t, `x = "2" * 3`+"\n")
	wantKind(t, err, ErrGeneric)
}

func Test_Interp_LooseEquality(t *testing.T) {
	cases := []struct {
		src  string
		want bool
	}{
		{`1 == 1`, true},
		{`1 == "1"`, true},
		{`true == 1`, true},
		{`false == 0`, true},
		{`null == null`, true},
		{`null == 0`, false},
		{`null == false`, false},
		{`"a" == "a"`, true},
		{`"a" == "b"`, false},
		{`[1, 2] == [1, 2]`, true},
		{`[1, 2] == [1, 3]`, false},
		{`1 != 2`, true},
	}
	for _, c := range cases {
		v, _ := run(t, c.src+"\n")
		require.Equal(t, c.want, v.Data, "case %s", c.src)
	}
}

func Test_Interp_Comparison(t *testing.T) {
	cases := []struct {
		src  string
		want bool
	}{
		{`1 < 2`, true},
		{`2 <= 2`, true},
		{`3 > 4`, false},
		{`"apple" < "banana"`, true}, // both strings: lexicographic
		{`"10" < "9"`, true},         // string pair: lexicographic
		{`"10" < 9`, false},          // mixed: numeric, 10 < 9
		{`"x" < 1`, false},           // non-numeric string never compares
	}
	for _, c := range cases {
		v, _ := run(t, c.src+"\n")
		require.Equal(t, c.want, v.Data, "case %s", c.src)
	}
}

func Test_Interp_ShortCircuit_RightSideNotEvaluated(t *testing.T) {
	src := `called = false
func f()
    called = true
    return true
x = false and f()
y = true or f()
print(called)
`
	_, out := run(t, src)
	require.Equal(t, "false\n", out)
}

func Test_Interp_LogicalOperatorsReturnOperand(t *testing.T) {
	v, _ := run(t, `0 or "fallback"`+"\n")
	require.Equal(t, "fallback", v.Data)
	v, _ = run(t, `5 and 7`+"\n")
	require.Equal(t, float64(7), v.Data)
	v, _ = run(t, `null and 7`+"\n")
	require.Equal(t, VTNull, v.Tag)
}

func Test_Interp_Truthiness(t *testing.T) {
	falsy := []string{"null", "false", "0", `""`, "[]"}
	for _, lit := range falsy {
		src := "if [" + lit + "]\n    print(\"t\")\nelse\n    print(\"f\")\n"
		_, out := run(t, src)
		require.Equal(t, "f\n", out, "literal %s", lit)
	}
	truthy := []string{"true", "1", "-1", `"0"`, "[0]"}
	for _, lit := range truthy {
		src := "if [" + lit + "]\n    print(\"t\")\nelse\n    print(\"f\")\n"
		_, out := run(t, src)
		require.Equal(t, "t\n", out, "literal %s", lit)
	}
}

func Test_Interp_UnaryOperators(t *testing.T) {
	v, _ := run(t, "-(2 + 3)\n")
	require.Equal(t, float64(-5), v.Data)
	v, _ = run(t, "not 0\n")
	require.Equal(t, true, v.Data)
	err := runErr(t, `-"abc"`+"\n")
	wantKind(t, err, ErrGeneric)
}

// ----- eval -----

func Test_Interp_Eval_Expression(t *testing.T) {
	v, _ := run(t, `eval("1 + 2")` + "\n")
	require.Equal(t, float64(3), v.Data)
}

func Test_Interp_Eval_SeesCurrentEnvironment(t *testing.T) {
	_, out := run(t, "x = 40\nprint(eval(\"x + 2\"))\n")
	require.Equal(t, "42\n", out)
}

func Test_Interp_Eval_CacheSkipsRepeatedParses(t *testing.T) {
	ip, _ := newTestInterp(t)
	src := `for i = 1 to 5
    eval("i * 2")
`
	_, err := ip.RunSource(src)
	require.NoError(t, err)
	// One parse for the program itself, one for the eval source; the four
	// repeats hit the cache.
	require.Equal(t, 2, ip.ParseCount())
}

func Test_Interp_Eval_DistinctSourcesParseSeparately(t *testing.T) {
	ip, _ := newTestInterp(t)
	_, err := ip.RunSource("eval(\"1\")\neval(\"2\")\neval(\"1\")\n")
	require.NoError(t, err)
	require.Equal(t, 3, ip.ParseCount()) // program + two distinct eval sources
}

func Test_Interp_Eval_NonStringArgument(t *testing.T) {
	err := runErr(t, "eval(42)\n")
	wantKind(t, err, ErrGeneric)
}

func Test_Interp_Eval_Statements(t *testing.T) {
	_, out := run(t, "eval(\"y = 6\")\nprint(y * 7)\n")
	require.Equal(t, "42\n", out)
}

// ----- builtins -----

func Test_Interp_Print_MultipleArgs(t *testing.T) {
	_, out := run(t, `print(1, "two", [3])`+"\n")
	require.Equal(t, "1 two [3]\n", out)
}

func Test_Interp_Len(t *testing.T) {
	v, _ := run(t, `len("abcd")`+"\n")
	require.Equal(t, float64(4), v.Data)
	v, _ = run(t, "len([1, 2, 3])\n")
	require.Equal(t, float64(3), v.Data)
}

func Test_Interp_StrAndNum(t *testing.T) {
	v, _ := run(t, "str(3.5)\n")
	require.Equal(t, "3.5", v.Data)
	v, _ = run(t, `num("2.5") * 2`+"\n")
	require.Equal(t, float64(5), v.Data)
	v, _ = run(t, `num("junk")`+"\n")
	require.Equal(t, VTNull, v.Tag)
}

func Test_Interp_Input(t *testing.T) {
	var buf bytes.Buffer
	h := NewStdHost()
	h.Out = &buf
	h.In = strings.NewReader("world\n")
	ip := NewInterpreter(h)
	_, err := ip.RunSource(`print("hi " + input("name? "))` + "\n")
	require.NoError(t, err)
	require.Equal(t, "name? hi world\n", buf.String())
}

// ----- cancellation and yielding -----

func Test_Interp_InterruptStopsExecution(t *testing.T) {
	ip, _ := newTestInterp(t)
	n := 0
	ip.YieldEvery = 1
	ip.Yield = func() {
		n++
		if n == 5 {
			ip.Interrupt()
		}
	}
	_, err := ip.RunSource("i = 0\nwhile [1]\n    i += 1\n")
	wantKind(t, err, ErrInterrupted)
	require.Equal(t, 5, n)
}

func Test_Interp_ClearInterruptReArms(t *testing.T) {
	ip, _ := newTestInterp(t)
	ip.Interrupt()
	_, err := ip.RunSource("x = 1\n")
	wantKind(t, err, ErrInterrupted)

	ip.ClearInterrupt()
	v, err := ip.RunSource("x = 1\nx\n")
	require.NoError(t, err)
	require.Equal(t, float64(1), v.Data)
}

func Test_Interp_YieldCadence(t *testing.T) {
	ip, _ := newTestInterp(t)
	calls := 0
	ip.Yield = func() { calls++ }
	ip.YieldEvery = 10
	_, err := ip.RunSource("for i = 1 to 25\n    x = i\n")
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

// ----- type constructors -----

func Test_Interp_TypeConstruction_DefaultHost(t *testing.T) {
	_, out := run(t, "c = Color(255, 0, 128)\nprint(c)\n")
	require.Equal(t, "{kind: Color, args: [255, 0, 128]}\n", out)
}

func Test_Interp_TypeConstruction_ArgsAreEvaluated(t *testing.T) {
	src := `func half(n)
    return n / 2
p = Point(half(10), 2 + 1)
print(p.args)
`
	_, out := run(t, src)
	require.Equal(t, "[5, 3]\n", out)
}

func Test_Interp_RegisterBuiltin(t *testing.T) {
	ip, buf := newTestInterp(t)
	ip.RegisterBuiltin("twice", func(ip *Interpreter, args []Value) (Value, error) {
		return Num(args[0].Data.(float64) * 2), nil
	})
	_, err := ip.RunSource("print(twice(21))\n")
	require.NoError(t, err)
	require.Equal(t, "42\n", buf.String())
}

// ----- stringification -----

func Test_Interp_Stringify(t *testing.T) {
	cases := []struct {
		src, want string
	}{
		{"5.0", "5"},
		{"3.25", "3.25"},
		{"true", "true"},
		{"null", "null"},
		{`"raw"`, "raw"},
		{"[1, [2, 3], \"x\"]", "[1, [2, 3], x]"},
	}
	for _, c := range cases {
		v, _ := run(t, c.src+"\n")
		require.Equal(t, c.want, Stringify(v), "case %s", c.src)
	}
}

func Test_Interp_Stringify_ObjectInsertionOrder(t *testing.T) {
	src := `@P@ = [
    b = 2
    a = 1
    c = 3
]
print(P)
`
	_, out := run(t, src)
	require.Equal(t, "{b: 2, a: 1, c: 3}\n", out)
}

func Test_Interp_TopLevelReturnTerminates(t *testing.T) {
	v, out := run(t, "print(1)\nreturn 9\nprint(2)\n")
	require.Equal(t, "1\n", out)
	require.Equal(t, float64(9), v.Data)
}
