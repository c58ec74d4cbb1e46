// builtin_strings_test.go
package gilgamesh

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func evalStrings(t *testing.T, expr string) Value {
	t.Helper()
	ip, _ := newTestInterp(t)
	v, err := ip.RunSource("import strings\n" + expr + "\n")
	require.NoError(t, err, "expr: %s", expr)
	return v
}

func Test_Strings_CaseConversion(t *testing.T) {
	require.Equal(t, "HELLO", evalStrings(t, `strings.upper("hello")`).Data)
	require.Equal(t, "hello", evalStrings(t, `strings.lower("HeLLo")`).Data)
}

func Test_Strings_Trim(t *testing.T) {
	require.Equal(t, "x", evalStrings(t, `strings.trim("  x  ")`).Data)
}

func Test_Strings_ContainsAndReplace(t *testing.T) {
	require.Equal(t, true, evalStrings(t, `strings.contains("haystack", "hay")`).Data)
	require.Equal(t, false, evalStrings(t, `strings.contains("haystack", "zz")`).Data)
	require.Equal(t, "b.b", evalStrings(t, `strings.replace("a.a", "a", "b")`).Data)
}

func Test_Strings_SplitAndJoin(t *testing.T) {
	v := evalStrings(t, `strings.split("a,b,c", ",")`)
	require.Equal(t, "[a, b, c]", Stringify(v))

	v = evalStrings(t, `strings.join([1, 2, 3], "-")`)
	require.Equal(t, "1-2-3", v.Data)
}

func Test_Strings_Substr_RuneIndexed(t *testing.T) {
	require.Equal(t, "bc", evalStrings(t, `strings.substr("abcd", 1, 3)`).Data)
	require.Equal(t, "héll", evalStrings(t, `strings.substr("héllo", 0, 4)`).Data)
}

func Test_Strings_Substr_ClampsBounds(t *testing.T) {
	require.Equal(t, "abcd", evalStrings(t, `strings.substr("abcd", -5, 99)`).Data)
	require.Equal(t, "", evalStrings(t, `strings.substr("abcd", 3, 1)`).Data)
}

func Test_Strings_BadArgument(t *testing.T) {
	ip, _ := newTestInterp(t)
	_, err := ip.RunSource("import strings\nstrings.upper(5)\n")
	require.Error(t, err)
	require.Contains(t, err.Error(), "must be a string")
}
