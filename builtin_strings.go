// builtin_strings.go — the `strings` builtin module (import strings).
package gilgamesh

import (
	"fmt"
	"strings"
	"unicode"
)

// stringsModule builds the text-helper module exposed through the host
// registry. Index-taking helpers operate on runes, not bytes.
func stringsModule() Value {
	needStr := func(args []Value, n int) ([]string, error) {
		if len(args) != n {
			return nil, fmt.Errorf("expected %d arguments, got %d", n, len(args))
		}
		out := make([]string, n)
		for i, a := range args {
			if a.Tag != VTStr {
				return nil, fmt.Errorf("argument %d must be a string, got %s", i+1, typeName(a))
			}
			out[i] = a.Data.(string)
		}
		return out, nil
	}

	o := NewObject()
	o.Set("upper", BuiltinVal(&Builtin{Name: "strings.upper", Fn: func(_ *Interpreter, args []Value) (Value, error) {
		ss, err := needStr(args, 1)
		if err != nil {
			return Null, err
		}
		return Str(strings.ToUpper(ss[0])), nil
	}}))
	o.Set("lower", BuiltinVal(&Builtin{Name: "strings.lower", Fn: func(_ *Interpreter, args []Value) (Value, error) {
		ss, err := needStr(args, 1)
		if err != nil {
			return Null, err
		}
		return Str(strings.ToLower(ss[0])), nil
	}}))
	o.Set("trim", BuiltinVal(&Builtin{Name: "strings.trim", Fn: func(_ *Interpreter, args []Value) (Value, error) {
		ss, err := needStr(args, 1)
		if err != nil {
			return Null, err
		}
		return Str(strings.TrimFunc(ss[0], unicode.IsSpace)), nil
	}}))
	o.Set("contains", BuiltinVal(&Builtin{Name: "strings.contains", Fn: func(_ *Interpreter, args []Value) (Value, error) {
		ss, err := needStr(args, 2)
		if err != nil {
			return Null, err
		}
		return Bool(strings.Contains(ss[0], ss[1])), nil
	}}))
	o.Set("replace", BuiltinVal(&Builtin{Name: "strings.replace", Fn: func(_ *Interpreter, args []Value) (Value, error) {
		ss, err := needStr(args, 3)
		if err != nil {
			return Null, err
		}
		return Str(strings.ReplaceAll(ss[0], ss[1], ss[2])), nil
	}}))
	o.Set("split", BuiltinVal(&Builtin{Name: "strings.split", Fn: func(_ *Interpreter, args []Value) (Value, error) {
		ss, err := needStr(args, 2)
		if err != nil {
			return Null, err
		}
		parts := strings.Split(ss[0], ss[1])
		out := make([]Value, len(parts))
		for i, p := range parts {
			out[i] = Str(p)
		}
		return Arr(out), nil
	}}))
	o.Set("join", BuiltinVal(&Builtin{Name: "strings.join", Fn: func(_ *Interpreter, args []Value) (Value, error) {
		if len(args) != 2 || args[0].Tag != VTArray || args[1].Tag != VTStr {
			return Null, fmt.Errorf("expected an array and a separator string")
		}
		elems := args[0].Data.([]Value)
		parts := make([]string, len(elems))
		for i, el := range elems {
			parts[i] = Stringify(el)
		}
		return Str(strings.Join(parts, args[1].Data.(string))), nil
	}}))
	o.Set("substr", BuiltinVal(&Builtin{Name: "strings.substr", Fn: func(_ *Interpreter, args []Value) (Value, error) {
		if len(args) != 3 || args[0].Tag != VTStr || args[1].Tag != VTNum || args[2].Tag != VTNum {
			return Null, fmt.Errorf("expected a string and two number indexes")
		}
		rs := []rune(args[0].Data.(string))
		i := int(args[1].Data.(float64))
		j := int(args[2].Data.(float64))
		// Out-of-range bounds clamp rather than fail.
		if i < 0 {
			i = 0
		}
		if j > len(rs) {
			j = len(rs)
		}
		if i >= j {
			return Str(""), nil
		}
		return Str(string(rs[i:j])), nil
	}}))
	return ObjVal(o)
}
