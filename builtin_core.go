// builtin_core.go — the core builtins bound in every interpreter's Core env.
package gilgamesh

import (
	"fmt"
	"strconv"
)

func registerCoreBuiltins(ip *Interpreter) {
	ip.RegisterBuiltin("print", func(ip *Interpreter, args []Value) (Value, error) {
		ip.Host.Print(args...)
		return Null, nil
	})

	ip.RegisterBuiltin("input", func(ip *Interpreter, args []Value) (Value, error) {
		prompt := ""
		if len(args) > 0 {
			prompt = Stringify(args[0])
		}
		return ip.Host.Input(prompt)
	})

	ip.RegisterBuiltin("len", func(_ *Interpreter, args []Value) (Value, error) {
		if len(args) != 1 {
			return Null, fmt.Errorf("expected 1 argument, got %d", len(args))
		}
		switch args[0].Tag {
		case VTStr:
			return Num(float64(len(args[0].Data.(string)))), nil
		case VTArray:
			return Num(float64(len(args[0].Data.([]Value)))), nil
		case VTObject:
			return Num(float64(len(args[0].Data.(*Object).Keys))), nil
		}
		return Null, fmt.Errorf("len of %s", typeName(args[0]))
	})

	ip.RegisterBuiltin("str", func(_ *Interpreter, args []Value) (Value, error) {
		if len(args) != 1 {
			return Null, fmt.Errorf("expected 1 argument, got %d", len(args))
		}
		return Str(Stringify(args[0])), nil
	})

	ip.RegisterBuiltin("num", func(_ *Interpreter, args []Value) (Value, error) {
		if len(args) != 1 {
			return Null, fmt.Errorf("expected 1 argument, got %d", len(args))
		}
		if args[0].Tag == VTNum {
			return args[0], nil
		}
		if args[0].Tag == VTStr {
			f, err := strconv.ParseFloat(args[0].Data.(string), 64)
			if err != nil {
				return Null, nil // non-numeric strings convert to null
			}
			return Num(f), nil
		}
		if f, ok := asNumber(args[0]); ok {
			return Num(f), nil
		}
		return Null, nil
	})
}
