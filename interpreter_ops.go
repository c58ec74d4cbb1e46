// interpreter_ops.go — operator semantics, coercion, truthiness.
//
// Arithmetic follows IEEE-754 double precision throughout. Division by zero
// is a language-semantics decision, not an error: x/0 yields ±Inf and 0/0
// yields NaN (Go's float64 behavior, applied uniformly).
//
// Equality and relational comparison are loose and coercing. The table:
//
//	null   vs null     — equal; null is unequal to everything else
//	num    vs num      — numeric comparison
//	str    vs str      — byte equality; lexicographic for < <= > >=
//	num    vs str      — the string is parsed as a number; a non-numeric
//	                     string compares unequal and all relationals are false
//	bool   vs num/str  — the bool coerces to 1/0, then the number rules apply
//	bool   vs bool     — equal when same
//	array  vs array    — deep elementwise equality; relationals are false
//	object/function/builtin — identity; relationals are false
//
// '+' adds numbers; when either operand is a string it concatenates the
// stringified forms. '-', '*', '/' require numbers. Truthiness: null, false,
// 0, NaN, "", and the empty array are falsy; everything else is truthy.
package gilgamesh

import (
	"math"
	"strconv"
)

func truthy(v Value) bool {
	switch v.Tag {
	case VTNull:
		return false
	case VTBool:
		return v.Data.(bool)
	case VTNum:
		f := v.Data.(float64)
		return f != 0 && !math.IsNaN(f)
	case VTStr:
		return v.Data.(string) != ""
	case VTArray:
		return len(v.Data.([]Value)) > 0
	default:
		return true
	}
}

func (ip *Interpreter) binaryOp(op TokenType, left, right Value, line int) (Value, error) {
	switch op {
	case PLUS:
		if left.Tag == VTNum && right.Tag == VTNum {
			return Num(left.Data.(float64) + right.Data.(float64)), nil
		}
		if left.Tag == VTStr || right.Tag == VTStr {
			return Str(Stringify(left) + Stringify(right)), nil
		}
		return Null, rtErr(ErrGeneric, line, "cannot add %s and %s", typeName(left), typeName(right))
	case MINUS, MULT, DIV:
		if left.Tag != VTNum || right.Tag != VTNum {
			return Null, rtErr(ErrGeneric, line, "arithmetic needs numbers, got %s and %s",
				typeName(left), typeName(right))
		}
		a, b := left.Data.(float64), right.Data.(float64)
		switch op {
		case MINUS:
			return Num(a - b), nil
		case MULT:
			return Num(a * b), nil
		default:
			// IEEE-754: a/0 is ±Inf, 0/0 is NaN.
			return Num(a / b), nil
		}
	case EQ:
		return Bool(looseEqual(left, right)), nil
	case NEQ:
		return Bool(!looseEqual(left, right)), nil
	case LESS, LESS_EQ, GREATER, GREATER_EQ:
		return compare(op, left, right), nil
	}
	return Null, rtErr(ErrGeneric, line, "invalid binary operator")
}

// asNumber applies the numeric side of the coercion table. ok is false when
// the value has no numeric interpretation.
func asNumber(v Value) (float64, bool) {
	switch v.Tag {
	case VTNum:
		return v.Data.(float64), true
	case VTBool:
		if v.Data.(bool) {
			return 1, true
		}
		return 0, true
	case VTStr:
		f, err := strconv.ParseFloat(v.Data.(string), 64)
		return f, err == nil
	}
	return 0, false
}

func looseEqual(a, b Value) bool {
	if a.Tag == VTNull || b.Tag == VTNull {
		return a.Tag == VTNull && b.Tag == VTNull
	}
	if a.Tag == b.Tag {
		switch a.Tag {
		case VTBool:
			return a.Data.(bool) == b.Data.(bool)
		case VTNum:
			return a.Data.(float64) == b.Data.(float64)
		case VTStr:
			return a.Data.(string) == b.Data.(string)
		case VTArray:
			ax, bx := a.Data.([]Value), b.Data.([]Value)
			if len(ax) != len(bx) {
				return false
			}
			for i := range ax {
				if !looseEqual(ax[i], bx[i]) {
					return false
				}
			}
			return true
		default:
			return a.Data == b.Data // identity
		}
	}
	// Cross-kind: both sides must coerce to numbers.
	an, aok := asNumber(a)
	bn, bok := asNumber(b)
	return aok && bok && an == bn
}

func compare(op TokenType, a, b Value) Value {
	if a.Tag == VTStr && b.Tag == VTStr {
		as, bs := a.Data.(string), b.Data.(string)
		switch op {
		case LESS:
			return Bool(as < bs)
		case LESS_EQ:
			return Bool(as <= bs)
		case GREATER:
			return Bool(as > bs)
		default:
			return Bool(as >= bs)
		}
	}
	an, aok := asNumber(a)
	bn, bok := asNumber(b)
	if !aok || !bok {
		return Bool(false)
	}
	switch op {
	case LESS:
		return Bool(an < bn)
	case LESS_EQ:
		return Bool(an <= bn)
	case GREATER:
		return Bool(an > bn)
	default:
		return Bool(an >= bn)
	}
}
