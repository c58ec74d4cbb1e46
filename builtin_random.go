// builtin_random.go — the `random` builtin module (import random).
package gilgamesh

import (
	"fmt"
	"math/rand"
	"time"
)

// randomModule builds the random-value helper exposed through the host
// registry. Each module value owns its own generator so seeding one
// interpreter's random never disturbs another's.
func randomModule() Value {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	o := NewObject()
	o.Set("random", BuiltinVal(&Builtin{Name: "random.random", Fn: func(_ *Interpreter, _ []Value) (Value, error) {
		return Num(rng.Float64()), nil
	}}))
	o.Set("between", BuiltinVal(&Builtin{Name: "random.between", Fn: func(_ *Interpreter, args []Value) (Value, error) {
		if len(args) != 2 || args[0].Tag != VTNum || args[1].Tag != VTNum {
			return Null, fmt.Errorf("expected two numbers")
		}
		lo, hi := args[0].Data.(float64), args[1].Data.(float64)
		if hi < lo {
			lo, hi = hi, lo
		}
		return Num(lo + rng.Float64()*(hi-lo)), nil
	}}))
	o.Set("pick", BuiltinVal(&Builtin{Name: "random.pick", Fn: func(_ *Interpreter, args []Value) (Value, error) {
		if len(args) != 1 || args[0].Tag != VTArray {
			return Null, fmt.Errorf("expected an array")
		}
		xs := args[0].Data.([]Value)
		if len(xs) == 0 {
			return Null, nil
		}
		return xs[rng.Intn(len(xs))], nil
	}}))
	o.Set("seed", BuiltinVal(&Builtin{Name: "random.seed", Fn: func(_ *Interpreter, args []Value) (Value, error) {
		if len(args) != 1 || args[0].Tag != VTNum {
			return Null, fmt.Errorf("expected a number")
		}
		rng.Seed(int64(args[0].Data.(float64)))
		return Null, nil
	}}))
	return ObjVal(o)
}
