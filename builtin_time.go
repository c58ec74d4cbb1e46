// builtin_time.go — the `time` builtin module (import time).
package gilgamesh

import (
	"fmt"
	"time"
)

// timeModule builds the time helper exposed through the host registry.
// sleep is cooperative: it wakes periodically to honor the interrupt flag
// instead of blocking the thread for the whole duration.
func timeModule() Value {
	start := time.Now()

	o := NewObject()
	o.Set("now", BuiltinVal(&Builtin{Name: "time.now", Fn: func(_ *Interpreter, _ []Value) (Value, error) {
		return Num(float64(time.Now().UnixMilli())), nil
	}}))
	o.Set("clock", BuiltinVal(&Builtin{Name: "time.clock", Fn: func(_ *Interpreter, _ []Value) (Value, error) {
		return Num(time.Since(start).Seconds()), nil
	}}))
	o.Set("sleep", BuiltinVal(&Builtin{Name: "time.sleep", Fn: func(ip *Interpreter, args []Value) (Value, error) {
		if len(args) != 1 || args[0].Tag != VTNum {
			return Null, fmt.Errorf("expected milliseconds")
		}
		remaining := time.Duration(args[0].Data.(float64)) * time.Millisecond
		const slice = 10 * time.Millisecond
		for remaining > 0 {
			if err := ip.checkInterrupt(0); err != nil {
				return Null, err
			}
			d := remaining
			if d > slice {
				d = slice
			}
			time.Sleep(d)
			remaining -= d
		}
		return Null, nil
	}}))
	return ObjVal(o)
}
