// printer.go — value stringification used by print and Value.String.
//
// Rules: null → "null"; numbers use the shortest round-trip decimal form
// (5.0 prints as "5"); arrays are bracketed, comma-joined, recursive; objects
// serialize structurally in insertion order; functions and builtins render as
// angle-bracketed placeholders.
package gilgamesh

import (
	"strconv"
	"strings"
)

// Stringify renders a runtime value as print would show it.
func Stringify(v Value) string {
	switch v.Tag {
	case VTNull:
		return "null"
	case VTBool:
		if v.Data.(bool) {
			return "true"
		}
		return "false"
	case VTNum:
		return strconv.FormatFloat(v.Data.(float64), 'f', -1, 64)
	case VTStr:
		return v.Data.(string)
	case VTArray:
		var b strings.Builder
		b.WriteByte('[')
		for i, el := range v.Data.([]Value) {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(Stringify(el))
		}
		b.WriteByte(']')
		return b.String()
	case VTObject:
		o := v.Data.(*Object)
		var b strings.Builder
		b.WriteByte('{')
		for i, k := range o.Keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(k)
			b.WriteString(": ")
			b.WriteString(Stringify(o.Entries[k]))
		}
		b.WriteByte('}')
		return b.String()
	case VTFunc:
		return "<func " + v.Data.(*Func).Name + ">"
	case VTBuiltin:
		return "<builtin " + v.Data.(*Builtin).Name + ">"
	default:
		return "<unknown>"
	}
}
