// builtin_json.go — the `json` builtin module (import json).
package gilgamesh

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// jsonModule builds the JSON codec module exposed through the host registry.
// parse maps JSON onto runtime values (objects keep a stable key order);
// dump is the inverse, with functions and builtins rejected.
func jsonModule() Value {
	o := NewObject()
	o.Set("parse", BuiltinVal(&Builtin{Name: "json.parse", Fn: func(_ *Interpreter, args []Value) (Value, error) {
		if len(args) != 1 || args[0].Tag != VTStr {
			return Null, fmt.Errorf("expected a string")
		}
		dec := json.NewDecoder(bytes.NewReader([]byte(args[0].Data.(string))))
		dec.UseNumber()
		var raw interface{}
		if err := dec.Decode(&raw); err != nil {
			return Null, fmt.Errorf("invalid JSON: %v", err)
		}
		return fromJSON(raw)
	}}))
	o.Set("dump", BuiltinVal(&Builtin{Name: "json.dump", Fn: func(_ *Interpreter, args []Value) (Value, error) {
		if len(args) != 1 {
			return Null, fmt.Errorf("expected 1 argument, got %d", len(args))
		}
		raw, err := toJSON(args[0])
		if err != nil {
			return Null, err
		}
		data, err := json.Marshal(raw)
		if err != nil {
			return Null, err
		}
		return Str(string(data)), nil
	}}))
	return ObjVal(o)
}

func fromJSON(raw interface{}) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return Null, nil
	case bool:
		return Bool(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return Null, fmt.Errorf("number %s out of range", v)
		}
		return Num(f), nil
	case string:
		return Str(v), nil
	case []interface{}:
		out := make([]Value, len(v))
		for i, el := range v {
			ev, err := fromJSON(el)
			if err != nil {
				return Null, err
			}
			out[i] = ev
		}
		return Arr(out), nil
	case map[string]interface{}:
		// encoding/json loses source order; sort keys so parsing is
		// deterministic.
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := NewObject()
		for _, k := range keys {
			ev, err := fromJSON(v[k])
			if err != nil {
				return Null, err
			}
			obj.Set(k, ev)
		}
		return ObjVal(obj), nil
	}
	return Null, fmt.Errorf("unsupported JSON value %T", raw)
}

func toJSON(v Value) (interface{}, error) {
	switch v.Tag {
	case VTNull:
		return nil, nil
	case VTBool:
		return v.Data.(bool), nil
	case VTNum:
		return v.Data.(float64), nil
	case VTStr:
		return v.Data.(string), nil
	case VTArray:
		elems := v.Data.([]Value)
		out := make([]interface{}, len(elems))
		for i, el := range elems {
			ev, err := toJSON(el)
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	case VTObject:
		obj := v.Data.(*Object)
		out := make(map[string]interface{}, len(obj.Keys))
		for _, k := range obj.Keys {
			ev, err := toJSON(obj.Entries[k])
			if err != nil {
				return nil, err
			}
			out[k] = ev
		}
		return out, nil
	}
	return nil, fmt.Errorf("cannot serialize %s to JSON", typeName(v))
}
