package rule

import "fmt"

// Env supplies the state a condition is evaluated against. The workflow
// engine backs it with the project's status map; the form engine backs
// it with live form-field state.
type Env interface {
	// Status returns the status of a document type identifier, and
	// whether the identifier is known.
	Status(ident string) (string, bool)

	// Field returns a form field's current value, and whether the field
	// exists at all. A missing field is "undefined"; an existing field
	// may still hold a nil value.
	Field(name string) (any, bool)

	// FieldKind returns a field's declared kind.
	FieldKind(name string) (Kind, bool)

	// Count returns the uploaded-file count or array length for a
	// field, selected by its declared kind.
	Count(name string) (int, error)

	// Call invokes a named boolean predicate.
	Call(fn string) (bool, error)
}

// Evaluate walks the condition AST against the environment.
func Evaluate(c Condition, env Env) (bool, error) {
	switch n := c.(type) {
	case Equals:
		st, ok := env.Status(n.Ident)
		if !ok {
			return false, nil
		}
		return st == n.Value, nil

	case In:
		st, ok := env.Status(n.Ident)
		if !ok {
			return false, nil
		}
		for _, v := range n.Values {
			if st == v {
				return true, nil
			}
		}
		return false, nil

	case BoolCall:
		got, err := env.Call(n.Fn)
		if err != nil {
			return false, err
		}
		if n.Op == OpNe {
			return got != n.Want, nil
		}
		return got == n.Want, nil

	case Count:
		count, err := env.Count(n.Ident)
		if err != nil {
			return false, err
		}
		return compareInts(count, n.Op, n.N)

	case Field:
		return evalField(n, env), nil

	case And:
		for _, part := range n.Parts {
			ok, err := Evaluate(part, env)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil

	case Or:
		for _, part := range n.Parts {
			ok, err := Evaluate(part, env)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil

	case Lines:
		for _, line := range n.Conds {
			ok, err := Evaluate(line, env)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil

	default:
		return false, evalErrf(fmt.Sprintf("%T", c), "unknown condition node")
	}
}

// evalField applies the deliberately asymmetric ==/!= semantics for
// null, undefined and the empty string:
//
//   - `field == null` and `field == ""` match a nil value OR an empty
//     string (a missing field counts as nil);
//   - `field != null` matches any non-nil value, so an empty string
//     passes — the negation is strict against the literal, not against
//     the loose match class;
//   - `field != ""` matches any value that is not the empty string, so
//     nil passes;
//   - `field == undefined` matches exactly a missing field.
func evalField(f Field, env Env) bool {
	val, present := env.Field(f.Name)
	if !present {
		val = nil
	}

	switch f.Value.Kind {
	case LitUndefined:
		if f.Op == OpNe {
			return present
		}
		return !present

	case LitNull, LitEmpty:
		if f.Op == OpNe {
			if f.Value.Kind == LitNull {
				return val != nil
			}
			return val != ""
		}
		return val == nil || val == ""

	case LitBool:
		match := boolValue(val) == f.Value.Bool && val != nil
		if f.Op == OpNe {
			return !match
		}
		return match

	default: // LitString, LitBare
		match := present && stringify(val) == f.Value.Str
		if f.Op == OpNe {
			return !match
		}
		return match
	}
}

func boolValue(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true"
	default:
		return false
	}
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func compareInts(a int, op CmpOp, b int) (bool, error) {
	switch op {
	case OpGt:
		return a > b, nil
	case OpLt:
		return a < b, nil
	case OpGe:
		return a >= b, nil
	case OpLe:
		return a <= b, nil
	case OpEq:
		return a == b, nil
	case OpNe:
		return a != b, nil
	default:
		return false, evalErrf(string(op), "unsupported count operator")
	}
}
