package rule

// CmpOp is a comparison operator.
type CmpOp string

// Comparison operators accepted by the DSL.
const (
	OpEq CmpOp = "=="
	OpNe CmpOp = "!="
	OpGt CmpOp = ">"
	OpLt CmpOp = "<"
	OpGe CmpOp = ">="
	OpLe CmpOp = "<="
)

// Kind classifies a declared field for count and comparison semantics.
type Kind int

// Field kinds.
const (
	KindText Kind = iota
	KindNumber
	KindBool
	KindFile
	KindArray
	KindSelect
)

var kindNames = map[Kind]string{
	KindText:   "text",
	KindNumber: "number",
	KindBool:   "bool",
	KindFile:   "file",
	KindArray:  "array",
	KindSelect: "select",
}

// String returns the kind's stored name.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "text"
}

// ParseKind maps a stored kind name back to a Kind. Unknown names report
// ok=false and default to KindText.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return KindText, false
}

// LitKind classifies a field-comparison literal.
type LitKind int

// Literal kinds. Null, undefined, and the empty string are distinct on
// purpose: their match semantics differ (see evalField).
const (
	LitString LitKind = iota
	LitBare
	LitBool
	LitNull
	LitUndefined
	LitEmpty
)

// Literal is the right-hand side of a field comparison.
type Literal struct {
	Kind LitKind
	Str  string
	Bool bool
}

// ──────────────────────────────────────────────────
// Conditions
// ──────────────────────────────────────────────────

// Condition is a parsed validation expression.
type Condition interface{ cond() }

// Equals compares a document type's status against a literal:
// `Ident.status = "value"` (optionally prefixed with `document.`).
type Equals struct {
	Ident string
	Value string
}

// In tests set membership: `Ident.status in ("a", "b")`.
type In struct {
	Ident  string
	Values []string
}

// BoolCall invokes a named predicate and compares the result to a
// boolean literal: `fnName() == true`.
type BoolCall struct {
	Fn   string
	Op   CmpOp // OpEq or OpNe
	Want bool
}

// Count compares an uploaded-file count or array-field length:
// `Ident.count() >= 2`. Which of the two is counted is decided by the
// field's declared kind at evaluation time.
type Count struct {
	Ident string
	Op    CmpOp
	N     int
}

// Field compares a form field's value against a literal:
// `field == "x"`, `field != null`, `field = true`.
type Field struct {
	Name  string
	Op    CmpOp // OpEq or OpNe
	Value Literal
}

// And holds when every part holds.
type And struct{ Parts []Condition }

// Or holds when at least one part holds.
type Or struct{ Parts []Condition }

// Lines is the implicit conjunction across newline-delimited validation
// lines.
type Lines struct{ Conds []Condition }

func (Equals) cond()   {}
func (In) cond()       {}
func (BoolCall) cond() {}
func (Count) cond()    {}
func (Field) cond()    {}
func (And) cond()      {}
func (Or) cond()       {}
func (Lines) cond()    {}

// ──────────────────────────────────────────────────
// Actions
// ──────────────────────────────────────────────────

// Action is a parsed imperative action.
type Action interface{ act() }

// Assign sets a form field's value: `field = value`.
type Assign struct {
	Field string
	Value Literal
}

// Flag names a toggleable UI-relevant field attribute.
type Flag string

// Toggleable flags.
const (
	FlagDisabled Flag = "disabled"
	FlagHidden   Flag = "hidden"
)

// SetFlag toggles a field flag: `field.disabled = true`.
type SetFlag struct {
	Field string
	Flag  Flag
	Value bool
}

// Process queues a document type: `process.Ident` sets its status to
// "queued".
type Process struct {
	Ident string
}

// SetStatus overwrites a document type's status: `Ident.status = "v"`.
type SetStatus struct {
	Ident string
	Value string
}

// CopyStatus assigns one document type's freshly refetched status to
// another: `Ident.status = getStatus(Other)`. The re-query is explicit
// because the cascade depends on seeing post-iteration state, not the
// cached status map.
type CopyStatus struct {
	Ident string
	From  string
}

func (Assign) act()     {}
func (SetFlag) act()    {}
func (Process) act()    {}
func (SetStatus) act()  {}
func (CopyStatus) act() {}
