// Package rule parses and evaluates the textual workflow rule DSL.
//
// A rule pairs a validation (condition) with an action list. Conditions
// are line- and token-oriented: each line is tokenized and matched
// against a fixed set of patterns in a fixed precedence order — the
// first pattern that anchors wins, and later patterns assume earlier
// ones failed to anchor. The parser produces a tagged-union AST
// (Equals, In, BoolCall, Count, Field, And, Or, Lines) which a visitor
// evaluates against an Env.
//
// Within a line, " and "/" & " combine parts conjunctively and
// " or "/" | " disjunctively; the two operator families cannot be mixed
// in one line. Across lines, every line must hold — a second, implicit
// AND layer distinct from the in-line operators.
//
// Action text is comma-separated; each action is parsed independently
// and executed in document order. Unrecognized condition or action text
// is a ParseError, never a silent no-op.
package rule
