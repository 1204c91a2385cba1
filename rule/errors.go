package rule

import "fmt"

// ParseError reports rule text that matched no pattern or matched one
// malformed.
type ParseError struct {
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("rule: parse %q: %s", e.Text, e.Reason)
}

func parseErrf(text, format string, args ...any) error {
	return &ParseError{Text: text, Reason: fmt.Sprintf(format, args...)}
}

// EvalError reports a condition or action that could not be evaluated
// against the current state.
type EvalError struct {
	Text   string
	Reason string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("rule: evaluate %q: %s", e.Text, e.Reason)
}

func evalErrf(text, format string, args ...any) error {
	return &EvalError{Text: text, Reason: fmt.Sprintf(format, args...)}
}
