package rule

import (
	"strconv"
	"strings"
)

// ParseValidation parses a full validation block. Each non-empty line is
// parsed independently; all lines must hold for the validation to hold.
func ParseValidation(text string) (Condition, error) {
	var conds []Condition
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		c, err := ParseCondition(line)
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}

	switch len(conds) {
	case 0:
		return nil, parseErrf(text, "empty validation")
	case 1:
		return conds[0], nil
	default:
		return Lines{Conds: conds}, nil
	}
}

// ParseCondition parses one condition line. A line is either a single
// pattern, an AND chain (" and "/" & "), or an OR chain (" or "/" | ") —
// never both families at once.
func ParseCondition(line string) (Condition, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, parseErrf(line, "empty condition")
	}

	hasAnd := containsTop(line, " and ", " & ")
	hasOr := containsTop(line, " or ", " | ")
	if hasAnd && hasOr {
		return nil, parseErrf(line, "mixing and/or in one condition is not supported")
	}

	if !hasAnd && !hasOr {
		return parseSimple(line)
	}

	var raw []string
	if hasAnd {
		raw = splitTop(line, " and ", " & ")
	} else {
		raw = splitTop(line, " or ", " | ")
	}

	parts := make([]Condition, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, parseErrf(line, "empty operand")
		}
		c, err := parseSimple(p)
		if err != nil {
			return nil, err
		}
		parts = append(parts, c)
	}

	if hasAnd {
		return And{Parts: parts}, nil
	}
	return Or{Parts: parts}, nil
}

// parseSimple parses a single pattern. Patterns anchor in a fixed order;
// the first anchor that matches claims the text, and a malformed
// remainder is an error rather than a fallthrough to later patterns.
func parseSimple(part string) (Condition, error) {
	toks, err := lex(part)
	if err != nil {
		return nil, err
	}
	p := &parser{text: part, toks: toks}

	// Optional `document.` prefix on the status patterns.
	if p.peek(0).kind == tIdent && p.peek(0).text == "document" &&
		p.peek(1).kind == tDot && p.peek(2).kind == tIdent && p.peek(3).kind == tDot {
		p.pos += 2
	}

	switch {
	case p.anchorsProperty("status"):
		return p.parseStatus()
	case p.anchorsProperty("count"):
		return p.parseCount()
	case p.anchorsCall():
		return p.parseBoolCall()
	case p.anchorsField():
		return p.parseField()
	default:
		return nil, parseErrf(part, "unrecognized condition")
	}
}

type parser struct {
	text string
	toks []token
	pos  int
}

func (p *parser) peek(ahead int) token {
	i := p.pos + ahead
	if i >= len(p.toks) {
		return token{kind: tEOF}
	}
	return p.toks[i]
}

func (p *parser) next() token {
	t := p.peek(0)
	if t.kind != tEOF {
		p.pos++
	}
	return t
}

func (p *parser) expectEOF() error {
	if t := p.peek(0); t.kind != tEOF {
		return parseErrf(p.text, "trailing input %q", t.text)
	}
	return nil
}

// anchorsProperty reports whether the cursor sits on `Ident.<prop>`.
func (p *parser) anchorsProperty(prop string) bool {
	return p.peek(0).kind == tIdent && p.peek(1).kind == tDot &&
		p.peek(2).kind == tIdent && p.peek(2).text == prop
}

// anchorsCall reports whether the cursor sits on `ident(`.
func (p *parser) anchorsCall() bool {
	return p.peek(0).kind == tIdent && p.peek(1).kind == tLParen
}

// anchorsField reports whether the cursor sits on `ident <op>`.
func (p *parser) anchorsField() bool {
	return p.peek(0).kind == tIdent && p.peek(1).kind == tOp
}

// parseStatus handles `Ident.status = "v"` and `Ident.status in (...)`.
func (p *parser) parseStatus() (Condition, error) {
	ident := p.next().text
	p.next() // dot
	p.next() // status

	t := p.next()
	switch {
	case t.kind == tOp && (t.text == "=" || t.text == "=="):
		v := p.next()
		if v.kind != tString {
			return nil, parseErrf(p.text, "status comparison needs a quoted value")
		}
		if err := p.expectEOF(); err != nil {
			return nil, err
		}
		return Equals{Ident: ident, Value: v.text}, nil

	case t.kind == tIdent && t.text == "in":
		if p.next().kind != tLParen {
			return nil, parseErrf(p.text, "expected '(' after in")
		}
		var values []string
		for {
			v := p.next()
			if v.kind != tString {
				return nil, parseErrf(p.text, "membership list needs quoted values")
			}
			values = append(values, v.text)

			sep := p.next()
			if sep.kind == tComma {
				continue
			}
			if sep.kind == tRParen {
				break
			}
			return nil, parseErrf(p.text, "expected ',' or ')' in membership list")
		}
		if err := p.expectEOF(); err != nil {
			return nil, err
		}
		return In{Ident: ident, Values: values}, nil

	default:
		return nil, parseErrf(p.text, "expected '=' or 'in' after .status")
	}
}

// parseCount handles `Ident.count() <op> N`.
func (p *parser) parseCount() (Condition, error) {
	ident := p.next().text
	p.next() // dot
	p.next() // count

	if p.next().kind != tLParen || p.next().kind != tRParen {
		return nil, parseErrf(p.text, "expected '()' after .count")
	}

	op := p.next()
	if op.kind != tOp {
		return nil, parseErrf(p.text, "expected comparison operator after .count()")
	}
	cmp, err := cmpOp(p.text, op.text)
	if err != nil {
		return nil, err
	}

	n := p.next()
	if n.kind != tNumber {
		return nil, parseErrf(p.text, "count comparison needs a number")
	}
	value, err := strconv.Atoi(n.text)
	if err != nil {
		return nil, parseErrf(p.text, "bad count literal %q", n.text)
	}

	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return Count{Ident: ident, Op: cmp, N: value}, nil
}

// parseBoolCall handles `fnName() == true|false`.
func (p *parser) parseBoolCall() (Condition, error) {
	fn := p.next().text
	p.next() // lparen
	if p.next().kind != tRParen {
		return nil, parseErrf(p.text, "expected '()' after function name")
	}

	op := p.next()
	if op.kind != tOp || (op.text != "==" && op.text != "!=") {
		return nil, parseErrf(p.text, "function result must be compared with == or !=")
	}

	lit := p.next()
	if lit.kind != tIdent || (lit.text != "true" && lit.text != "false") {
		return nil, parseErrf(p.text, "function result must be compared to true or false")
	}

	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return BoolCall{Fn: fn, Op: CmpOp(op.text), Want: lit.text == "true"}, nil
}

// parseField handles `field <op> literal` with =, == and !=.
func (p *parser) parseField() (Condition, error) {
	name := p.next().text

	op := p.next()
	if op.text != "=" && op.text != "==" && op.text != "!=" {
		return nil, parseErrf(p.text, "field comparison supports =, == and != only")
	}
	cmp := OpEq
	if op.text == "!=" {
		cmp = OpNe
	}

	lit, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return Field{Name: name, Op: cmp, Value: lit}, nil
}

func (p *parser) parseLiteral() (Literal, error) {
	t := p.next()
	switch t.kind {
	case tString:
		if t.text == "" {
			return Literal{Kind: LitEmpty}, nil
		}
		return Literal{Kind: LitString, Str: t.text}, nil
	case tNumber:
		return Literal{Kind: LitBare, Str: t.text}, nil
	case tIdent:
		switch t.text {
		case "true", "false":
			return Literal{Kind: LitBool, Bool: t.text == "true"}, nil
		case "null":
			return Literal{Kind: LitNull}, nil
		case "undefined":
			return Literal{Kind: LitUndefined}, nil
		default:
			return Literal{Kind: LitBare, Str: t.text}, nil
		}
	default:
		return Literal{}, parseErrf(p.text, "expected a literal, got %q", t.text)
	}
}

func cmpOp(text, op string) (CmpOp, error) {
	switch op {
	case ">", "<", ">=", "<=", "==", "!=":
		return CmpOp(op), nil
	default:
		return "", parseErrf(text, "unsupported operator %q", op)
	}
}

// ──────────────────────────────────────────────────
// Actions
// ──────────────────────────────────────────────────

// ParseActions parses a comma-separated action list in document order.
func ParseActions(text string) ([]Action, error) {
	var actions []Action
	for _, part := range splitTop(text, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		a, err := parseAction(part)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	if len(actions) == 0 {
		return nil, parseErrf(text, "empty action list")
	}
	return actions, nil
}

func parseAction(part string) (Action, error) {
	toks, err := lex(part)
	if err != nil {
		return nil, err
	}
	p := &parser{text: part, toks: toks}

	// `field.disabled = true|false` / `field.hidden = true|false`
	if p.anchorsProperty(string(FlagDisabled)) || p.anchorsProperty(string(FlagHidden)) {
		return p.parseSetFlag()
	}

	// `process.Ident`
	if p.peek(0).kind == tIdent && p.peek(0).text == "process" && p.peek(1).kind == tDot {
		p.pos += 2
		ident := p.next()
		if ident.kind != tIdent {
			return nil, parseErrf(part, "expected a document type after process.")
		}
		if err := p.expectEOF(); err != nil {
			return nil, err
		}
		return Process{Ident: ident.text}, nil
	}

	// `Ident.status = getStatus(Other)` / `Ident.status = "value"`
	if p.anchorsProperty("status") {
		return p.parseStatusAction()
	}

	// `field = value`
	if p.anchorsField() {
		return p.parseAssign()
	}

	return nil, parseErrf(part, "unrecognized action")
}

func (p *parser) parseSetFlag() (Action, error) {
	field := p.next().text
	p.next() // dot
	flag := Flag(p.next().text)

	op := p.next()
	if op.kind != tOp || op.text != "=" {
		return nil, parseErrf(p.text, "flag assignment needs '='")
	}

	lit := p.next()
	if lit.kind != tIdent || (lit.text != "true" && lit.text != "false") {
		return nil, parseErrf(p.text, "flag value must be true or false")
	}

	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return SetFlag{Field: field, Flag: flag, Value: lit.text == "true"}, nil
}

func (p *parser) parseStatusAction() (Action, error) {
	ident := p.next().text
	p.next() // dot
	p.next() // status

	op := p.next()
	if op.kind != tOp || op.text != "=" {
		return nil, parseErrf(p.text, "status assignment needs '='")
	}

	t := p.next()
	switch {
	case t.kind == tIdent && t.text == "getStatus":
		if p.next().kind != tLParen {
			return nil, parseErrf(p.text, "expected '(' after getStatus")
		}
		from := p.next()
		if from.kind != tIdent {
			return nil, parseErrf(p.text, "getStatus needs a document type argument")
		}
		if p.next().kind != tRParen {
			return nil, parseErrf(p.text, "expected ')' after getStatus argument")
		}
		if err := p.expectEOF(); err != nil {
			return nil, err
		}
		return CopyStatus{Ident: ident, From: from.text}, nil

	case t.kind == tString:
		if err := p.expectEOF(); err != nil {
			return nil, err
		}
		return SetStatus{Ident: ident, Value: t.text}, nil

	default:
		return nil, parseErrf(p.text, "status assignment needs a quoted value or getStatus(...)")
	}
}

func (p *parser) parseAssign() (Action, error) {
	field := p.next().text

	op := p.next()
	if op.kind != tOp || op.text != "=" {
		return nil, parseErrf(p.text, "assignment needs '='")
	}

	lit, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return Assign{Field: field, Value: lit}, nil
}
