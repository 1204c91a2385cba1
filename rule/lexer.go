package rule

import (
	"strings"
	"unicode"
)

type tokKind int

const (
	tEOF tokKind = iota
	tIdent
	tNumber
	tString // quoted; quotes stripped
	tDot
	tComma
	tLParen
	tRParen
	tOp // =, ==, !=, >, <, >=, <=
)

type token struct {
	kind tokKind
	text string
}

// lex tokenizes one condition or action fragment. Identifiers may carry
// underscores and dashes; both quote styles are accepted and produce the
// same string token.
func lex(s string) ([]token, error) {
	var toks []token
	runes := []rune(s)
	i := 0

	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++

		case r == '\'' || r == '"':
			quote := r
			j := i + 1
			for j < len(runes) && runes[j] != quote {
				j++
			}
			if j >= len(runes) {
				return nil, parseErrf(s, "unterminated string")
			}
			toks = append(toks, token{tString, string(runes[i+1 : j])})
			i = j + 1

		case r == '.':
			toks = append(toks, token{tDot, "."})
			i++

		case r == ',':
			toks = append(toks, token{tComma, ","})
			i++

		case r == '(':
			toks = append(toks, token{tLParen, "("})
			i++

		case r == ')':
			toks = append(toks, token{tRParen, ")"})
			i++

		case r == '=' || r == '!' || r == '>' || r == '<':
			op := string(r)
			if i+1 < len(runes) && runes[i+1] == '=' {
				op += "="
				i++
			}
			if op == "!" {
				return nil, parseErrf(s, "bare '!' operator")
			}
			toks = append(toks, token{tOp, op})
			i++

		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-':
			j := i
			for j < len(runes) && (unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j]) || runes[j] == '_' || runes[j] == '-') {
				j++
			}
			word := string(runes[i:j])
			if isNumber(word) {
				toks = append(toks, token{tNumber, word})
			} else {
				toks = append(toks, token{tIdent, word})
			}
			i = j

		default:
			return nil, parseErrf(s, "unexpected character %q", string(r))
		}
	}

	toks = append(toks, token{tEOF, ""})
	return toks, nil
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// splitTop splits s on any of the separator words, ignoring occurrences
// inside quotes or parentheses. Separators are matched with surrounding
// whitespace already trimmed off by the caller's framing (they are
// passed as " and ", " & ", etc.).
func splitTop(s string, seps ...string) []string {
	var parts []string
	depth := 0
	var quote rune
	last := 0

	for i := 0; i < len(s); i++ {
		c := rune(s[i])
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
		case depth == 0:
			for _, sep := range seps {
				if strings.HasPrefix(s[i:], sep) {
					parts = append(parts, s[last:i])
					i += len(sep) - 1
					last = i + 1
					break
				}
			}
		}
	}

	parts = append(parts, s[last:])
	return parts
}

// containsTop reports whether any separator occurs at the top level.
func containsTop(s string, seps ...string) bool {
	return len(splitTop(s, seps...)) > 1
}
