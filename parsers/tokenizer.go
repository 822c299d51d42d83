package parsers

import (
	"strings"
	"unicode/utf8"
)

type scanState int

const (
	stateUnquoted scanState = iota
	stateQuoted
)

// TokenizeLine splits one line (terminator already stripped) into unquoted fields.
//
// Inside a quoted section a doubled quote is a literal quote; any other quote toggles the
// section. Delimiters only split fields outside quoted sections, and every field is trimmed
// of surrounding whitespace. A field consisting only of an empty quoted section, optionally
// surrounded by whitespace, is returned as the two quote characters so callers can tell it
// apart from a missing value. Any other content outside the quotes wins: x'' yields x.
func TokenizeLine(line string, d Dialect) ([]string, error) {
	return tokenize(line, 1, d)
}

func tokenize(line string, lineNum int, d Dialect) ([]string, error) {
	delim := d.delimiter()
	quote := d.Quote
	if quote == 0 {
		return splitPlain(line, delim), nil
	}

	runes := []rune(line)
	fields := make([]string, 0, 16)

	var (
		buf      strings.Builder
		state    = stateUnquoted
		quoted   bool // current field opened a quoted section
		inner    bool // a rune was appended inside a quoted section
		openedAt int
	)

	closeField := func() {
		if quoted && !inner && strings.TrimSpace(buf.String()) == "" {
			fields = append(fields, string([]rune{quote, quote}))
		} else {
			fields = append(fields, strings.TrimSpace(buf.String()))
		}
		buf.Reset()
		quoted, inner = false, false
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == quote:
			if state == stateQuoted {
				if i+1 < len(runes) && runes[i+1] == quote {
					buf.WriteRune(quote)
					inner = true
					i++
					continue
				}
				state = stateUnquoted
				continue
			}
			state = stateQuoted
			quoted = true
			openedAt = i + 1
		case r == delim && state == stateUnquoted:
			closeField()
		default:
			if state == stateQuoted {
				inner = true
			}
			buf.WriteRune(r)
		}
	}

	if state == stateQuoted && d.StrictQuotes {
		return nil, &MalformedRecordError{Line: lineNum, Column: openedAt, Err: ErrUnterminatedQuote}
	}
	closeField()

	for i := range fields {
		fields[i] = unquote(fields[i], quote)
	}
	return fields, nil
}

func splitPlain(line string, delim rune) []string {
	fields := strings.Split(line, string(delim))
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

// unquote strips one layer of surrounding quotes from fields longer than two runes and
// collapses doubled quotes left inside.
func unquote(field string, quote rune) string {
	q := string(quote)
	if utf8.RuneCountInString(field) <= 2 || !strings.HasPrefix(field, q) || !strings.HasSuffix(field, q) {
		return field
	}
	inner := field[len(q) : len(field)-len(q)]
	return strings.ReplaceAll(inner, q+q, q)
}
