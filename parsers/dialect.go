package parsers

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Recognized dialect option keys.
const (
	OptionEncoding     = "encoding"
	OptionQuote        = "quoteCharacter"
	OptionDelimiter    = "valuesDelimiter"
	OptionHeaderLine   = "headerLine"
	OptionStrictQuotes = "strictQuotes"
)

const (
	defaultEncoding  = "UTF-8"
	defaultQuote     = '\''
	defaultDelimiter = ','
)

// Dialect is the immutable set of options governing how lines are split, quoted and decoded.
// Build one with NewDialect or DefaultDialect; the zero value behaves like a UTF-8, comma
// separated dialect without quoting or header.
type Dialect struct {
	// Encoding is the text encoding name the dialect was built with.
	Encoding string
	// Quote is the quote character. Zero disables quoting.
	Quote rune
	// Delimiter separates fields.
	Delimiter rune
	// HeaderLine drops the first line of every document on read.
	HeaderLine bool
	// StrictQuotes makes an unterminated quote a MalformedRecordError instead of
	// treating the rest of the line as field content.
	StrictQuotes bool

	enc encoding.Encoding
}

// DefaultDialect returns UTF-8, single quote, comma and a header line.
func DefaultDialect() Dialect {
	return Dialect{
		Encoding:   defaultEncoding,
		Quote:      defaultQuote,
		Delimiter:  defaultDelimiter,
		HeaderLine: true,
		enc:        unicode.UTF8,
	}
}

// NewDialect builds a Dialect from named options. Absent keys keep their defaults and unknown
// keys are ignored. A present but empty quoteCharacter disables quoting.
func NewDialect(opts map[string]string) (Dialect, error) {
	d := DefaultDialect()

	if name, ok := opts[OptionEncoding]; ok {
		enc, err := lookupEncoding(name)
		if err != nil {
			return Dialect{}, &ConfigurationError{Option: OptionEncoding, Value: name, Err: err}
		}
		d.Encoding = name
		d.enc = enc
	}

	if v, ok := opts[OptionDelimiter]; ok {
		r, err := singleRune(v, false)
		if err != nil {
			return Dialect{}, &ConfigurationError{Option: OptionDelimiter, Value: v, Err: err}
		}
		d.Delimiter = r
	}

	if v, ok := opts[OptionQuote]; ok {
		r, err := singleRune(v, true)
		if err != nil {
			return Dialect{}, &ConfigurationError{Option: OptionQuote, Value: v, Err: err}
		}
		d.Quote = r
	}

	if d.Quote != 0 && d.Quote == d.Delimiter {
		return Dialect{}, &ConfigurationError{
			Option: OptionQuote,
			Value:  string(d.Quote),
			Err:    errors.New("quote character must differ from the delimiter"),
		}
	}
	if d.Delimiter == '\n' || d.Delimiter == '\r' || d.Quote == '\n' || d.Quote == '\r' {
		return Dialect{}, &ConfigurationError{
			Option: OptionDelimiter,
			Value:  string(d.Delimiter),
			Err:    errors.New("line terminators cannot be used as delimiter or quote"),
		}
	}

	if v, ok := opts[OptionHeaderLine]; ok {
		d.HeaderLine = parseFlag(v)
	}
	if v, ok := opts[OptionStrictQuotes]; ok {
		d.StrictQuotes = parseFlag(v)
	}

	return d, nil
}

// Options renders the dialect back into the option map accepted by NewDialect.
func (d Dialect) Options() map[string]string {
	quote := ""
	if d.Quote != 0 {
		quote = string(d.Quote)
	}
	return map[string]string{
		OptionEncoding:     d.encodingName(),
		OptionQuote:        quote,
		OptionDelimiter:    string(d.delimiter()),
		OptionHeaderLine:   fmt.Sprintf("%t", d.HeaderLine),
		OptionStrictQuotes: fmt.Sprintf("%t", d.StrictQuotes),
	}
}

func (d Dialect) delimiter() rune {
	if d.Delimiter == 0 {
		return defaultDelimiter
	}
	return d.Delimiter
}

func (d Dialect) encodingName() string {
	if d.Encoding == "" {
		return defaultEncoding
	}
	return d.Encoding
}

func (d Dialect) isUTF8() bool {
	return d.enc == nil || d.enc == unicode.UTF8
}

// decoder wraps src so that it yields UTF-8 text. UTF-8 input is validated rather than
// silently repaired.
func (d Dialect) decoder(src io.Reader) io.Reader {
	if d.isUTF8() {
		return transform.NewReader(src, encoding.UTF8Validator)
	}
	return transform.NewReader(src, d.enc.NewDecoder())
}

// encoder wraps dst so that UTF-8 text written to it is stored in the dialect encoding.
// Runes the encoding cannot represent fail the write.
func (d Dialect) encoder(dst io.Writer) *transform.Writer {
	if d.isUTF8() {
		return transform.NewWriter(dst, encoding.UTF8Validator)
	}
	return transform.NewWriter(dst, d.enc.NewEncoder())
}

// lookupEncoding resolves IANA names first and falls back to WHATWG labels such as cp1251.
func lookupEncoding(name string) (encoding.Encoding, error) {
	n := strings.TrimSpace(name)
	if n == "" {
		return nil, errors.New("encoding name is empty")
	}
	if enc, err := ianaindex.IANA.Encoding(n); err == nil && enc != nil {
		return enc, nil
	}
	if enc, err := htmlindex.Get(n); err == nil && enc != nil {
		return enc, nil
	}
	return nil, errors.New("unsupported encoding")
}

func singleRune(v string, allowEmpty bool) (rune, error) {
	switch utf8.RuneCountInString(v) {
	case 0:
		if allowEmpty {
			return 0, nil
		}
		return 0, errors.New("value must be exactly one character")
	case 1:
		r, _ := utf8.DecodeRuneInString(v)
		if r == utf8.RuneError {
			return 0, errors.New("value is not valid UTF-8")
		}
		return r, nil
	default:
		return 0, errors.New("value must be a single character")
	}
}

func parseFlag(v string) bool {
	return strings.EqualFold(v, "true")
}
