package common

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Errors returned (wrapped) by the field parsers used in record mappers.
var (
	ErrInvalidNumber = errors.New("invalid numeric value")
	ErrInvalidDate   = errors.New("invalid date value")
	ErrInvalidEnum   = errors.New("invalid enum value")
	ErrMissingFields = errors.New("record has too few fields")
)

const (
	DateLayout     = "2006-01-02"
	dateTimeMinute = "2006-01-02T15:04"
	dateTimeSecond = "2006-01-02T15:04:05"
)

// EmptyQuoted is how an empty, present string value is written.
const EmptyQuoted = `""`

// IsBlank reports whether a raw field carries no value: empty, whitespace or an empty quoted
// section in either quote style.
func IsBlank(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == "''" || v == `""`
}

// Field returns fields[i], or "" when the record is shorter.
func Field(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}

// OptionalField returns fields[i] only when the record has exactly want columns.
func OptionalField(fields []string, i, want int) string {
	if len(fields) == want {
		return fields[i]
	}
	return ""
}

// RequireFields fails with ErrMissingFields when the record has fewer than n columns.
func RequireFields(fields []string, n int) error {
	if len(fields) < n {
		return fmt.Errorf("%w: got %d, want at least %d", ErrMissingFields, len(fields), n)
	}
	return nil
}

func ParseInt64(v string) (int64, error) {
	if IsBlank(v) {
		return 0, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, v)
	}
	return n, nil
}

func ParseInt(v string) (int, error) {
	if IsBlank(v) {
		return 0, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, v)
	}
	return int(n), nil
}

// ParseDecimal keeps the scale of the input, so "7.50" formats back as "7.50".
func ParseDecimal(v string) (*decimal.Decimal, error) {
	if IsBlank(v) {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNumber, v)
	}
	return &d, nil
}

// ParseString maps "" to nil, an empty quoted section to the empty string and anything else
// to its trimmed value.
func ParseString(v string) *string {
	if v == "" {
		return nil
	}
	if v == `""` || v == "''" {
		s := ""
		return &s
	}
	s := strings.TrimSpace(v)
	return &s
}

func ParseDate(v string) (*time.Time, error) {
	if IsBlank(v) {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, strings.TrimSpace(v))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, v)
	}
	return &t, nil
}

// ParseDateTime accepts local ISO date-times with optional seconds and fraction.
func ParseDateTime(v string) (*time.Time, error) {
	if IsBlank(v) {
		return nil, nil
	}
	s := strings.TrimSpace(v)
	for _, layout := range []string{dateTimeSecond, dateTimeMinute} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidDate, v)
}

// ParseEnum upper-cases v and checks it against allowed. Blank yields "".
func ParseEnum(v string, allowed []string) (string, error) {
	if IsBlank(v) {
		return "", nil
	}
	s := strings.ToUpper(strings.TrimSpace(v))
	for _, a := range allowed {
		if s == a {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidEnum, v)
}

// FormatInt writes zero as an empty field.
func FormatInt(n int64) string {
	if n == 0 {
		return ""
	}
	return strconv.FormatInt(n, 10)
}

func FormatDecimal(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}

func FormatString(s *string) string {
	if s == nil {
		return ""
	}
	if *s == "" {
		return EmptyQuoted
	}
	return *s
}

func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}

// FormatDateTime drops zero seconds and prints the fraction in groups of three digits.
func FormatDateTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	nanos := t.Nanosecond()
	switch {
	case t.Second() == 0 && nanos == 0:
		return t.Format(dateTimeMinute)
	case nanos == 0:
		return t.Format(dateTimeSecond)
	case nanos%1_000_000 == 0:
		return t.Format(dateTimeSecond + ".000")
	case nanos%1_000 == 0:
		return t.Format(dateTimeSecond + ".000000")
	default:
		return t.Format(dateTimeSecond + ".000000000")
	}
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// Deref returns *s or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
