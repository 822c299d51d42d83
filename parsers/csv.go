package parsers

import (
	"bufio"
	"io"
	"strings"
)

// maxLineSize bounds a single decoded line (1MB).
const maxLineSize = 1024 * 1024

// RecordMapper converts the raw fields of one line into a typed record.
type RecordMapper[T any] func(fields []string) (T, error)

// FieldMapper converts a typed record into raw fields for one line.
type FieldMapper[T any] func(value T) []string

// Identity is a FieldMapper for documents that are already raw rows, such as a header
// followed by mapped records.
func Identity(row []string) []string {
	return row
}

// Read decodes src with the dialect, skips the header line when configured, tokenizes every
// remaining line and collects fn's results in order. Nothing is filtered: whatever fn returns
// for a line, including a nil record, is appended.
//
// Errors from fn are returned unchanged. Stream and decode failures are *IOError. No partial
// document is returned on failure. src is closed exactly once when it implements io.Closer.
func Read[T any](d Dialect, src io.Reader, fn RecordMapper[T]) (values []T, err error) {
	if src == nil {
		return nil, &IOError{Op: "read", Err: errNilStream}
	}
	defer func() {
		if cerr := closeStream(src); cerr != nil && err == nil {
			values, err = nil, &IOError{Op: "close", Err: cerr}
		}
	}()
	if fn == nil {
		return nil, ErrNilMapper
	}

	scanner := bufio.NewScanner(d.decoder(src))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNum := 0
	if d.HeaderLine && scanner.Scan() {
		lineNum++
	}

	for scanner.Scan() {
		lineNum++
		fields, err := tokenize(scanner.Text(), lineNum, d)
		if err != nil {
			return nil, err
		}
		value, err := fn(fields)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	if err := scanner.Err(); err != nil {
		return nil, &IOError{Op: "read", Err: err}
	}

	return values, nil
}

// Write maps every value to fields, quotes them, joins them with the delimiter and writes one
// line per value, each terminated by "\n". A field is quoted only when it contains the
// delimiter and does not already start with the quote character; embedded quotes and
// newlines are written as they are.
//
// Encoding and stream failures are *IOError; dst may hold a partial document afterwards.
// Buffered output is flushed and dst closed exactly once when it implements io.Closer.
func Write[T any](d Dialect, dst io.Writer, values []T, fn FieldMapper[T]) (err error) {
	if dst == nil {
		return &IOError{Op: "write", Err: errNilStream}
	}

	enc := d.encoder(dst)
	bw := bufio.NewWriter(enc)
	defer func() {
		if ferr := bw.Flush(); ferr != nil && err == nil {
			err = &IOError{Op: "write", Err: ferr}
		}
		if ferr := enc.Close(); ferr != nil && err == nil {
			err = &IOError{Op: "encode", Err: ferr}
		}
		if cerr := closeStream(dst); cerr != nil && err == nil {
			err = &IOError{Op: "close", Err: cerr}
		}
	}()
	if fn == nil {
		return ErrNilMapper
	}

	delim := string(d.delimiter())
	for _, v := range values {
		line := strings.Join(quoteFields(fn(v), d), delim)
		if _, err := bw.WriteString(line); err != nil {
			return &IOError{Op: "write", Err: err}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return &IOError{Op: "write", Err: err}
		}
	}

	return nil
}

func quoteFields(fields []string, d Dialect) []string {
	if d.Quote == 0 {
		return fields
	}
	q := string(d.Quote)
	delim := string(d.delimiter())

	out := make([]string, len(fields))
	for i, f := range fields {
		if strings.Contains(f, delim) && !strings.HasPrefix(f, q) {
			out[i] = q + f + q
			continue
		}
		out[i] = f
	}
	return out
}

func closeStream(s any) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
