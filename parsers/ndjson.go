package parsers

import (
	"bufio"
	"encoding/json"
	"io"
)

// ReadNDJSON reads NDJSON (newline-delimited JSON) from src, decoding each non-empty line
// into a T. The first line that fails to decode aborts the read with a *MalformedRecordError.
// src is closed exactly once when it implements io.Closer.
func ReadNDJSON[T any](src io.Reader) (values []T, err error) {
	if src == nil {
		return nil, &IOError{Op: "read", Err: errNilStream}
	}
	defer func() {
		if cerr := closeStream(src); cerr != nil && err == nil {
			values, err = nil, &IOError{Op: "close", Err: cerr}
		}
	}()

	scanner := bufio.NewScanner(src)

	// Increase buffer size for large lines (up to 1MB per line)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()

		// Skip empty lines
		if len(line) == 0 {
			continue
		}

		var value T
		if err := json.Unmarshal(line, &value); err != nil {
			return nil, &MalformedRecordError{Line: lineNum, Err: err}
		}
		values = append(values, value)
	}

	// Check for scanner errors (e.g., line too long)
	if err := scanner.Err(); err != nil {
		return nil, &IOError{Op: "read", Err: err}
	}

	return values, nil
}

// WriteNDJSON writes one JSON document per value, each followed by a newline.
// dst is flushed and closed exactly once when it implements io.Closer.
func WriteNDJSON[T any](dst io.Writer, values []T) (err error) {
	if dst == nil {
		return &IOError{Op: "write", Err: errNilStream}
	}

	bw := bufio.NewWriter(dst)
	defer func() {
		if ferr := bw.Flush(); ferr != nil && err == nil {
			err = &IOError{Op: "write", Err: ferr}
		}
		if cerr := closeStream(dst); cerr != nil && err == nil {
			err = &IOError{Op: "close", Err: cerr}
		}
	}()

	encoder := json.NewEncoder(bw)
	for _, v := range values {
		if err := encoder.Encode(v); err != nil {
			return &IOError{Op: "encode", Err: err}
		}
	}

	return nil
}
