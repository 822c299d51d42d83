package parsers

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

// trackedReader counts Close calls on an in-memory source.
type trackedReader struct {
	io.Reader
	closes   int
	closeErr error
}

func (r *trackedReader) Close() error {
	r.closes++
	return r.closeErr
}

type trackedWriter struct {
	bytes.Buffer
	closes   int
	closeErr error
}

func (w *trackedWriter) Close() error {
	w.closes++
	return w.closeErr
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func rawFields(fields []string) ([]string, error) {
	return fields, nil
}

func TestRead_DefaultDialect(t *testing.T) {
	data := "id,email,password,name,balance\n" +
		"1,a@a.a,p,n,1\n" +
		"1,\"\",\"\",\"\",\n" +
		",,,,\n"
	src := &trackedReader{Reader: strings.NewReader(data)}

	rows, err := Read(DefaultDialect(), src, rawFields)
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"1", "a@a.a", "p", "n", "1"},
		{"1", `""`, `""`, `""`, ""},
		{"", "", "", "", ""},
	}, rows)
	assert.Equal(t, 1, src.closes)
}

func TestRead_HeaderLineNeverMapped(t *testing.T) {
	for _, data := range []string{"", "header only", "header only\n"} {
		calls := 0
		rows, err := Read(DefaultDialect(), strings.NewReader(data), func(fields []string) ([]string, error) {
			calls++
			return fields, nil
		})
		require.NoError(t, err)
		assert.Empty(t, rows)
		assert.Zero(t, calls, "input %q", data)
	}
}

func TestRead_WithoutHeader(t *testing.T) {
	d := mustDialect(t, map[string]string{"headerLine": "false"})

	rows, err := Read(d, strings.NewReader("a,b\r\nc,d"), rawFields)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}}, rows)
}

func TestRead_KeepsNilRecords(t *testing.T) {
	d := mustDialect(t, map[string]string{"headerLine": "false"})

	rows, err := Read[*string](d, strings.NewReader("x\nskip\ny\n"), func(fields []string) (*string, error) {
		if fields[0] == "skip" {
			return nil, nil
		}
		return &fields[0], nil
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Nil(t, rows[1])
}

func TestRead_Cp1251(t *testing.T) {
	d := mustDialect(t, map[string]string{
		"encoding":        "cp1251",
		"quoteCharacter":  "'",
		"valuesDelimiter": ";",
		"headerLine":      "false",
	})
	encoded, err := charmap.Windows1251.NewEncoder().String("4;rakili@vpa.com;'еY$60;25,IL';Ракіль\n")
	require.NoError(t, err)

	rows, err := Read(d, strings.NewReader(encoded), rawFields)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"4", "rakili@vpa.com", "еY$60;25,IL", "Ракіль"}}, rows)
}

func TestRead_MapperErrorPropagatesUnchanged(t *testing.T) {
	mapErr := errors.New("invalid number")
	src := &trackedReader{Reader: strings.NewReader("h\n1\nx\n2\n")}

	rows, err := Read(DefaultDialect(), src, func(fields []string) (string, error) {
		if fields[0] == "x" {
			return "", mapErr
		}
		return fields[0], nil
	})
	assert.Same(t, mapErr, err)
	assert.Nil(t, rows)
	assert.Equal(t, 1, src.closes)
}

func TestRead_DecodeErrorIsIOError(t *testing.T) {
	src := &trackedReader{Reader: bytes.NewReader([]byte("h\nok\n\xff\xfe\n"))}

	rows, err := Read(DefaultDialect(), src, rawFields)
	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr), "got %v", err)
	assert.Nil(t, rows)
	assert.Equal(t, 1, src.closes)
}

func TestRead_CloseErrorIsIOError(t *testing.T) {
	src := &trackedReader{Reader: strings.NewReader("h\na\n"), closeErr: errors.New("boom")}

	rows, err := Read(DefaultDialect(), src, rawFields)
	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "close", ioErr.Op)
	assert.Nil(t, rows)
	assert.Equal(t, 1, src.closes)
}

func TestRead_StrictMalformedLine(t *testing.T) {
	d := mustDialect(t, map[string]string{"strictQuotes": "true"})
	src := &trackedReader{Reader: strings.NewReader("h\na,b\nc,'d\n")}

	_, err := Read(d, src, rawFields)
	var malformed *MalformedRecordError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, 3, malformed.Line)
	assert.Equal(t, 1, src.closes)
}

func TestRead_NilArguments(t *testing.T) {
	_, err := Read[[]string](DefaultDialect(), nil, rawFields)
	var ioErr *IOError
	assert.True(t, errors.As(err, &ioErr))

	src := &trackedReader{Reader: strings.NewReader("")}
	_, err = Read[[]string](DefaultDialect(), src, nil)
	assert.ErrorIs(t, err, ErrNilMapper)
	assert.Equal(t, 1, src.closes)
}

func TestWrite(t *testing.T) {
	semicolon := mustDialect(t, map[string]string{"valuesDelimiter": ";"})
	doubleQuote := mustDialect(t, map[string]string{"quoteCharacter": `"`})
	noQuote := mustDialect(t, map[string]string{"quoteCharacter": ""})

	tests := []struct {
		name    string
		dialect Dialect
		rows    [][]string
		want    string
	}{
		{
			name:    "basic",
			dialect: DefaultDialect(),
			rows:    [][]string{{"a", "b"}, {"c", "d"}},
			want:    "a,b\nc,d\n",
		},
		{
			name:    "narrowQuoting",
			dialect: DefaultDialect(),
			rows:    [][]string{{"a,b", "'x"}},
			want:    "'a,b','x\n",
		},
		{
			name:    "alreadyQuotedNotRequoted",
			dialect: DefaultDialect(),
			rows:    [][]string{{"'a,b'"}},
			want:    "'a,b'\n",
		},
		{
			name:    "embeddedQuoteNotEscaped",
			dialect: DefaultDialect(),
			rows:    [][]string{{"it's", "x"}},
			want:    "it's,x\n",
		},
		{
			name:    "embeddedNewlineNotQuoted",
			dialect: DefaultDialect(),
			rows:    [][]string{{"a\nb"}},
			want:    "a\nb\n",
		},
		{
			name:    "otherDelimiter",
			dialect: semicolon,
			rows:    [][]string{{"a,b", "c;d"}},
			want:    "a,b;'c;d'\n",
		},
		{
			name:    "doubleQuote",
			dialect: doubleQuote,
			rows:    [][]string{{"a,b", ""}},
			want:    "\"a,b\",\n",
		},
		{
			name:    "noQuoting",
			dialect: noQuote,
			rows:    [][]string{{"a,b", "c"}},
			want:    "a,b,c\n",
		},
		{
			name:    "emptyRecord",
			dialect: DefaultDialect(),
			rows:    [][]string{{}},
			want:    "\n",
		},
		{
			name:    "emptyDocument",
			dialect: DefaultDialect(),
			rows:    nil,
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, Write(tt.dialect, &out, tt.rows, Identity))
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestWrite_Cp1251(t *testing.T) {
	d := mustDialect(t, map[string]string{"encoding": "cp1251", "valuesDelimiter": ";"})
	var out bytes.Buffer

	require.NoError(t, Write(d, &out, [][]string{{"Ракіль", "ї"}}, Identity))

	decoded, err := charmap.Windows1251.NewDecoder().Bytes(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "Ракіль;ї\n", string(decoded))
}

func TestWrite_UnencodableRuneIsIOError(t *testing.T) {
	d := mustDialect(t, map[string]string{"encoding": "ISO-8859-1"})
	dst := &trackedWriter{}

	err := Write(d, dst, [][]string{{"Ω"}}, Identity)
	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr), "got %v", err)
	assert.Equal(t, 1, dst.closes)
}

func TestWrite_StreamReleasedOnce(t *testing.T) {
	dst := &trackedWriter{}
	require.NoError(t, Write(DefaultDialect(), dst, [][]string{{"a"}}, Identity))
	assert.Equal(t, 1, dst.closes)
	assert.Equal(t, "a\n", dst.String())

	dst = &trackedWriter{}
	assert.ErrorIs(t, Write[[]string](DefaultDialect(), dst, nil, nil), ErrNilMapper)
	assert.Equal(t, 1, dst.closes)

	dst = &trackedWriter{closeErr: errors.New("boom")}
	err := Write(DefaultDialect(), dst, [][]string{{"a"}}, Identity)
	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "close", ioErr.Op)
}

func TestWrite_SinkFailureIsIOError(t *testing.T) {
	err := Write(DefaultDialect(), failingWriter{}, [][]string{{"a"}}, Identity)
	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Contains(t, err.Error(), "disk full")
}

func TestRoundTrip(t *testing.T) {
	doc := [][]string{
		{"1", "plain", "with,delimiter", ""},
		{"2", "Ракіль", "a,b,c", "x y"},
		{"3", "", "", ""},
	}

	for _, opts := range []map[string]string{
		{"headerLine": "false"},
		{"headerLine": "false", "quoteCharacter": `"`},
		{"headerLine": "false", "valuesDelimiter": ";", "encoding": "cp1251"},
		{"headerLine": "false", "quoteCharacter": "_", "valuesDelimiter": "|", "encoding": "UTF-16LE"},
	} {
		d := mustDialect(t, opts)

		var buf bytes.Buffer
		require.NoError(t, Write(d, &buf, doc, Identity))

		got, err := Read(d, &buf, rawFields)
		require.NoError(t, err)
		assert.Equal(t, doc, got, "options %v", opts)
	}
}

func TestRoundTrip_HeaderPrepended(t *testing.T) {
	d := DefaultDialect()
	header := []string{"id", "name"}
	doc := [][]string{{"1", "a,b"}, {"2", "c"}}

	var buf bytes.Buffer
	require.NoError(t, Write(d, &buf, append([][]string{header}, doc...), Identity))

	got, err := Read(d, &buf, rawFields)
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestRoundTrip_EmbeddedQuoteIsLossy(t *testing.T) {
	d := mustDialect(t, map[string]string{"headerLine": "false"})

	var buf bytes.Buffer
	require.NoError(t, Write(d, &buf, [][]string{{"it's", "x"}}, Identity))

	got, err := Read(d, &buf, rawFields)
	require.NoError(t, err)
	assert.NotEqual(t, [][]string{{"it's", "x"}}, got)
	assert.Equal(t, [][]string{{"its,x"}}, got)
}
