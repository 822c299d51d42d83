package common

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInt64(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"", 0},
		{"''", 0},
		{`""`, 0},
		{"  ", 0},
		{"1", 1},
		{" 666555444 ", 666555444},
		{"-3", -3},
	}
	for _, tt := range tests {
		got, err := ParseInt64(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseInt64("12a")
	assert.ErrorIs(t, err, ErrInvalidNumber)
}

func TestParseInt(t *testing.T) {
	n, err := ParseInt("180")
	require.NoError(t, err)
	assert.Equal(t, 180, n)

	_, err = ParseInt("99999999999")
	assert.ErrorIs(t, err, ErrInvalidNumber)
}

func TestParseDecimal(t *testing.T) {
	d, err := ParseDecimal("")
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = ParseDecimal("''")
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = ParseDecimal(" 7.50 ")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "7.50", FormatDecimal(d))

	_, err = ParseDecimal("seven")
	assert.ErrorIs(t, err, ErrInvalidNumber)
}

func TestParseString(t *testing.T) {
	assert.Nil(t, ParseString(""))
	assert.Equal(t, "", *ParseString(`""`))
	assert.Equal(t, "", *ParseString("''"))
	assert.Equal(t, "Franz Kafka", *ParseString(" Franz Kafka "))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("1111-12-22")
	require.NoError(t, err)
	assert.Equal(t, "1111-12-22", FormatDate(d))

	d, err = ParseDate("")
	require.NoError(t, err)
	assert.Nil(t, d)

	_, err = ParseDate("22.12.1111")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestParseDateTime(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"2023-11-13T12:34:56", "2023-11-13T12:34:56"},
		{"2023-11-13T12:34", "2023-11-13T12:34"},
		{"2023-11-13T12:34:00", "2023-11-13T12:34"},
		{"2023-11-13T12:34:56.5", "2023-11-13T12:34:56.500"},
		{"2023-11-13T12:34:56.000123", "2023-11-13T12:34:56.000123"},
	}
	for _, tt := range tests {
		got, err := ParseDateTime(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.out, FormatDateTime(got), tt.in)
	}

	_, err := ParseDateTime("2023-11-13 12:34:56")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestParseEnum(t *testing.T) {
	allowed := []string{"CHILD", "ADULT"}

	v, err := ParseEnum(" adult ", allowed)
	require.NoError(t, err)
	assert.Equal(t, "ADULT", v)

	v, err = ParseEnum("", allowed)
	require.NoError(t, err)
	assert.Equal(t, "", v)

	_, err = ParseEnum("ELDER", allowed)
	assert.ErrorIs(t, err, ErrInvalidEnum)
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "", FormatInt(0))
	assert.Equal(t, "987654321", FormatInt(987654321))

	assert.Equal(t, "", FormatString(nil))
	assert.Equal(t, `""`, FormatString(StringPtr("")))
	assert.Equal(t, "n", FormatString(StringPtr("n")))

	assert.Equal(t, "", FormatDecimal(nil))
	whole := decimal.NewFromInt(1762)
	assert.Equal(t, "1762", FormatDecimal(&whole))

	assert.Equal(t, "", FormatDate(nil))
	assert.Equal(t, "", FormatDateTime(nil))
	ts := time.Date(2023, 11, 13, 13, 45, 30, 0, time.UTC)
	assert.Equal(t, "2023-11-13T13:45:30", FormatDateTime(&ts))
}

func TestFieldAccessors(t *testing.T) {
	fields := []string{"a", "b"}

	assert.Equal(t, "b", Field(fields, 1))
	assert.Equal(t, "", Field(fields, 2))
	assert.Equal(t, "b", OptionalField(fields, 1, 2))
	assert.Equal(t, "", OptionalField(fields, 1, 3))

	assert.NoError(t, RequireFields(fields, 2))
	assert.ErrorIs(t, RequireFields(fields, 3), ErrMissingFields)
}
