package users

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstore-csv/common"
	"bookstore-csv/parsers"
)

func str(s string) *string { return &s }

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestClientFromCSV(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
		want   *Client
	}{
		{
			name:   "simple",
			fields: []string{"1", "a@a.a", "p", "n", "1"},
			want:   &Client{ID: 1, Email: str("a@a.a"), Password: str("p"), Name: str("n"), Balance: dec("1")},
		},
		{
			name:   "full",
			fields: []string{"666555444", "Client11@bbs.com", "A%7422$S", "Client11", "1762"},
			want:   &Client{ID: 666555444, Email: str("Client11@bbs.com"), Password: str("A%7422$S"), Name: str("Client11"), Balance: dec("1762")},
		},
		{
			name:   "empty strings",
			fields: []string{"", `""`, `""`, `""`, ""},
			want:   &Client{Email: str(""), Password: str(""), Name: str("")},
		},
		{
			name:   "empty quoted with single quotes",
			fields: []string{"''", "''", "''", "''", "''"},
			want:   &Client{Email: str(""), Password: str(""), Name: str("")},
		},
		{
			name:   "nulls",
			fields: []string{"", "", "", "", ""},
			want:   &Client{},
		},
		{
			name:   "balance column absent",
			fields: []string{"2", "b@b.bb", "p", "n"},
			want:   &Client{ID: 2, Email: str("b@b.bb"), Password: str("p"), Name: str("n")},
		},
		{
			name:   "nil",
			fields: nil,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ClientFromCSV(tt.fields)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadClientsKeepsEmptyQuotedValues(t *testing.T) {
	d, err := parsers.NewDialect(map[string]string{"headerLine": "false"})
	require.NoError(t, err)

	clients, err := parsers.Read[*Client](d, strings.NewReader("1,'','','',\n2, '', '' , '',\n"), ClientFromCSV)
	require.NoError(t, err)
	require.Len(t, clients, 2)

	for _, c := range clients {
		assert.Equal(t, str(""), c.Email)
		assert.Equal(t, str(""), c.Password)
		assert.Equal(t, str(""), c.Name)
		assert.Nil(t, c.Balance)
	}
}

func TestClientFromCSVErrors(t *testing.T) {
	_, err := ClientFromCSV([]string{"x", "a@a.a", "p", "n", "1"})
	assert.ErrorIs(t, err, common.ErrInvalidNumber)

	_, err = ClientFromCSV([]string{"1", "a@a.a", "p", "n", "lots"})
	assert.ErrorIs(t, err, common.ErrInvalidNumber)

	_, err = ClientFromCSV([]string{"1", "a@a.a"})
	assert.ErrorIs(t, err, common.ErrMissingFields)
}

func TestClientToCSV(t *testing.T) {
	tests := []struct {
		name   string
		client *Client
		want   []string
	}{
		{"simple", &Client{ID: 1, Email: str("a@a.a"), Password: str("p"), Name: str("n"), Balance: dec("1")},
			[]string{"1", "a@a.a", "p", "n", "1"}},
		{"full", &Client{ID: 666555444, Email: str("Client11@bbs.com"), Password: str("A%7422$S"), Name: str("Client11"), Balance: dec("1762")},
			[]string{"666555444", "Client11@bbs.com", "A%7422$S", "Client11", "1762"}},
		{"empty strings", &Client{Email: str(""), Password: str(""), Name: str("")},
			[]string{"", `""`, `""`, `""`, ""}},
		{"nulls", &Client{}, []string{"", "", "", "", ""}},
		{"nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClientToCSV(tt.client))
		})
	}
}

func TestEmployeeFromCSV(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
		want   *Employee
	}{
		{
			name:   "nil",
			fields: nil,
			want:   nil,
		},
		{
			name:   "simple",
			fields: []string{"1", "a@a.a", "p", "n", "1", "1111-12-22"},
			want:   &Employee{ID: 1, Email: str("a@a.a"), Password: str("p"), Name: str("n"), Phone: str("1"), BirthDate: date("1111-12-22")},
		},
		{
			name:   "full",
			fields: []string{"1", "admin@vpa.com", "kY60#25#IL", "Admin", "111-602-23-00", "1996-07-03"},
			want:   &Employee{ID: 1, Email: str("admin@vpa.com"), Password: str("kY60#25#IL"), Name: str("Admin"), Phone: str("111-602-23-00"), BirthDate: date("1996-07-03")},
		},
		{
			name:   "empty strings",
			fields: []string{"", `""`, `""`, `""`, `""`, ""},
			want:   &Employee{Email: str(""), Password: str(""), Name: str(""), Phone: str("")},
		},
		{
			name:   "nulls",
			fields: []string{"", "", "", "", "", ""},
			want:   &Employee{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EmployeeFromCSV(tt.fields)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEmployeeFromCSVBadDate(t *testing.T) {
	_, err := EmployeeFromCSV([]string{"1", "a@a.a", "p", "n", "1", "03/07/1996"})
	assert.ErrorIs(t, err, common.ErrInvalidDate)
}

func TestEmployeeToCSV(t *testing.T) {
	tests := []struct {
		name     string
		employee *Employee
		want     []string
	}{
		{"simple", &Employee{ID: 1, Email: str("a@a.a"), Password: str("p"), Name: str("n"), Phone: str("1"), BirthDate: date("1111-12-22")},
			[]string{"1", "a@a.a", "p", "n", "1", "1111-12-22"}},
		{"full", &Employee{ID: 1, Email: str("admin@vpa.com"), Password: str("kY60#25#IL"), Name: str("Admin"), Phone: str("111-602-23-00"), BirthDate: date("1996-07-03")},
			[]string{"1", "admin@vpa.com", "kY60#25#IL", "Admin", "111-602-23-00", "1996-07-03"}},
		{"empty strings", &Employee{Email: str(""), Password: str(""), Name: str(""), Phone: str("")},
			[]string{"", `""`, `""`, `""`, `""`, ""}},
		{"nulls", &Employee{}, []string{"", "", "", "", "", ""}},
		{"named with zero id", &Employee{Name: str("Root")}, []string{"0", "", "", "Root", "", ""}},
		{"nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EmployeeToCSV(tt.employee))
		})
	}
}
