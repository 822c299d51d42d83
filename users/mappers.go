package users

import (
	"fmt"

	"bookstore-csv/common"
)

// Column layouts. The last column of each is optional on read.
var (
	ClientColumns   = []string{"id", "email", "password", "name", "balance"}
	EmployeeColumns = []string{"id", "email", "password", "name", "phone", "birth_date"}
)

// ClientFromCSV maps id, email, password, name[, balance] to a Client. An empty record maps
// to nil. Balance is read only when all five columns are present.
func ClientFromCSV(fields []string) (*Client, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	if err := common.RequireFields(fields, len(ClientColumns)-1); err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}

	id, err := common.ParseInt64(fields[0])
	if err != nil {
		return nil, fmt.Errorf("client id: %w", err)
	}
	balance, err := common.ParseDecimal(common.OptionalField(fields, 4, len(ClientColumns)))
	if err != nil {
		return nil, fmt.Errorf("client balance: %w", err)
	}

	return &Client{
		ID:       id,
		Email:    common.ParseString(fields[1]),
		Password: common.ParseString(fields[2]),
		Name:     common.ParseString(fields[3]),
		Balance:  balance,
	}, nil
}

// ClientToCSV is the inverse of ClientFromCSV. A nil client has no fields.
func ClientToCSV(c *Client) []string {
	if c == nil {
		return nil
	}
	return []string{
		common.FormatInt(c.ID),
		common.FormatString(c.Email),
		common.FormatString(c.Password),
		common.FormatString(c.Name),
		common.FormatDecimal(c.Balance),
	}
}

// EmployeeFromCSV maps id, email, password, name, phone[, birth_date] to an Employee.
func EmployeeFromCSV(fields []string) (*Employee, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	if err := common.RequireFields(fields, len(EmployeeColumns)-1); err != nil {
		return nil, fmt.Errorf("employee: %w", err)
	}

	id, err := common.ParseInt64(fields[0])
	if err != nil {
		return nil, fmt.Errorf("employee id: %w", err)
	}
	birthDate, err := common.ParseDate(common.OptionalField(fields, 5, len(EmployeeColumns)))
	if err != nil {
		return nil, fmt.Errorf("employee birth date: %w", err)
	}

	return &Employee{
		ID:        id,
		Email:     common.ParseString(fields[1]),
		Password:  common.ParseString(fields[2]),
		Name:      common.ParseString(fields[3]),
		Phone:     common.ParseString(fields[4]),
		BirthDate: birthDate,
	}, nil
}

// EmployeeToCSV is the inverse of EmployeeFromCSV. A named employee with id 0 keeps the 0.
func EmployeeToCSV(e *Employee) []string {
	if e == nil {
		return nil
	}

	id := common.FormatInt(e.ID)
	if e.ID == 0 && e.Name != nil && *e.Name != "" {
		id = "0"
	}
	return []string{
		id,
		common.FormatString(e.Email),
		common.FormatString(e.Password),
		common.FormatString(e.Name),
		common.FormatString(e.Phone),
		common.FormatDate(e.BirthDate),
	}
}
