package users

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"bookstore-csv/common"
)

// PasswordCost is the bcrypt cost used when hashing imported passwords.
var PasswordCost = bcrypt.DefaultCost

// emailSet tracks emails already accepted in the current import, case-insensitively
type emailSet map[string]bool

func (s emailSet) check(result *common.RecordValidationResult, email *string) {
	if email == nil || strings.TrimSpace(*email) == "" {
		result.AddError("email", "Email is required")
		return
	}
	if !common.ValidateEmail(*email) {
		result.AddError("email", "Invalid email format")
	}
	if s[strings.ToLower(*email)] {
		result.AddError("email", "Email is duplicated in this import")
	}
}

func (s emailSet) track(result *common.RecordValidationResult, email *string) {
	if result.Valid && email != nil {
		s[strings.ToLower(*email)] = true
	}
}

// ClientValidator validates client records for bulk import
type ClientValidator struct {
	emails emailSet
}

// NewClientValidator creates a validator for one import batch
func NewClientValidator() *ClientValidator {
	return &ClientValidator{emails: make(emailSet)}
}

// ValidateClient validates a single client record from import
func (v *ClientValidator) ValidateClient(c *Client, rowNum int) *common.RecordValidationResult {
	result := &common.RecordValidationResult{
		RowNumber: rowNum,
		Valid:     true,
	}
	if c == nil {
		result.AddError("record", "Record is empty")
		return result
	}
	result.RecordID = common.Deref(c.Email)

	v.emails.check(result, c.Email)
	if err := common.ValidateRequired("name", common.Deref(c.Name)); err != nil {
		result.AddError(err.Field, err.Message)
	}
	if err := common.ValidateNonNegative("balance", c.Balance); err != nil {
		result.AddError(err.Field, err.Message)
	}

	// Track this email for subsequent validations in same batch
	v.emails.track(result, c.Email)
	return result
}

// EmployeeValidator validates employee records for bulk import
type EmployeeValidator struct {
	emails emailSet
	now    time.Time
}

// NewEmployeeValidator creates a validator for one import batch
func NewEmployeeValidator() *EmployeeValidator {
	return &EmployeeValidator{emails: make(emailSet), now: time.Now()}
}

// ValidateEmployee validates a single employee record from import
func (v *EmployeeValidator) ValidateEmployee(e *Employee, rowNum int) *common.RecordValidationResult {
	result := &common.RecordValidationResult{
		RowNumber: rowNum,
		Valid:     true,
	}
	if e == nil {
		result.AddError("record", "Record is empty")
		return result
	}
	result.RecordID = common.Deref(e.Email)

	v.emails.check(result, e.Email)
	if err := common.ValidateRequired("name", common.Deref(e.Name)); err != nil {
		result.AddError(err.Field, err.Message)
	}
	if err := common.ValidateNotFuture("birth_date", e.BirthDate, v.now); err != nil {
		result.AddError(err.Field, err.Message)
	}

	v.emails.track(result, e.Email)
	return result
}

// hashPassword replaces a plain text password with its bcrypt hash
func hashPassword(plain *string) (string, error) {
	if plain == nil || *plain == "" {
		return "", nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(*plain), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// normalizeEmail lower-cases the natural key so upserts match case-insensitively
func normalizeEmail(email *string) {
	if email != nil {
		*email = strings.ToLower(strings.TrimSpace(*email))
	}
}

// NormalizeClient lower-cases the email, hashes the imported password and clears the plain text
func NormalizeClient(c *Client) error {
	normalizeEmail(c.Email)
	hash, err := hashPassword(c.Password)
	if err != nil {
		return err
	}
	c.PasswordHash = hash
	c.Password = nil
	return nil
}

// NormalizeEmployee lower-cases the email, hashes the imported password and clears the plain text
func NormalizeEmployee(e *Employee) error {
	normalizeEmail(e.Email)
	hash, err := hashPassword(e.Password)
	if err != nil {
		return err
	}
	e.PasswordHash = hash
	e.Password = nil
	return nil
}

// CheckPassword reports whether plain matches a stored hash
func CheckPassword(hash, plain string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
