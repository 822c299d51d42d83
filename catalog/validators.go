package catalog

import (
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"bookstore-csv/common"
)

// BookValidator validates book records for bulk import
type BookValidator struct {
	seenSlugs map[string]bool
	now       time.Time
}

// OrderValidator validates order records for bulk import
type OrderValidator struct {
	seenIDs          map[int64]bool
	validClientIDs   map[int64]bool
	validEmployeeIDs map[int64]bool
	validBookIDs     map[int64]bool
	now              time.Time
}

// NewBookValidator creates a validator for one import batch
func NewBookValidator() *BookValidator {
	return &BookValidator{
		seenSlugs: make(map[string]bool),
		now:       time.Now(),
	}
}

// ValidateBook validates a single book record from import
func (v *BookValidator) ValidateBook(b *Book, rowNum int) *common.RecordValidationResult {
	result := &common.RecordValidationResult{
		RowNumber: rowNum,
		Valid:     true,
	}
	if b == nil {
		result.AddError("record", "Record is empty")
		return result
	}

	if err := common.ValidateRequired("name", common.Deref(b.Name)); err != nil {
		result.AddError(err.Field, err.Message)
	}
	if err := common.ValidateRequired("author", common.Deref(b.Author)); err != nil {
		result.AddError(err.Field, err.Message)
	}

	slug := BookSlug(b.Name, b.Author)
	result.RecordID = slug
	if result.Valid {
		if !common.ValidateSlug(slug) {
			result.AddError("slug", "Name and author do not produce a usable slug")
		} else if v.seenSlugs[slug] {
			result.AddError("slug", "Book with the same name and author is duplicated in this import")
		}
	}

	if b.AgeGroup != "" {
		if err := common.ValidateEnum("age_group", string(b.AgeGroup), AgeGroups); err != nil {
			result.AddError(err.Field, err.Message)
		}
	}
	if b.Language != "" {
		if err := common.ValidateEnum("language", string(b.Language), Languages); err != nil {
			result.AddError(err.Field, err.Message)
		}
	}
	if err := common.ValidateNonNegative("price", b.Price); err != nil {
		result.AddError(err.Field, err.Message)
	}
	if b.NumberOfPages < 0 {
		result.AddError("number_of_pages", "number_of_pages must not be negative")
	}
	if err := common.ValidateNotFuture("publication_date", b.PublicationDate, v.now); err != nil {
		result.AddError(err.Field, err.Message)
	}

	// Track this slug for subsequent validations in same batch
	if result.Valid {
		v.seenSlugs[slug] = true
	}
	return result
}

// NormalizeBook fills the derived slug
func NormalizeBook(b *Book) {
	b.Slug = BookSlug(b.Name, b.Author)
}

// NewOrderValidator creates a validator with pre-loaded foreign keys
func NewOrderValidator(db *gorm.DB) (*OrderValidator, error) {
	validator := &OrderValidator{
		seenIDs:          make(map[int64]bool),
		validClientIDs:   make(map[int64]bool),
		validEmployeeIDs: make(map[int64]bool),
		validBookIDs:     make(map[int64]bool),
		now:              time.Now(),
	}

	for table, ids := range map[string]map[int64]bool{
		"clients":   validator.validClientIDs,
		"employees": validator.validEmployeeIDs,
		"books":     validator.validBookIDs,
	} {
		var found []int64
		if err := db.Table(table).Pluck("id", &found).Error; err != nil {
			return nil, fmt.Errorf("load %s ids: %w", table, err)
		}
		for _, id := range found {
			ids[id] = true
		}
	}

	return validator, nil
}

// ValidateOrder validates a single order record from import
func (v *OrderValidator) ValidateOrder(o *Order, rowNum int) *common.RecordValidationResult {
	result := &common.RecordValidationResult{
		RowNumber: rowNum,
		Valid:     true,
	}
	if o == nil {
		result.AddError("record", "Record is empty")
		return result
	}

	// Orders have no natural key other than their id
	if o.ID <= 0 {
		result.AddError("id", "ID is required for orders")
	} else {
		result.RecordID = strconv.FormatInt(o.ID, 10)
		if v.seenIDs[o.ID] {
			result.AddError("id", "Order ID is duplicated in this import")
		}
	}

	checkRef := func(field string, id int64, valid map[int64]bool, table string) {
		switch {
		case id <= 0:
			result.AddError(field, fmt.Sprintf("%s is required", field))
		case !valid[id]:
			result.AddError(field, fmt.Sprintf("%s %d does not exist in %s table", field, id, table))
		}
	}
	checkRef("client_id", o.ClientID, v.validClientIDs, "clients")
	checkRef("employee_id", o.EmployeeID, v.validEmployeeIDs, "employees")
	checkRef("book_id", o.BookID, v.validBookIDs, "books")

	if o.NumberOfBooks <= 0 {
		result.AddError("number_of_books", "number_of_books must be positive")
	}
	if err := common.ValidateNonNegative("price", o.Price); err != nil {
		result.AddError(err.Field, err.Message)
	}
	if err := common.ValidateNotFuture("order_date", o.OrderDate, v.now); err != nil {
		result.AddError(err.Field, err.Message)
	}

	if result.Valid {
		v.seenIDs[o.ID] = true
	}
	return result
}
