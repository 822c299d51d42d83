package catalog

import (
	"fmt"

	"bookstore-csv/common"
)

// Column layouts. Language, the last book column, is optional on read.
var (
	BookColumns = []string{
		"id", "name", "genre", "age_group", "price", "publication_date",
		"author", "number_of_pages", "characteristics", "description", "language",
	}
	OrderColumns = []string{
		"id", "client_id", "employee_id", "book_id", "number_of_books", "order_date", "price",
	}
)

// BookFromCSV maps a book row to a Book. An empty record maps to nil.
func BookFromCSV(fields []string) (*Book, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	if err := common.RequireFields(fields, len(BookColumns)-1); err != nil {
		return nil, fmt.Errorf("book: %w", err)
	}

	id, err := common.ParseInt64(fields[0])
	if err != nil {
		return nil, fmt.Errorf("book id: %w", err)
	}
	ageGroup, err := common.ParseEnum(fields[3], AgeGroups)
	if err != nil {
		return nil, fmt.Errorf("book age group: %w", err)
	}
	price, err := common.ParseDecimal(fields[4])
	if err != nil {
		return nil, fmt.Errorf("book price: %w", err)
	}
	published, err := common.ParseDate(fields[5])
	if err != nil {
		return nil, fmt.Errorf("book publication date: %w", err)
	}
	pages, err := common.ParseInt(fields[7])
	if err != nil {
		return nil, fmt.Errorf("book number of pages: %w", err)
	}
	language, err := common.ParseEnum(common.OptionalField(fields, 10, len(BookColumns)), Languages)
	if err != nil {
		return nil, fmt.Errorf("book language: %w", err)
	}

	return &Book{
		ID:              id,
		Name:            common.ParseString(fields[1]),
		Genre:           common.ParseString(fields[2]),
		AgeGroup:        AgeGroup(ageGroup),
		Price:           price,
		PublicationDate: published,
		Author:          common.ParseString(fields[6]),
		NumberOfPages:   pages,
		Characteristics: common.ParseString(fields[8]),
		Description:     common.ParseString(fields[9]),
		Language:        Language(language),
	}, nil
}

// BookToCSV is the inverse of BookFromCSV. A nil book has no fields.
func BookToCSV(b *Book) []string {
	if b == nil {
		return nil
	}
	return []string{
		common.FormatInt(b.ID),
		common.FormatString(b.Name),
		common.FormatString(b.Genre),
		string(b.AgeGroup),
		common.FormatDecimal(b.Price),
		common.FormatDate(b.PublicationDate),
		common.FormatString(b.Author),
		common.FormatInt(int64(b.NumberOfPages)),
		common.FormatString(b.Characteristics),
		common.FormatString(b.Description),
		string(b.Language),
	}
}

// OrderFromCSV maps an order row to an Order. An empty record maps to nil.
func OrderFromCSV(fields []string) (*Order, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	if err := common.RequireFields(fields, len(OrderColumns)); err != nil {
		return nil, fmt.Errorf("order: %w", err)
	}

	var ids [4]int64
	for i, name := range OrderColumns[:4] {
		n, err := common.ParseInt64(fields[i])
		if err != nil {
			return nil, fmt.Errorf("order %s: %w", name, err)
		}
		ids[i] = n
	}
	count, err := common.ParseInt(fields[4])
	if err != nil {
		return nil, fmt.Errorf("order number_of_books: %w", err)
	}
	orderDate, err := common.ParseDateTime(fields[5])
	if err != nil {
		return nil, fmt.Errorf("order date: %w", err)
	}
	price, err := common.ParseDecimal(fields[6])
	if err != nil {
		return nil, fmt.Errorf("order price: %w", err)
	}

	return &Order{
		ID:            ids[0],
		ClientID:      ids[1],
		EmployeeID:    ids[2],
		BookID:        ids[3],
		NumberOfBooks: count,
		OrderDate:     orderDate,
		Price:         price,
	}, nil
}

// OrderToCSV is the inverse of OrderFromCSV. A nil order has no fields.
func OrderToCSV(o *Order) []string {
	if o == nil {
		return nil
	}
	return []string{
		common.FormatInt(o.ID),
		common.FormatInt(o.ClientID),
		common.FormatInt(o.EmployeeID),
		common.FormatInt(o.BookID),
		common.FormatInt(int64(o.NumberOfBooks)),
		common.FormatDateTime(o.OrderDate),
		common.FormatDecimal(o.Price),
	}
}
