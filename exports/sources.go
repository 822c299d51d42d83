package exports

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bookstore-csv/catalog"
	"bookstore-csv/common"
	"bookstore-csv/parsers"
	"bookstore-csv/users"
)

// exporter renders one resource table as a CSV or NDJSON document
type exporter interface {
	// stream writes the table page by page to w, which is left open
	stream(db *gorm.DB, w io.Writer, format string, d parsers.Dialect) (int, error)
	// document writes the whole (filtered) table to dst as one document and closes dst.
	// A non-empty fields list keeps only those columns, in that order.
	document(db *gorm.DB, dst io.WriteCloser, format string, d parsers.Dialect, filters map[string]string, fields []string) (int, error)
	filterable() []string
	selectable() []string
}

type source[T any] struct {
	columns []string
	toCSV   parsers.FieldMapper[*T]
	filters []string
}

var exporters = map[string]exporter{
	common.ResourceClients: source[users.Client]{
		columns: users.ClientColumns,
		toCSV:   users.ClientToCSV,
	},
	common.ResourceEmployees: source[users.Employee]{
		columns: users.EmployeeColumns,
		toCSV:   users.EmployeeToCSV,
	},
	common.ResourceBooks: source[catalog.Book]{
		columns: catalog.BookColumns,
		toCSV:   catalog.BookToCSV,
		filters: []string{"genre", "age_group", "language", "author"},
	},
	common.ResourceOrders: source[catalog.Order]{
		columns: catalog.OrderColumns,
		toCSV:   catalog.OrderToCSV,
		filters: []string{"client_id", "employee_id", "book_id"},
	},
}

func (s source[T]) filterable() []string {
	return s.filters
}

func (s source[T]) selectable() []string {
	return s.columns
}

// eachPage walks the table in id order, BatchSize rows at a time
func (s source[T]) eachPage(db *gorm.DB, filters map[string]string, fn func([]*T) error) (int, error) {
	offset, total := 0, 0
	for {
		var page []*T
		query := db.Order("id").Limit(BatchSize).Offset(offset)
		for column, value := range filters {
			query = query.Where(clause.Eq{Column: clause.Column{Name: column}, Value: value})
		}
		if err := query.Find(&page).Error; err != nil {
			return total, err
		}
		if len(page) == 0 {
			break
		}
		if err := fn(page); err != nil {
			return total, err
		}

		total += len(page)
		if len(page) < BatchSize {
			break
		}
		offset += BatchSize
	}
	return total, nil
}

func (s source[T]) rows(page []*T, header bool) [][]string {
	rows := make([][]string, 0, len(page)+1)
	if header {
		rows = append(rows, s.columns)
	}
	for _, record := range page {
		rows = append(rows, s.toCSV(record))
	}
	return rows
}

func (s source[T]) stream(db *gorm.DB, w io.Writer, format string, d parsers.Dialect) (int, error) {
	// hide any Close method so the codec leaves the response open between pages
	out := struct{ io.Writer }{w}
	header := format == common.FormatCSV && d.HeaderLine

	total, err := s.eachPage(db, nil, func(page []*T) error {
		if format == common.FormatNDJSON {
			return parsers.WriteNDJSON(out, page)
		}
		rows := s.rows(page, header)
		header = false
		return parsers.Write(d, out, rows, parsers.Identity)
	})
	if err == nil && header {
		err = parsers.Write(d, out, [][]string{s.columns}, parsers.Identity)
	}
	return total, err
}

func (s source[T]) document(db *gorm.DB, dst io.WriteCloser, format string, d parsers.Dialect, filters map[string]string, fields []string) (int, error) {
	var all []*T
	total, err := s.eachPage(db, filters, func(page []*T) error {
		all = append(all, page...)
		return nil
	})
	if err != nil {
		dst.Close()
		return total, err
	}

	if format == common.FormatNDJSON {
		if len(fields) == 0 {
			return total, parsers.WriteNDJSON(dst, all)
		}
		objects, err := projectJSON(all, fields)
		if err != nil {
			dst.Close()
			return total, err
		}
		return total, parsers.WriteNDJSON(dst, objects)
	}

	rows := s.rows(all, d.HeaderLine)
	if len(fields) > 0 {
		if rows, err = project(s.columns, fields, rows); err != nil {
			dst.Close()
			return total, err
		}
	}
	return total, parsers.Write(d, dst, rows, parsers.Identity)
}

// project keeps the named columns of every row
func project(columns, fields []string, rows [][]string) ([][]string, error) {
	index := make([]int, len(fields))
	for i, field := range fields {
		if index[i] = slices.Index(columns, field); index[i] < 0 {
			return nil, fmt.Errorf("unknown field %q", field)
		}
	}

	out := make([][]string, len(rows))
	for r, row := range rows {
		selected := make([]string, len(index))
		for i, c := range index {
			if c < len(row) {
				selected[i] = row[c]
			}
		}
		out[r] = selected
	}
	return out, nil
}

// projectJSON renders records as JSON objects holding only the named keys
func projectJSON[T any](records []*T, fields []string) ([]map[string]json.RawMessage, error) {
	objects := make([]map[string]json.RawMessage, 0, len(records))
	for _, record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			return nil, err
		}
		var full map[string]json.RawMessage
		if err := json.Unmarshal(data, &full); err != nil {
			return nil, err
		}

		object := make(map[string]json.RawMessage, len(fields))
		for _, field := range fields {
			if v, ok := full[field]; ok {
				object[field] = v
			}
		}
		objects = append(objects, object)
	}
	return objects, nil
}
