// Package parsers reads and writes delimited text documents (CSV) and NDJSON.
//
// The CSV codec is driven by a Dialect: text encoding, quote character, field delimiter and
// whether the first line is a header. Documents are exchanged whole: Read returns every
// record of a stream and Write emits every record of a slice. The conversion between raw
// fields and application types is supplied by the caller as a mapping function.
//
// Example reading a semicolon separated, cp1251 encoded file:
//
//	dialect, err := parsers.NewDialect(map[string]string{
//	    "encoding":        "cp1251",
//	    "valuesDelimiter": ";",
//	    "headerLine":      "false",
//	})
//	if err != nil {
//	    return err
//	}
//	file, _ := os.Open("clients.csv")
//	clients, err := parsers.Read(dialect, file, users.ClientFromCSV)
//
// Read closes file when it returns. Writing goes the other way:
//
//	err = parsers.Write(dialect, out, clients, users.ClientToCSV)
//
// Quoting is deliberately narrow on write: a field is wrapped in quotes only when it contains
// the delimiter and does not already start with the quote character. Embedded quotes are not
// escaped, so a field such as a'b does not survive a round trip with quote '.
//
// Example usage for NDJSON:
//
//	file, _ := os.Open("data.ndjson")
//	books, err := parsers.ReadNDJSON[catalog.Book](file)
package parsers
