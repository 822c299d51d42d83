package common

import (
	"github.com/gin-gonic/gin"

	"bookstore-csv/parsers"
)

var dialectKeys = []string{
	parsers.OptionEncoding,
	parsers.OptionQuote,
	parsers.OptionDelimiter,
	parsers.OptionHeaderLine,
	parsers.OptionStrictQuotes,
}

// RequestDialectOptions merges the configured defaults with dialect options given as query
// parameters or form fields. A key present with an empty value is kept, so
// quoteCharacter= disables quoting.
func RequestDialectOptions(c *gin.Context) map[string]string {
	opts := make(map[string]string, len(dialectKeys))
	for k, v := range DialectOptions {
		opts[k] = v
	}
	for _, key := range dialectKeys {
		if v, ok := c.GetQuery(key); ok {
			opts[key] = v
		} else if v, ok := c.GetPostForm(key); ok {
			opts[key] = v
		}
	}
	return opts
}

// RequestDialect builds the dialect for a request, see RequestDialectOptions.
func RequestDialect(c *gin.Context) (parsers.Dialect, map[string]string, error) {
	opts := RequestDialectOptions(c)
	d, err := parsers.NewDialect(opts)
	return d, opts, err
}
