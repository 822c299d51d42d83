package common

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenAndParseToken(t *testing.T) {
	token, err := GenToken("secret", "admin@vpa.com")
	require.NoError(t, err)

	subject, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "admin@vpa.com", subject)

	_, err = ParseToken("other", token)
	assert.Error(t, err)
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	token, err := GenToken("secret", "tester")
	require.NoError(t, err)

	newRouter := func(secret string) *gin.Engine {
		r := gin.New()
		r.Use(AuthMiddleware(secret))
		r.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, c.GetString("subject"))
		})
		return r
	}

	tests := []struct {
		name   string
		secret string
		header string
		status int
		body   string
	}{
		{"no secret passes", "", "", http.StatusOK, ""},
		{"missing header", "secret", "", http.StatusUnauthorized, ""},
		{"bad token", "secret", "Bearer nope", http.StatusUnauthorized, ""},
		{"wrong scheme", "secret", "Token " + token, http.StatusUnauthorized, ""},
		{"valid", "secret", "Bearer " + token, http.StatusOK, "tester"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			newRouter(tt.secret).ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestRequestDialectOptions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	old := DialectOptions
	t.Cleanup(func() { DialectOptions = old })
	DialectOptions = map[string]string{"encoding": "UTF-8", "quoteCharacter": "'"}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?valuesDelimiter=%3B&quoteCharacter=", nil)

	d, opts, err := RequestDialect(c)
	require.NoError(t, err)
	assert.Equal(t, "UTF-8", opts["encoding"])
	assert.Equal(t, ';', d.Delimiter)
	assert.Equal(t, rune(0), d.Quote)
}
