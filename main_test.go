package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstore-csv/common"
)

func TestRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := common.TestDBInit()
	defer common.TestDBFree(db)
	require.NoError(t, Migrate(db))

	r := setupRouter(&common.Config{JWTSecret: "secret"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/exports?resource=clients&format=csv", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := common.GenToken("secret", "tester")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/exports?resource=clients&format=csv", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "id,email,password,name,balance"))
}
