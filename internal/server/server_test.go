package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

type panicHandler struct{}

func (panicHandler) Register(e *echo.Echo) {
	e.GET("/boom", func(echo.Context) error { panic("boom") })
}

func TestServer_RecoversPanics(t *testing.T) {
	t.Parallel()
	srv := NewServer(nil, ":0", panicHandler{}, nil)

	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServer_Enabled(t *testing.T) {
	t.Parallel()
	assert.False(t, NewServer(nil, "").Enabled())
	assert.True(t, NewServer(nil, "127.0.0.1:8080").Enabled())
}
