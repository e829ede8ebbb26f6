package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/kaiunlab/kaiun/internal/config"
	"github.com/kaiunlab/kaiun/internal/handlers"
)

func newAuthEcho(t *testing.T) *echo.Echo {
	t.Helper()

	cfg := config.Config{
		Admin: config.AdminConfig{Username: "admin", Password: "correct horse"},
		Auth:  config.AuthConfig{JWTSecret: "test-secret", JWTExpiresIn: "1h"},
	}
	h, err := handlers.NewAuthHandler(nil, cfg)
	require.NoError(t, err)

	e := echo.New()
	h.Register(e)
	return e
}

func postLogin(e *echo.Echo, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()

	e := newAuthEcho(t)
	rec := postLogin(e, `{"username":"admin","password":"correct horse"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.NotEmpty(t, got["token"])
	require.NotEmpty(t, got["expires_at"])
}

func TestLogin_WrongPassword(t *testing.T) {
	t.Parallel()

	e := newAuthEcho(t)
	rec := postLogin(e, `{"username":"admin","password":"wrong"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_UnknownUser(t *testing.T) {
	t.Parallel()

	e := newAuthEcho(t)
	rec := postLogin(e, `{"username":"root","password":"correct horse"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
