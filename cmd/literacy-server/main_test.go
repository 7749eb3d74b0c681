package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/literacy/internal/config"
	"github.com/at-ishikawa/literacy/internal/testutil"
)

func TestNewHandler(t *testing.T) {
	cfg, err := config.Load(testutil.SetupTestConfig(t, t.TempDir(), testutil.WithStorageDriver("sqlite")))
	require.NoError(t, err)

	handler, closeStore, err := newHandler(context.Background(), cfg)
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, closeStore())
	}()
	routes := handler.Routes()

	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(`{"userId":"user1","difficulty":2}`)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"indicator":"1 / 2"`)

	rec = httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users/user1/progress/4/attempts", strings.NewReader(`{"correct":true}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/user1/progress/4", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"masteryLevel":100`)
}

func TestNewHandler_InvalidStorage(t *testing.T) {
	cfg, err := config.Load(testutil.SetupTestConfig(t, t.TempDir()))
	require.NoError(t, err)
	cfg.Storage.Driver = "redis"

	_, _, err = newHandler(context.Background(), cfg)
	assert.Error(t, err)
}
