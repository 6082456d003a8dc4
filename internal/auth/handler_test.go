package auth_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campus-ticketing/internal/auth"
	"campus-ticketing/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestHandler(t *testing.T) *auth.Handler {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)
	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	require.NoError(t, bunDB.ResetModel(context.Background(), (*models.User)(nil)))

	service := auth.NewService(&auth.DB{Bun: bunDB}, testSecret, time.Hour)
	return &auth.Handler{Service: service}
}

func postJSON(t *testing.T, handler http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestRegisterLoginEndpoints(t *testing.T) {
	h := newTestHandler(t)

	rec := postJSON(t, h.Register, map[string]string{
		"name":     "Student User",
		"email":    "student@university.edu",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var env struct {
		Success bool `json:"success"`
		Data    struct {
			User  models.User `json:"user"`
			Token string      `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.Data.Token)
	assert.Equal(t, models.RoleStudent, env.Data.User.Role)
	assert.Empty(t, env.Data.User.PasswordHash, "hash must never leave the server")

	// Duplicate registration conflicts.
	rec = postJSON(t, h.Register, map[string]string{
		"name":     "Someone Else",
		"email":    "student@university.edu",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = postJSON(t, h.Login, map[string]string{
		"email":    "student@university.edu",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, h.Login, map[string]string{
		"email":    "student@university.edu",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
