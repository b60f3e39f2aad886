package userControllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/database"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureUserAndProfile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	u, err := EnsureUser(db, "u1", "u1@example.com", models.RoleCustomer)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, u.Role)

	u, err = EnsureUser(db, "u1", "u1@example.com", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	r := gin.New()
	withSession := func(c *gin.Context) { c.Set("session", &auth.Session{UserID: "u1"}) }
	r.GET("/user", withSession, GetUser(db))
	r.PUT("/user", withSession, UpdateUser(db))

	req := httptest.NewRequest(http.MethodPut, "/user", strings.NewReader(`{"name":"Una","address":{"city":"Dubai"}}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/user", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var got models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Una", got.Name)
	assert.Equal(t, "Dubai", got.Address.City)

	req = httptest.NewRequest(http.MethodPut, "/user", strings.NewReader(`{"picture":"not a url"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
