package auth

import (
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/junaidrashid-git/storefront-api/database"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserResolver_RoleFromStoredUser(t *testing.T) {
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, db.Create(&models.User{ID: "u1", Email: "u1@example.com", Role: models.RoleCustomer}).Error)

	issuer := NewIssuer("secret", time.Hour)
	resolver := NewUserResolver(NewTokenResolver(issuer), db)
	resolve := func(userID string, role models.Role) (*Session, error) {
		token, err := issuer.Issue(userID, role)
		require.NoError(t, err)
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		return resolver.Resolve(req)
	}

	// A token claiming ADMIN gets the stored CUSTOMER role.
	sess, err := resolve("u1", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, sess.Role)
	assert.False(t, sess.IsAdmin())

	require.NoError(t, db.Model(&models.User{}).Where("id = ?", "u1").Update("role", models.RoleAdmin).Error)
	sess, err = resolve("u1", models.RoleCustomer)
	require.NoError(t, err)
	assert.True(t, sess.IsAdmin())

	_, err = resolve("ghost", models.RoleAdmin)
	assert.ErrorIs(t, err, ErrInvalidToken)

	sess, err = resolver.Resolve(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Nil(t, sess)
}
