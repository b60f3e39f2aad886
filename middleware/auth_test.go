package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(issuer *auth.Issuer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(zerolog.Nop()), Authenticate(auth.NewTokenResolver(issuer)))
	r.GET("/open", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/me", RequireSession, func(c *gin.Context) {
		c.String(http.StatusOK, Session(c).UserID)
	})
	r.GET("/admin", RequireAdmin, func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGuards(t *testing.T) {
	issuer := auth.NewIssuer("secret", time.Hour)
	r := newRouter(issuer)

	customer, err := issuer.Issue("cust-1", models.RoleCustomer)
	require.NoError(t, err)
	admin, err := issuer.Issue("admin-1", models.RoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, do(r, "/open", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/open", "garbage").Code)

	w := do(r, "/me", customer)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cust-1", w.Body.String())
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	assert.Equal(t, http.StatusUnauthorized, do(r, "/admin", "").Code)
	assert.Equal(t, http.StatusForbidden, do(r, "/admin", customer).Code)
	assert.Equal(t, http.StatusOK, do(r, "/admin", admin).Code)
}

type brokenResolver struct{ err error }

func (b brokenResolver) Resolve(*http.Request) (*auth.Session, error) { return nil, b.err }

func TestAuthenticate_ResolverErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for name, tc := range map[string]struct {
		err  error
		want int
	}{
		"invalid token":  {auth.ErrInvalidToken, http.StatusUnauthorized},
		"lookup failure": {errors.New("db down"), http.StatusInternalServerError},
	} {
		t.Run(name, func(t *testing.T) {
			r := gin.New()
			r.Use(Authenticate(brokenResolver{tc.err}))
			r.GET("/open", func(c *gin.Context) { c.Status(http.StatusOK) })
			assert.Equal(t, tc.want, do(r, "/open", "anything").Code)
		})
	}
}
