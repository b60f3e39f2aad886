package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/junaidrashid-git/storefront-api/models"
	"gorm.io/gorm"
)

var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrForbidden              = errors.New("admin access required")
)

// Session is the authenticated identity behind a request.
type Session struct {
	UserID string
	Role   models.Role
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == models.RoleAdmin
}

// Resolver turns a request into a session. A nil session with a nil error
// means the request is anonymous.
type Resolver interface {
	Resolve(r *http.Request) (*Session, error)
}

// TokenResolver reads a bearer token from the Authorization header.
type TokenResolver struct {
	issuer *Issuer
}

func NewTokenResolver(issuer *Issuer) *TokenResolver {
	return &TokenResolver{issuer: issuer}
}

func (t *TokenResolver) Resolve(r *http.Request) (*Session, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return nil, nil
	}
	tokenString := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	claims, err := t.issuer.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	return &Session{UserID: claims.UserID, Role: claims.Role}, nil
}

// UserResolver checks a resolved session against the users table. The role
// always comes from the stored row, so a role change applies to tokens that
// are already issued. A token whose user no longer exists is invalid.
type UserResolver struct {
	next Resolver
	db   *gorm.DB
}

func NewUserResolver(next Resolver, db *gorm.DB) *UserResolver {
	return &UserResolver{next: next, db: db}
}

func (u *UserResolver) Resolve(r *http.Request) (*Session, error) {
	sess, err := u.next.Resolve(r)
	if err != nil || sess == nil {
		return sess, err
	}

	var user models.User
	err = u.db.WithContext(r.Context()).
		Select("id", "role").
		Where("id = ?", sess.UserID).
		Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("load session user: %w", err)
	}
	sess.Role = user.Role
	return sess, nil
}
