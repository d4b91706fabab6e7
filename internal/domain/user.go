package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrEmptyUserID       = errors.New("user ID cannot be empty")
	ErrEmptyEmail        = errors.New("email cannot be empty")
	ErrInvalidEmail      = errors.New("invalid email format")
	ErrInvalidPermission = errors.New("invalid permission level")
)

// PermissionLevel describes what a user is allowed to do.
type PermissionLevel string

// Permission levels, ordered from least to most privileged.
const (
	PermissionNone  PermissionLevel = "NONE"
	PermissionBase  PermissionLevel = "BASE"
	PermissionPaid  PermissionLevel = "PAID"
	PermissionAdmin PermissionLevel = "ADMIN"
	PermissionSuper PermissionLevel = "SUPER"
)

// Valid reports whether p is one of the known permission levels.
func (p PermissionLevel) Valid() bool {
	switch p {
	case PermissionNone, PermissionBase, PermissionPaid, PermissionAdmin, PermissionSuper:
		return true
	}
	return false
}

// Credentials is the delegated-credential bundle persisted alongside a
// user: the material needed to act on the user's behalf against the
// identity provider's token endpoint.
type Credentials struct {
	Token        string   `json:"token"`
	RefreshToken string   `json:"refresh_token"`
	TokenURI     string   `json:"token_uri"`
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	Scopes       []string `json:"scopes"`
}

// Empty reports whether the bundle carries no credential material.
func (c Credentials) Empty() bool {
	return c.Token == "" && c.RefreshToken == "" && c.TokenURI == "" &&
		c.ClientID == "" && c.ClientSecret == "" && len(c.Scopes) == 0
}

// User represents a registered principal. Created by the auth mediator
// on first successful identity resolution; never deleted by this
// subsystem.
type User struct {
	ID          uuid.UUID       `json:"id"`
	Email       string          `json:"email"`
	Name        string          `json:"name"`
	Permission  PermissionLevel `json:"permission_level"`
	Verified    bool            `json:"verified"`
	PhoneNumber string          `json:"phone_number"`
	LastFetch   time.Time       `json:"last_fetch"`
	Credentials Credentials     `json:"-"` // never expose credential material in JSON
}

// NewUser creates a User with a fresh UUID, the default BASE permission
// level, and LastFetch set to now. Returns an error if validation fails.
func NewUser(email, name string, verified bool, phone string) (*User, error) {
	user := &User{
		ID:          uuid.New(),
		Email:       email,
		Name:        name,
		Permission:  PermissionBase,
		Verified:    verified,
		PhoneNumber: phone,
		LastFetch:   time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks that the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}
	if u.Email == "" {
		return ErrEmptyEmail
	}
	if !validEmailFormat(u.Email) {
		return ErrInvalidEmail
	}
	if !u.Permission.Valid() {
		return ErrInvalidPermission
	}
	return nil
}

// validEmailFormat performs a structural check: one "@" with a dotted
// domain after it. Anything stricter belongs to the identity provider,
// which verified the address before signing the token.
func validEmailFormat(email string) bool {
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return false
	}

	domain := email[at+1:]
	dot := strings.IndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1
}
