package users

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// RoleType represents an application role
type RoleType string

const (
	RoleSuperAdmin RoleType = "super_admin" // Manages the whole application
	RoleAdmin      RoleType = "admin"       // Manages risk records and users
	RoleOwnerRisk  RoleType = "owner_risk"  // Owns and maintains individual risks
	RolePimpinan   RoleType = "pimpinan"    // Leadership, read-only reporting views
)

type User struct {
	ID           string     `json:"id,omitempty"`    // Unique identifier for the user
	Email        string     `json:"email,omitempty"` // User's email address, unique, stored lower-case
	Name         string     `json:"name,omitempty"`  // Display name
	PasswordHash string     `json:"-"`               // Hashed password - never serialize
	Roles        []RoleType `json:"roles,omitempty"`
	CreatedAt    time.Time  `json:"created_at,omitempty"`
	LastLoginAt  time.Time  `json:"last_login_at,omitempty"`
}

// NormalizeEmail lower-cases and trims an email so that lookups do not
// depend on the store's collation.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// RandomPassword returns a random password for accounts whose authentication
// is delegated to the SSO provider. It is never shown to anyone; the account
// can only log in through the provider until an admin resets it.
func RandomPassword() string {
	b := make([]byte, 24)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

func (u *User) HasRole(role RoleType) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsSuperAdmin returns true if the user has super admin privileges
func (u *User) IsSuperAdmin() bool {
	return u.HasRole(RoleSuperAdmin)
}
