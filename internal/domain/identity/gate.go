// Package identity is the storefront's auth gate: who the shopper is and
// whether they are logged in. It performs no credential verification.
package identity

import (
	"strings"

	"github.com/google/uuid"
)

const AggregateType = "Session"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

func (r Role) IsValid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// ProfileUpdate carries the fields to merge into the current user. Nil
// fields are left untouched.
type ProfileUpdate struct {
	Email *string `json:"email,omitempty"`
	Name  *string `json:"name,omitempty"`
}

// Gate holds the current identity. LoggedIn implies User is non-nil.
type Gate struct {
	user *User
}

// Login sets the current identity. An unknown role is downgraded to customer.
func (g *Gate) Login(u User) {
	if !u.Role.IsValid() {
		u.Role = RoleCustomer
	}
	g.user = &u
}

func (g *Gate) Logout() {
	g.user = nil
}

// UpdateProfile merges p into the current user. It reports false when
// nobody is logged in.
func (g *Gate) UpdateProfile(p ProfileUpdate) bool {
	if g.user == nil {
		return false
	}
	if p.Email != nil {
		g.user.Email = *p.Email
	}
	if p.Name != nil {
		g.user.Name = *p.Name
	}
	return true
}

func (g *Gate) IsLoggedIn() bool { return g.user != nil }

// User returns a copy of the current user.
func (g *Gate) User() (User, bool) {
	if g.user == nil {
		return User{}, false
	}
	return *g.user, true
}

func (g *Gate) RequireRole(r Role) bool {
	return g.user != nil && g.user.Role == r
}

var userNamespace = uuid.MustParse("7a3f8f0e-3c1b-4e0a-9d55-2f1c6b7e9a10")

// FromEmail builds the identity the storefront assigns to a login email:
// a stable id derived from the address, and the admin role for adminEmail.
func FromEmail(email, adminEmail string) User {
	email = strings.TrimSpace(email)
	u := User{
		ID:    uuid.NewSHA1(userNamespace, []byte(strings.ToLower(email))).String(),
		Email: email,
		Name:  "Customer User",
		Role:  RoleCustomer,
	}
	if adminEmail != "" && strings.EqualFold(email, adminEmail) {
		u.Name = "Admin User"
		u.Role = RoleAdmin
	}
	return u
}
