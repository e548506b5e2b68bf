package domain

import (
	"strings"

	"envios-web/internal/core/apiclient"
	"envios-web/internal/core/validation"
)

// Wire roles of user accounts.
const (
	RoleBasic = "BASIC"
	RoleAdmin = "ADMIN"
)

// Roles are the assignable roles in picklist order.
var Roles = []string{RoleBasic, RoleAdmin}

// DocumentTypes are the identity document prefixes the edit form offers.
var DocumentTypes = []string{"V", "E", "J", "G"}

// User is an account as returned by /users.
type User struct {
	ID             apiclient.ID `json:"id"`
	Email          string       `json:"email"`
	Username       string       `json:"username"`
	FirstName      string       `json:"firstName"`
	LastName       string       `json:"lastName"`
	Phone          string       `json:"phone"`
	DocumentType   string       `json:"document_type"`
	DocumentNumber string       `json:"document_number"`
	DateOfBirth    string       `json:"dateOfBirth"`
	City           string       `json:"city"`
	Role           string       `json:"role"`
	CreatedAt      string       `json:"createdAt,omitempty"`
}

// IsAdmin reports whether u holds the admin role.
func (u User) IsAdmin() bool { return strings.EqualFold(u.Role, RoleAdmin) }

// Filter narrows the user list. /users/all is not paginated, so filtering happens here.
type Filter struct {
	Role   string `json:"role,omitempty" query:"role"`
	Search string `json:"search,omitempty" query:"q"`
}

// Normalize trims the filter and upper-cases the role.
func (f Filter) Normalize() Filter {
	f.Role = strings.ToUpper(strings.TrimSpace(f.Role))
	f.Search = strings.TrimSpace(f.Search)
	return f
}

// Match reports whether u passes both the role and the text filter. The text filter looks
// at first name, last name, email and username, ignoring case.
func (f Filter) Match(u User) bool {
	f = f.Normalize()
	if f.Role != "" && !strings.EqualFold(u.Role, f.Role) {
		return false
	}
	if f.Search == "" {
		return true
	}
	needle := strings.ToLower(f.Search)
	for _, hay := range []string{u.FirstName, u.LastName, u.Email, u.Username} {
		if strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}
	return false
}

// Apply returns the users passing f, in their original order.
func (f Filter) Apply(users []User) []User {
	out := make([]User, 0, len(users))
	for _, u := range users {
		if f.Match(u) {
			out = append(out, u)
		}
	}
	return out
}

// Update is the admin edit form. Only presence of the identity fields is enforced; the
// API owns every other rule.
type Update struct {
	Email          string `json:"email" validate:"required"`
	Username       string `json:"username" validate:"required"`
	FirstName      string `json:"firstName" validate:"required"`
	LastName       string `json:"lastName" validate:"required"`
	Phone          string `json:"phone"`
	DocumentType   string `json:"document_type"`
	DocumentNumber string `json:"document_number"`
	DateOfBirth    string `json:"dateOfBirth"`
	City           string `json:"city"`
	Role           string `json:"role" validate:"required"`
	Password       string `json:"password,omitempty"`
}

// NewUpdate prefills the edit form from u, with the form defaults for empty fields.
func NewUpdate(u User) Update {
	upd := Update{
		Email:          u.Email,
		Username:       u.Username,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Phone:          u.Phone,
		DocumentType:   u.DocumentType,
		DocumentNumber: u.DocumentNumber,
		DateOfBirth:    u.DateOfBirth,
		City:           u.City,
		Role:           u.Role,
	}
	upd.Normalize()
	return upd
}

// Normalize trims the text fields and fills the select defaults.
func (u *Update) Normalize() {
	for _, f := range []*string{&u.Email, &u.Username, &u.FirstName, &u.LastName, &u.Phone, &u.DocumentNumber, &u.City} {
		*f = strings.TrimSpace(*f)
	}
	if u.DocumentType == "" {
		u.DocumentType = "V"
	}
	if u.Role == "" {
		u.Role = RoleBasic
	}
	u.Role = strings.ToUpper(u.Role)
}

// Validate checks field presence.
func (u Update) Validate() error {
	return validation.Struct(u)
}

// Listing is the filtered user list.
type Listing struct {
	Users  []User   `json:"users"`
	Total  int      `json:"total"`
	Shown  int      `json:"shown"`
	Filter Filter   `json:"filter"`
	Roles  []string `json:"roles"`
}

// NewListing filters users by f.
func NewListing(users []User, f Filter) Listing {
	f = f.Normalize()
	shown := f.Apply(users)
	return Listing{Users: shown, Total: len(users), Shown: len(shown), Filter: f, Roles: Roles}
}
