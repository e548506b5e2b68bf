package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken is returned when an access token cannot be decoded into a session.
var ErrMalformedToken = errors.New("malformed access token")

// Role is the authorization level of a session.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAdmin    Role = "ADMIN"
)

// ParseRole maps the wire role onto a Role. The API calls customers BASIC; anything
// unrecognized is treated as a customer.
func ParseRole(wire string) Role {
	if strings.EqualFold(strings.TrimSpace(wire), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleCustomer
}

// Session is the decoded identity of a logged-in user.
type Session struct {
	UserID    string    `json:"userId"`
	Role      Role      `json:"role"`
	FirstName string    `json:"firstName"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
	// Token is the raw access token. It never leaves the server.
	Token string `json:"-"`
}

// IsAdmin reports whether the session belongs to staff.
func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }

// Expired reports whether now is at or past the expiry instant.
func (s Session) Expired(now time.Time) bool { return !now.Before(s.ExpiresAt) }

// Profile is the user object returned next to the access token on login.
type Profile struct {
	ID        any    `json:"id"`
	FirstName string `json:"firstName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// Merge overlays the non-empty profile fields on s.
func (s Session) Merge(p Profile) Session {
	if id := stringify(p.ID); id != "" {
		s.UserID = id
	}
	if p.FirstName != "" {
		s.FirstName = p.FirstName
	}
	if p.Email != "" {
		s.Email = p.Email
	}
	if p.Role != "" {
		s.Role = ParseRole(p.Role)
	}
	return s
}

// DecodeToken reads the claims of an access token without verifying its signature;
// the API verifies it on every call. An exp claim (seconds) is mandatory.
func DecodeToken(raw string) (Session, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return Session{}, fmt.Errorf("%w: missing exp claim", ErrMalformedToken)
	}

	s := Session{
		Role:      ParseRole(claimString(claims, "role")),
		FirstName: claimString(claims, "firstName"),
		Email:     claimString(claims, "email"),
		ExpiresAt: exp.Time,
		Token:     raw,
	}
	for _, key := range []string{"sub", "id", "userId"} {
		if id := stringify(claims[key]); id != "" {
			s.UserID = id
			break
		}
	}
	return s, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}

// stringify renders string and numeric ids alike. JSON numbers decode as float64.
func stringify(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case float64:
		return fmt.Sprintf("%.0f", id)
	default:
		return fmt.Sprint(id)
	}
}
