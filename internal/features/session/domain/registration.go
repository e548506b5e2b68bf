package domain

import (
	"regexp"

	"envios-web/internal/core/validation"
)

// Registration is the sign-up form. Document types are the Venezuelan identity prefixes.
type Registration struct {
	FirstName       string `json:"firstName" validate:"required"`
	LastName        string `json:"lastName" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
	DateOfBirth     string `json:"dateOfBirth" validate:"required,datetime=2006-01-02"`
	Phone           string `json:"phone" validate:"required"`
	City            string `json:"city"`
	Username        string `json:"username" validate:"required"`
	DocumentType    string `json:"document_type" validate:"omitempty,oneof=V E P J G"`
	DocumentNumber  string `json:"document_number" validate:"required"`
}

// Go's regexp has no lookahead, so the policy is one pattern per rule.
var passwordRules = []*regexp.Regexp{
	regexp.MustCompile(`\d`),
	regexp.MustCompile(`[a-z]`),
	regexp.MustCompile(`[A-Z]`),
}

// ValidPassword reports whether pw has at least 8 characters, a digit, a lowercase and an uppercase letter.
func ValidPassword(pw string) bool {
	if len([]rune(pw)) < 8 {
		return false
	}
	for _, rule := range passwordRules {
		if !rule.MatchString(pw) {
			return false
		}
	}
	return true
}

// Normalize applies the form defaults.
func (r *Registration) Normalize() {
	if r.DocumentType == "" {
		r.DocumentType = "V"
	}
	if r.City == "" {
		r.City = "Caracas"
	}
}

// Validate checks the schema plus the password policy and confirmation.
func (r Registration) Validate() error {
	var errs validation.Errors
	if err := validation.Struct(r); err != nil {
		fieldErrs, ok := validation.As(err)
		if !ok {
			return err
		}
		errs = fieldErrs
	}
	if r.Password != "" && !ValidPassword(r.Password) {
		errs.Add("password", "debe tener al menos 8 caracteres, un número, una minúscula y una mayúscula")
	}
	if r.ConfirmPassword != "" && r.ConfirmPassword != r.Password {
		errs.Add("confirmPassword", "las contraseñas no coinciden")
	}
	return errs.Err()
}
