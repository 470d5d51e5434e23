// ABOUTME: Field-level validation errors for console forms
// ABOUTME: Login reports the first violated rule, entity forms report every bad field

package model

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// FieldError is a validation failure tied to one form field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is every field failure found in one form submission.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// For returns the message for a field, or "" when the field is valid.
func (v ValidationErrors) For(field string) string {
	for _, e := range v {
		if e.Field == field {
			return e.Message
		}
	}
	return ""
}

func (v *ValidationErrors) add(field, msg string) {
	*v = append(*v, FieldError{Field: field, Message: msg})
}

func (v ValidationErrors) orNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// Credentials is a login form submission.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ValidateLogin checks the login form and returns the first violated rule, or nil.
// The username is trimmed; the password is taken as typed.
func ValidateLogin(c Credentials, minPasswordLength int) *FieldError {
	if strings.TrimSpace(c.Username) == "" {
		return &FieldError{Field: "username", Message: "Username is required"}
	}
	if c.Password == "" {
		return &FieldError{Field: "password", Message: "Password is required"}
	}
	if utf8.RuneCountInString(c.Password) < minPasswordLength {
		return &FieldError{
			Field:   "password",
			Message: fmt.Sprintf("Password must be at least %d characters", minPasswordLength),
		}
	}
	return nil
}
