// Package form holds the client-side validation rules for the auth and task forms.
// Validation is synchronous and reports every failing field at once.
package form

import (
	"regexp"
	"sort"
	"strings"
)

type Field string

const (
	FieldUsername        Field = "username"
	FieldEmail           Field = "email"
	FieldPassword        Field = "password"
	FieldConfirmPassword Field = "confirmPassword"
	FieldTitle           Field = "title"
	FieldDescription     Field = "description"
)

func (f Field) Label() string {
	switch f {
	case FieldUsername:
		return "Username"
	case FieldEmail:
		return "Email"
	case FieldPassword:
		return "Password"
	case FieldConfirmPassword:
		return "Confirm Password"
	case FieldTitle:
		return "Title"
	case FieldDescription:
		return "Description"
	default:
		return string(f)
	}
}

// Errors maps a field to its message. A nil or empty Errors means the form is valid.
type Errors map[Field]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[Field(f)])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Err returns e as an error, or nil when there is nothing to report.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Clear drops the message for f only.
func (e Errors) Clear(f Field) {
	delete(e, f)
}

const (
	MsgUsernameRequired        = "Username is required"
	MsgEmailRequired           = "Email is required"
	MsgEmailInvalid            = "Please enter a valid email address."
	MsgPasswordRequired        = "Password is required"
	MsgPasswordRequirements    = "Password must be at least 6 characters, contain one lowercase letter, one number, and one special character."
	MsgConfirmPasswordRequired = "Confirm Password is required"
	MsgPasswordsDoNotMatch     = "Passwords do not match"
	MsgTitleRequired           = "Title is required"
	MsgDescriptionRequired     = "Description is required"
)

// PasswordSymbols is the fixed set of accepted special characters.
const PasswordSymbols = "@$!%*?&"

const minPasswordLen = 6

// Whitespace here includes \v, Unicode space separators and U+FEFF, not just ASCII \s.
var emailRe = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)

func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// ValidPassword enforces the signup complexity rule: at least 6 characters drawn from
// letters, digits and PasswordSymbols, with one lowercase letter, one digit and one symbol.
func ValidPassword(s string) bool {
	if len(s) < minPasswordLen {
		return false
	}
	var lower, digit, symbol bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSymbols, r):
			symbol = true
		default:
			return false
		}
	}
	return lower && digit && symbol
}
