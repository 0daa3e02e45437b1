package domain

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinNameLength = 2
	MaxNameLength = 100
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail accepts printable-ASCII addresses shaped local@domain.tld.
func IsValidEmail(email string) bool {
	for i := 0; i < len(email); i++ {
		if email[i] < '!' || email[i] > '~' {
			return false
		}
	}
	return emailPattern.MatchString(email)
}

// IsValidURL accepts absolute http and https URLs with a host.
func IsValidURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// ValidateForm runs the form checks in the order the applicant sees them.
func ValidateForm(in Input) error {
	name := strings.TrimSpace(in.Name)
	if utf8.RuneCountInString(name) < MinNameLength {
		return &ValidationError{Field: "name", Message: "Please enter a valid name (at least 2 characters)"}
	}
	if strings.TrimSpace(in.Email) == "" || !IsValidEmail(strings.TrimSpace(in.Email)) {
		return &ValidationError{Field: "email", Message: "Please enter a valid email address"}
	}
	if strings.TrimSpace(in.Purpose) == "" {
		return &ValidationError{Field: "purpose", Message: "Please select a purpose for your domain"}
	}
	if strings.TrimSpace(in.PlatformLink) == "" || !IsValidURL(in.PlatformLink) {
		return &ValidationError{Field: "platform_link", Message: "Please enter a valid platform URL"}
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return &ValidationError{Field: "name", Message: "Name is too long (maximum 100 characters)"}
	}
	return nil
}

// ValidateField checks a single form field, as done on blur in the form.
// Unknown fields are accepted.
func ValidateField(field, value string) error {
	value = strings.TrimSpace(value)

	switch field {
	case "name":
		n := utf8.RuneCountInString(value)
		if n < MinNameLength {
			return &ValidationError{Field: field, Message: "Name must be at least 2 characters"}
		}
		if n > MaxNameLength {
			return &ValidationError{Field: field, Message: "Name is too long (max 100 characters)"}
		}
	case "email":
		if value == "" || !IsValidEmail(value) {
			return &ValidationError{Field: field, Message: "Please enter a valid email address"}
		}
	case "purpose":
		if value == "" {
			return &ValidationError{Field: field, Message: "Please select a purpose"}
		}
	case "platform_link":
		if value == "" || !IsValidURL(value) {
			return &ValidationError{Field: field, Message: "Please enter a valid URL"}
		}
	}
	return nil
}
