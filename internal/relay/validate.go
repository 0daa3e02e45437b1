package relay

import (
	"strings"

	"github.com/vinnesia/domainform-backend/internal/submissions/domain"
)

// Validate checks a relay body; the first failure wins.
func Validate(in Input) error {
	if isBlank(in.Name) || isBlank(in.Email) || isBlank(in.Purpose) || isBlank(in.PlatformLink) {
		return &RequestError{Message: MsgMissingFields}
	}
	if !domain.IsValidEmail(in.Email) {
		return &RequestError{Message: MsgInvalidEmail}
	}
	if !domain.IsValidURL(in.PlatformLink) {
		return &RequestError{Message: MsgInvalidURL}
	}
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
