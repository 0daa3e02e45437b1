package relay

import (
	"strings"
	"time"

	"github.com/vinnesia/domainform-backend/internal/submissions/domain"
)

// Source tags every record forwarded to the admin panel.
const Source = "vinnesia_domain_form"

// TimestampLayout matches JavaScript's Date.toISOString, which the admin
// panel already parses.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Input is the body accepted by the relay endpoint.
type Input struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Purpose      string  `json:"purpose"`
	PlatformLink string  `json:"platform_link"`
	UserID       *string `json:"user_id,omitempty"`
}

// Record is the normalized copy sent upstream.
type Record struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Purpose      string  `json:"purpose"`
	PlatformLink string  `json:"platform_link"`
	UserID       *string `json:"user_id"`
	SubmittedAt  string  `json:"submitted_at"`
	Source       string  `json:"source"`
}

// InputFromRequest converts a stored submission request into a relay body.
func InputFromRequest(req domain.CreateSubmissionRequest) Input {
	in := Input{
		Name:         req.Name,
		Email:        req.Email,
		Purpose:      req.Purpose,
		PlatformLink: req.PlatformLink,
	}
	if req.UserID != "" {
		uid := req.UserID
		in.UserID = &uid
	}
	return in
}

// Normalize trims every field, lower-cases the email, nulls a blank user_id
// and stamps the record.
func Normalize(in Input, now time.Time) Record {
	rec := Record{
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Purpose:      strings.TrimSpace(in.Purpose),
		PlatformLink: strings.TrimSpace(in.PlatformLink),
		SubmittedAt:  now.UTC().Format(TimestampLayout),
		Source:       Source,
	}
	if in.UserID != nil {
		if uid := strings.TrimSpace(*in.UserID); uid != "" {
			rec.UserID = &uid
		}
	}
	return rec
}
