package domain

import "time"

// Status is the admin-side review state of a submission.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the known review states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Submission mirrors a row of the form_data table. Only Status ever changes
// after insert, and only on the admin side.
type Submission struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Purpose      string    `json:"purpose" db:"purpose"`
	PlatformLink string    `json:"platform_link" db:"platform_link"`
	UserID       *string   `json:"user_id" db:"user_id"`
	Status       Status    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Input is the applicant-provided part of a submission.
type Input struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Purpose      string `json:"purpose"`
	PlatformLink string `json:"platform_link"`
}

// CreateSubmissionRequest is what the store needs to insert a new row.
type CreateSubmissionRequest struct {
	Input
	UserID string
}

// ListOptions filters a listing. Email, when set, widens the match to rows
// carrying that email regardless of owner.
type ListOptions struct {
	UserID string
	Email  string
}

// Identity is the authenticated applicant as seen by the submission flow.
type Identity struct {
	UID   string
	Email string
}

// Purposes offered by the form. The server only requires a non-empty value.
var Purposes = []string{"blog", "portfolio", "business", "community", "education", "other"}
