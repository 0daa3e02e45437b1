package domain

import "time"

// Applicant is the profile of a signed-in applicant, synced from Firebase.
// Firebase UID is the primary identifier
type Applicant struct {
	FirebaseUID string     `json:"firebase_uid" db:"firebase_uid"`
	Email       string     `json:"email" db:"email"`
	DisplayName *string    `json:"display_name,omitempty" db:"display_name"`
	PhotoURL    *string    `json:"photo_url,omitempty" db:"photo_url"`
	Provider    *string    `json:"provider,omitempty" db:"provider"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
}

// SyncApplicantRequest is the verified token data used to create or refresh a profile.
type SyncApplicantRequest struct {
	FirebaseUID string
	Email       string
	DisplayName *string
	PhotoURL    *string
	Provider    *string
}
