package domain

import "errors"

var (
	ErrApplicantNotFound = errors.New("applicant not found")
	ErrMissingUID        = errors.New("firebase uid is required")
)
