package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vinnesia/domainform-backend/internal/auth/domain"
)

type ApplicantRepository struct {
	db *sql.DB
}

func NewApplicantRepository(db *sql.DB) *ApplicantRepository {
	return &ApplicantRepository{db: db}
}

// GetByFirebaseUID retrieves an applicant by their Firebase UID
func (r *ApplicantRepository) GetByFirebaseUID(ctx context.Context, uid string) (*domain.Applicant, error) {
	query := `
		SELECT firebase_uid, email, display_name, photo_url, provider,
		       created_at, updated_at, last_login_at
		FROM applicants
		WHERE firebase_uid = $1
	`

	var a domain.Applicant
	var displayName, photoURL, provider sql.NullString
	var lastLoginAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, uid).Scan(
		&a.FirebaseUID,
		&a.Email,
		&displayName,
		&photoURL,
		&provider,
		&a.CreatedAt,
		&a.UpdatedAt,
		&lastLoginAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrApplicantNotFound
	}
	if err != nil {
		return nil, err
	}

	// Handle nullable fields
	if displayName.Valid {
		a.DisplayName = &displayName.String
	}
	if photoURL.Valid {
		a.PhotoURL = &photoURL.String
	}
	if provider.Valid {
		a.Provider = &provider.String
	}
	if lastLoginAt.Valid {
		a.LastLoginAt = &lastLoginAt.Time
	}

	return &a, nil
}

// Upsert creates or refreshes an applicant from Firebase data. Profile
// fields that are absent from the token keep their stored values.
func (r *ApplicantRepository) Upsert(ctx context.Context, a *domain.Applicant) error {
	query := `
		INSERT INTO applicants (firebase_uid, email, display_name, photo_url, provider)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (firebase_uid) DO UPDATE
		SET email = EXCLUDED.email,
		    display_name = COALESCE(EXCLUDED.display_name, applicants.display_name),
		    photo_url = COALESCE(EXCLUDED.photo_url, applicants.photo_url),
		    provider = COALESCE(EXCLUDED.provider, applicants.provider),
		    updated_at = NOW()
		RETURNING created_at, updated_at
	`

	return r.db.QueryRowContext(
		ctx,
		query,
		a.FirebaseUID,
		a.Email,
		a.DisplayName,
		a.PhotoURL,
		a.Provider,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
}

// UpdateLastLogin updates the last login timestamp
func (r *ApplicantRepository) UpdateLastLogin(ctx context.Context, uid string) error {
	query := `
		UPDATE applicants
		SET last_login_at = NOW()
		WHERE firebase_uid = $1
	`

	result, err := r.db.ExecContext(ctx, query, uid)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrApplicantNotFound
	}

	return nil
}
