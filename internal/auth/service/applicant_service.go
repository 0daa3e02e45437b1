package service

import (
	"context"
	"errors"
	"strings"

	"github.com/vinnesia/domainform-backend/internal/auth/domain"
	"github.com/vinnesia/domainform-backend/internal/logging"
)

// ApplicantStore persists applicant profiles.
type ApplicantStore interface {
	GetByFirebaseUID(ctx context.Context, uid string) (*domain.Applicant, error)
	Upsert(ctx context.Context, a *domain.Applicant) error
	UpdateLastLogin(ctx context.Context, uid string) error
}

type ApplicantService struct {
	repo ApplicantStore
}

func NewApplicantService(repo ApplicantStore) *ApplicantService {
	return &ApplicantService{repo: repo}
}

// Sync creates or updates the applicant from verified token data and
// records the login.
func (s *ApplicantService) Sync(ctx context.Context, req domain.SyncApplicantRequest) (*domain.Applicant, error) {
	if strings.TrimSpace(req.FirebaseUID) == "" {
		return nil, domain.ErrMissingUID
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		// Phone and anonymous sign-ins carry no email claim
		email = req.FirebaseUID + "@firebase.local"
	}

	a := &domain.Applicant{
		FirebaseUID: req.FirebaseUID,
		Email:       email,
		DisplayName: nonEmpty(req.DisplayName),
		PhotoURL:    nonEmpty(req.PhotoURL),
		Provider:    nonEmpty(req.Provider),
	}
	if err := s.repo.Upsert(ctx, a); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateLastLogin(ctx, a.FirebaseUID); err != nil && !errors.Is(err, domain.ErrApplicantNotFound) {
		logging.New(ctx).LogWarn("auth.sync", "failed to record login", "error", err.Error())
	}

	return s.repo.GetByFirebaseUID(ctx, a.FirebaseUID)
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
