package http

import (
	"context"

	"github.com/vinnesia/domainform-backend/internal/auth/domain"
	"github.com/vinnesia/domainform-backend/internal/auth/session"
)

// ApplicantSyncer keeps the applicant profile in step with the verified token.
type ApplicantSyncer interface {
	Sync(ctx context.Context, req domain.SyncApplicantRequest) (*domain.Applicant, error)
}

// TokenRevoker signs a user out everywhere. *auth.Client satisfies it.
type TokenRevoker interface {
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

type Handler struct {
	applicants ApplicantSyncer
	revoker    TokenRevoker
	broker     session.Broker
}

func New(applicants ApplicantSyncer, revoker TokenRevoker, broker session.Broker) *Handler {
	return &Handler{
		applicants: applicants,
		revoker:    revoker,
		broker:     broker,
	}
}

// SessionResponse is what the frontend needs to render the signed-in state.
type SessionResponse struct {
	Authenticated bool              `json:"authenticated"`
	UID           string            `json:"uid"`
	Email         string            `json:"email,omitempty"`
	Applicant     *domain.Applicant `json:"applicant,omitempty"`
}
