package http

import (
	"context"
	"time"

	"github.com/vinnesia/domainform-backend/internal/auth/session"
	"github.com/vinnesia/domainform-backend/internal/submissions/dashboard"
	"github.com/vinnesia/domainform-backend/internal/submissions/domain"
	"github.com/vinnesia/domainform-backend/internal/submissions/service"
)

const (
	MsgLoginRequired  = "Please login first to submit the form"
	MsgSubmitted      = "Application submitted successfully! Check your dashboard for status updates."
	MsgSubmitFailed   = "Submission failed"
	MsgLoadFailed     = "Failed to load applications"
	MsgInvalidBody    = "Invalid request body."
	DashboardRedirect = "/dashboard"
	defaultKeepAlive  = 15 * time.Second
)

// Submitter is the submission flow used by the handlers.
type Submitter interface {
	Submit(ctx context.Context, id domain.Identity, in domain.Input) (*service.Result, error)
	List(ctx context.Context, id domain.Identity, matchEmail bool) ([]domain.Submission, error)
	ValidateField(field, value string) error
}

// ViewLoader builds the dashboard view for an applicant.
type ViewLoader interface {
	Load(ctx context.Context, id domain.Identity) (*dashboard.View, error)
}

// RefreshTicker hands out refresh ticks for a stream.
type RefreshTicker interface {
	Subscribe() (<-chan time.Time, func(), error)
}

type Handler struct {
	submissions Submitter
	dashboard   ViewLoader
	ticker      RefreshTicker
	broker      session.Broker
	matchEmail  bool
	production  bool
	keepAlive   time.Duration
}

type Options struct {
	MatchEmail bool
	Production bool
}

func New(submissions Submitter, views ViewLoader, ticker RefreshTicker, broker session.Broker, opts Options) *Handler {
	return &Handler{
		submissions: submissions,
		dashboard:   views,
		ticker:      ticker,
		broker:      broker,
		matchEmail:  opts.MatchEmail,
		production:  opts.Production,
		keepAlive:   defaultKeepAlive,
	}
}
