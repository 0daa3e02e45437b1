package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vinnesia/domainform-backend/internal/logging"
	"github.com/vinnesia/domainform-backend/internal/submissions/cache"
	"github.com/vinnesia/domainform-backend/internal/submissions/domain"
)

// Store persists submissions
type Store interface {
	Create(ctx context.Context, req domain.CreateSubmissionRequest) (*domain.Submission, error)
	List(ctx context.Context, opts domain.ListOptions) ([]domain.Submission, error)
}

// ListingCache caches per-user listings. A nil cache disables caching.
type ListingCache interface {
	Get(ctx context.Context, opts domain.ListOptions) ([]domain.Submission, error)
	Set(ctx context.Context, opts domain.ListOptions, subs []domain.Submission) error
	Invalidate(ctx context.Context, uid, email string) error
}

// Notifier hands a stored submission to the admin panel relay.
type Notifier interface {
	Notify(ctx context.Context, req domain.CreateSubmissionRequest) error
}

// MsgRelayFailed is shown when a relay failure carries no caller-safe text.
const MsgRelayFailed = "Admin panel notification failed"

// publicError is implemented by errors whose message may be shown to callers.
type publicError interface {
	PublicMessage() string
}

// Result is the outcome of a submission. RelayWarning is set when the row
// was stored but the admin panel could not be notified.
type Result struct {
	Submission   *domain.Submission `json:"submission"`
	RelayWarning string             `json:"relay_warning,omitempty"`
}

type SubmissionService struct {
	store    Store
	cache    ListingCache
	notifier Notifier
}

func NewSubmissionService(store Store, cache ListingCache, notifier Notifier) *SubmissionService {
	return &SubmissionService{
		store:    store,
		cache:    cache,
		notifier: notifier,
	}
}

// Submit validates and stores one submission for the signed-in applicant,
// then notifies the relay. A relay failure never undoes the insert.
func (s *SubmissionService) Submit(ctx context.Context, id domain.Identity, in domain.Input) (*Result, error) {
	logger := logging.New(ctx)

	if strings.TrimSpace(id.UID) == "" {
		return nil, domain.ErrUnauthenticated
	}
	if err := domain.ValidateForm(in); err != nil {
		return nil, err
	}

	req := domain.CreateSubmissionRequest{
		Input: domain.Input{
			Name:         strings.TrimSpace(in.Name),
			Email:        strings.TrimSpace(in.Email),
			Purpose:      strings.TrimSpace(in.Purpose),
			PlatformLink: strings.TrimSpace(in.PlatformLink),
		},
		UserID: id.UID,
	}

	sub, err := s.store.Create(ctx, req)
	if err != nil {
		logger.LogError("submissions.create", err, "user_id", id.UID)
		return nil, fmt.Errorf("store submission: %w", err)
	}
	logger.LogInfof("submissions.create", "stored submission %s for %s", sub.ID, id.UID)

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, id.UID, req.Email); err != nil {
			logger.LogWarn("submissions.create", "failed to invalidate listing cache", "error", err.Error())
		}
	}

	res := &Result{Submission: sub}
	if s.notifier != nil {
		if err := s.notifier.Notify(context.WithoutCancel(ctx), req); err != nil {
			logger.LogWarnf("submissions.relay", "admin panel notification failed for %s: %v", sub.ID, err)
			res.RelayWarning = relayWarning(err)
		}
	}
	return res, nil
}

// relayWarning keeps URLs, hosts and upstream bodies out of responses.
func relayWarning(err error) string {
	var pub publicError
	if errors.As(err, &pub) && pub.PublicMessage() != "" {
		return pub.PublicMessage()
	}
	return MsgRelayFailed
}

// List returns the applicant's submissions newest first, through the cache.
// With matchEmail rows carrying the applicant's email are included too.
func (s *SubmissionService) List(ctx context.Context, id domain.Identity, matchEmail bool) ([]domain.Submission, error) {
	logger := logging.New(ctx)

	opts, err := listOptions(id, matchEmail)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		subs, err := s.cache.Get(ctx, opts)
		if err == nil {
			return subs, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			logger.LogWarn("submissions.list", "listing cache unavailable", "error", err.Error())
		}
	}

	return s.load(ctx, logger, opts)
}

// Refresh reads the applicant's submissions straight from the store and
// replaces the cached listing, so status changes made elsewhere show up.
func (s *SubmissionService) Refresh(ctx context.Context, id domain.Identity, matchEmail bool) ([]domain.Submission, error) {
	opts, err := listOptions(id, matchEmail)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, logging.New(ctx), opts)
}

func (s *SubmissionService) load(ctx context.Context, logger *logging.Logger, opts domain.ListOptions) ([]domain.Submission, error) {
	subs, err := s.store.List(ctx, opts)
	if err != nil {
		logger.LogError("submissions.list", err, "user_id", opts.UserID)
		return nil, fmt.Errorf("list submissions: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, opts, subs); err != nil {
			logger.LogWarn("submissions.list", "failed to cache listing", "error", err.Error())
		}
	}
	return subs, nil
}

func listOptions(id domain.Identity, matchEmail bool) (domain.ListOptions, error) {
	if strings.TrimSpace(id.UID) == "" {
		return domain.ListOptions{}, domain.ErrUnauthenticated
	}
	opts := domain.ListOptions{UserID: id.UID}
	if matchEmail {
		opts.Email = strings.TrimSpace(id.Email)
	}
	return opts, nil
}

// ValidateField checks one form field for inline feedback.
func (s *SubmissionService) ValidateField(field, value string) error {
	return domain.ValidateField(field, value)
}
