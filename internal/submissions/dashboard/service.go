package dashboard

import (
	"context"
	"time"

	"github.com/vinnesia/domainform-backend/internal/submissions/domain"
)

// Lister loads an applicant's current submissions, newest first, without
// serving a cached listing.
type Lister interface {
	Refresh(ctx context.Context, id domain.Identity, matchEmail bool) ([]domain.Submission, error)
}

// Service builds dashboard views.
type Service struct {
	lister     Lister
	matchEmail bool
	loc        *time.Location
	now        func() time.Time
}

// NewService creates a dashboard service. matchEmail also lists rows that
// carry the applicant's email but no matching owner.
func NewService(lister Lister, matchEmail bool, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		lister:     lister,
		matchEmail: matchEmail,
		loc:        loc,
		now:        time.Now,
	}
}

func (s *Service) Load(ctx context.Context, id domain.Identity) (*View, error) {
	subs, err := s.lister.Refresh(ctx, id, s.matchEmail)
	if err != nil {
		return nil, err
	}
	return BuildView(subs, s.loc, s.now().UTC()), nil
}
