// Package review implements the SPV review workflow on top of the session and
// the application store: authenticated users submit applications and SPV
// reviewers approve or reject them.
package review

import (
	"context"
	"fmt"

	"github.com/nanofi/nanofi/internal/applications"
	"github.com/nanofi/nanofi/internal/common"
	"github.com/nanofi/nanofi/internal/logging"
	"github.com/nanofi/nanofi/internal/session"
)

// Sessions is the part of session.Store the workflow depends on.
type Sessions interface {
	CurrentUser() *session.User
}

// Applications is the part of applications.Store the workflow depends on.
type Applications interface {
	Submit(ctx context.Context, submittedBy string, formData applications.FormData) (string, error)
	ListPending(ctx context.Context) []applications.Application
	SetStatus(ctx context.Context, id string, status applications.Status, reviewer, notes string) (bool, error)
}

type Service struct {
	sessions Sessions
	apps     Applications
	logger   logging.Logger
}

func NewService(sessions Sessions, apps Applications, logger logging.Logger) *Service {
	return &Service{
		sessions: sessions,
		apps:     apps,
		logger:   logger.With("module", "review"),
	}
}

// Submit files an application on behalf of the logged-in user.
func (s *Service) Submit(ctx context.Context, formData applications.FormData) (string, error) {
	u := s.sessions.CurrentUser()
	if u == nil {
		return "", fmt.Errorf("submit: %w: not logged in", common.ErrorUnauthorized)
	}
	return s.apps.Submit(ctx, u.Email, formData)
}

// Queue returns the applications waiting for a decision.
func (s *Service) Queue(ctx context.Context) ([]applications.Application, error) {
	if _, err := s.reviewer(); err != nil {
		return nil, err
	}
	return s.apps.ListPending(ctx), nil
}

func (s *Service) Approve(ctx context.Context, id, notes string) error {
	return s.decide(ctx, id, applications.StatusApproved, notes)
}

func (s *Service) Reject(ctx context.Context, id, notes string) error {
	return s.decide(ctx, id, applications.StatusRejected, notes)
}

func (s *Service) decide(ctx context.Context, id string, status applications.Status, notes string) error {
	u, err := s.reviewer()
	if err != nil {
		return err
	}

	ok, err := s.apps.SetStatus(ctx, id, status, u.Email, notes)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("application %s: %w", id, common.ErrorNotFound)
	}

	s.logger.Debug(ctx, "decision recorded", "id", id, "status", status, "reviewer", u.Email)
	return nil
}

// reviewer returns the logged-in user if they may review applications.
func (s *Service) reviewer() (*session.User, error) {
	u := s.sessions.CurrentUser()
	if u == nil {
		return nil, fmt.Errorf("%w: not logged in", common.ErrorUnauthorized)
	}
	if u.Role != session.RoleSPV {
		return nil, fmt.Errorf("%w: %s is not an SPV reviewer", common.ErrorUnauthorized, u.Email)
	}
	return u, nil
}
