// Package email queues transactional mail and runs the delivery worker.
package email

import (
	"context"
	"time"

	customErrors "github.com/Miraines/rbac-auth-service/internal/domain/auth/errors"
	"github.com/Miraines/rbac-auth-service/internal/domain/email"
)

type Service struct {
	queue email.Queue
}

func NewService(q email.Queue) *Service {
	return &Service{queue: q}
}

func (s *Service) SendWelcome(ctx context.Context, to, firstName string) error {
	return s.enqueue(ctx, email.JobWelcome, []string{to}, "Welcome!", "welcome", map[string]any{
		"firstName": firstName,
	})
}

// SendNotification queues one plain-text message addressed to all of to.
func (s *Service) SendNotification(ctx context.Context, to []string, subject, text string) error {
	if len(to) == 0 {
		return customErrors.NewInvalidArgument("notification without recipients")
	}
	for _, addr := range to {
		if addr == "" {
			return customErrors.NewInvalidArgument("empty recipient")
		}
	}
	return s.queue.Enqueue(ctx, email.Job{
		ID:        newJobID(),
		Type:      email.JobNotification,
		To:        to,
		Subject:   subject,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	})
}

func (s *Service) Stats(ctx context.Context) (email.Stats, error) {
	return s.queue.Stats(ctx)
}

func (s *Service) Jobs(ctx context.Context, status email.JobStatus, start, end int64) ([]email.Job, error) {
	if start < 0 || end < start {
		return nil, customErrors.NewInvalidArgument("invalid job range")
	}
	return s.queue.Jobs(ctx, status, start, end)
}

func (s *Service) Job(ctx context.Context, id string) (email.Job, email.JobStatus, error) {
	return s.queue.Job(ctx, id)
}

func (s *Service) enqueue(ctx context.Context, t email.JobType, to []string, subject, tpl string, data map[string]any) error {
	if len(to) == 0 || to[0] == "" {
		return customErrors.NewInvalidArgument("email without recipient")
	}
	return s.queue.Enqueue(ctx, email.Job{
		ID:        newJobID(),
		Type:      t,
		To:        to,
		Subject:   subject,
		Template:  tpl,
		Context:   data,
		CreatedAt: time.Now().UTC(),
	})
}
