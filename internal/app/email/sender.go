package email

import (
	"context"
	"strings"

	"github.com/Miraines/rbac-auth-service/internal/domain/email"
	"go.uber.org/zap"
)

// LogSender records the envelope of every job instead of delivering it.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, job email.Job) error {
	s.log.Info("email sent",
		zap.String("job_id", job.ID),
		zap.String("type", string(job.Type)),
		zap.String("to", strings.Join(job.To, ",")),
		zap.String("subject", job.Subject),
		zap.String("template", job.Template),
	)
	return nil
}
