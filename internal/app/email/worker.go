package email

import (
	"context"
	"time"

	"github.com/Miraines/rbac-auth-service/internal/domain/email"
	"github.com/Miraines/rbac-auth-service/internal/infra/metrics"
	"go.uber.org/zap"
)

const (
	defaultPoll = time.Second
	maxBackoff  = time.Hour
)

// Worker delivers queued jobs. A failed send is retried after
// backoff * 2^(attempt-1), capped at an hour, until maxAttempts is reached,
// then the job is recorded as failed.
type Worker struct {
	queue       email.Queue
	sender      email.Sender
	maxAttempts int
	backoff     time.Duration
	poll        time.Duration
	log         *zap.Logger
}

func NewWorker(q email.Queue, s email.Sender, maxAttempts int, backoff time.Duration, log *zap.Logger) *Worker {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Worker{
		queue:       q,
		sender:      s,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		poll:        defaultPoll,
		log:         log,
	}
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("email worker started", zap.Int("max_attempts", w.maxAttempts))
	if n, err := w.queue.Recover(ctx); err != nil {
		w.log.Warn("recover active emails", zap.Error(err))
	} else if n > 0 {
		w.log.Info("recovered active emails", zap.Int("count", n))
	}
	for {
		if ctx.Err() != nil {
			w.log.Info("email worker stopped")
			return nil
		}

		if _, err := w.queue.PromoteDue(ctx, time.Now()); err != nil && ctx.Err() == nil {
			w.log.Warn("promote delayed emails", zap.Error(err))
		}

		job, ok, err := w.queue.Dequeue(ctx, w.poll)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			w.log.Warn("dequeue email", zap.Error(err))
			sleep(ctx, w.poll)
			continue
		}
		if ok {
			w.Process(ctx, job)
		}
	}
}

// Process makes one delivery attempt for job and acknowledges it once the
// outcome is recorded.
func (w *Worker) Process(ctx context.Context, job email.Job) {
	if w.record(ctx, job) {
		if err := w.queue.Ack(ctx, job); err != nil {
			w.log.Warn("ack email", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
}

// record reports whether the outcome was stored.
func (w *Worker) record(ctx context.Context, job email.Job) bool {
	job.Attempts++
	log := w.log.With(
		zap.String("job_id", job.ID),
		zap.String("type", string(job.Type)),
		zap.Int("attempt", job.Attempts),
	)

	err := w.sender.Send(ctx, job)
	if err == nil {
		metrics.EmailJobsTotal.WithLabelValues("completed").Inc()
		if err := w.queue.MarkCompleted(ctx, job); err != nil {
			log.Warn("mark email completed", zap.Error(err))
		}
		return true
	}

	if job.Attempts >= w.maxAttempts {
		metrics.EmailJobsTotal.WithLabelValues("failed").Inc()
		log.Error("email delivery failed permanently", zap.Error(err))
		if err := w.queue.MarkFailed(ctx, job); err != nil {
			log.Warn("mark email failed", zap.Error(err))
			return false
		}
		return true
	}

	delay := Backoff(w.backoff, job.Attempts)
	metrics.EmailJobsTotal.WithLabelValues("retried").Inc()
	log.Warn("email delivery failed, retrying", zap.Duration("delay", delay), zap.Error(err))
	if err := w.queue.Retry(ctx, job, delay); err != nil {
		log.Error("requeue email", zap.Error(err))
		return false
	}
	return true
}

// Backoff returns base * 2^(attempt-1), never more than an hour.
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if base <= 0 {
		return 0
	}
	d := base
	for i := 1; i < attempt; i++ {
		if d >= maxBackoff/2 {
			return maxBackoff
		}
		d *= 2
	}
	return min(d, maxBackoff)
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
