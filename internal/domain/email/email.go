// Package email describes transactional email jobs and the queue that carries them.
package email

import (
	"context"
	"time"
)

type JobType string

const (
	JobWelcome       JobType = "welcome"
	JobPasswordReset JobType = "password-reset"
	JobVerification  JobType = "verification"
	JobNotification  JobType = "notification"
)

type Job struct {
	ID        string         `json:"id"`
	Type      JobType        `json:"type"`
	To        []string       `json:"to"`
	Subject   string         `json:"subject"`
	Template  string         `json:"template,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
	HTML      string         `json:"html,omitempty"`
	Text      string         `json:"text,omitempty"`
	Attempts  int            `json:"attempts"`
	CreatedAt time.Time      `json:"createdAt"`

	// Receipt is the stored payload a queue handed out; Ack needs it.
	Receipt string `json:"-"`
}

type JobStatus string

const (
	StatusWaiting   JobStatus = "waiting"
	StatusActive    JobStatus = "active"
	StatusDelayed   JobStatus = "delayed"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

var Statuses = []JobStatus{StatusWaiting, StatusActive, StatusDelayed, StatusCompleted, StatusFailed}

type Stats struct {
	Waiting   int64 `json:"waiting"`
	Active    int64 `json:"active"`
	Delayed   int64 `json:"delayed"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error

	// Dequeue blocks up to timeout; ok is false when nothing arrived.
	// A dequeued job stays active until Ack.
	Dequeue(ctx context.Context, timeout time.Duration) (job Job, ok bool, err error)

	Ack(ctx context.Context, job Job) error

	// Recover puts active jobs left by a previous run back on the wait list.
	Recover(ctx context.Context) (int, error)

	// Retry puts job back after delay.
	Retry(ctx context.Context, job Job, delay time.Duration) error

	// PromoteDue moves delayed jobs whose time has come back to the wait list.
	PromoteDue(ctx context.Context, now time.Time) (int, error)

	MarkCompleted(ctx context.Context, job Job) error

	MarkFailed(ctx context.Context, job Job) error

	Stats(ctx context.Context) (Stats, error)

	// Jobs lists jobs in status between start and end inclusive.
	Jobs(ctx context.Context, status JobStatus, start, end int64) ([]Job, error)

	Job(ctx context.Context, id string) (Job, JobStatus, error)
}

// Sender delivers a single job. Rendering and transport live behind it.
type Sender interface {
	Send(ctx context.Context, job Job) error
}
