// Package redis carries email jobs on Redis: a wait list consumed with BLMOVE
// into a processing list, a sorted set of delayed retries scored by due time,
// outcome counters and bounded histories of finished jobs.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	customErrors "github.com/Miraines/rbac-auth-service/internal/domain/auth/errors"
	"github.com/Miraines/rbac-auth-service/internal/domain/email"
	"github.com/redis/go-redis/v9"
)

const (
	promoteBatch = 100
	history      = 100
)

type EmailQueue struct {
	client redis.UniversalClient

	waitKey       string
	processingKey string
	delayedKey    string
	completedKey  string
	failedKey     string
	completedJobs string
	failedJobs    string
}

func NewEmailQueue(client redis.UniversalClient, name string) *EmailQueue {
	if name == "" {
		name = "email"
	}
	prefix := "queue:" + name + ":"
	return &EmailQueue{
		client:        client,
		waitKey:       prefix + "wait",
		processingKey: prefix + "processing",
		delayedKey:    prefix + "delayed",
		completedKey:  prefix + "completed",
		failedKey:     prefix + "failed",
		completedJobs: prefix + "completed:jobs",
		failedJobs:    prefix + "failed:jobs",
	}
}

func (q *EmailQueue) Enqueue(ctx context.Context, job email.Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return customErrors.WrapInternal(err, "encode email job")
	}
	if err := q.client.LPush(ctx, q.waitKey, payload).Err(); err != nil {
		return customErrors.WrapInternal(err, "enqueue email job")
	}
	return nil
}

// Dequeue moves the oldest waiting job to the processing list. The job stays
// there until Ack, so a crashed worker leaves it for Recover.
func (q *EmailQueue) Dequeue(ctx context.Context, timeout time.Duration) (email.Job, bool, error) {
	raw, err := q.client.BLMove(ctx, q.waitKey, q.processingKey, "RIGHT", "LEFT", timeout).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return email.Job{}, false, nil
	case err != nil:
		return email.Job{}, false, err
	}

	var job email.Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		if ferr := q.bury(ctx, raw); ferr != nil {
			return email.Job{}, false, customErrors.WrapInternal(ferr, "bury undecodable email job")
		}
		return email.Job{}, false, customErrors.WrapInternal(err, "decode email job")
	}
	job.Receipt = raw
	return job, true, nil
}

// bury moves an undecodable payload from processing to the failed history.
func (q *EmailQueue) bury(ctx context.Context, raw string) error {
	pipe := q.client.TxPipeline()
	pipe.LRem(ctx, q.processingKey, 1, raw)
	pipe.Incr(ctx, q.failedKey)
	pipe.LPush(ctx, q.failedJobs, raw)
	pipe.LTrim(ctx, q.failedJobs, 0, history-1)
	_, err := pipe.Exec(ctx)
	return err
}

// Ack drops the dequeued payload from the processing list.
func (q *EmailQueue) Ack(ctx context.Context, job email.Job) error {
	if job.Receipt == "" {
		return nil
	}
	return q.client.LRem(ctx, q.processingKey, 1, job.Receipt).Err()
}

// Recover returns everything left in the processing list to the wait list.
// Call it before workers start consuming.
func (q *EmailQueue) Recover(ctx context.Context) (int, error) {
	moved := 0
	for {
		err := q.client.LMove(ctx, q.processingKey, q.waitKey, "LEFT", "RIGHT").Err()
		if errors.Is(err, redis.Nil) {
			return moved, nil
		}
		if err != nil {
			return moved, err
		}
		moved++
	}
}

func (q *EmailQueue) Retry(ctx context.Context, job email.Job, delay time.Duration) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return customErrors.WrapInternal(err, "encode email job")
	}
	due := time.Now().Add(delay).UnixMilli()
	return q.client.ZAdd(ctx, q.delayedKey, redis.Z{Score: float64(due), Member: payload}).Err()
}

// PromoteDue moves due jobs back to the wait list. ZREM decides which worker
// moves a job, so concurrent promoters never duplicate it.
func (q *EmailQueue) PromoteDue(ctx context.Context, now time.Time) (int, error) {
	due, err := q.client.ZRangeByScore(ctx, q.delayedKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.UnixMilli(), 10),
		Count: promoteBatch,
	}).Result()
	if err != nil {
		return 0, err
	}

	moved := 0
	for _, member := range due {
		removed, err := q.client.ZRem(ctx, q.delayedKey, member).Result()
		if err != nil {
			return moved, err
		}
		if removed == 0 {
			continue
		}
		if err := q.client.LPush(ctx, q.waitKey, member).Err(); err != nil {
			return moved, err
		}
		moved++
	}
	return moved, nil
}

func (q *EmailQueue) MarkCompleted(ctx context.Context, job email.Job) error {
	return q.finish(ctx, job, q.completedKey, q.completedJobs)
}

func (q *EmailQueue) MarkFailed(ctx context.Context, job email.Job) error {
	return q.finish(ctx, job, q.failedKey, q.failedJobs)
}

// finish counts the job and keeps the most recent ones for inspection.
func (q *EmailQueue) finish(ctx context.Context, job email.Job, counterKey, listKey string) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return customErrors.WrapInternal(err, "encode email job")
	}
	pipe := q.client.Pipeline()
	pipe.Incr(ctx, counterKey)
	pipe.LPush(ctx, listKey, payload)
	pipe.LTrim(ctx, listKey, 0, history-1)
	_, err = pipe.Exec(ctx)
	return err
}

func (q *EmailQueue) Stats(ctx context.Context) (email.Stats, error) {
	pipe := q.client.Pipeline()
	waiting := pipe.LLen(ctx, q.waitKey)
	active := pipe.LLen(ctx, q.processingKey)
	delayed := pipe.ZCard(ctx, q.delayedKey)
	completed := pipe.Get(ctx, q.completedKey)
	failed := pipe.Get(ctx, q.failedKey)
	_, _ = pipe.Exec(ctx)

	for _, cmd := range []redis.Cmder{waiting, active, delayed, completed, failed} {
		if err := cmd.Err(); err != nil && !errors.Is(err, redis.Nil) {
			return email.Stats{}, customErrors.WrapInternal(err, "queue stats")
		}
	}

	return email.Stats{
		Waiting:   waiting.Val(),
		Active:    active.Val(),
		Delayed:   delayed.Val(),
		Completed: counter(completed),
		Failed:    counter(failed),
	}, nil
}

// Jobs lists jobs in one state between start and end inclusive. Waiting,
// active, completed and failed lists run newest first; delayed jobs run by
// due time. Entries that do not decode are skipped.
func (q *EmailQueue) Jobs(ctx context.Context, status email.JobStatus, start, end int64) ([]email.Job, error) {
	var (
		raw []string
		err error
	)
	if status == email.StatusDelayed {
		raw, err = q.client.ZRange(ctx, q.delayedKey, start, end).Result()
	} else {
		key, ok := q.listKey(status)
		if !ok {
			return nil, customErrors.NewInvalidArgument("unknown job status " + strconv.Quote(string(status)))
		}
		raw, err = q.client.LRange(ctx, key, start, end).Result()
	}
	if err != nil {
		return nil, customErrors.WrapInternal(err, "list email jobs")
	}
	return decodeAll(raw), nil
}

// Job finds a job by id across every state.
func (q *EmailQueue) Job(ctx context.Context, id string) (email.Job, email.JobStatus, error) {
	for _, status := range email.Statuses {
		jobs, err := q.Jobs(ctx, status, 0, -1)
		if err != nil {
			return email.Job{}, "", err
		}
		for _, j := range jobs {
			if j.ID == id {
				return j, status, nil
			}
		}
	}
	return email.Job{}, "", customErrors.NewNotFound("email job " + id)
}

func (q *EmailQueue) listKey(status email.JobStatus) (string, bool) {
	switch status {
	case email.StatusWaiting:
		return q.waitKey, true
	case email.StatusActive:
		return q.processingKey, true
	case email.StatusCompleted:
		return q.completedJobs, true
	case email.StatusFailed:
		return q.failedJobs, true
	}
	return "", false
}

func decodeAll(raw []string) []email.Job {
	jobs := make([]email.Job, 0, len(raw))
	for _, r := range raw {
		var j email.Job
		if err := json.Unmarshal([]byte(r), &j); err != nil {
			continue
		}
		jobs = append(jobs, j)
	}
	return jobs
}

func counter(cmd *redis.StringCmd) int64 {
	n, err := cmd.Int64()
	if err != nil {
		return 0
	}
	return n
}
