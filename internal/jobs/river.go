package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivertype"
)

const JobKindNotifyDue = "notify_due_events"

// DefaultScanInterval is how often the notification pass runs.
const DefaultScanInterval = 30 * time.Second

type NotifyDueArgs struct{}

func (NotifyDueArgs) Kind() string { return JobKindNotifyDue }

func (NotifyDueArgs) InsertOpts() river.InsertOpts {
	// One attempt per tick; the next periodic insert is the retry.
	return river.InsertOpts{MaxAttempts: 1}
}

// NotifyDueWorker drives the scheduler pass from the job queue.
type NotifyDueWorker struct {
	river.WorkerDefaults[NotifyDueArgs]
	Notifier *Notifier
}

func (NotifyDueWorker) Kind() string { return JobKindNotifyDue }

func (w *NotifyDueWorker) Work(ctx context.Context, job *river.Job[NotifyDueArgs]) error {
	if w.Notifier == nil {
		return fmt.Errorf("notifier not configured")
	}
	return w.Notifier.RunPass(ctx, time.Now().UTC())
}

// tickRetryPolicy never reschedules a failed scan; a fresh one arrives on
// the next periodic insert anyway.
type tickRetryPolicy struct{}

func (tickRetryPolicy) NextRetry(job *rivertype.JobRow) time.Time {
	return time.Now()
}

// NewClient builds the River client with the notify periodic job attached.
func NewClient(pool *pgxpool.Pool, notifier *Notifier, interval time.Duration, logger *slog.Logger) (*river.Client[pgx.Tx], error) {
	if interval <= 0 {
		interval = DefaultScanInterval
	}

	workers := river.NewWorkers()
	river.AddWorker[NotifyDueArgs](workers, &NotifyDueWorker{Notifier: notifier})

	config := &river.Config{
		Workers:     workers,
		MaxAttempts: 1,
		RetryPolicy: tickRetryPolicy{},
		Queues: map[string]river.QueueConfig{
			// A single worker keeps passes from overlapping.
			river.QueueDefault: {MaxWorkers: 1},
		},
		PeriodicJobs: []*river.PeriodicJob{
			river.NewPeriodicJob(
				river.PeriodicInterval(interval),
				func() (river.JobArgs, *river.InsertOpts) {
					return NotifyDueArgs{}, nil
				},
				&river.PeriodicJobOpts{RunOnStart: true},
			),
		},
	}
	if logger != nil {
		config.Logger = logger
	}

	return river.NewClient(riverpgxv5.New(pool), config)
}
