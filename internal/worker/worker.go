// Package worker bootstraps the background job queue that runs the periodic
// vendor SLA sweep.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/d9705996/hrportal/internal/sla"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
)

// VendorSweepArgs is the job payload for the periodic vendor SLA sweep.
// The sweep re-reads the database, so the payload is empty.
type VendorSweepArgs struct{}

// Kind returns the unique job type identifier for sweep jobs.
func (VendorSweepArgs) Kind() string { return "vendor_sla_sweep" }

type vendorSweepWorker struct {
	river.WorkerDefaults[VendorSweepArgs]
	sweeper *sla.Sweeper
	log     *slog.Logger
}

func (w *vendorSweepWorker) Work(ctx context.Context, _ *river.Job[VendorSweepArgs]) error {
	res, err := w.sweeper.Run(ctx)
	if err != nil {
		return err
	}
	w.log.Info("vendor sla sweep completed", "warnings", res.Warnings, "overdue", res.Overdue)
	return nil
}

// Queue is the interface exposed by both the River-backed client and the
// ticker fallback used with the sqlite driver.
type Queue interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Client wraps river.Client and exposes a Start/Stop lifecycle.
type Client struct {
	client *river.Client[pgx.Tx]
	log    *slog.Logger
}

// Start begins processing queued and periodic jobs.
func (c *Client) Start(ctx context.Context) error { return c.client.Start(ctx) }

// Stop gracefully shuts down the worker client.
func (c *Client) Stop(ctx context.Context) error { return c.client.Stop(ctx) }

// tickerQueue runs the sweep on a plain timer when River is unavailable
// (River requires postgres). Same cadence, no persistence of job history.
type tickerQueue struct {
	sweeper  *sla.Sweeper
	interval time.Duration
	log      *slog.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

func (q *tickerQueue) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	q.cancel = cancel
	q.done = make(chan struct{})
	go func() {
		defer close(q.done)
		ticker := time.NewTicker(q.interval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				if res, err := q.sweeper.Run(runCtx); err != nil {
					q.log.Error("vendor sla sweep failed", "err", err)
				} else {
					q.log.Info("vendor sla sweep completed", "warnings", res.Warnings, "overdue", res.Overdue)
				}
			}
		}
	}()
	return nil
}

func (q *tickerQueue) Stop(_ context.Context) error {
	if q.cancel != nil {
		q.cancel()
		<-q.done
	}
	return nil
}

// New creates a queue implementation appropriate for the given driver.
//   - "postgres": a River client with an hourly periodic sweep job.
//   - anything else: a ticker loop running the same sweep at the same cadence.
//
// pool may be nil when driver != "postgres".
func New(pool *pgxpool.Pool, driver string, concurrency int, interval time.Duration, sweeper *sla.Sweeper, log *slog.Logger) (Queue, error) {
	if driver != "postgres" {
		log.Info("river unavailable on this driver, using ticker fallback", "interval", interval)
		return &tickerQueue{sweeper: sweeper, interval: interval, log: log}, nil
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, &vendorSweepWorker{sweeper: sweeper, log: log})

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: concurrency},
		},
		Workers: workers,
		Logger:  log,
		PeriodicJobs: []*river.PeriodicJob{
			river.NewPeriodicJob(
				river.PeriodicInterval(interval),
				func() (river.JobArgs, *river.InsertOpts) {
					return VendorSweepArgs{}, nil
				},
				&river.PeriodicJobOpts{RunOnStart: true},
			),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create river client: %w", err)
	}
	return &Client{client: client, log: log}, nil
}

// MigrateRiver runs River's built-in schema migrations against the given pool.
// Only call this when DB_DRIVER=postgres.
func MigrateRiver(ctx context.Context, db *pgxpool.Pool) error {
	migrator, err := rivermigrate.New(riverpgxv5.New(db), nil)
	if err != nil {
		return fmt.Errorf("create river migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		return fmt.Errorf("run river migrations: %w", err)
	}
	return nil
}
