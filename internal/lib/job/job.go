// Package job provides background job processing using Asynq.
//
// Asynq is a Redis-backed job queue:
//   - You enqueue tasks (producer) using asynq.Client.
//   - A server runs workers that process those tasks (consumer) using asynq.Server.
//   - A scheduler enqueues periodic tasks (the stats refresh) on a cron spec.
package job

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/pydigger/pydigger/internal/config"
	"github.com/pydigger/pydigger/internal/model"
	"github.com/rs/zerolog"
)

// StatsRefresher recomputes the catalog stats and stores them in the cache.
type StatsRefresher interface {
	RefreshStats(ctx context.Context) (*model.Stats, error)
}

// JobService holds the Asynq client (enqueue), server (worker execution)
// and scheduler (periodic enqueue).
type JobService struct {
	// Client is used to enqueue tasks into Redis.
	Client *asynq.Client

	server    *asynq.Server
	scheduler *asynq.Scheduler
	schedule  string

	refresher StatsRefresher
	started   bool
	logger    *zerolog.Logger
}

// NewJobService creates a JobService configured to use Redis from cfg.
//
// Queue weights give "critical" tasks a larger share of the workers.
// The stats refresh runs on "default".
func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Jobs.Concurrency,
		Queues: map[string]int{
			"critical": 6,
			"default":  3,
			"low":      1,
		},
	})

	return &JobService{
		Client:    asynq.NewClient(redisOpt),
		server:    server,
		scheduler: asynq.NewScheduler(redisOpt, nil),
		schedule:  cfg.Jobs.StatsRefresh,
		logger:    logger,
	}
}

// InitHandlers sets the dependencies used by the task handlers.
// It must be called before Start.
func (j *JobService) InitHandlers(refresher StatsRefresher) {
	j.refresher = refresher
}

// Start registers the task handlers, starts the worker server and
// registers the periodic stats refresh with the scheduler.
//
// Both asynq.Server.Start and asynq.Scheduler.Start return once the
// background goroutines are running.
func (j *JobService) Start() error {
	if j.refresher == nil {
		return errors.New("job handlers not initialized")
	}

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskStatsRefresh, j.handleStatsRefreshTask)

	j.logger.Info().Msg("starting background job server")
	if err := j.server.Start(mux); err != nil {
		return fmt.Errorf("starting job server: %w", err)
	}

	task, err := NewStatsRefreshTask("scheduler")
	if err != nil {
		j.server.Shutdown()
		return err
	}

	entryID, err := j.scheduler.Register(j.schedule, task)
	if err != nil {
		j.server.Shutdown()
		return fmt.Errorf("registering stats refresh schedule %q: %w", j.schedule, err)
	}

	if err := j.scheduler.Start(); err != nil {
		j.server.Shutdown()
		return fmt.Errorf("starting job scheduler: %w", err)
	}
	j.started = true

	j.logger.Info().
		Str("entry_id", entryID).
		Str("schedule", j.schedule).
		Msg("scheduled stats refresh")

	return nil
}

// EnqueueStatsRefresh pushes one stats refresh task.
//
// A refresh that is already queued is not duplicated; that case is
// reported as success.
func (j *JobService) EnqueueStatsRefresh(ctx context.Context, requestedBy string) error {
	task, err := NewStatsRefreshTask(requestedBy)
	if err != nil {
		return err
	}

	info, err := j.Client.EnqueueContext(ctx, task)
	if err != nil {
		if errors.Is(err, asynq.ErrDuplicateTask) {
			j.logger.Info().Msg("stats refresh already queued")
			return nil
		}
		return fmt.Errorf("enqueueing stats refresh: %w", err)
	}

	j.logger.Info().
		Str("task_id", info.ID).
		Str("queue", info.Queue).
		Msg("enqueued stats refresh")

	return nil
}

// Stop gracefully stops the scheduler and the workers, if they were
// started, and closes the client.
func (j *JobService) Stop() {
	if j.started {
		j.logger.Info().Msg("stopping background job server")
		j.scheduler.Shutdown()
		j.server.Shutdown()
		j.started = false
	}
	if err := j.Client.Close(); err != nil {
		j.logger.Error().Err(err).Msg("failed to close job client")
	}
}
