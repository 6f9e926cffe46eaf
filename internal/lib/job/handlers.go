package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// handleStatsRefreshTask recomputes and stores the catalog stats.
//
// Returning an error makes Asynq mark the task failed and retry it.
func (j *JobService) handleStatsRefreshTask(ctx context.Context, t *asynq.Task) error {
	var p StatsRefreshPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal stats refresh payload: %w", err)
	}

	j.logger.Info().
		Str("type", TaskStatsRefresh).
		Str("requested_by", p.RequestedBy).
		Msg("processing stats refresh task")

	stats, err := j.refresher.RefreshStats(ctx)
	if err != nil {
		j.logger.Error().
			Str("type", TaskStatsRefresh).
			Err(err).
			Msg("failed to refresh stats")
		return err
	}

	j.logger.Info().
		Str("type", TaskStatsRefresh).
		Int64("total", stats.Total).
		Msg("refreshed stats")

	return nil
}
