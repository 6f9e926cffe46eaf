package job

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// TaskStatsRefresh is the task type name stored in Redis.
	TaskStatsRefresh = "stats:refresh"
)

// StatsRefreshPayload is the JSON payload of the stats refresh task.
type StatsRefreshPayload struct {
	// RequestedBy records who asked for the refresh ("scheduler", "cli").
	RequestedBy string `json:"requested_by"`
}

// NewStatsRefreshTask constructs the stats refresh task.
//
// Options:
//   - MaxRetry(3): retry up to 3 times on failure
//   - Queue("default")
//   - Timeout(5m): counting every canned query can take a while on a large catalog
//   - Unique(10m): at most one pending refresh at a time
func NewStatsRefreshTask(requestedBy string) (*asynq.Task, error) {
	payload, err := json.Marshal(StatsRefreshPayload{RequestedBy: requestedBy})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskStatsRefresh,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue("default"),
		asynq.Timeout(5*time.Minute),
		asynq.Unique(10*time.Minute),
	), nil
}
