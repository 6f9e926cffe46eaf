package database

import (
	"context"
	"sync"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/event"
)

// chainMonitors merges several command monitors into one.
//
// The driver accepts a single *event.CommandMonitor in the client options.
// This adapter lets us run any combination of:
//   - the slow command logger
//   - the New Relic datastore segment recorder
//   - the local verbose command logger
func chainMonitors(monitors ...*event.CommandMonitor) *event.CommandMonitor {
	return &event.CommandMonitor{
		Started: func(ctx context.Context, evt *event.CommandStartedEvent) {
			for _, m := range monitors {
				if m.Started != nil {
					m.Started(ctx, evt)
				}
			}
		},
		Succeeded: func(ctx context.Context, evt *event.CommandSucceededEvent) {
			for _, m := range monitors {
				if m.Succeeded != nil {
					m.Succeeded(ctx, evt)
				}
			}
		},
		Failed: func(ctx context.Context, evt *event.CommandFailedEvent) {
			for _, m := range monitors {
				if m.Failed != nil {
					m.Failed(ctx, evt)
				}
			}
		},
	}
}

// newSlowCommandMonitor warns about commands slower than threshold and
// about every failed command.
func newSlowCommandMonitor(logger *zerolog.Logger, threshold time.Duration) *event.CommandMonitor {
	return &event.CommandMonitor{
		Succeeded: func(_ context.Context, evt *event.CommandSucceededEvent) {
			if evt.Duration < threshold {
				return
			}
			logger.Warn().
				Str("command", evt.CommandName).
				Str("database", evt.DatabaseName).
				Int64("request_id", evt.RequestID).
				Dur("duration", evt.Duration).
				Dur("threshold", threshold).
				Msg("slow database command")
		},
		Failed: func(_ context.Context, evt *event.CommandFailedEvent) {
			logger.Warn().
				Str("command", evt.CommandName).
				Str("database", evt.DatabaseName).
				Int64("request_id", evt.RequestID).
				Dur("duration", evt.Duration).
				Str("failure", evt.Failure).
				Msg("database command failed")
		},
	}
}

// newCommandLogMonitor logs every command with its full document.
// Only wired in the "local" environment.
func newCommandLogMonitor(logger *zerolog.Logger) *event.CommandMonitor {
	return &event.CommandMonitor{
		Started: func(_ context.Context, evt *event.CommandStartedEvent) {
			logger.Debug().
				Str("command", evt.CommandName).
				Int64("request_id", evt.RequestID).
				Str("document", evt.Command.String()).
				Msg("started")
		},
		Succeeded: func(_ context.Context, evt *event.CommandSucceededEvent) {
			logger.Debug().
				Str("command", evt.CommandName).
				Int64("request_id", evt.RequestID).
				Dur("duration", evt.Duration).
				Msg("succeeded")
		},
		Failed: func(_ context.Context, evt *event.CommandFailedEvent) {
			logger.Error().
				Str("command", evt.CommandName).
				Int64("request_id", evt.RequestID).
				Dur("duration", evt.Duration).
				Str("failure", evt.Failure).
				Msg("failed")
		},
	}
}

// newTracingMonitor records a New Relic datastore segment per command.
//
// Segments are only started when the command context carries a transaction
// (i.e. the command runs inside an instrumented request). They are keyed by
// the driver request id until the command finishes.
func newTracingMonitor() *event.CommandMonitor {
	var segments sync.Map

	end := func(requestID int64) {
		if seg, ok := segments.LoadAndDelete(requestID); ok {
			seg.(*newrelic.DatastoreSegment).End()
		}
	}

	return &event.CommandMonitor{
		Started: func(ctx context.Context, evt *event.CommandStartedEvent) {
			txn := newrelic.FromContext(ctx)
			if txn == nil {
				return
			}

			collection, _ := evt.Command.Lookup(evt.CommandName).StringValueOK()

			segments.Store(evt.RequestID, &newrelic.DatastoreSegment{
				StartTime:    txn.StartSegmentNow(),
				Product:      newrelic.DatastoreMongoDB,
				Collection:   collection,
				Operation:    evt.CommandName,
				DatabaseName: evt.DatabaseName,
			})
		},
		Succeeded: func(_ context.Context, evt *event.CommandSucceededEvent) {
			end(evt.RequestID)
		},
		Failed: func(_ context.Context, evt *event.CommandFailedEvent) {
			end(evt.RequestID)
		},
	}
}
