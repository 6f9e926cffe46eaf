// Package database contains the logic for establishing
// the connection to the MongoDB server that holds the catalog.
//
// It handles:
//   - building the client options from config (URI, pool size, timeouts)
//   - wiring command monitoring (slow command logging, local command logging,
//     optional New Relic datastore segments)
//   - pinging the server at startup so the app fails fast
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/pydigger/pydigger/internal/config"
	loggerConfig "github.com/pydigger/pydigger/internal/logger"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Database wraps the MongoDB client and the catalog database handle.
//
// Client is the shared, pooled client. It is safe for concurrent use.
// DB is the configured database; Packages is the read-only package collection.
type Database struct {
	Client   *mongo.Client
	DB       *mongo.Database
	Packages *mongo.Collection
	log      *zerolog.Logger
}

// DatabasePingTimeout is the number of seconds to wait for the startup ping
// before considering the server "unreachable".
const DatabasePingTimeout = 10

// New connects to MongoDB with instrumentation.
//
// Inputs:
//   - cfg: application config (URI, database, collection, pool settings)
//   - logger: main app logger
//   - loggerService: optional New Relic service (nil if not configured)
//
// Behavior:
//   - Slow commands above the configured threshold are always logged
//   - New Relic datastore segments are recorded when New Relic is enabled
//   - In local env every command is logged on a dedicated console logger
//   - The client is pinged before New returns
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	var monitors []*event.CommandMonitor

	if threshold := cfg.Observability.Logging.SlowQueryThreshold; threshold > 0 {
		monitors = append(monitors, newSlowCommandMonitor(logger, threshold))
	}

	if loggerService.GetApplication() != nil {
		monitors = append(monitors, newTracingMonitor())
	}

	if cfg.Primary.Env == "local" {
		storeLogger := loggerConfig.NewStoreLogger(logger.GetLevel())
		monitors = append(monitors, newCommandLogMonitor(&storeLogger))
	}

	opts := options.Client().
		ApplyURI(cfg.Database.URI).
		SetMaxPoolSize(cfg.Database.MaxPoolSize).
		SetConnectTimeout(time.Duration(cfg.Database.ConnectTimeout) * time.Second).
		SetAppName(cfg.Observability.ServiceName)

	if len(monitors) > 0 {
		opts.SetMonitor(chainMonitors(monitors...))
	}

	client, err := mongo.Connect(context.Background(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	db := client.Database(cfg.Database.Name)
	database := &Database{
		Client:   client,
		DB:       db,
		Packages: db.Collection(cfg.Database.Collection),
		log:      logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), DatabasePingTimeout*time.Second)
	defer cancel()
	if err = database.Ping(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().
		Str("database", cfg.Database.Name).
		Str("collection", cfg.Database.Collection).
		Msg("connected to the database")

	return database, nil
}

// Ping checks that the primary is reachable.
func (db *Database) Ping(ctx context.Context) error {
	return db.Client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client, waiting for in-flight operations until ctx is done.
func (db *Database) Close(ctx context.Context) error {
	db.log.Info().Msg("closing database connection")
	return db.Client.Disconnect(ctx)
}
