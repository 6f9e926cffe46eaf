package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newStatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Manage the stats cache",
	}
	cmd.AddCommand(newStatsRefreshCommand())
	return cmd
}

func newStatsRefreshCommand() *cobra.Command {
	var enqueue bool

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Recompute the catalog statistics and store them in the cache",
		Long: `Count the catalog (total, every canned query, last upload) and write the
result to Redis, where the listing and stats pages read it.

With --enqueue the work is handed to the job worker instead.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return refreshStats(cmd, enqueue)
		},
	}

	cmd.Flags().BoolVar(&enqueue, "enqueue", false, "queue a refresh job instead of computing in-process")

	return cmd
}

func refreshStats(cmd *cobra.Command, enqueue bool) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.loggerService.Shutdown()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.server.Shutdown(ctx); err != nil {
			a.logger.Warn().Err(err).Msg("shutdown failed")
		}
	}()

	ctx := cmd.Context()

	if enqueue {
		if a.server.Job == nil {
			return errors.New("redis is not configured, cannot enqueue a job")
		}
		if err := a.server.Job.EnqueueStatsRefresh(ctx, "cli"); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "stats refresh queued")
		return nil
	}

	stats, err := a.services.Stats.RefreshStats(ctx)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "stats refreshed: %d packages, %d canned queries\n", stats.Total, len(stats.Cases))
	return nil
}
