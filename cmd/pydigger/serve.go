package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pydigger/pydigger/internal/database"
	"github.com/pydigger/pydigger/internal/handler"
	"github.com/pydigger/pydigger/internal/router"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Long: `Run the web server and, when jobs are enabled, the worker that
refreshes the stats cache on schedule. SIGINT or SIGTERM shut both down.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.loggerService.Shutdown()

	if _, err := database.VerifyIndexes(ctx, a.logger, a.server.DB); err != nil {
		a.logger.Warn().Err(err).Msg("could not verify indexes")
	}

	handlers := handler.NewHandlers(a.server, a.services)

	r, err := router.NewRouter(a.server, handlers)
	if err != nil {
		return errors.Join(err, a.server.Shutdown(context.Background()))
	}
	a.server.SetupHTTPServer(r)

	if a.cfg.Jobs.Enabled {
		if a.server.Job == nil {
			a.logger.Warn().Msg("jobs enabled but redis is not configured, stats will not refresh")
		} else if err := a.server.Job.Start(); err != nil {
			return errors.Join(err, a.server.Shutdown(context.Background()))
		}
	}

	eg, egctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return a.server.Start()
	})

	eg.Go(func() error {
		<-egctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(a.cfg.Server.ShutdownTimeout)*time.Second)
		defer cancel()

		a.logger.Info().Msg("shutting down")
		return a.server.Shutdown(shutdownCtx)
	})

	if err := eg.Wait(); err != nil {
		return err
	}

	a.logger.Info().Msg("server exited properly")
	return nil
}
