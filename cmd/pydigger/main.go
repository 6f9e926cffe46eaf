// Command pydigger serves the PyDigger catalog of PyPI packages.
package main

import (
	"fmt"
	"os"

	"github.com/pydigger/pydigger/internal/config"
	"github.com/pydigger/pydigger/internal/logger"
	"github.com/pydigger/pydigger/internal/repository"
	"github.com/pydigger/pydigger/internal/server"
	"github.com/pydigger/pydigger/internal/service"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

var cfgFile string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "pydigger",
		Short:   "PyDigger - unearthing stuff about Python",
		Long:    `PyDigger serves a browsable catalog of the package metadata collected from PyPI.`,
		Version: Version,

		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (environment variables prefixed with PYDIGGER_ override it)")

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newStatsCommand())

	return rootCmd
}

// app is everything a command needs once the config is loaded.
type app struct {
	cfg           *config.Config
	logger        *zerolog.Logger
	loggerService *logger.LoggerService
	server        *server.Server
	services      *service.Services
}

// bootstrap loads the config and connects to the stores.
func bootstrap() (*app, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		loggerService.Shutdown()
		return nil, fmt.Errorf("failed to initialize server: %w", err)
	}

	repos := repository.NewRepositories(srv)

	services, err := service.NewService(srv, repos)
	if err != nil {
		loggerService.Shutdown()
		return nil, fmt.Errorf("could not create services: %w", err)
	}

	return &app{
		cfg:           cfg,
		logger:        &log,
		loggerService: loggerService,
		server:        srv,
		services:      services,
	}, nil
}
