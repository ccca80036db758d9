package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sanverite/wildlife-sightings/internal/api"
	"github.com/sanverite/wildlife-sightings/internal/config"
	"github.com/sanverite/wildlife-sightings/internal/loader"
)

var (
	// Global flags
	configPath string
	verbose    bool
	listenAddr string
	dataPath   string

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:          "sightings",
	Short:        "Read-only HTTP API over a wildlife sightings data file",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if listenAddr != "" {
			cfg.Server.Addr = listenAddr
		}
		if dataPath != "" {
			cfg.Data.Path = dataPath
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		logger, err = newLogger(cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server (default)",
	RunE:  runServe,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Load the data file once and report the record count",
	RunE:  runCheck,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "sightings.yaml", "YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "Sightings data file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&listenAddr, "listen", "", "HTTP listen address (overrides config)")

	rootCmd.AddCommand(serveCmd, checkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runServe starts the API and blocks until SIGINT/SIGTERM.
func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := api.NewServer(loader.New(cfg.Data.Path, logger), api.ServerOptions{
		Addr:              cfg.Server.Addr,
		StaticDir:         cfg.Server.StaticDir,
		ReadTimeout:       cfg.GetReadTimeout(),
		ReadHeaderTimeout: cfg.GetReadHeaderTimeout(),
		WriteTimeout:      cfg.GetWriteTimeout(),
		IdleTimeout:       cfg.GetIdleTimeout(),
		ShutdownTimeout:   cfg.GetShutdownTimeout(),
		Development:       cfg.IsDevelopment(),
		Logger:            logger,
	})

	logger.Info("starting sightings API",
		zap.String("addr", srv.Addr()),
		zap.String("data", cfg.Data.Path),
		zap.String("environment", cfg.Environment))

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// runCheck loads the data file once.
func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	l := loader.New(cfg.Data.Path, logger)
	records, err := l.Load(ctx)
	if err != nil {
		return fmt.Errorf("check failed (%s): %w", loader.KindOf(err), err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d sightings\n", l.Path(), len(records))
	return nil
}
