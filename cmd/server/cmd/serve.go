package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/questboard/server/internal/chat"
	"github.com/questboard/server/internal/config"
	"github.com/questboard/server/internal/domain/events"
	"github.com/questboard/server/internal/domain/rooms"
	"github.com/questboard/server/internal/jobs"
	"github.com/questboard/server/internal/metrics"
	"github.com/questboard/server/internal/storage"
	"github.com/questboard/server/internal/storage/postgres"
)

var (
	serverHost string
	serverPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the scheduling engine",
	Long: `Start the scheduling engine: restore the event mirror from Postgres, run
the notification scheduler as a periodic background job, and expose metrics
and health endpoints.

Examples:
  # Start with default configuration (from env vars)
  server serve

  # Start on a specific ops host and port
  server serve --host 127.0.0.1 --port 9090`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "", "ops listener host (default: 0.0.0.0)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "ops listener port (default: 8080)")
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Str("version", Version).Msg("starting questboard server")

	zone, err := cfg.Display.Location()
	if err != nil {
		return err
	}

	poolCtx, poolCancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := pgxpool.New(poolCtx, cfg.Database.URL)
	poolCancel()
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()

	store, err := postgres.NewStore(pool)
	if err != nil {
		return err
	}

	loadCtx, loadCancel := context.WithTimeout(context.Background(), 30*time.Second)
	repo, err := storage.NewCachedRepository(loadCtx, store, logger)
	loadCancel()
	if err != nil {
		return fmt.Errorf("restore mirror: %w", err)
	}
	defer repo.Close()

	// The platform adapter is wired here; the stub keeps the engine
	// runnable headless.
	chatSvc := chat.NewStub(logger)

	provisioner := rooms.NewProvisioner(chatSvc, logger)
	board := events.NewBoardPublisher(repo, chatSvc, zone, logger)
	svc := events.NewService(repo, provisioner, board, chatSvc, zone, logger)
	notifier := jobs.NewNotifier(repo, svc, chatSvc, zone, cfg.Scheduler.GraceWindow, logger)

	riverClient, err := jobs.NewClient(pool, notifier, cfg.Scheduler.Interval,
		slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn})))
	if err != nil {
		return fmt.Errorf("job client: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := riverClient.Start(ctx); err != nil {
		return fmt.Errorf("start job client: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, `{"status":"ok"}`)
	})
	opsServer := &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler: mux,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info().Str("addr", opsServer.Addr).Msg("ops listener started")
		if err := opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := opsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("ops listener shutdown failed")
		}
		if err := riverClient.Stop(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("job client shutdown failed")
		}
		if err := repo.Flush(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("flush on shutdown failed")
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	return cfg, nil
}
