package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/meikuraledutech/cpm"
	"github.com/meikuraledutech/cpm/internal/config"
	"github.com/meikuraledutech/cpm/internal/events"
	"github.com/meikuraledutech/cpm/internal/logging"
	"github.com/meikuraledutech/cpm/memory"
	"github.com/meikuraledutech/cpm/postgres"
	"github.com/meikuraledutech/cpm/server"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the project API over HTTP",
	Long: `Serve starts the HTTP API on server.address.

Projects are stored in PostgreSQL when database.url is set and in memory
otherwise. When kafka.brokers is set, every recomputation is published to
kafka.topic.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.address)")
	addAnalysisFlags(serveCmd)
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Address = addr
	}

	log, err := logging.NewLogger(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer log.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	var publisher events.Publisher = events.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		log.Info("publishing analysis events", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}
	defer publisher.Close()

	srv := server.New(server.Config{
		Store:     store,
		Options:   opts,
		Publisher: publisher,
		Logger:    log,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Listen(cfg.Server.Address) }()
	log.Info("server started", "address", cfg.Server.Address, "mode", string(opts.Mode), "unresolved", string(opts.Unresolved))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore connects to PostgreSQL when configured and falls back to memory.
func openStore(ctx context.Context, cfg *config.Config, log *logging.Logger) (cpm.Store, func(), error) {
	if cfg.Database.URL == "" {
		log.Warn("database.url not set, projects are kept in memory")
		return memory.New(), func() {}, nil
	}

	pool, err := connect(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	store := postgres.New(pool)
	if cfg.Database.AutoMigrate {
		if err := store.CreateSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return store, pool.Close, nil
}

func connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}
