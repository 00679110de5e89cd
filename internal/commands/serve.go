package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"grocery/internal/config"
	"grocery/internal/database"
	"grocery/internal/events"
	"grocery/internal/server"
	"grocery/pkg/cache"
	"grocery/pkg/kafkabus"
	"grocery/pkg/rabbitmq"
	"grocery/pkg/storage"
)

const shutdownTimeout = 10 * time.Second

var autoMigrate bool

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the order event consumers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", true, "Migrate the database schema before serving")
	rootCmd.AddCommand(serveCmd)
}

func newBus(cfg *config.Config) (events.Bus, error) {
	switch cfg.EventBroker {
	case "rabbitmq":
		client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue})
		if err != nil {
			return nil, err
		}
		return events.NewRabbitMQ(client), nil
	case "kafka":
		return events.NewKafka(kafkabus.Config{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic, GroupID: cfg.KafkaGroup}), nil
	case "direct", "":
		return events.NewDirect(), nil
	}
	return nil, fmt.Errorf("unknown EVENT_BROKER %q (want rabbitmq, kafka or direct)", cfg.EventBroker)
}

func newCache(ctx context.Context, cfg *config.Config) (cache.Store, func(), error) {
	if cfg.RedisAddr == "" {
		log.Warn().Msg("REDIS_ADDR is not set, using the in-process cache")
		return cache.NewMemory(), func() {}, nil
	}
	rdb, err := cache.NewRedis(ctx, cache.RedisConfig{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		return nil, nil, err
	}
	return rdb, func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing redis")
		}
	}, nil
}

func runServe() error {
	cfg, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer closeDB(db)

	if autoMigrate {
		if err := database.Migrate(db); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeCache, err := newCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	bus, err := newBus(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := bus.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing event bus")
		}
	}()

	srv := server.New(server.Options{
		Config:    cfg,
		DB:        db,
		Cache:     store,
		Images:    storage.NewImageStore(cfg.UploadDir, cfg.PublicBaseURL),
		Events:    bus,
		AccessLog: true,
	})
	if err := srv.StartConsumers(ctx); err != nil {
		return fmt.Errorf("failed to start event consumers: %w", err)
	}

	listenErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.AppPort).Str("broker", cfg.EventBroker).Msg("starting server")
		listenErr <- srv.App.Listen(cfg.AppPort)
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	if err := srv.App.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("server gracefully stopped")
	return nil
}
