package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"cinema-reservation/cmd"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/inventory"
	"cinema-reservation/internal/usecase"
	"cinema-reservation/internal/wire"
	"cinema-reservation/pkg/cache"
	"cinema-reservation/pkg/database"
	"cinema-reservation/pkg/queue"
	"cinema-reservation/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", ".env", "path to the env config file")
	flag.Parse()

	config, err := utils.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := config.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger, err := utils.InitLogger(config.App)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer func() { _ = logger.Sync() }()

	if err := run(config, logger); err != nil {
		logger.Error("Application stopped with error", zap.Error(err))
		os.Exit(1)
	}
}

func run(config *utils.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.String("store", config.Store.Driver),
		zap.String("broker", config.Broker.Kind),
		zap.Bool("debug", config.App.Debug),
	)

	var repos *repository.Repository
	switch config.Store.Driver {
	case utils.StorePostgres:
		db, err := database.InitDB(ctx, config.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		logger.Info("Database connected successfully")
		repos = repository.NewRepository(db, logger)
	default:
		repos = repository.NewMemoryRepository(logger)
	}

	showtimeCache := cache.NewNopShowtimeCache()
	if config.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, config.Redis)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		showtimeCache = cache.NewRedisShowtimeCache(client, config.Redis.TTL, logger)
		logger.Info("Redis connected", zap.String("addr", config.Redis.Addr))
	}

	publisher, err := newPublisher(config.Broker, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("Failed to close event publisher", zap.Error(err))
		}
	}()

	inv := inventory.New(logger)
	service := usecase.NewService(repos, showtimeCache, inv, publisher, utils.SystemClock(), logger)

	if err := service.Showtime.LoadInventory(ctx); err != nil {
		return err
	}
	if config.SeedDemo {
		if err := service.Showtime.SeedDemo(ctx); err != nil {
			return err
		}
	}

	reaper := usecase.NewReaper(service.Lifecycle, repos.Booking, utils.SystemClock(),
		config.Reaper.Interval, config.Reaper.BatchSize, logger)
	reaper.Start(ctx)
	defer reaper.Stop()

	app := wire.Wiring(service, config, logger)

	return cmd.APIServer(ctx, app.Router, config.App.Port, logger)
}

func newPublisher(config utils.BrokerConfig, logger *zap.Logger) (queue.Publisher, error) {
	switch config.Kind {
	case utils.BrokerRabbitMQ:
		return queue.NewAMQPPublisher(config.RabbitMQURL, config.RabbitMQQueue, logger)
	case utils.BrokerKafka:
		return queue.NewKafkaPublisher(config.KafkaBrokers, config.KafkaTopic, logger)
	default:
		return queue.NewNopPublisher(), nil
	}
}
