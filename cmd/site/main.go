package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"privatechef/internal/api"
	"privatechef/internal/config"
	"privatechef/internal/domain"
	"privatechef/internal/events"
	"privatechef/internal/genai"
	"privatechef/internal/google"
	"privatechef/internal/identity"
	"privatechef/internal/logging"
	"privatechef/internal/metrics"
	"privatechef/internal/models"
	"privatechef/internal/relay"
	"privatechef/internal/repository"
	"privatechef/internal/service"
	"privatechef/internal/store"
	"privatechef/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	catalog, err := loadCatalog(cfg.CatalogPath, &logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer func() { _ = repository.Close(redisClient) }()
	}

	states := initStateRepository(cfg, redisClient, &logger)

	reservationStore, closeStore := initStore(ctx, cfg, &logger)
	defer closeStore()

	bus := events.NewEventBus()
	initMirror(ctx, cfg, bus, redisClient, &logger)
	initNotifier(cfg, bus, &logger)

	httpClient := &http.Client{}
	relayClient := relay.NewClient(cfg.Relay.Endpoint, httpClient, component(&logger, "relay"))

	var generator domain.TextGenerator
	if cfg.GenAI.APIKey != "" {
		generator = genai.NewClient(cfg.GenAI.Endpoint, cfg.GenAI.Model, cfg.GenAI.APIKey, httpClient, component(&logger, "genai"))
	} else {
		logger.Warn().Msg("genai api key not set, assistant tools disabled")
	}

	var bootstrapper domain.IdentityBootstrapper
	if cfg.IdentityConfigured() {
		provider := identity.NewProvider(cfg.Firebase.IdentityEndpoint, cfg.Firebase.APIKey, httpClient, component(&logger, "identity"))
		bootstrapper = identity.NewBootstrapper(provider, cfg.Firebase.InitialAuthToken)
	} else {
		logger.Warn().Msg("identity provider not configured, pages stay in loading state")
	}

	inflightTTL := time.Duration(cfg.Session.InflightTTLSeconds) * time.Second
	pages := service.NewPageService(
		service.NewSessionService(states, bootstrapper, component(&logger, "session")),
		service.NewReservationService(reservationStore, bus, component(&logger, "reservation")),
		service.NewContactService(relayClient, bus, component(&logger, "contact")),
		service.NewAssistantService(generator, states, inflightTTL, component(&logger, "assistant")),
	)

	httpServer := api.NewHTTPServer(cfg, pages, catalog, &logger)

	var grpcServer *api.GRPCServer
	if cfg.GRPC.Enabled {
		grpcServer, err = api.NewGRPCServer(cfg, &logger)
		if err != nil {
			logger.Error().Err(err).Msg("create grpc server")
			return err
		}
	}

	startMetrics(ctx, cfg, &logger)

	return startServers(ctx, grpcServer, httpServer, cfg, &logger)
}

func component(logger *zerolog.Logger, name string) *zerolog.Logger {
	return logging.Component(logger, name)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "site-main").Logger()

	return cfg, logger, closer, nil
}

// loadCatalog reads the services list and chef bio. A missing file falls
// back to the built-in catalog.
func loadCatalog(path string, logger *zerolog.Logger) (models.Catalog, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn().Str("catalog_path", path).Msg("catalog not found, using defaults")
		return models.DefaultCatalog(), nil
	}
	if err != nil {
		logger.Error().Err(err).Str("catalog_path", path).Msg("read catalog")
		return models.Catalog{}, err
	}

	catalog := models.DefaultCatalog()
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		logger.Error().Err(err).Str("catalog_path", path).Msg("parse catalog")
		return models.Catalog{}, err
	}
	return catalog, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(context.Background(), redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = repository.Close(redisClient)
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

func initStateRepository(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) domain.PageStateRepository {
	ttl := time.Duration(cfg.Session.TTLMinutes) * time.Minute
	memory := repository.NewMemoryStateRepository(ttl)
	if redisClient == nil {
		return memory
	}
	primary := repository.NewRedisStateRepository(redisClient, ttl)
	return repository.NewFailoverStateRepository(primary, memory, component(logger, "state"))
}

// initStore returns a nil store when the project is not configured so that
// reservations report not ready instead of failing on the network.
func initStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (domain.ReservationStore, func()) {
	noop := func() {}
	if !cfg.StoreConfigured() {
		logger.Warn().Msg("firestore project not configured, reservations disabled")
		return nil, noop
	}

	client, err := store.NewFirestoreClient(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		logger.Error().Err(err).Msg("firestore init failed, reservations disabled")
		return nil, noop
	}

	fs := store.NewFirestoreStore(client, cfg.Firebase.AppID, cfg.Firebase.ReservationsCollection, component(logger, "store"))
	logger.Info().Str("project", cfg.Firebase.ProjectID).Msg("firestore connected")
	return fs, func() { _ = fs.Close() }
}

func initMirror(ctx context.Context, cfg *config.Config, bus *events.EventBus, redisClient *redis.Client, logger *zerolog.Logger) {
	if cfg.Google.GoogleCredentialsFile == "" || cfg.Google.ReservationsSheetID == "" {
		return
	}

	sheetsService, err := google.NewSheetsService(ctx, cfg.Google.GoogleCredentialsFile, cfg.Google.ReservationsSheetID)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without mirror")
		return
	}
	if err := sheetsService.EnsureHeader(ctx); err != nil {
		logger.Warn().Err(err).Msg("google sheets header check failed, continuing without mirror")
		return
	}

	mirrorLogger := component(logger, "mirror")
	w := worker.NewMirrorWorker(sheetsService, redisClient, worker.RetryPolicy{}, mirrorLogger)
	go w.Start(ctx)
	service.SubscribeMirror(bus, w, mirrorLogger)

	logger.Info().Msg("google sheets mirror started")
}

func initNotifier(cfg *config.Config, bus *events.EventBus, logger *zerolog.Logger) {
	if cfg.Telegram.BotToken == "" {
		return
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram init failed, continuing without notifications")
		return
	}
	bot.Debug = cfg.Telegram.Debug

	service.NewChefNotifier(bot, cfg.Telegram.ChatIDs, component(logger, "notifier")).Subscribe(bus)
	logger.Info().Str("bot", bot.Self.UserName).Msg("telegram notifications enabled")
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	metrics.Register()
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func startServers(
	ctx context.Context,
	grpcServer *api.GRPCServer,
	httpServer *api.HTTPServer,
	cfg *config.Config,
	logger *zerolog.Logger,
) error {
	if grpcServer != nil {
		go func() {
			if err := grpcServer.Serve(); err != nil {
				logger.Error().Err(err).Msg("grpc server stopped")
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	logger.Info().Int("http_port", cfg.HTTP.Port).Bool("grpc", grpcServer != nil).Msg("site started")

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if grpcServer != nil {
		grpcServer.Shutdown(shutdownCtx)
	}
	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("site stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
