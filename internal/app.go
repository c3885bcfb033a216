package internal

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"property-service/internal/adapters/rest"
	"property-service/internal/configs"
	"property-service/internal/constants"
	"property-service/internal/core/domain"
	"property-service/internal/core/port"
	"property-service/internal/core/usecase"
	fluentlogger "property-service/pkg/fluent_logger"
	pgclient "property-service/pkg/postgres"
	"property-service/pkg/rabbitmq/rabbitmq_common"
	"property-service/pkg/rabbitmq/rabbitmq_consumer"
	"property-service/pkg/rabbitmq/rabbitmq_producer"

	token_adapter "property-service/internal/adapters/jwt"
	logger_adapter "property-service/internal/adapters/logger"
	media_adapter "property-service/internal/adapters/media"
	memory_adapter "property-service/internal/adapters/memory"
	postgres_adapter "property-service/internal/adapters/postgres"
	rabbitmq_adapter "property-service/internal/adapters/rabbitmq"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
)

type App struct {
	config    *configs.AppConfig
	apiServer *rest.Server

	dbPool        *pgxpool.Pool
	connManager   *rabbitmq_common.ConnectionManager
	eventProducer *rabbitmq_producer.Publisher
	// nil, если RabbitMQ выключен
	orphanedMediaListener port.EventListenerPort

	logger       port.LoggerPort
	fluentClient *fluent.Fluent
}

func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	app := &App{config: appConfig}
	// при ошибке сборки закрываем то, что уже успели открыть
	ok := false
	defer func() {
		if !ok {
			app.closeResources()
		}
	}()

	// --- 1. ИНИЦИАЛИЗАЦИЯ ЛОГГЕРОВ ---
	var activeLoggers []port.LoggerPort

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    parseLogLevel(appConfig.StdoutLogger.Level),
		IsJSON:   appConfig.StdoutLogger.IsJSON,
		UseColor: true,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	if appConfig.FluentBit.Enabled {
		app.fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName,
			Async:     true,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(app.fluentClient, parseLogLevel(appConfig.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	// --- 2. БАЗОВЫЙ ЛОГГЕР ПРИЛОЖЕНИЯ ---
	baseLogger := multiLogger.WithFields(port.Fields{"service_name": appConfig.AppName})
	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	app.logger = appLogger
	appLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	// --- 3. ХРАНИЛИЩЕ ---
	var storage port.PropertyStoragePort
	var users port.UserDirectoryPort

	switch appConfig.Database.Driver {
	case configs.StoreDriverPostgres:
		initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		app.dbPool, err = pgclient.NewClient(initCtx, pgclient.Config{
			DatabaseURL:    appConfig.Database.URL,
			MaxConns:       appConfig.Database.MaxConns,
			MinConns:       appConfig.Database.MinConns,
			ConnectTimeout: 10 * time.Second,
		})
		if err != nil {
			appLogger.Error("Failed to connect to PostgreSQL", err, nil)
			return nil, fmt.Errorf("failed to initialize postgres client: %w", err)
		}
		appLogger.Info("PostgreSQL pool initialized", nil)

		if appConfig.Database.AutoMigrate {
			if err := postgres_adapter.EnsureSchema(initCtx, app.dbPool); err != nil {
				appLogger.Error("Failed to apply database schema", err, nil)
				return nil, fmt.Errorf("failed to apply database schema: %w", err)
			}
			appLogger.Info("Database schema is up to date", nil)
		}

		pgStore, err := postgres_adapter.NewPostgresPropertyStore(app.dbPool)
		if err != nil {
			return nil, fmt.Errorf("failed to create property store: %w", err)
		}
		pgUsers, err := postgres_adapter.NewPostgresUserDirectory(app.dbPool)
		if err != nil {
			return nil, fmt.Errorf("failed to create user directory: %w", err)
		}
		storage, users = pgStore, pgUsers
	case configs.StoreDriverMemory:
		appLogger.Warn("Using in-memory store, data will be lost on restart", nil)
		storage, users = memory_adapter.NewPropertyStore(), memory_adapter.NewUserDirectory()
	}

	// --- 4. МЕДИА И АУТЕНТИФИКАЦИЯ ---
	mediaStorage, err := media_adapter.NewLocalMediaStorage(media_adapter.Config{
		UploadDir:     appConfig.Media.UploadDir,
		PublicBaseURL: appConfig.Media.PublicBaseURL,
		MaxFileBytes:  appConfig.Media.MaxUploadBytes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create media storage: %w", err)
	}

	identityProvider, err := token_adapter.NewIdentityProvider(appConfig.Auth.JWTSecret, appConfig.Auth.TrustGateway)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity provider: %w", err)
	}

	// --- 5. СОБЫТИЯ ---
	var events port.EventPublisherPort = rabbitmq_adapter.NewNoopEventsPublisher(baseLogger)
	if appConfig.RabbitMQ.Enabled {
		connManagerBridge := rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"}))
		rmqCfg := rabbitmq_common.Config{
			URL:               appConfig.RabbitMQ.URL,
			ReconnectInterval: appConfig.RabbitMQ.ReconnectInterval,
		}
		app.connManager, err = rabbitmq_common.NewConnectionManager(rmqCfg, connManagerBridge)
		if err != nil {
			appLogger.Error("Failed to create connection manager", err, nil)
			return nil, fmt.Errorf("failed to create connection manager: %w", err)
		}
		appLogger.Info("RabbitMQ Connection Manager initialized.", nil)

		app.eventProducer, err = rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
			Config:                   rmqCfg,
			ExchangeName:             appConfig.RabbitMQ.Exchange,
			ExchangeType:             constants.EventsExchangeType,
			DurableExchange:          true,
			DeclareExchangeIfMissing: true,
			Logger:                   rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"})),
		}, app.connManager)
		if err != nil {
			return nil, fmt.Errorf("failed to create event producer: %w", err)
		}

		eventsPublisher, err := rabbitmq_adapter.NewPropertyEventsPublisher(app.eventProducer)
		if err != nil {
			return nil, fmt.Errorf("failed to create events publisher: %w", err)
		}
		events = eventsPublisher
		appLogger.Info("RabbitMQ Event Producer initialized.", port.Fields{"exchange": appConfig.RabbitMQ.Exchange})
	}

	// --- 6. USE CASES ---
	listUseCase := usecase.NewListPropertiesUseCase(storage)
	myPropertiesUseCase := usecase.NewGetMyPropertiesUseCase(storage)
	detailsUseCase := usecase.NewGetPropertyDetailsUseCase(storage, users)
	createUseCase := usecase.NewCreatePropertyUseCase(storage, mediaStorage, events)
	updateUseCase := usecase.NewUpdatePropertyUseCase(storage, mediaStorage, events)
	deleteUseCase := usecase.NewDeletePropertyUseCase(storage, mediaStorage, events)
	cleanupUseCase := usecase.NewCleanupOrphanedMediaUseCase(mediaStorage)

	appLogger.Info("All use cases initialized", nil)

	if appConfig.RabbitMQ.Enabled {
		consumerCfg := rabbitmq_consumer.ConsumerConfig{
			Config:                 rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
			QueueName:              constants.QueueOrphanedMediaCleanup,
			DeclareQueue:           true,
			DurableQueue:           true,
			ExchangeNameForBind:    appConfig.RabbitMQ.Exchange,
			DeclareExchangeForBind: true,
			ExchangeTypeForBind:    constants.EventsExchangeType,
			DurableExchangeForBind: true,
			RoutingKeyForBind:      constants.RoutingKeyMediaOrphaned,
			PrefetchCount:          10,
			ConsumerTag:            appConfig.AppName + "-media-janitor",
			EnableRetryMechanism:   true,
			RetryExchange:          constants.OrphanedMediaRetryExchange,
			RetryQueue:             constants.OrphanedMediaRetryQueue,
			RetryTTL:               constants.OrphanedMediaRetryTTL,
			FinalDLXExchange:       constants.FinalDLXExchange,
			FinalDLQ:               constants.FinalDLQ,
			FinalDLQRoutingKey:     constants.FinalDLQRoutingKey,
			MaxRetries:             constants.OrphanedMediaMaxRetries,
		}
		listener, err := rabbitmq_adapter.NewOrphanedMediaConsumerAdapter(consumerCfg, cleanupUseCase, baseLogger, app.connManager)
		if err != nil {
			appLogger.Error("Failed to create orphaned media consumer", err, nil)
			return nil, err
		}
		app.orphanedMediaListener = listener
		appLogger.Info("Orphaned media consumer initialized.", port.Fields{"queue": constants.QueueOrphanedMediaCleanup})
	}

	// --- 7. REST ---
	maxFiles := appConfig.Media.MaxFiles
	if maxFiles > domain.MaxImagesPerRequest {
		appLogger.Warn("MEDIA_MAX_FILES exceeds the per-request limit, capping", port.Fields{"configured": maxFiles, "limit": domain.MaxImagesPerRequest})
		maxFiles = domain.MaxImagesPerRequest
	}

	apiHandlers := rest.NewPropertyHandler(
		listUseCase,
		myPropertiesUseCase,
		detailsUseCase,
		createUseCase,
		updateUseCase,
		deleteUseCase,
		rest.UploadLimits{MaxFiles: maxFiles, MaxFileBytes: appConfig.Media.MaxUploadBytes},
	)
	app.apiServer = rest.NewServer(rest.ServerConfig{
		Port:           appConfig.Rest.PORT,
		AllowedOrigins: appConfig.Rest.AllowedOrigins,
		UploadsDir:     mediaStorage.Dir(),
	}, apiHandlers, rest.NewAuthMiddleware(identityProvider), baseLogger)

	ok = true
	return app, nil
}

// Run запускает все компоненты приложения и управляет их жизненным циклом.
func (a *App) Run() error {
	// единый контекст для всего приложения для управления graceful shutdown
	appCtx, cancelApp := context.WithCancel(context.Background())

	// для ожидания завершения всех фоновых задач
	var wg sync.WaitGroup

	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.ShutdownTimeout)
		defer cancel()

		// сначала перестаем принимать запросы, потом закрываем то, чем они пользуются
		if err := a.apiServer.Stop(shutdownCtx); err != nil {
			a.logger.Error("Error during API server shutdown", err, nil)
		}

		a.logger.Info("Waiting for background processes to finish...", nil)
		wg.Wait()

		a.closeResources()
	}()

	a.logger.Info("Application is starting...", nil)

	componentErrors := make(chan error, 2)

	startListener := func(name string, listener port.EventListenerPort) {
		defer wg.Done()
		a.logger.Info("Starting listener", port.Fields{"listener": name})
		if err := listener.Start(appCtx); err != nil {
			a.logger.Error("Listener stopped with an unexpected error", err, port.Fields{"listener": name})
			componentErrors <- fmt.Errorf("%s error: %w", name, err)
		} else {
			a.logger.Info("Listener stopped gracefully due to context cancellation", port.Fields{"listener": name})
		}
	}

	if a.orphanedMediaListener != nil {
		wg.Add(1)
		go startListener("Orphaned Media Listener", a.orphanedMediaListener)
	}

	go func() {
		if err := a.apiServer.Start(); err != nil {
			componentErrors <- fmt.Errorf("failed to start HTTP server: %w", err)
		}
	}()

	// Ожидание сигнала на завершение или ошибки от одного из компонентов
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	a.logger.Info("Application running. Waiting for signals or component error...", port.Fields{"port": a.config.Rest.PORT})

	var runErr error
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
	case err := <-componentErrors:
		a.logger.Error("A critical component failed, shutting down", err, nil)
		runErr = err
	case <-appCtx.Done():
		a.logger.Warn("Context was cancelled unexpectedly, shutting down...", nil)
	}

	// Инициируем graceful shutdown, отменяя главный контекст
	cancelApp()

	return runErr
}

// closeResources закрывает внешние ресурсы в обратном порядке создания
func (a *App) closeResources() {
	logf := func(msg string, err error) {
		if a.logger != nil {
			a.logger.Error(msg, err, nil)
			return
		}
		log.Printf("%s: %v", msg, err)
	}

	if a.orphanedMediaListener != nil {
		if err := a.orphanedMediaListener.Close(); err != nil {
			logf("Error closing orphaned media listener", err)
		}
	}
	if a.eventProducer != nil {
		if err := a.eventProducer.Close(); err != nil {
			logf("Error closing event producer", err)
		}
	}
	if a.connManager != nil {
		if err := a.connManager.Close(); err != nil {
			logf("Error closing RabbitMQ connection", err)
		}
	}
	if a.dbPool != nil {
		a.dbPool.Close()
		if a.logger != nil {
			a.logger.Info("PostgreSQL pool closed.", nil)
		}
	}

	if a.logger != nil {
		a.logger.Info("Resources released.", nil)
	}

	if a.fluentClient != nil {
		if err := a.fluentClient.Close(); err != nil {
			// fluent может быть уже недоступен, пишем в stdout
			log.Printf("ERROR: Error closing fluent client: %v", err)
		}
	}
}

func parseLogLevel(levelStr string) slog.Level {
	level, ok := logger_adapter.ParseLevel(levelStr)
	if !ok {
		log.Printf("Warning: Unknown log level '%s'. Defaulting to 'info'.", levelStr)
	}
	return level
}
