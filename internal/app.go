package internal

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
	logger_adapter "zillow-search-service/internal/adapters/logger"
	rabbitmq_adapter "zillow-search-service/internal/adapters/rabbitmq"
	"zillow-search-service/internal/adapters/rest"
	"zillow-search-service/internal/adapters/zillowfetcher"
	"zillow-search-service/internal/configs"
	"zillow-search-service/internal/constants"
	"zillow-search-service/internal/core/port"
	"zillow-search-service/internal/core/usecase"
	fluentlogger "zillow-search-service/pkg/fluent_logger"
	"zillow-search-service/pkg/rabbitmq/rabbitmq_common"
	"zillow-search-service/pkg/rabbitmq/rabbitmq_consumer"
	"zillow-search-service/pkg/rabbitmq/rabbitmq_producer"

	"github.com/fluent/fluent-logger-golang/fluent"
)

const shutdownTimeout = 15 * time.Second

// App – структура приложения
type App struct {
	config       *configs.AppConfig
	fluentClient *fluent.Fluent
	logger       port.LoggerPort

	apiServer *rest.Server

	// nil, если RABBITMQ_URL не задан
	connManager    *rabbitmq_common.ConnectionManager
	resultProducer *rabbitmq_producer.Publisher
	tasksListener  port.EventListenerPort
}

// NewApp - composition root: создает и связывает все зависимости
func NewApp(envPath ...string) (*App, error) {
	appConfig, err := configs.LoadConfig(envPath...)
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	baseLogger, fluentClient, err := newLogger(appConfig)
	if err != nil {
		return nil, err
	}

	app := &App{
		config:       appConfig,
		fluentClient: fluentClient,
		logger:       baseLogger.WithFields(port.Fields{"component": "app"}),
	}

	fetcher, err := zillowfetcher.NewZillowFetcherAdapter(appConfig.Zillow.SearchURL)
	if err != nil {
		app.logger.Error("Failed to create Zillow fetcher", err, nil)
		app.closeResources()
		return nil, fmt.Errorf("failed to initialize zillow fetcher: %w", err)
	}
	app.logger.Info("Zillow fetcher initialized", port.Fields{
		"search_url": fetcher.SearchURL(),
		"proxy":      appConfig.Zillow.ProxyURL != "",
	})

	searchUC := usecase.NewSearchListingsUseCase(fetcher)

	handlers := rest.NewSearchHandlers(searchUC, appConfig.Zillow.ProxyURL)
	router := rest.NewRouter(handlers, appConfig.Rest.AllowedOrigins, baseLogger.WithFields(port.Fields{"component": "rest"}))
	app.apiServer = rest.NewServer(appConfig.Rest.Port, router, baseLogger.WithFields(port.Fields{"component": "rest_server"}))

	if !appConfig.QueueEnabled() {
		app.logger.Warn("RABBITMQ_URL is not set, search task queue is disabled", nil)
		return app, nil
	}

	if err := app.initQueue(searchUC, baseLogger); err != nil {
		app.closeResources()
		return nil, err
	}

	return app, nil
}

func newLogger(cfg *configs.AppConfig) (port.LoggerPort, *fluent.Fluent, error) {
	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    logger_adapter.ParseLevel(cfg.StdoutLogger.Level),
		UseColor: true,
	})
	activeLoggers := []port.LoggerPort{stdoutLogger}

	var fluentClient *fluent.Fluent
	if cfg.FluentBit.Enabled {
		client, err := fluentlogger.NewClient(fluentlogger.Config{
			Host:      cfg.FluentBit.Host,
			Port:      cfg.FluentBit.Port,
			TagPrefix: cfg.AppName,
			Async:     true,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(client, logger_adapter.ParseLevel(cfg.FluentBit.Level))
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		fluentClient = client
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiLoggerAdapter(activeLoggers...)
	if err != nil {
		if fluentClient != nil {
			_ = fluentClient.Close()
		}
		return nil, nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{"service_name": cfg.AppName})
	baseLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers),
		"fluent_enabled": cfg.FluentBit.Enabled,
	})
	return baseLogger, fluentClient, nil
}

// initQueue поднимает соединение, producer результатов и consumer задач
func (a *App) initQueue(searchUC *usecase.SearchListingsUseCase, baseLogger port.LoggerPort) error {
	connManager, err := rabbitmq_common.NewConnectionManager(
		rabbitmq_common.Config{URL: a.config.RabbitMQ.URL},
		rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"})),
	)
	if err != nil {
		a.logger.Error("Failed to create connection manager", err, nil)
		return fmt.Errorf("failed to create connection manager: %w", err)
	}
	a.connManager = connManager

	producer, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
		ExchangeName:    constants.ExchangeParser,
		ExchangeType:    "topic",
		DurableExchange: true,
		DeclareExchange: true,
		Logger:          rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"})),
	}, connManager)
	if err != nil {
		a.logger.Error("Failed to create results producer", err, nil)
		return fmt.Errorf("failed to create results producer: %w", err)
	}
	a.resultProducer = producer

	resultsQueue, err := rabbitmq_adapter.NewSearchResultsQueueAdapter(producer, constants.RoutingKeySearchResults)
	if err != nil {
		return err
	}

	processUC := usecase.NewProcessSearchTaskUseCase(searchUC, resultsQueue)

	tasksCfg := rabbitmq_consumer.ConsumerConfig{
		QueueName:     constants.QueueSearchTasks,
		Exchange:      constants.ExchangeParser,
		ExchangeType:  "topic",
		RoutingKey:    constants.RoutingKeySearchTasks,
		PrefetchCount: 4,
		ConsumerTag:   "zillow-search-tasks",

		EnableRetryMechanism: true,
		RetryExchange:        constants.QueueSearchTasks + "_retry_ex",
		RetryQueue:           constants.QueueSearchTasks + "_retry_wait_30s",
		RetryTTL:             30000,
		FinalDLXExchange:     constants.DeadLetterExchange,
		FinalDLQ:             constants.DeadLetterQueue,
		FinalDLQRoutingKey:   constants.RoutingKeySearchTasks,
		MaxRetries:           3,
	}

	listener, err := rabbitmq_adapter.NewTasksConsumerAdapter(tasksCfg, processUC, a.config.Zillow.ProxyURL, baseLogger, connManager)
	if err != nil {
		a.logger.Error("Failed to initialize search tasks listener", err, nil)
		return err
	}
	a.tasksListener = listener

	a.logger.Info("Search task queue initialized", port.Fields{"queue": constants.QueueSearchTasks})
	return nil
}

// Run запускает компоненты и ждет сигнала завершения или падения одного из них
func (a *App) Run() error {
	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()

	var wg sync.WaitGroup
	componentErrors := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := a.apiServer.Start(); err != nil {
			componentErrors <- fmt.Errorf("rest server: %w", err)
		}
	}()

	if a.tasksListener != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			listenerLogger := a.logger.WithFields(port.Fields{"listener_name": "search_tasks"})
			listenerLogger.Info("Starting listener", nil)
			if err := a.tasksListener.Start(appCtx); err != nil {
				listenerLogger.Error("Listener stopped with an unexpected error", err, nil)
				componentErrors <- fmt.Errorf("search tasks listener: %w", err)
				return
			}
			listenerLogger.Info("Listener stopped", nil)
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	a.logger.Info("Application running", port.Fields{"http_port": a.config.Rest.Port, "queue_enabled": a.tasksListener != nil})

	var runErr error
	select {
	case sig := <-quit:
		a.logger.Warn("Received signal, shutting down", port.Fields{"signal": sig.String()})
	case runErr = <-componentErrors:
		a.logger.Error("A critical component failed, shutting down", runErr, nil)
	}

	cancelApp()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.apiServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("Error stopping REST server", err, nil)
	}

	wg.Wait()
	a.closeResources()
	return runErr
}

// closeResources закрывает ресурсы в обратном порядке создания
func (a *App) closeResources() {
	if a.tasksListener != nil {
		if err := a.tasksListener.Close(); err != nil {
			a.logger.Error("Error closing search tasks listener", err, nil)
		}
	}
	if a.resultProducer != nil {
		if err := a.resultProducer.Close(); err != nil {
			a.logger.Error("Error closing results producer", err, nil)
		}
	}
	if a.connManager != nil {
		if err := a.connManager.Close(); err != nil {
			a.logger.Error("Error closing RabbitMQ connection manager", err, nil)
		}
	}

	a.logger.Info("Application shut down", nil)

	if a.fluentClient != nil {
		if err := a.fluentClient.Close(); err != nil {
			log.Printf("App: error closing fluent client: %v\n", err)
		}
	}
}
