package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"zillow-search-service/internal/constants"
	"zillow-search-service/internal/contextkeys"
	"zillow-search-service/internal/contracts"
	"zillow-search-service/internal/core/port"
	"zillow-search-service/internal/core/port/usecases_port"
	"zillow-search-service/pkg/rabbitmq/rabbitmq_common"
	"zillow-search-service/pkg/rabbitmq/rabbitmq_consumer"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// TasksConsumerAdapter читает задачи поиска и запускает ProcessSearchTask
type TasksConsumerAdapter struct {
	consumer rabbitmq_consumer.Consumer
}

// searchTaskHandler отделен от consumer, чтобы обработку можно было проверить без брокера
type searchTaskHandler struct {
	processUC usecases_port.ProcessSearchTaskPort
	proxyURL  string
	logger    port.LoggerPort
}

func NewTasksConsumerAdapter(
	consumerCfg rabbitmq_consumer.ConsumerConfig,
	processUC usecases_port.ProcessSearchTaskPort,
	proxyURL string,
	logger port.LoggerPort,
	connManager *rabbitmq_common.ConnectionManager,
) (*TasksConsumerAdapter, error) {
	handler := &searchTaskHandler{
		processUC: processUC,
		proxyURL:  proxyURL,
		logger:    logger.WithFields(port.Fields{"component": "TasksConsumerAdapter"}),
	}

	pkgLogger := NewPkgLoggerBridge(logger.WithFields(port.Fields{
		"component": "rabbitmq_distributing_consumer",
		"queue":     consumerCfg.QueueName,
	}))

	consumer, err := rabbitmq_consumer.NewDistributingConsumer(consumerCfg, handler.Handle, connManager, pkgLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create RabbitMQ consumer for search tasks: %w", err)
	}

	return &TasksConsumerAdapter{consumer: consumer}, nil
}

// Handle разбирает задачу и выполняет поиск.
// Сообщения, не прошедшие схему, подтверждаются и логируются: повтор их не исправит.
// Ошибка поиска возвращается, чтобы сообщение ушло на повтор.
func (h *searchTaskHandler) Handle(ctx context.Context, d amqp.Delivery) error {
	traceID, ok := d.Headers["x-trace-id"].(string)
	if !ok || traceID == "" {
		traceID = uuid.New().String()
	}

	msgLogger := h.logger.WithFields(port.Fields{
		"trace_id":     traceID,
		"delivery_tag": d.DeliveryTag,
	})
	ctx = contextkeys.ContextWithTraceID(ctx, traceID)
	ctx = contextkeys.ContextWithLogger(ctx, msgLogger)

	if err := contracts.ValidateEvent(constants.EventSearchTask, constants.EventVersion, d.Body); err != nil {
		msgLogger.Error("Search task rejected by schema, dropping message", err, nil)
		return nil
	}

	var task SearchTaskDTO
	if err := json.Unmarshal(d.Body, &task); err != nil {
		msgLogger.Error("Error unmarshalling search task, dropping message", err, nil)
		return nil
	}

	taskLogger := msgLogger.WithFields(port.Fields{"task_id": task.TaskID.String(), "intent": task.Intent})
	ctx = contextkeys.ContextWithLogger(ctx, taskLogger)

	query, err := task.toSearchQuery(h.proxyURL)
	if err != nil {
		taskLogger.Error("Cannot translate search task", err, nil)
		return nil
	}

	taskLogger.Info("Received search task", port.Fields{"page": query.Page, "zoom": query.Zoom})

	if err := h.processUC.Execute(ctx, query, task.TaskID); err != nil {
		taskLogger.Error("Search task failed", err, nil)
		return err
	}
	return nil
}

// Start реализует EventListenerPort
func (a *TasksConsumerAdapter) Start(ctx context.Context) error {
	return a.consumer.StartConsuming(ctx)
}

// Close реализует EventListenerPort
func (a *TasksConsumerAdapter) Close() error {
	return a.consumer.Close()
}
