package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"zillow-search-service/internal/constants"
	"zillow-search-service/internal/contextkeys"
	"zillow-search-service/internal/core/domain"
	"zillow-search-service/internal/core/port"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// publisher - то, что адаптеру нужно от rabbitmq_producer.Publisher
type publisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// SearchResultsQueueAdapter публикует результаты поиска, реализует SearchResultsQueuePort
type SearchResultsQueueAdapter struct {
	producer   publisher
	routingKey string
}

func NewSearchResultsQueueAdapter(producer publisher, routingKey string) (*SearchResultsQueueAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	if routingKey == "" {
		return nil, fmt.Errorf("rabbitmq adapter: routingKey cannot be empty")
	}
	return &SearchResultsQueueAdapter{producer: producer, routingKey: routingKey}, nil
}

func (a *SearchResultsQueueAdapter) Enqueue(ctx context.Context, result domain.SearchResult, taskID uuid.UUID) error {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "SearchResultsQueueAdapter",
		"routing_key": a.routingKey,
	})

	event := newSearchResultsEvent(result, taskID)
	body, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal search results event", err, nil)
		return fmt.Errorf("failed to marshal search results event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Headers: amqp.Table{
			"event-type":    constants.EventSearchResults,
			"event-version": constants.EventVersion,
		},
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers["x-trace-id"] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := a.producer.Publish(publishCtx, a.routingKey, msg); err != nil {
		logger.Error("Failed to publish search results", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish search results for task %s: %w", taskID, err)
	}

	logger.Debug("Search results published", port.Fields{
		"map_results": event.MapResultsCount,
		"capped":      event.Capped,
	})
	return nil
}
