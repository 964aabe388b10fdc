package rabbitmq_consumer

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageHandler обрабатывает одно сообщение.
// nil - ack; ошибка - повтор через retry-очередь или DLQ после MaxRetries.
type MessageHandler func(ctx context.Context, delivery amqp.Delivery) error

// Consumer - общий интерфейс потребителей пакета
type Consumer interface {
	StartConsuming(ctx context.Context) error
	Close() error
}

// ConsumerConfig - очередь, привязка, QoS и механизм повторов
type ConsumerConfig struct {
	QueueName  string
	Exchange   string
	RoutingKey string
	// Тип обменника при объявлении, по умолчанию topic
	ExchangeType string

	PrefetchCount int
	ConsumerTag   string

	EnableRetryMechanism bool
	RetryExchange        string
	RetryQueue           string
	// RetryTTL в миллисекундах
	RetryTTL           int
	FinalDLXExchange   string
	FinalDLQ           string
	FinalDLQRoutingKey string
	MaxRetries         int
}

// outcome - что сделать с сообщением после обработчика
type outcome int

const (
	outcomeAck outcome = iota
	outcomeDrop
	outcomeRetry
	outcomeDeadLetter
)

func decideOutcome(handlerErr error, retryEnabled bool, deathCount int64, maxRetries int) outcome {
	switch {
	case handlerErr == nil:
		return outcomeAck
	case !retryEnabled:
		return outcomeDrop
	case deathCount < int64(maxRetries):
		return outcomeRetry
	default:
		return outcomeDeadLetter
	}
}

// deathCount - сколько раз сообщение умирало в очереди queueName (заголовок x-death)
func deathCount(headers amqp.Table, queueName string) int64 {
	deaths, ok := headers["x-death"].([]interface{})
	if !ok {
		return 0
	}
	for _, death := range deaths {
		tbl, ok := death.(amqp.Table)
		if !ok {
			continue
		}
		if queue, _ := tbl["queue"].(string); queue != queueName {
			continue
		}
		if count, ok := tbl["count"].(int64); ok {
			return count
		}
	}
	return 0
}
