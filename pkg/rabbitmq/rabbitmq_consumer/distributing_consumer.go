package rabbitmq_consumer

import (
	"context"
	"fmt"
	"sync"
	"time"
	"zillow-search-service/pkg/rabbitmq/rabbitmq_common"
	"zillow-search-service/pkg/rabbitmq/rabbitmq_producer"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DistributingConsumer обрабатывает каждое сообщение в своей горутине.
// Число одновременно обрабатываемых сообщений ограничено PrefetchCount.
type DistributingConsumer struct {
	cfg     ConsumerConfig
	conn    *amqp.Connection
	channel *amqp.Channel
	handler MessageHandler
	dlx     *rabbitmq_producer.Publisher
	wg      sync.WaitGroup

	logger rabbitmq_common.Logger
}

func NewDistributingConsumer(cfg ConsumerConfig, handler MessageHandler, connManager *rabbitmq_common.ConnectionManager, logger rabbitmq_common.Logger) (*DistributingConsumer, error) {
	if handler == nil {
		return nil, fmt.Errorf("distributing consumer: message handler is required")
	}
	if cfg.QueueName == "" {
		return nil, fmt.Errorf("distributing consumer: queue name is required")
	}
	if cfg.ExchangeType == "" {
		cfg.ExchangeType = "topic"
	}
	if logger == nil {
		logger = rabbitmq_common.NewNoopLogger()
	}

	conn, ch, err := connManager.GetChannel()
	if err != nil {
		return nil, fmt.Errorf("distributing consumer: %w", err)
	}

	c := &DistributingConsumer{
		cfg:     cfg,
		conn:    conn,
		channel: ch,
		handler: handler,
		logger:  logger,
	}

	if err := c.setupTopology(); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("distributing consumer: %w", err)
	}

	if cfg.EnableRetryMechanism {
		c.dlx, err = rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
			ExchangeName: cfg.FinalDLXExchange,
			Logger:       logger,
		}, connManager)
		if err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("distributing consumer: failed to create final DLX publisher: %w", err)
		}
	}

	return c, nil
}

func (c *DistributingConsumer) setupTopology() error {
	if c.cfg.PrefetchCount > 0 {
		if err := c.channel.Qos(c.cfg.PrefetchCount, 0, false); err != nil {
			return fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	if err := c.channel.ExchangeDeclare(c.cfg.Exchange, c.cfg.ExchangeType, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange '%s': %w", c.cfg.Exchange, err)
	}

	var queueArgs amqp.Table
	if c.cfg.EnableRetryMechanism {
		// сообщения после Nack уходят в retry-обменник
		queueArgs = amqp.Table{"x-dead-letter-exchange": c.cfg.RetryExchange}
	}

	if _, err := c.channel.QueueDeclare(c.cfg.QueueName, true, false, false, false, queueArgs); err != nil {
		return fmt.Errorf("failed to declare queue '%s': %w", c.cfg.QueueName, err)
	}
	if err := c.channel.QueueBind(c.cfg.QueueName, c.cfg.RoutingKey, c.cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue '%s': %w", c.cfg.QueueName, err)
	}

	if !c.cfg.EnableRetryMechanism {
		return nil
	}

	c.logger.Debug("Declaring retry topology", "retry_queue", c.cfg.RetryQueue, "dlq", c.cfg.FinalDLQ)

	if err := c.channel.ExchangeDeclare(c.cfg.FinalDLXExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare final DLX: %w", err)
	}
	if _, err := c.channel.QueueDeclare(c.cfg.FinalDLQ, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare final DLQ: %w", err)
	}
	if err := c.channel.QueueBind(c.cfg.FinalDLQ, c.cfg.FinalDLQRoutingKey, c.cfg.FinalDLXExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind final DLQ: %w", err)
	}

	if err := c.channel.ExchangeDeclare(c.cfg.RetryExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare retry exchange: %w", err)
	}
	// после TTL сообщение возвращается в основной обменник с исходным ключом
	_, err := c.channel.QueueDeclare(c.cfg.RetryQueue, true, false, false, false, amqp.Table{
		"x-message-ttl":          int32(c.cfg.RetryTTL),
		"x-dead-letter-exchange": c.cfg.Exchange,
	})
	if err != nil {
		return fmt.Errorf("failed to declare retry queue: %w", err)
	}
	if err := c.channel.QueueBind(c.cfg.RetryQueue, "", c.cfg.RetryExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind retry queue: %w", err)
	}
	return nil
}

// StartConsuming блокируется до отмены ctx или закрытия соединения
func (c *DistributingConsumer) StartConsuming(ctx context.Context) error {
	if c.channel == nil || c.conn.IsClosed() {
		return fmt.Errorf("distributing consumer: not connected")
	}

	msgs, err := c.channel.Consume(c.cfg.QueueName, c.cfg.ConsumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("distributing consumer: failed to consume from '%s': %w", c.cfg.QueueName, err)
	}

	c.logger.Info("[*] Waiting for messages", "queue", c.cfg.QueueName)

	notifyClose := c.conn.NotifyClose(make(chan *amqp.Error, 1))

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Context cancelled, consumer stops", "queue", c.cfg.QueueName)
			return nil
		case amqpErr := <-notifyClose:
			if amqpErr == nil {
				return nil
			}
			c.logger.Error(amqpErr, "Connection closed under consumer", "queue", c.cfg.QueueName)
			return amqpErr
		case d, ok := <-msgs:
			if !ok {
				c.logger.Info("Deliveries channel closed", "queue", c.cfg.QueueName)
				return nil
			}
			c.wg.Add(1)
			go func(delivery amqp.Delivery) {
				defer c.wg.Done()
				c.process(ctx, delivery)
			}(d)
		}
	}
}

func (c *DistributingConsumer) process(ctx context.Context, d amqp.Delivery) {
	handlerErr := c.handler(ctx, d)
	deaths := deathCount(d.Headers, c.cfg.QueueName)

	switch decideOutcome(handlerErr, c.cfg.EnableRetryMechanism, deaths, c.cfg.MaxRetries) {
	case outcomeAck:
		_ = d.Ack(false)
		c.logger.Debug("[+] Message acked", "delivery_tag", d.DeliveryTag)
	case outcomeDrop:
		c.logger.Error(handlerErr, "Handler failed, retry disabled, dropping message", "delivery_tag", d.DeliveryTag)
		_ = d.Nack(false, false)
	case outcomeRetry:
		c.logger.Warn("Handler failed, message goes to retry", "delivery_tag", d.DeliveryTag, "death_count", deaths, "error", handlerErr.Error())
		_ = d.Nack(false, false)
	case outcomeDeadLetter:
		c.logger.Error(handlerErr, "Max retries reached, publishing to final DLX", "delivery_tag", d.DeliveryTag)
		err := c.dlx.Publish(context.Background(), c.cfg.FinalDLQRoutingKey, amqp.Publishing{
			ContentType:  d.ContentType,
			Body:         d.Body,
			Headers:      d.Headers,
			Timestamp:    time.Now(),
			DeliveryMode: amqp.Persistent,
		})
		if err != nil {
			c.logger.Error(err, "Failed to publish to final DLX, message goes to retry again", "delivery_tag", d.DeliveryTag)
			_ = d.Nack(false, false)
			return
		}
		_ = d.Ack(false)
	}
}

// Close ждет обработчики и закрывает канал
func (c *DistributingConsumer) Close() error {
	c.logger.Debug("Waiting for message handlers to finish")
	c.wg.Wait()

	var firstErr error
	if c.dlx != nil {
		if err := c.dlx.Close(); err != nil {
			firstErr = err
		}
	}
	if c.channel != nil {
		if err := c.channel.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		c.channel = nil
	}
	c.logger.Info("Consumer closed", "queue", c.cfg.QueueName)
	return firstErr
}
