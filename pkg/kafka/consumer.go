package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	kafka_config "agendly/pkg/kafka/config"
	"agendly/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// Consumer reads messages from a topic within a consumer group and
// hands them to a MessageHandler. Messages that keep failing past the
// retry budget are shipped to the dead-letter topic and committed so
// the partition keeps moving.
type Consumer struct {
	reader     *kafka.Reader
	dlqWriter  *kafka.Writer
	handler    MessageHandler
	topic      string
	dlqTopic   string
	groupID    string
	maxRetries int
	log        *logger.Logger
	closed     bool
	mu         sync.RWMutex
	wg         sync.WaitGroup
}

func NewConsumer(cfg *kafka_config.Config, log *logger.Logger, topic string, groupID string, dlqTopic string, handler MessageHandler) (*Consumer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}
	if groupID == "" {
		return nil, fmt.Errorf("group ID cannot be empty")
	}
	if handler == nil {
		return nil, fmt.Errorf("handler cannot be nil")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          topic,
		GroupID:        groupID,
		StartOffset:    cfg.ConsumerStartOffset,
		MinBytes:       cfg.ConsumerMinBytes,
		MaxBytes:       cfg.ConsumerMaxBytes,
		MaxWait:        cfg.ConsumerMaxWait,
		CommitInterval: cfg.ConsumerCommitInterval,
		Logger:         kafka.LoggerFunc(func(msg string, args ...any) {}),
		ErrorLogger:    kafka.LoggerFunc(func(msg string, args ...any) { log.Error(fmt.Sprintf(msg, args...)) }),
	})

	consumer := &Consumer{
		reader:     reader,
		handler:    handler,
		topic:      topic,
		dlqTopic:   dlqTopic,
		groupID:    groupID,
		maxRetries: cfg.ConsumerMaxRetries,
		log:        log,
	}

	if dlqTopic != "" {
		consumer.dlqWriter = &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        dlqTopic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			MaxAttempts:  3,
			Logger:       kafka.LoggerFunc(func(msg string, args ...any) {}),
			ErrorLogger:  kafka.LoggerFunc(func(msg string, args ...any) { log.Error(fmt.Sprintf(msg, args...)) }),
		}
	}

	return consumer, nil
}

// Start blocks until ctx is canceled or the consumer is closed.
func (c *Consumer) Start(ctx context.Context) error {
	c.log.Info("Consumer starting",
		"topic", c.topic,
		"group_id", c.groupID,
	)

	c.wg.Add(1)
	defer c.wg.Done()

	for {
		c.mu.RLock()
		if c.closed {
			c.mu.RUnlock()
			return nil
		}
		c.mu.RUnlock()

		kafkaMsg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return nil
			}
			c.log.Error("Failed to fetch message", "topic", c.topic, "error", err)
			continue
		}

		msg := fromKafkaMessage(kafkaMsg)
		if err := c.processMessage(ctx, msg); err != nil {
			c.log.Error("Message processing failed after retries",
				"topic", c.topic,
				"key", msg.Key,
				"event_type", msg.GetEventType(),
				"error", err,
			)
			if dlqErr := c.sendToDLQ(ctx, msg, err); dlqErr != nil {
				c.log.Error("Failed to send message to DLQ",
					"topic", c.topic,
					"dlq_topic", c.dlqTopic,
					"key", msg.Key,
					"error", dlqErr,
				)
				// leave the message uncommitted so it is redelivered
				continue
			}
		}

		if err := c.reader.CommitMessages(ctx, kafkaMsg); err != nil {
			c.log.Error("Failed to commit message", "topic", c.topic, "error", err)
		}
	}
}

func (c *Consumer) processMessage(ctx context.Context, msg Message) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 500 * time.Millisecond
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		start := time.Now()
		lastErr = c.handler(ctx, msg)
		if lastErr == nil {
			c.log.Debug("Message processed",
				"topic", c.topic,
				"key", msg.Key,
				"event_type", msg.GetEventType(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return nil
		}

		if !ShouldRetry(lastErr, attempt, c.maxRetries) {
			return lastErr
		}

		c.log.Warn("Retrying message",
			"topic", c.topic,
			"key", msg.Key,
			"attempt", attempt+1,
			"error", lastErr,
		)
	}
	return lastErr
}

func (c *Consumer) sendToDLQ(ctx context.Context, msg Message, processErr error) error {
	if c.dlqWriter == nil {
		return fmt.Errorf("no DLQ configured for topic %s", c.topic)
	}

	msg.Headers[HeaderOriginalTopic] = c.topic
	msg.Headers["dlq-error"] = processErr.Error()
	msg.Headers["dlq-timestamp"] = time.Now().Format(time.RFC3339)

	return c.dlqWriter.WriteMessages(ctx, toKafkaMessage(msg))
}

func (c *Consumer) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	err := c.reader.Close()
	c.wg.Wait()

	if c.dlqWriter != nil {
		if dlqErr := c.dlqWriter.Close(); err == nil {
			err = dlqErr
		}
	}
	return err
}

func fromKafkaMessage(kafkaMsg kafka.Message) Message {
	msg := Message{
		Key:       string(kafkaMsg.Key),
		Value:     kafkaMsg.Value,
		Headers:   make(map[string]string, len(kafkaMsg.Headers)),
		Topic:     kafkaMsg.Topic,
		Partition: kafkaMsg.Partition,
		Offset:    kafkaMsg.Offset,
		Timestamp: kafkaMsg.Time,
	}
	for _, h := range kafkaMsg.Headers {
		msg.Headers[h.Key] = string(h.Value)
	}
	return msg
}
