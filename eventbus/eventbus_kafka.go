package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"newswire/config"
)

// KafkaEventBus implements EventBus on confluent-kafka-go.
type KafkaEventBus struct {
	Producer *kafka.Producer
	Brokers  string
}

// NewKafkaEventBus initializes the shared producer.
func NewKafkaEventBus(brokers string) (*KafkaEventBus, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"acks":              "all",
		"retries":           5,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	// Drain producer delivery reports.
	go func() {
		for e := range p.Events() {
			switch ev := e.(type) {
			case *kafka.Message:
				if ev.TopicPartition.Error != nil {
					config.Logger.Errorf("message delivery failed %v: %v", ev.TopicPartition, ev.TopicPartition.Error)
				}
			case kafka.Error:
				config.Logger.Errorf("kafka error: %v", ev)
			}
		}
	}()

	return &KafkaEventBus{
		Producer: p,
		Brokers:  brokers,
	}, nil
}

// Close flushes and closes the producer.
func (k *KafkaEventBus) Close() {
	if k.Producer != nil {
		if remaining := k.Producer.Flush(5000); remaining > 0 {
			config.Logger.Warnf("%d messages still unflushed after close", remaining)
		}
		k.Producer.Close()
		config.Logger.Info("kafka producer closed")
	}
}

// Publish sends an event to the given topic, waiting for the delivery
// report so callers see broker failures as errors.
func (k *KafkaEventBus) Publish(ctx context.Context, topic string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	deliveryChan := make(chan kafka.Event, 1)
	defer close(deliveryChan)

	err = k.Producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          data,
		Key:            []byte(event.ID),
	}, deliveryChan)
	if err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}

	select {
	case ev := <-deliveryChan:
		m := ev.(*kafka.Message)
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("message delivery failed: %w", m.TopicPartition.Error)
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}

// Subscribe consumes the base topic. Offsets are committed manually and
// only after the handler result has been dealt with, so at most one
// message is in flight per consumer and an unprocessed message is
// redelivered after a crash (at-least-once).
func (k *KafkaEventBus) Subscribe(ctx context.Context, groupID string, topic Topic, handler EventHandler) error {
	c, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":             k.Brokers,
		"group.id":                      groupID,
		"auto.offset.reset":             "earliest",
		"enable.auto.commit":            false,
		"partition.assignment.strategy": "range",
	})
	if err != nil {
		return fmt.Errorf("failed to create kafka consumer: %w", err)
	}
	defer c.Close()

	topicsToSubscribe := []string{topic.Base()}
	if err := c.SubscribeTopics(topicsToSubscribe, nil); err != nil {
		return fmt.Errorf("failed to subscribe to %v: %w", topicsToSubscribe, err)
	}

	config.Logger.Infof("consumer (%s) started, topics: %s", groupID, strings.Join(topicsToSubscribe, ", "))

	for {
		select {
		case <-ctx.Done():
			config.Logger.Info("consumer shutting down")
			return ctx.Err()
		default:
			msg, err := c.ReadMessage(100 * time.Millisecond)
			if err != nil {
				if kerr, ok := err.(kafka.Error); ok && kerr.Code() == kafka.ErrTimedOut {
					continue
				}
				continue
			}

			var evt Event
			if err := json.Unmarshal(msg.Value, &evt); err != nil {
				// Broken envelope: retrying cannot fix it, drop and commit.
				config.Logger.Errorf("bad event envelope on %s: %v, skipping", *msg.TopicPartition.Topic, err)
				c.CommitMessage(msg)
				continue
			}

			if evt.MaxRetry <= 0 || evt.MaxRetry > len(RetryDelays) {
				evt.MaxRetry = len(RetryDelays)
			}

			if evt.Retry > 0 {
				config.Logger.Infof("handling event %s (retry %d/%d), topic: %s", evt.ID, evt.Retry, evt.MaxRetry, *msg.TopicPartition.Topic)
			} else {
				config.Logger.Debugf("handling event %s, topic: %s", evt.ID, *msg.TopicPartition.Topic)
			}
			err = handler(ctx, evt)

			if err != nil {
				evt.LastError = err.Error()
				nextRetryCount := evt.Retry + 1
				nextRetryTopic, getTopicErr := topic.RetryTopic(nextRetryCount)

				if getTopicErr == ErrMaxRetryExceeded {
					config.Logger.Errorf("event %s exhausted retries, sending to DLQ %s, last error: %s", evt.ID, topic.DLQ(), err.Error())
					if publishErr := k.Publish(ctx, topic.DLQ(), evt); publishErr != nil {
						config.Logger.Errorf("failed to publish to DLQ %s: %v, not committing", topic.DLQ(), publishErr)
						continue
					}
				} else if getTopicErr != nil {
					config.Logger.Errorf("unexpected error resolving retry topic: %v, not committing", getTopicErr)
					continue
				} else {
					evt.Retry = nextRetryCount
					config.Logger.Warnf("event %s failed, scheduling retry %d/%d on %s",
						evt.ID, evt.Retry, evt.MaxRetry, nextRetryTopic)
					if publishErr := k.Publish(ctx, nextRetryTopic, evt); publishErr != nil {
						config.Logger.Errorf("failed to publish retry to %s: %v, not committing", nextRetryTopic, publishErr)
						continue
					}
				}
			}

			// Handler success, or retry/DLQ publish success: commit.
			if _, err := c.CommitMessage(msg); err != nil {
				config.Logger.Errorf("offset commit error: %v", err)
			}
		}
	}
}

// StartRetryReinjector consumes all retry topics for the given queue and
// re-publishes events onto the base topic once their delay has elapsed.
func (k *KafkaEventBus) StartRetryReinjector(ctx context.Context, groupID string, topic Topic) error {
	c, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":             k.Brokers,
		"group.id":                      groupID,
		"auto.offset.reset":             "earliest",
		"enable.auto.commit":            false,
		"partition.assignment.strategy": "range",
	})
	if err != nil {
		return fmt.Errorf("failed to create retry reinjector consumer: %w", err)
	}
	defer c.Close()

	retryTopics := topic.RetryTopics()
	if err := c.SubscribeTopics(retryTopics, nil); err != nil {
		return fmt.Errorf("failed to subscribe to retry topics %v: %w", retryTopics, err)
	}

	config.Logger.Infof("retry reinjector (%s) started, topics: %s", groupID, strings.Join(retryTopics, ", "))

	for {
		select {
		case <-ctx.Done():
			config.Logger.Info("retry reinjector shutting down")
			return ctx.Err()
		default:
			msg, err := c.ReadMessage(100 * time.Millisecond)
			if err != nil {
				if kerr, ok := err.(kafka.Error); ok {
					if kerr.Code() == kafka.ErrTimedOut {
						continue
					}
					if kerr.IsFatal() {
						return fmt.Errorf("retry reinjector fatal error: %w", err)
					}
				}
				config.Logger.Errorf("retry reinjector ReadMessage error: %v", err)
				time.Sleep(500 * time.Millisecond)
				continue
			}

			topicName := *msg.TopicPartition.Topic
			delayDur, ok := ParseRetryDelayFromTopicName(topicName)
			if !ok {
				config.Logger.Errorf("cannot parse retry topic name %s, skipping", topicName)
				c.CommitMessage(msg)
				continue
			}

			readyAt := msg.Timestamp.Add(delayDur)
			now := time.Now()
			if now.Before(readyAt) {
				remaining := readyAt.Sub(now)
				// only nap briefly so shutdown stays responsive
				sleepDur := remaining
				if sleepDur > 500*time.Millisecond {
					sleepDur = 500 * time.Millisecond
				} else if sleepDur < 50*time.Millisecond {
					sleepDur = 50 * time.Millisecond
				}
				time.Sleep(sleepDur)
				// seek back so the same message is re-examined
				if err := c.Seek(kafka.TopicPartition{
					Topic:     msg.TopicPartition.Topic,
					Partition: msg.TopicPartition.Partition,
					Offset:    msg.TopicPartition.Offset,
				}, 1000); err != nil {
					config.Logger.Errorf("retry reinjector seek error: %v", err)
				}
				continue
			}

			var evt Event
			if err := json.Unmarshal(msg.Value, &evt); err != nil {
				config.Logger.Errorf("bad event envelope on retry topic %s: %v, skipping", topicName, err)
				c.CommitMessage(msg)
				continue
			}

			config.Logger.Infof("reinjecting event %s from %s to %s (retry: %d)",
				evt.ID, topicName, topic.Base(), evt.Retry)

			if err := k.Publish(ctx, topic.Base(), evt); err != nil {
				config.Logger.Errorf("failed to reinject event %s: %v, not committing", evt.ID, err)
				continue
			}

			if _, err := c.CommitMessage(msg); err != nil {
				config.Logger.Errorf("commit error after reinject: %v", err)
			}
		}
	}
}
