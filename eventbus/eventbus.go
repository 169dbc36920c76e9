package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// RetryDelays is the fixed backoff schedule, indexed by retry attempt
// (1-based). A message that fails past the last delay goes to the DLQ.
var RetryDelays = []time.Duration{
	10 * time.Second,
	30 * time.Second,
	1 * time.Minute,
	5 * time.Minute,
	10 * time.Minute,
}

// Topic manages a queue's base name plus its derived retry and DLQ names.
type Topic struct {
	base string
}

func NewTopic(base string) Topic {
	return Topic{base: base}
}

func (t Topic) Base() string {
	return t.base
}

// DLQ returns the dead-letter topic name (e.g. post_created_queue.dlq).
func (t Topic) DLQ() string {
	return t.base + ".dlq"
}

// RetryTopics returns the names of all delayed retry topics.
func (t Topic) RetryTopics() []string {
	topics := make([]string, len(RetryDelays))
	for i, delay := range RetryDelays {
		topics[i] = fmt.Sprintf("%s.retry.%s", t.base, delay.String())
	}
	return topics
}

// RetryTopic returns the retry topic for the given attempt (1-based).
func (t Topic) RetryTopic(retryCount int) (string, error) {
	if retryCount <= 0 || retryCount > len(RetryDelays) {
		return "", ErrMaxRetryExceeded
	}
	delay := RetryDelays[retryCount-1]
	return fmt.Sprintf("%s.retry.%s", t.base, delay.String()), nil
}

// Event is the wire envelope carried on every queue.
type Event struct {
	ID        string          `json:"id"`
	Payload   json.RawMessage `json:"payload"`
	Retry     int             `json:"retry"`
	MaxRetry  int             `json:"max_retry"`
	LastError string          `json:"last_error,omitempty"`
}

// EventHandler processes one delivered event. A nil return acknowledges
// the message; an error schedules a delayed retry (or the DLQ).
type EventHandler func(ctx context.Context, event Event) error

// EventBus abstracts publishing and single-in-flight consumption.
type EventBus interface {
	Publish(ctx context.Context, topic string, event Event) error
	// Subscribe consumes the base topic one message at a time, committing
	// only after the handler (or its retry scheduling) succeeds.
	Subscribe(ctx context.Context, groupID string, topic Topic, handler EventHandler) error
	// StartRetryReinjector consumes the delayed retry topics and
	// re-publishes due events onto the base topic.
	StartRetryReinjector(ctx context.Context, groupID string, topic Topic) error
	Close()
}

// ErrMaxRetryExceeded is returned once the retry schedule is exhausted.
var ErrMaxRetryExceeded = errors.New("max retry count exceeded")
