package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/logger"
)

// Notifier hands an operator notification to a delivery channel.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// LogNotifier writes notifications to the log. Used when no broker is configured.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(ctx context.Context, msg Message) error {
	n.log.InfoContext(ctx, "operator notification",
		"kind", msg.Kind,
		"key", msg.Key,
		"title", msg.Title,
	)
	return nil
}

// messageWriter is the part of *kafka.Writer the notifier uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes notifications as JSON to a topic consumed by cmd/notifier.
type KafkaNotifier struct {
	writer messageWriter
}

func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireAll,
		},
	}
}

func (n *KafkaNotifier) Notify(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	err = n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.Key),
		Value: data,
		Time:  msg.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("publish notification %s: %w", msg.Key, err)
	}
	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}

// Async delivers through next on a background goroutine so callers never wait
// on the notification channel. Failures are logged and dropped.
type Async struct {
	next    Notifier
	log     *logger.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewAsync(next Notifier, log *logger.Logger, timeout time.Duration) *Async {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Async{next: next, log: log, timeout: timeout}
}

// Notify always returns nil. The caller's context only contributes values;
// its cancellation does not abort delivery.
func (a *Async) Notify(ctx context.Context, msg Message) error {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
		defer cancel()

		if err := a.next.Notify(sendCtx, msg); err != nil {
			a.log.WarnContext(sendCtx, "operator notification failed",
				"kind", msg.Kind,
				"key", msg.Key,
				"error", err,
			)
		}
	}()
	return nil
}

// Wait blocks until in-flight notifications finish or ctx is done.
func (a *Async) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
