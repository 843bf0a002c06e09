package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/logger"
)

// Sender performs the final delivery of a notification to the operator.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// HTTPSender posts the message as JSON to an operator webhook.
type HTTPSender struct {
	url    string
	client *http.Client
}

func NewHTTPSender(url string, timeout time.Duration) *HTTPSender {
	return &HTTPSender{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSender) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver notification: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("operator webhook returned status %d", resp.StatusCode)
	}
	return nil
}

type LogSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.log.InfoContext(ctx, "operator notification delivered",
		"kind", msg.Kind,
		"key", msg.Key,
		"title", msg.Title,
		"content", msg.Content,
	)
	return nil
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const (
	defaultRetryDelay = time.Second
	defaultMaxDelay   = time.Minute
)

// Worker consumes the notifications topic. A message is committed only after
// delivery succeeds; failed sends are retried with a growing delay, so an
// operator webhook outage stalls the partition instead of stopping the worker.
type Worker struct {
	reader     messageReader
	sender     Sender
	log        *logger.Logger
	retryDelay time.Duration
	maxDelay   time.Duration
}

func NewWorker(brokers []string, groupID, topic string, sender Sender, log *logger.Logger) *Worker {
	return &Worker{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		sender:     sender,
		log:        log,
		retryDelay: defaultRetryDelay,
		maxDelay:   defaultMaxDelay,
	}
}

// Run processes messages until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		msg, err := w.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			w.log.ErrorContext(ctx, "fetch notification failed", "error", err)
			if !sleep(ctx, w.retryDelay) {
				return nil
			}
			continue
		}

		if err := w.handle(ctx, msg); err != nil {
			// Only cancellation stops delivery; the message stays uncommitted.
			return nil
		}

		if err := w.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// The message will be re-read and delivered again.
			w.log.ErrorContext(ctx, "commit notification failed", "offset", msg.Offset, "error", err)
		}
	}
}

func (w *Worker) handle(ctx context.Context, raw kafka.Message) error {
	var msg Message
	if err := json.Unmarshal(raw.Value, &msg); err != nil {
		// Undecodable payloads would block the partition forever.
		w.log.ErrorContext(ctx, "dropping malformed notification",
			"offset", raw.Offset,
			"partition", raw.Partition,
			"error", err,
		)
		return nil
	}

	delay := w.retryDelay
	for attempt := 1; ; attempt++ {
		err := w.sender.Send(ctx, msg)
		if err == nil {
			break
		}
		w.log.WarnContext(ctx, "notification delivery failed, retrying",
			"key", msg.Key,
			"attempt", attempt,
			"retry_in", delay,
			"error", err,
		)
		if !sleep(ctx, delay) {
			return fmt.Errorf("send notification %s: %w", msg.Key, ctx.Err())
		}
		delay = min(delay*2, w.maxDelay)
	}

	w.log.DebugContext(ctx, "notification sent", "kind", msg.Kind, "key", msg.Key)
	return nil
}

// sleep waits for d and reports false if ctx ends first.
func sleep(ctx context.Context, d time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (w *Worker) Close() error {
	return w.reader.Close()
}
