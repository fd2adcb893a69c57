package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ImportRequest is a company discovered by the catalog importer that should
// become an AUTO_IMPORTED application on behalf of UserID.
type ImportRequest struct {
	UserID      int64  `json:"user_id"`
	CompanyName string `json:"company_name"`
	Source      string `json:"source,omitempty"`
}

// ErrMalformedImport marks messages that can never be processed; they are
// committed and skipped instead of being redelivered.
var ErrMalformedImport = errors.New("malformed import request")

var errNoHandler = errors.New("no import handler registered")

type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	reader  KafkaReader
	logger  *zap.Logger
	handler func(context.Context, ImportRequest) error
	backOff func() backoff.BackOff
}

// NewConsumer consumes company import requests from topic.
func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: brokers,
			GroupID: groupID,
			Topic:   topic,
			Dialer:  kafka.DefaultDialer,
		}),
		logger: logger.Named("import_consumer"),
	}
}

// Start fetches messages until ctx is cancelled. A message whose handler
// fails with a transient error is retried in place, so the group offset
// never moves past an unhandled import.
func (c *Consumer) Start(ctx context.Context) {
	go func() {
		for {
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				c.logger.Error("Failed to fetch message", zap.Error(err))
				continue
			}
			c.process(ctx, msg)
		}
	}()
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	policy := backoff.WithContext(c.retryPolicy(), ctx)
	err := backoff.RetryNotify(func() error {
		err := c.handleMessage(ctx, msg)
		if errors.Is(err, ErrMalformedImport) || errors.Is(err, errNoHandler) {
			return backoff.Permanent(err)
		}
		return err
	}, policy, func(err error, wait time.Duration) {
		c.logger.Warn("Import failed, retrying",
			zap.Error(err),
			zap.Int64("offset", msg.Offset),
			zap.Duration("backoff", wait),
		)
	})
	if err != nil && !errors.Is(err, ErrMalformedImport) {
		c.logger.Error("Failed to handle import",
			zap.Error(err),
			zap.Int64("offset", msg.Offset),
		)
		return
	}
	if err != nil {
		c.logger.Warn("Skipping import", zap.Error(err), zap.Int64("offset", msg.Offset))
	}

	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error("Failed to commit message",
			zap.Error(err),
			zap.Int64("offset", msg.Offset),
		)
	}
}

// retryPolicy retries transient failures until ctx ends.
func (c *Consumer) retryPolicy() backoff.BackOff {
	if c.backOff != nil {
		return c.backOff()
	}
	policy := backoff.NewExponentialBackOff()
	policy.MaxInterval = 30 * time.Second
	policy.MaxElapsedTime = 0
	return policy
}

func (c *Consumer) handleMessage(ctx context.Context, msg kafka.Message) error {
	var req ImportRequest
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		c.logger.Error("Failed to parse import",
			zap.Error(err),
			zap.ByteString("value", msg.Value),
		)
		return fmt.Errorf("%w: %v", ErrMalformedImport, err)
	}
	if req.UserID == 0 || strings.TrimSpace(req.CompanyName) == "" {
		return fmt.Errorf("%w: user_id and company_name are required", ErrMalformedImport)
	}
	if c.handler == nil {
		return errNoHandler
	}
	return c.handler(ctx, req)
}

func (c *Consumer) RegisterHandler(fn func(context.Context, ImportRequest) error) {
	c.handler = fn
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.logger.Error("Failed to close Kafka reader", zap.Error(err))
	}
}
