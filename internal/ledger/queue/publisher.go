// Package queue publishes domain events to a message broker. The notify
// worker consumes them to send verification emails; everything else is
// informational fan-out.
package queue

import (
	"context"
	"log/slog"
)

type Publisher interface {
	Publish(ctx context.Context, exchange, key string, event any, reqID string) error
	Close() error
}

// NoopPub drops every event. Used in tests.
type NoopPub struct{}

func NewNoop() Publisher { return NoopPub{} }

func (NoopPub) Publish(ctx context.Context, exchange, key string, event any, reqID string) error {
	return nil
}
func (NoopPub) Close() error { return nil }

// LogPub writes events to the log instead of a broker. Used when no broker
// URL is configured, so in local development the verification link still
// shows up somewhere reachable.
type LogPub struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPub{logger: logger}
}

func (p *LogPub) Publish(ctx context.Context, exchange, key string, event any, reqID string) error {
	p.logger.InfoContext(ctx, "domain event (no broker configured)",
		"routing_key", key,
		"event", event,
		"req_id", reqID,
	)
	return nil
}

func (p *LogPub) Close() error { return nil }
