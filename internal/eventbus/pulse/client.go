// Package pulse publishes events onto goa.design/pulse streams backed
// by Redis, for a multi-host deployment where event subscribers (a
// collaboration relay, a remote UI) live outside the process that owns
// the Rebuild Engine.
//
// Grounded on features/stream/pulse/clients/pulse/client.go's layering:
// callers build a Redis client, pass it to New, and get back a typed
// Client interface exposing only the Stream/Close operations the
// publisher needs.
package pulse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"goa.design/pulse/streaming"
	streamopts "goa.design/pulse/streaming/options"
)

// Client exposes the subset of Pulse APIs the event publisher needs.
type Client interface {
	Stream(name string, opts ...streamopts.Stream) (Stream, error)
	Close(ctx context.Context) error
}

// Stream publishes event entries to a single named Pulse stream.
type Stream interface {
	Add(ctx context.Context, event string, payload []byte) (string, error)
	Destroy(ctx context.Context) error
}

// Options configures the Pulse client.
type Options struct {
	// Redis is the connection backing Pulse streams. Required.
	Redis *redis.Client
	// StreamMaxLen bounds entries kept per stream; zero uses Pulse defaults.
	StreamMaxLen int
	// OperationTimeout bounds individual Add calls; zero means no timeout.
	OperationTimeout time.Duration
}

type client struct {
	redis   *redis.Client
	maxLen  int
	timeout time.Duration
}

// New constructs a Pulse client backed by opts.Redis.
func New(opts Options) (Client, error) {
	if opts.Redis == nil {
		return nil, errors.New("eventbus/pulse: redis client is required")
	}
	return &client{redis: opts.Redis, maxLen: opts.StreamMaxLen, timeout: opts.OperationTimeout}, nil
}

func (c *client) Stream(name string, opts ...streamopts.Stream) (Stream, error) {
	if name == "" {
		return nil, errors.New("eventbus/pulse: stream name is required")
	}
	var streamOptions []streamopts.Stream
	if c.maxLen > 0 {
		streamOptions = append(streamOptions, streamopts.WithStreamMaxLen(c.maxLen))
	}
	streamOptions = append(streamOptions, opts...)
	str, err := streaming.NewStream(name, c.redis, streamOptions...)
	if err != nil {
		return nil, fmt.Errorf("eventbus/pulse: create stream: %w", err)
	}
	return &handle{stream: str, timeout: c.timeout}, nil
}

func (c *client) Close(_ context.Context) error {
	return nil
}

type handle struct {
	stream  *streaming.Stream
	timeout time.Duration
}

func (h *handle) Add(ctx context.Context, event string, payload []byte) (string, error) {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	id, err := h.stream.Add(ctx, event, payload)
	if err != nil {
		return "", fmt.Errorf("eventbus/pulse: add: %w", err)
	}
	return id, nil
}

func (h *handle) Destroy(ctx context.Context) error {
	return h.stream.Destroy(ctx)
}
