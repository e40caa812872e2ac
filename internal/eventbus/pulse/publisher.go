package pulse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/waffle-iron/core/internal/api"
	"github.com/waffle-iron/core/internal/eventbus"
)

// PublisherOptions configures a Publisher.
type PublisherOptions struct {
	// Client publishes entries onto Pulse streams. Required.
	Client Client
	// StreamName derives the target stream from a project id. Defaults
	// to "project/<projectID>".
	StreamName func(projectID string) (string, error)
}

// Publisher publishes api.Events onto a Pulse stream per project.
// Grounded on features/stream/pulse/sink.go's Sink.Send: derive the
// stream, wrap the event in an envelope, marshal, publish.
type Publisher struct {
	client     Client
	streamName func(string) (string, error)
}

var _ eventbus.Publisher = (*Publisher)(nil)

// NewPublisher constructs a Pulse-backed event Publisher.
func NewPublisher(opts PublisherOptions) (*Publisher, error) {
	if opts.Client == nil {
		return nil, errors.New("eventbus/pulse: client is required")
	}
	streamName := opts.StreamName
	if streamName == nil {
		streamName = defaultStreamName
	}
	return &Publisher{client: opts.Client, streamName: streamName}, nil
}

// Publish implements eventbus.Publisher.
func (p *Publisher) Publish(ctx context.Context, projectID string, event api.Event) error {
	name, err := p.streamName(projectID)
	if err != nil {
		return err
	}
	stream, err := p.client.Stream(name)
	if err != nil {
		return fmt.Errorf("eventbus/pulse: open stream %q: %w", name, err)
	}

	env := eventbus.Envelope{Type: event.Kind, ProjectID: projectID, Timestamp: time.Now().UTC(), Payload: event}
	payload, err := eventbus.MarshalEnvelope(env)
	if err != nil {
		return err
	}
	if _, err := stream.Add(ctx, string(event.Kind), payload); err != nil {
		return fmt.Errorf("eventbus/pulse: publish: %w", err)
	}
	return nil
}

func defaultStreamName(projectID string) (string, error) {
	if projectID == "" {
		return "", errors.New("eventbus/pulse: project id is required")
	}
	return fmt.Sprintf("project/%s", projectID), nil
}
