package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/waffle-iron/core/internal/api"
	"github.com/waffle-iron/core/internal/eventbus"
)

func TestPublishDeliversToSubscriber(t *testing.T) {
	bus := eventbus.New(4)
	sub, err := bus.Subscribe("p1")
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, bus.Publish(context.Background(), "p1", api.ModelUpdatedEvent(nil)))

	select {
	case env := <-sub.C:
		require.Equal(t, api.EventModelUpdated, env.Type)
		require.Equal(t, "p1", env.ProjectID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestPublishDoesNotCrossProjects(t *testing.T) {
	bus := eventbus.New(4)
	sub, err := bus.Subscribe("p1")
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, bus.Publish(context.Background(), "p2", api.ModelUpdatedEvent(nil)))

	select {
	case env := <-sub.C:
		t.Fatalf("unexpected event delivered: %+v", env)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCloseUnblocksSubscribers(t *testing.T) {
	bus := eventbus.New(4)
	sub, err := bus.Subscribe("p1")
	require.NoError(t, err)

	bus.Close()

	_, ok := <-sub.C
	require.False(t, ok)

	_, err = bus.Subscribe("p1")
	require.ErrorIs(t, err, eventbus.ErrClosed)

	err = bus.Publish(context.Background(), "p1", api.ModelUpdatedEvent(nil))
	require.ErrorIs(t, err, eventbus.ErrClosed)
}

func TestSlowSubscriberDropsOldestRatherThanBlocking(t *testing.T) {
	bus := eventbus.New(1)
	sub, err := bus.Subscribe("p1")
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, bus.Publish(context.Background(), "p1", api.SelectionChangedEvent(nil)))
	require.NoError(t, bus.Publish(context.Background(), "p1", api.ModelUpdatedEvent(nil)))

	select {
	case env := <-sub.C:
		require.Equal(t, api.EventModelUpdated, env.Type)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}
