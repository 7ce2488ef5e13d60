package messaging

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web3camp/cohort-hub/internal/domain/shared"
	"github.com/web3camp/cohort-hub/internal/domain/user"
)

func TestInMemoryEventBus_DeliversByType(t *testing.T) {
	bus := NewInMemoryEventBus(EventBusConfig{Async: false})

	var updated, submitted atomic.Int32
	err := bus.Subscribe(shared.EventUserUpdated, shared.EventHandlerFunc(
		func(context.Context, shared.Event) error {
			updated.Add(1)
			return nil
		}))
	require.NoError(t, err)
	err = bus.Subscribe(shared.EventSubmissionCreated, shared.EventHandlerFunc(
		func(context.Context, shared.Event) error {
			submitted.Add(1)
			return nil
		}))
	require.NoError(t, err)

	event := user.NewUpdatedEvent(user.User{ID: "u1"}, user.User{ID: "u1"})
	require.NoError(t, bus.Publish(event))

	assert.Equal(t, int32(1), updated.Load())
	assert.Equal(t, int32(0), submitted.Load())
}

func TestInMemoryEventBus_AsyncWaitsOnClose(t *testing.T) {
	bus := NewInMemoryEventBus(EventBusConfig{Async: true, WorkerPoolSize: 2})

	var handled atomic.Int32
	require.NoError(t, bus.Subscribe(shared.EventUserUpdated, shared.EventHandlerFunc(
		func(context.Context, shared.Event) error {
			handled.Add(1)
			return nil
		})))

	for i := 0; i < 5; i++ {
		require.NoError(t, bus.Publish(user.NewUpdatedEvent(user.User{ID: "u"}, user.User{ID: "u"})))
	}
	require.NoError(t, bus.Close())

	assert.Equal(t, int32(5), handled.Load())
	assert.ErrorIs(t, bus.Publish(user.NewUpdatedEvent(user.User{}, user.User{})), ErrEventBusClosed)
}

func TestInMemoryEventBus_NilHandlerRejected(t *testing.T) {
	bus := NewInMemoryEventBus(DefaultEventBusConfig())
	assert.Error(t, bus.Subscribe(shared.EventUserUpdated, nil))
}
