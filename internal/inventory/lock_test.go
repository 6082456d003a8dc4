package inventory_test

import (
	"context"
	"testing"

	"campus-ticketing/internal/inventory"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestEventLockIntegration exercises the lock against a real Redis container.
func TestEventLockIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Redis integration test in short mode")
	}

	ctx := context.Background()
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:latest",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}
	defer redisContainer.Terminate(ctx)

	host, err := redisContainer.Host(ctx)
	require.NoError(t, err)
	port, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: host + ":" + port.Port()})
	defer client.Close()

	lock := inventory.NewEventLock(client)

	locked, err := lock.LockEvent("event-1", "purchase-a")
	require.NoError(t, err)
	assert.True(t, locked, "expected the event to be lockable")

	locked, err = lock.LockEvent("event-1", "purchase-b")
	require.NoError(t, err)
	assert.False(t, locked, "expected the event to be held by purchase-a")

	// Only the holder may release.
	require.NoError(t, lock.UnlockEvent("event-1", "purchase-b"))
	locked, err = lock.LockEvent("event-1", "purchase-c")
	require.NoError(t, err)
	assert.False(t, locked, "non-holder unlock must not release the lock")

	require.NoError(t, lock.UnlockEvent("event-1", "purchase-a"))
	locked, err = lock.LockEvent("event-1", "purchase-c")
	require.NoError(t, err)
	assert.True(t, locked, "expected the event to be lockable after release")

	// Unlocking a key that was never locked is a no-op.
	require.NoError(t, lock.UnlockEvent("event-2", "purchase-a"))
}
