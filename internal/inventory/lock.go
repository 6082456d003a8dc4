package inventory

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// EventLock serializes purchases of a single event across service replicas
// using a Redis SETNX lock keyed by event id. The TTL bounds how long a
// crashed holder can keep an event locked.
type EventLock struct {
	Client *redis.Client
}

func NewEventLock(client *redis.Client) *EventLock {
	return &EventLock{Client: client}
}

func (l *EventLock) lockDuration() time.Duration {
	defaultDuration := 10 * time.Second

	ttlStr := os.Getenv("EVENT_LOCK_TTL_SECONDS")
	if ttlStr == "" {
		return defaultDuration
	}
	ttlSec, err := strconv.Atoi(ttlStr)
	if err != nil || ttlSec <= 0 {
		return defaultDuration
	}
	return time.Duration(ttlSec) * time.Second
}

func (l *EventLock) LockEvent(eventID, holder string) (bool, error) {
	key := "event_lock:" + eventID
	return l.Client.SetNX(context.Background(), key, holder, l.lockDuration()).Result()
}

// UnlockEvent releases the lock only if this holder still owns it, so an
// expired lock re-acquired by another purchase is never stolen back.
func (l *EventLock) UnlockEvent(eventID, holder string) error {
	ctx := context.Background()
	key := "event_lock:" + eventID
	val, err := l.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil // already expired
	}
	if err != nil {
		return err
	}
	if val == holder {
		_, err := l.Client.Del(ctx, key).Result()
		return err
	}
	return nil
}
