package event

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
)

const eventsKey = "guestlist:events"

// Repository persists the events collection as a single JSON blob in Redis.
// Every mutation reads the whole collection, transforms it, and writes the
// whole collection back; there is no partial write. Two writers racing on
// the same key are last-write-wins — acceptable for the single-writer
// deployments this service targets, and the reason Mutate exists as the one
// mutation entry point (a per-collection lock or WATCH/MULTI would slot in
// there if that ever changes).
type Repository struct {
	rdb *redis.Client
	key string
}

func NewRepository(rdb *redis.Client) *Repository {
	return &Repository{rdb: rdb, key: eventsKey}
}

// Events loads the full ordered collection. A missing key is an empty
// collection, not an error; any other failure surfaces as a StorageError.
func (r *Repository) Events(ctx context.Context) ([]Event, error) {
	raw, err := r.rdb.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []Event{}, nil
	}
	if err != nil {
		return nil, &StorageError{Op: "read", Err: err}
	}

	var events []Event
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, &StorageError{Op: "decode", Err: err}
	}
	return events, nil
}

// SaveEvents replaces the stored collection atomically.
func (r *Repository) SaveEvents(ctx context.Context, events []Event) error {
	raw, err := json.Marshal(events)
	if err != nil {
		return &StorageError{Op: "encode", Err: err}
	}
	if err := r.rdb.Set(ctx, r.key, raw, 0).Err(); err != nil {
		return &StorageError{Op: "write", Err: err}
	}
	return nil
}

// Mutate loads the collection, applies fn, and writes the result back. A
// non-nil error from fn aborts the write and is returned unchanged.
func (r *Repository) Mutate(ctx context.Context, fn func(events []Event) ([]Event, error)) error {
	events, err := r.Events(ctx)
	if err != nil {
		return err
	}
	next, err := fn(events)
	if err != nil {
		return err
	}
	return r.SaveEvents(ctx, next)
}

// EventByID scans the collection for one event.
func (r *Repository) EventByID(ctx context.Context, id string) (*Event, error) {
	events, err := r.Events(ctx)
	if err != nil {
		return nil, err
	}
	for i := range events {
		if events[i].ID == id {
			return &events[i], nil
		}
	}
	return nil, ErrEventNotFound
}

func findEvent(events []Event, id string) int {
	for i := range events {
		if events[i].ID == id {
			return i
		}
	}
	return -1
}
