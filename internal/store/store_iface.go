package store

import (
	"context"

	"github.com/rogersnm/calsync/internal/model"
)

// CollectionKey names the single slot the local cache uses.
const CollectionKey = "events"

// Slot is one named blob in durable storage. Read returns (nil, nil) when
// nothing has been written yet.
type Slot interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Clear(ctx context.Context) error
}

// Cache is the local, non-authoritative copy of the event collection.
// Load never fails: unreadable or corrupt content yields an empty
// collection. Save failures are reported and returned.
type Cache interface {
	Load(ctx context.Context) []model.Event
	Save(ctx context.Context, events []model.Event) error
}

// Remote is the authoritative event table. Update and Delete address records
// by their remote-assigned id.
type Remote interface {
	List(ctx context.Context) ([]model.Event, error)
	Create(ctx context.Context, events ...model.Event) ([]model.Event, error)
	Update(ctx context.Context, remoteID string, e model.Event) (model.Event, error)
	Delete(ctx context.Context, remoteID string) error
	Find(ctx context.Context, eventID string) (model.Event, error)
}
