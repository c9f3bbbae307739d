package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rogersnm/calsync/internal/codec"
	"github.com/rogersnm/calsync/internal/model"
	"github.com/rogersnm/calsync/internal/observe"
)

// LocalCache holds the last known good event collection in a Slot.
type LocalCache struct {
	slot Slot
	sink observe.Sink
}

var _ Cache = (*LocalCache)(nil)

func NewLocalCache(slot Slot, sink observe.Sink) *LocalCache {
	if sink == nil {
		sink = observe.Discard
	}
	return &LocalCache{slot: slot, sink: sink}
}

// Load returns the cached events. Records without id or title, or with a
// timestamp that does not parse, are dropped; when any are dropped the clean
// collection is written back so the bad records are never read twice.
func (c *LocalCache) Load(ctx context.Context) []model.Event {
	events := []model.Event{}

	data, err := c.slot.Read(ctx)
	if err != nil {
		c.sink.Report(observe.Notice{Op: "cache.load", Err: err})
		return events
	}
	if len(data) == 0 {
		return events
	}

	var recs []codec.LocalRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		c.sink.Report(observe.Notice{Op: "cache.load", Err: fmt.Errorf("%w: %v", ErrLocalCorrupt, err)})
		return events
	}

	dropped := 0
	for _, r := range recs {
		if r.ID == "" || r.Title == "" {
			dropped++
			continue
		}
		e, err := codec.FromLocal(r)
		if err != nil {
			dropped++
			continue
		}
		events = append(events, e)
	}

	if dropped > 0 {
		c.sink.Report(observe.Notice{Op: "cache.heal", Err: ErrLocalCorrupt, Count: dropped})
		// Save reports its own failure.
		_ = c.Save(ctx, events)
	}
	return events
}

func (c *LocalCache) Save(ctx context.Context, events []model.Event) error {
	recs := make([]codec.LocalRecord, len(events))
	for i, e := range events {
		recs[i] = codec.ToLocal(e)
	}
	data, err := json.Marshal(recs)
	if err != nil {
		err = fmt.Errorf("encoding cache: %w", err)
		c.sink.Report(observe.Notice{Op: "cache.save", Err: err, Count: len(events)})
		return err
	}
	if err := c.slot.Write(ctx, data); err != nil {
		c.sink.Report(observe.Notice{Op: "cache.save", Err: err, Count: len(events)})
		return err
	}
	return nil
}

// Clear forgets every cached event.
func (c *LocalCache) Clear(ctx context.Context) error {
	return c.slot.Clear(ctx)
}
