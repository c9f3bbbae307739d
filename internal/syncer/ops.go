package syncer

import (
	"context"
	"errors"
	"fmt"

	"github.com/rogersnm/calsync/internal/mode"
	"github.com/rogersnm/calsync/internal/model"
	"github.com/rogersnm/calsync/internal/store"
)

// Load returns the current collection.
//
// In hybrid mode a successful remote read is written through to the cache.
// If the remote is unavailable the cached collection is returned instead and
// no error is raised; a rejection is still returned to the caller.
func (c *Coordinator) Load(ctx context.Context) ([]model.Event, error) {
	switch c.mode {
	case mode.LocalOnly:
		return c.cache.Load(ctx), nil

	case mode.RemoteOnly:
		return c.list(ctx)

	case mode.Hybrid:
		events, err := c.list(ctx)
		if err != nil {
			if !unavailable(err) {
				return nil, err
			}
			c.report("load.fallback", err, 0)
			return c.cache.Load(ctx), nil
		}
		// Save reports its own failure; the remote result stands.
		_ = c.cache.Save(ctx, events)
		return events, nil
	}
	return nil, fmt.Errorf("unknown mode %q", c.mode)
}

// SaveAll replaces the cached collection with events and, when a remote is
// active, creates on the remote every event whose id it does not have yet.
// Reconciliation is additive: remote records missing locally are left alone
// and remote records with a matching id are never overwritten.
func (c *Coordinator) SaveAll(ctx context.Context, events []model.Event) error {
	if c.mode.UsesCache() {
		if err := c.cache.Save(ctx, events); err != nil && c.mode == mode.LocalOnly {
			return fmt.Errorf("saving events: %w", err)
		}
	}
	if !c.mode.UsesRemote() {
		return nil
	}

	if err := c.reconcile(ctx, events); err != nil {
		if c.mode == mode.RemoteOnly {
			return fmt.Errorf("syncing events: %w", err)
		}
		c.report("save.reconcile", err, 0)
	}
	return nil
}

func (c *Coordinator) reconcile(ctx context.Context, events []model.Event) error {
	existing, err := c.list(ctx)
	if err != nil {
		return err
	}
	// event id -> remote record id, for everything the remote has
	rids := make(map[string]string, len(existing))
	for _, e := range existing {
		rids[e.ID] = e.RemoteID
	}

	var missing []model.Event
	unsaved := 0
	for _, e := range events {
		if e.IsNew() {
			unsaved++
			continue
		}
		if _, ok := rids[e.ID]; !ok {
			missing = append(missing, e)
			rids[e.ID] = ""
		}
	}
	if unsaved > 0 {
		c.report("save.skip_unsaved", ErrEmptyID, unsaved)
	}

	if len(missing) > 0 {
		var created []model.Event
		created, err = c.create(ctx, missing...)
		for _, e := range created {
			rids[e.ID] = e.RemoteID
		}
	}
	if c.mode.UsesCache() {
		c.recordRemoteIDs(ctx, events, rids)
	}
	return err
}

// recordRemoteIDs stores newly learned remote ids alongside the cached
// events. The cache is only rewritten when something changed.
func (c *Coordinator) recordRemoteIDs(ctx context.Context, events []model.Event, rids map[string]string) {
	updated := make([]model.Event, len(events))
	copy(updated, events)
	changed := false
	for i := range updated {
		if rid := rids[updated[i].ID]; rid != "" && rid != updated[i].RemoteID {
			updated[i].RemoteID = rid
			changed = true
		}
	}
	if changed {
		_ = c.cache.Save(ctx, updated)
	}
}

// CreateOne stores a new event and returns it with its id assigned. A
// caller-supplied id is kept, and is refused with ErrDuplicateID when an
// active store already holds it.
func (c *Coordinator) CreateOne(ctx context.Context, e model.Event) (model.Event, error) {
	supplied := !e.IsNew()
	if !supplied {
		eid, err := c.newID()
		if err != nil {
			return model.Event{}, err
		}
		e.ID = eid
	}

	if !c.mode.UsesRemote() {
		return c.appendLocal(ctx, e)
	}
	if supplied && c.mode.UsesCache() && model.IndexOf(c.cache.Load(ctx), e.ID) >= 0 {
		return model.Event{}, fmt.Errorf("event %s: %w", e.ID, ErrDuplicateID)
	}

	var created []model.Event
	var err error
	if supplied {
		err = c.ensureUnused(ctx, e.ID)
	}
	if err == nil {
		created, err = c.create(ctx, e)
		if err == nil && len(created) == 0 {
			err = fmt.Errorf("remote create returned no record: %w", store.ErrRemoteUnavailable)
		}
	}
	if err != nil {
		if c.mode == mode.RemoteOnly || !unavailable(err) {
			return model.Event{}, fmt.Errorf("creating event: %w", err)
		}
		c.report("create.fallback", err, 1)
		return c.appendLocal(ctx, e)
	}

	out := created[0]
	if c.mode == mode.Hybrid {
		events := c.cache.Load(ctx)
		if i := model.IndexOf(events, out.ID); i >= 0 {
			events[i] = out
		} else {
			events = append(events, out)
		}
		_ = c.cache.Save(ctx, events)
	}
	return out, nil
}

// ensureUnused fails with ErrDuplicateID when the remote already has a record
// for eventID.
func (c *Coordinator) ensureUnused(ctx context.Context, eventID string) error {
	_, err := c.find(ctx, eventID)
	switch {
	case err == nil:
		return fmt.Errorf("event %s: %w", eventID, ErrDuplicateID)
	case errors.Is(err, store.ErrNotFound):
		return nil
	}
	return err
}

func (c *Coordinator) appendLocal(ctx context.Context, e model.Event) (model.Event, error) {
	events := c.cache.Load(ctx)
	if model.IndexOf(events, e.ID) >= 0 {
		return model.Event{}, fmt.Errorf("event %s: %w", e.ID, ErrDuplicateID)
	}
	events = append(events, e)
	if err := c.cache.Save(ctx, events); err != nil && c.mode == mode.LocalOnly {
		return model.Event{}, fmt.Errorf("saving event: %w", err)
	}
	return e, nil
}

// UpdateOne replaces the stored event with the same id.
func (c *Coordinator) UpdateOne(ctx context.Context, e model.Event) (model.Event, error) {
	if e.IsNew() {
		return model.Event{}, ErrEmptyID
	}

	var cached []model.Event
	idx := -1
	if c.mode.UsesCache() {
		cached = c.cache.Load(ctx)
		idx = model.IndexOf(cached, e.ID)
		if idx >= 0 && e.RemoteID == "" {
			e.RemoteID = cached[idx].RemoteID
		}
	}

	remoteOK := false
	if c.mode.UsesRemote() {
		updated, err := c.updateRemote(ctx, e)
		switch {
		case err == nil:
			e = updated
			remoteOK = true
		case c.mode == mode.RemoteOnly:
			return model.Event{}, fmt.Errorf("updating event: %w", err)
		default:
			c.report("update.remote", err, 1)
		}
	}

	if !c.mode.UsesCache() {
		return e, nil
	}
	if idx < 0 {
		if remoteOK {
			cached = append(cached, e)
		} else {
			return model.Event{}, fmt.Errorf("event %s: %w", e.ID, store.ErrNotFound)
		}
	} else {
		cached[idx] = e
	}
	if err := c.cache.Save(ctx, cached); err != nil && c.mode == mode.LocalOnly {
		return model.Event{}, fmt.Errorf("saving event: %w", err)
	}
	return e, nil
}

func (c *Coordinator) updateRemote(ctx context.Context, e model.Event) (model.Event, error) {
	rid, err := c.resolveRemoteID(ctx, e.ID, e.RemoteID)
	if err != nil {
		return model.Event{}, err
	}
	return c.update(ctx, rid, e)
}

// DeleteOne removes the event with the given id.
func (c *Coordinator) DeleteOne(ctx context.Context, eventID string) error {
	if eventID == "" {
		return ErrEmptyID
	}

	var cached []model.Event
	idx := -1
	known := ""
	if c.mode.UsesCache() {
		cached = c.cache.Load(ctx)
		idx = model.IndexOf(cached, eventID)
		if idx >= 0 {
			known = cached[idx].RemoteID
		}
	}

	remoteOK := false
	if c.mode.UsesRemote() {
		err := c.deleteRemote(ctx, eventID, known)
		switch {
		case err == nil:
			remoteOK = true
		case c.mode == mode.RemoteOnly:
			return fmt.Errorf("deleting event: %w", err)
		default:
			c.report("delete.remote", err, 1)
		}
	}

	if !c.mode.UsesCache() {
		return nil
	}
	if idx < 0 {
		if remoteOK {
			return nil
		}
		return fmt.Errorf("event %s: %w", eventID, store.ErrNotFound)
	}
	cached = append(cached[:idx], cached[idx+1:]...)
	if err := c.cache.Save(ctx, cached); err != nil && c.mode == mode.LocalOnly {
		return fmt.Errorf("saving events: %w", err)
	}
	return nil
}

func (c *Coordinator) deleteRemote(ctx context.Context, eventID, knownRemoteID string) error {
	rid, err := c.resolveRemoteID(ctx, eventID, knownRemoteID)
	if err != nil {
		return err
	}
	return c.delete(ctx, rid)
}

// resolveRemoteID returns the remote record id for an event, asking the
// remote when no id has been recorded locally.
func (c *Coordinator) resolveRemoteID(ctx context.Context, eventID, known string) (string, error) {
	if known != "" {
		return known, nil
	}
	found, err := c.find(ctx, eventID)
	if err != nil {
		return "", err
	}
	if found.RemoteID == "" {
		return "", fmt.Errorf("event %s: %w", eventID, store.ErrNotFound)
	}
	return found.RemoteID, nil
}

// IsNotFound reports whether err means the event exists in no active store.
func IsNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
