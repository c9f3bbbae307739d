package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rogersnm/calsync/internal/codec"
	"github.com/rogersnm/calsync/internal/model"
	"github.com/rogersnm/calsync/internal/store"
)

// memCache is an in-memory store.Cache.
type memCache struct {
	events  []model.Event
	saveErr error
	saves   int
}

func (m *memCache) Load(context.Context) []model.Event {
	out := make([]model.Event, len(m.events))
	copy(out, m.events)
	return out
}

func (m *memCache) Save(_ context.Context, events []model.Event) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.events = append([]model.Event(nil), events...)
	return nil
}

// fakeRemote is an in-memory store.Remote that records every call.
type fakeRemote struct {
	records []model.Event
	nextRID int

	listErr, createErr, updateErr, deleteErr, findErr error

	listCalls   int
	createCalls [][]model.Event
	updateCalls []string
	deleteCalls []string
	findCalls   []string
}

func (f *fakeRemote) List(context.Context) ([]model.Event, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]model.Event{}, f.records...), nil
}

func (f *fakeRemote) Create(_ context.Context, events ...model.Event) ([]model.Event, error) {
	f.createCalls = append(f.createCalls, events)
	if f.createErr != nil {
		return nil, f.createErr
	}
	var out []model.Event
	for _, e := range events {
		f.nextRID++
		e.RemoteID = fmt.Sprintf("rec%d", f.nextRID)
		f.records = append(f.records, e)
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeRemote) Update(_ context.Context, remoteID string, e model.Event) (model.Event, error) {
	f.updateCalls = append(f.updateCalls, remoteID)
	if f.updateErr != nil {
		return model.Event{}, f.updateErr
	}
	for i, r := range f.records {
		if r.RemoteID == remoteID {
			f.records[i] = patch(r, e)
			return f.records[i], nil
		}
	}
	return model.Event{}, &store.RemoteError{Op: "remote.update", Status: 404, Kind: store.ErrRemoteRejected}
}

// patch applies e to stored the way the table API applies a PATCH: only
// fields present in the encoded body change.
func patch(stored, e model.Event) model.Event {
	rec := codec.ToRemote(stored)
	body, err := json.Marshal(codec.ToRemote(e).Fields)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(body, &rec.Fields); err != nil {
		panic(err)
	}
	return codec.FromRemote(rec)
}

func (f *fakeRemote) Delete(_ context.Context, remoteID string) error {
	f.deleteCalls = append(f.deleteCalls, remoteID)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, r := range f.records {
		if r.RemoteID == remoteID {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return &store.RemoteError{Op: "remote.delete", Status: 404, Kind: store.ErrRemoteRejected}
}

func (f *fakeRemote) Find(_ context.Context, eventID string) (model.Event, error) {
	f.findCalls = append(f.findCalls, eventID)
	if f.findErr != nil {
		return model.Event{}, f.findErr
	}
	for _, r := range f.records {
		if r.ID == eventID {
			return r, nil
		}
	}
	return model.Event{}, fmt.Errorf("remote %s: %w", eventID, store.ErrNotFound)
}

func (f *fakeRemote) ids() []string {
	var ids []string
	for _, r := range f.records {
		ids = append(ids, r.ID)
	}
	return ids
}

var (
	errOffline  = &store.RemoteError{Op: "remote", Message: "connection refused", Kind: store.ErrRemoteUnavailable}
	errRejected = &store.RemoteError{Op: "remote", Status: 422, Message: "bad field", Kind: store.ErrRemoteRejected}
)

var t0 = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

func ev(id string) model.Event {
	return model.Event{
		ID: id, Title: "Event " + id, Start: t0, End: t0.Add(time.Hour),
		Type: model.TypeOrder, Status: model.StatusPending,
	}
}

func seqIDs() func() (string, error) {
	n := 0
	return func() (string, error) {
		n++
		return fmt.Sprintf("gen-%d", n), nil
	}
}
