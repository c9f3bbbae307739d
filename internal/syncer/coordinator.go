// Package syncer routes event reads and writes to the local cache, the remote
// table, or both, according to a mode fixed at construction. It owns the
// fallback policy and the additive reconciliation between the two stores.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rogersnm/calsync/internal/id"
	"github.com/rogersnm/calsync/internal/mode"
	"github.com/rogersnm/calsync/internal/model"
	"github.com/rogersnm/calsync/internal/observe"
	"github.com/rogersnm/calsync/internal/store"
)

// DefaultTimeout bounds every remote call so that a hung request resolves
// to store.ErrRemoteUnavailable and the cache fallback stays reachable.
const DefaultTimeout = 15 * time.Second

// ErrEmptyID is returned for update or delete of an event that was never
// created.
var ErrEmptyID = errors.New("event has no id")

// ErrDuplicateID is returned when a create names an id that is already taken.
var ErrDuplicateID = errors.New("already exists")

// Coordinator is the only component that sees both stores. It keeps no
// state between calls apart from its mode.
type Coordinator struct {
	mode    mode.Mode
	cache   store.Cache
	remote  store.Remote
	sink    observe.Sink
	timeout time.Duration
	newID   func() (string, error)
}

type Option func(*Coordinator)

func WithSink(s observe.Sink) Option {
	return func(c *Coordinator) {
		if s != nil {
			c.sink = s
		}
	}
}

// WithTimeout sets the per-call remote deadline. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.timeout = d }
}

func WithIDFunc(f func() (string, error)) Option {
	return func(c *Coordinator) {
		if f != nil {
			c.newID = f
		}
	}
}

// New builds a coordinator. remote may be nil in local-only mode and cache may
// be nil in remote-only mode.
func New(m mode.Mode, cache store.Cache, remote store.Remote, opts ...Option) (*Coordinator, error) {
	if m.UsesCache() && cache == nil {
		return nil, fmt.Errorf("mode %s needs a local cache", m)
	}
	if m.UsesRemote() && remote == nil {
		return nil, fmt.Errorf("mode %s needs a remote store", m)
	}
	c := &Coordinator{
		mode:    m,
		cache:   cache,
		remote:  remote,
		sink:    observe.Discard,
		timeout: DefaultTimeout,
		newID:   id.New,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *Coordinator) Mode() mode.Mode {
	return c.mode
}

func (c *Coordinator) remoteCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Coordinator) report(op string, err error, count int) {
	c.sink.Report(observe.Notice{Op: op, Err: err, Count: count})
}

func unavailable(err error) bool {
	return errors.Is(err, store.ErrRemoteUnavailable)
}

// --- remote calls with the per-call deadline applied ---

func (c *Coordinator) list(ctx context.Context) ([]model.Event, error) {
	ctx, cancel := c.remoteCtx(ctx)
	defer cancel()
	return c.remote.List(ctx)
}

func (c *Coordinator) create(ctx context.Context, events ...model.Event) ([]model.Event, error) {
	ctx, cancel := c.remoteCtx(ctx)
	defer cancel()
	return c.remote.Create(ctx, events...)
}

func (c *Coordinator) update(ctx context.Context, remoteID string, e model.Event) (model.Event, error) {
	ctx, cancel := c.remoteCtx(ctx)
	defer cancel()
	return c.remote.Update(ctx, remoteID, e)
}

func (c *Coordinator) delete(ctx context.Context, remoteID string) error {
	ctx, cancel := c.remoteCtx(ctx)
	defer cancel()
	return c.remote.Delete(ctx, remoteID)
}

func (c *Coordinator) find(ctx context.Context, eventID string) (model.Event, error) {
	ctx, cancel := c.remoteCtx(ctx)
	defer cancel()
	return c.remote.Find(ctx, eventID)
}
