// Package observe carries non-fatal failures out of the persistence core.
// Operations that absorb an error (cache write failures, remote fallbacks,
// dropped records) report a Notice instead of swallowing it.
package observe

import (
	"sync"

	"github.com/rs/zerolog"
)

// Notice describes one absorbed failure.
type Notice struct {
	Op    string // operation that absorbed the failure, e.g. "load", "cache.save"
	Err   error
	Count int // number of records affected, when meaningful
}

type Sink interface {
	Report(Notice)
}

// Discard drops every notice.
var Discard Sink = discard{}

type discard struct{}

func (discard) Report(Notice) {}

// LogSink writes notices to a zerolog logger at warn level.
type LogSink struct {
	Logger zerolog.Logger
}

func NewLogSink(l zerolog.Logger) *LogSink {
	return &LogSink{Logger: l}
}

func (s *LogSink) Report(n Notice) {
	ev := s.Logger.Warn().Str("op", n.Op)
	if n.Count > 0 {
		ev = ev.Int("count", n.Count)
	}
	ev.Err(n.Err).Msg("absorbed failure")
}

// Recorder keeps notices in memory.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Report(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of everything reported so far.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Ops returns the Op of every notice in report order.
func (r *Recorder) Ops() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ops := make([]string, len(r.notices))
	for i, n := range r.notices {
		ops[i] = n.Op
	}
	return ops
}

// Multi fans a notice out to several sinks.
func Multi(sinks ...Sink) Sink {
	return multi(sinks)
}

type multi []Sink

func (m multi) Report(n Notice) {
	for _, s := range m {
		s.Report(n)
	}
}
