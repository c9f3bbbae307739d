// Package codec converts events between the domain model and the two storage
// encodings: the local cache's JSON records and the remote table's field map.
package codec

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rogersnm/calsync/internal/model"
)

// TimeLayout is ISO-8601 with millisecond precision, the shape every stored
// timestamp takes.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

var ErrBadTimestamp = errors.New("unparseable timestamp")

// LocalRecord is the cached form of an event.
type LocalRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	RemoteID    string `json:"remoteId,omitempty"`
}

func ToLocal(e model.Event) LocalRecord {
	return LocalRecord{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Start:       FormatTime(e.Start),
		End:         FormatTime(e.End),
		Type:        string(e.Type),
		Status:      string(e.Status),
		RemoteID:    e.RemoteID,
	}
}

func FromLocal(r LocalRecord) (model.Event, error) {
	start, err := ParseTime(r.Start)
	if err != nil {
		return model.Event{}, fmt.Errorf("event %q start: %w", r.ID, err)
	}
	end, err := ParseTime(r.End)
	if err != nil {
		return model.Event{}, fmt.Errorf("event %q end: %w", r.ID, err)
	}
	return model.Event{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Start:       start,
		End:         end,
		Type:        decodeType(r.Type),
		Status:      decodeStatus(r.Status),
		RemoteID:    r.RemoteID,
	}, nil
}

// FormatTime renders t in UTC with millisecond precision.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime accepts any RFC 3339 timestamp and normalizes it to UTC,
// truncated to the millisecond.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrBadTimestamp)
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, s)
	}
	return Normalize(t), nil
}

// Normalize is the precision every stored timestamp is reduced to.
func Normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

func decodeType(s string) model.EventType {
	if t, ok := model.ParseEventType(s); ok {
		return t
	}
	return model.EventTypes[0]
}

func decodeStatus(s string) model.Status {
	if st, ok := model.ParseStatus(s); ok {
		return st
	}
	return model.Statuses[0]
}
