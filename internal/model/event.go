package model

import (
	"fmt"
	"sort"
	"time"
)

// Event is the unit of persistence. An empty ID marks an event that has not
// been saved yet.
type Event struct {
	ID          string    `yaml:"id"`
	Title       string    `yaml:"title"`
	Description string    `yaml:"-"`
	Start       time.Time `yaml:"start"`
	End         time.Time `yaml:"end"`
	Type        EventType `yaml:"type"`
	Status      Status    `yaml:"status"`
	RemoteID    string    `yaml:"remote_id,omitempty"`
}

// IsNew reports whether the event still needs an id.
func (e *Event) IsNew() bool {
	return e.ID == ""
}

// Validate checks the fields a caller must supply. Start/end ordering is not
// checked here.
func (e *Event) Validate() error {
	if e.Title == "" {
		return fmt.Errorf("event title is required")
	}
	if e.Start.IsZero() {
		return fmt.Errorf("event start is required")
	}
	if e.End.IsZero() {
		return fmt.Errorf("event end is required")
	}
	if err := ValidateEventType(e.Type); err != nil {
		return err
	}
	return ValidateStatus(e.Status)
}

// SortByStart orders events by start ascending, ties broken by id.
func SortByStart(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Start.Equal(events[j].Start) {
			return events[i].ID < events[j].ID
		}
		return events[i].Start.Before(events[j].Start)
	})
}

// IndexOf returns the position of the event with the given id, or -1.
func IndexOf(events []Event, id string) int {
	if id == "" {
		return -1
	}
	for i := range events {
		if events[i].ID == id {
			return i
		}
	}
	return -1
}
