package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validEvent() *Event {
	t0 := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	return &Event{
		ID:     "evt-1",
		Title:  "Flash Sale",
		Start:  t0,
		End:    t0.Add(2 * time.Hour),
		Type:   TypePromotion,
		Status: StatusActive,
	}
}

func TestEvent_Validate_Valid(t *testing.T) {
	assert.NoError(t, validEvent().Validate())
}

func TestEvent_Validate_MissingTitle(t *testing.T) {
	e := validEvent()
	e.Title = ""
	assert.Error(t, e.Validate())
}

func TestEvent_Validate_MissingDates(t *testing.T) {
	e := validEvent()
	e.Start = time.Time{}
	assert.Error(t, e.Validate())

	e = validEvent()
	e.End = time.Time{}
	assert.Error(t, e.Validate())
}

func TestEvent_Validate_EndBeforeStartAllowed(t *testing.T) {
	e := validEvent()
	e.End = e.Start.Add(-time.Hour)
	assert.NoError(t, e.Validate())
}

func TestEvent_Validate_InvalidType(t *testing.T) {
	e := validEvent()
	e.Type = "meeting"
	assert.Error(t, e.Validate())
}

func TestEvent_Validate_InvalidStatus(t *testing.T) {
	e := validEvent()
	e.Status = "Pending"
	assert.Error(t, e.Validate())
}

func TestEvent_IsNew(t *testing.T) {
	e := validEvent()
	assert.False(t, e.IsNew())
	e.ID = ""
	assert.True(t, e.IsNew())
}

func TestParseEventType(t *testing.T) {
	tests := []struct {
		in   string
		want EventType
		ok   bool
	}{
		{"order", TypeOrder, true},
		{"Inventory", TypeInventory, true},
		{" MARKETING ", TypeMarketing, true},
		{"promotion", TypePromotion, true},
		{"meeting", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseEventType(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseStatus(t *testing.T) {
	got, ok := ParseStatus("Completed")
	assert.True(t, ok)
	assert.Equal(t, StatusCompleted, got)

	_, ok = ParseStatus("done")
	assert.False(t, ok)
}

func TestFallbackVariantsComeFirst(t *testing.T) {
	assert.Equal(t, TypeOrder, EventTypes[0])
	assert.Equal(t, StatusPending, Statuses[0])
}

func TestSortByStart(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []Event{
		{ID: "c", Start: t0.Add(2 * time.Hour)},
		{ID: "b", Start: t0},
		{ID: "a", Start: t0},
		{ID: "d", Start: t0.Add(time.Hour)},
	}
	SortByStart(events)

	var ids []string
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"a", "b", "d", "c"}, ids)
}

func TestIndexOf(t *testing.T) {
	events := []Event{{ID: "a"}, {ID: "b"}}
	assert.Equal(t, 1, IndexOf(events, "b"))
	assert.Equal(t, -1, IndexOf(events, "z"))
	assert.Equal(t, -1, IndexOf(events, ""))
}
