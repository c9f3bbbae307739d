// Package ics converts events to and from iCalendar.
package ics

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/rogersnm/calsync/internal/codec"
	"github.com/rogersnm/calsync/internal/model"
)

const (
	productID = "-//calsync//calsync//EN"
	uidSuffix = "@calsync"

	// statusProperty keeps the exact event status; VEVENT STATUS has no
	// "completed".
	statusProperty ical.ComponentProperty = "X-CALSYNC-STATUS"
)

// Calendar builds a VCALENDAR with one VEVENT per event. stamp becomes every
// event's DTSTAMP.
func Calendar(events []model.Event, stamp time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, e := range events {
		ve := cal.AddEvent(e.ID + uidSuffix)
		ve.SetDtStampTime(stamp.UTC())
		ve.SetStartAt(e.Start.UTC())
		ve.SetEndAt(e.End.UTC())
		ve.SetSummary(e.Title)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		ve.SetProperty(ical.ComponentPropertyCategories, string(e.Type))
		ve.SetProperty(ical.ComponentPropertyStatus, vStatus(e.Status))
		ve.SetProperty(statusProperty, string(e.Status))
	}
	return cal
}

// Write serializes events as an iCalendar document.
func Write(w io.Writer, events []model.Event, stamp time.Time) error {
	if _, err := io.WriteString(w, Calendar(events, stamp).Serialize()); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}
	return nil
}

func vStatus(s model.Status) string {
	switch s {
	case model.StatusPending:
		return "TENTATIVE"
	case model.StatusActive, model.StatusCompleted:
		return "CONFIRMED"
	}
	return "TENTATIVE"
}

// Read parses an iCalendar document. Events written by Write come back with
// their ids; foreign events get an empty id so they are created as new.
// VEVENTs without a summary or start are skipped and counted.
func Read(r io.Reader) ([]model.Event, int, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, 0, fmt.Errorf("parsing calendar: %w", err)
	}

	var events []model.Event
	skipped := 0
	for _, ve := range cal.Events() {
		e, err := fromVEvent(ve)
		if err != nil {
			skipped++
			continue
		}
		events = append(events, e)
	}
	return events, skipped, nil
}

func fromVEvent(ve *ical.VEvent) (model.Event, error) {
	var e model.Event

	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		if id, ok := strings.CutSuffix(p.Value, uidSuffix); ok {
			e.ID = id
		}
	}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		e.Title = strings.TrimSpace(p.Value)
	}
	if e.Title == "" {
		return e, errors.New("missing summary")
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		e.Description = p.Value
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return e, err
	}
	end, err := ve.GetEndAt()
	if err != nil {
		end = start
	}
	e.Start = codec.Normalize(start)
	e.End = codec.Normalize(end)

	e.Type = model.EventTypes[0]
	if p := ve.GetProperty(ical.ComponentPropertyCategories); p != nil {
		for _, c := range strings.Split(p.Value, ",") {
			if t, ok := model.ParseEventType(c); ok {
				e.Type = t
				break
			}
		}
	}

	e.Status = model.Statuses[0]
	if p := ve.GetProperty(statusProperty); p != nil {
		if s, ok := model.ParseStatus(p.Value); ok {
			e.Status = s
		}
	} else if p := ve.GetProperty(ical.ComponentPropertyStatus); p != nil && strings.EqualFold(p.Value, "CONFIRMED") {
		e.Status = model.StatusActive
	}
	return e, nil
}
