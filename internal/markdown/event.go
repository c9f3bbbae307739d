package markdown

import (
	"fmt"
	"io"
	"strings"

	"github.com/rogersnm/calsync/internal/codec"
	"github.com/rogersnm/calsync/internal/model"
)

// ParseEvent reads an event file: the event fields as frontmatter and the
// description as the body. An omitted type or status takes the first
// variant; an unknown one is an error.
func ParseEvent(r io.Reader) (model.Event, error) {
	e, body, err := Parse[model.Event](r)
	if err != nil {
		return model.Event{}, err
	}
	e.Description = body

	if e.Type == "" {
		e.Type = model.EventTypes[0]
	} else if t, ok := model.ParseEventType(string(e.Type)); ok {
		e.Type = t
	} else {
		return model.Event{}, model.ValidateEventType(e.Type)
	}
	if e.Status == "" {
		e.Status = model.Statuses[0]
	} else if s, ok := model.ParseStatus(string(e.Status)); ok {
		e.Status = s
	} else {
		return model.Event{}, model.ValidateStatus(e.Status)
	}

	e.ID = strings.TrimSpace(e.ID)
	e.Title = strings.TrimSpace(e.Title)
	e.Start = codec.Normalize(e.Start)
	e.End = codec.Normalize(e.End)
	if err := e.Validate(); err != nil {
		return model.Event{}, fmt.Errorf("event file: %w", err)
	}
	return e, nil
}

// MarshalEvent writes e in the form ParseEvent reads.
func MarshalEvent(e model.Event) ([]byte, error) {
	return Marshal(e, e.Description)
}
