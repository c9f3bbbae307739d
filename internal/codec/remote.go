package codec

import (
	"strings"
	"unicode"

	"github.com/rogersnm/calsync/internal/model"
)

// RemoteFields is the field map stored in the remote table. Field names are
// fixed by the table schema. Every field is always sent, so an update that
// clears a value clears it on the remote too.
type RemoteFields struct {
	ID          string `json:"ID"`
	Title       string `json:"Title"`
	Description string `json:"Description"`
	StartDate   string `json:"StartDate"`
	EndDate     string `json:"EndDate"`
	Type        string `json:"Type"`
	Status      string `json:"Status"`
}

// RemoteRecord is one row of the remote table. ID is assigned by the remote
// service and is distinct from Fields.ID, the event's own id.
type RemoteRecord struct {
	ID          string       `json:"id,omitempty"`
	CreatedTime string       `json:"createdTime,omitempty"`
	Fields      RemoteFields `json:"fields"`
}

// Valid reports whether the record carries everything an event needs. Records
// that fail are skipped by callers rather than aborting a bulk read.
func (r RemoteRecord) Valid() bool {
	f := r.Fields
	if f.ID == "" || f.Title == "" || f.StartDate == "" || f.EndDate == "" {
		return false
	}
	if _, err := ParseTime(f.StartDate); err != nil {
		return false
	}
	if _, err := ParseTime(f.EndDate); err != nil {
		return false
	}
	return true
}

func ToRemote(e model.Event) RemoteRecord {
	return RemoteRecord{
		ID: e.RemoteID,
		Fields: RemoteFields{
			ID:          e.ID,
			Title:       e.Title,
			Description: e.Description,
			StartDate:   FormatTime(e.Start),
			EndDate:     FormatTime(e.End),
			Type:        capitalize(string(e.Type)),
			Status:      capitalize(string(e.Status)),
		},
	}
}

// FromRemote decodes a record. Call Valid first; timestamps that fail to
// parse decode as the zero time.
func FromRemote(r RemoteRecord) model.Event {
	start, _ := ParseTime(r.Fields.StartDate)
	end, _ := ParseTime(r.Fields.EndDate)
	return model.Event{
		ID:          r.Fields.ID,
		Title:       r.Fields.Title,
		Description: r.Fields.Description,
		Start:       start,
		End:         end,
		Type:        decodeType(r.Fields.Type),
		Status:      decodeStatus(r.Fields.Status),
		RemoteID:    r.ID,
	}
}

// capitalize turns a lowercase token into the remote's capitalized-word form.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	s = strings.ToLower(s)
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
