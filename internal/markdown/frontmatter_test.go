package markdown

import (
	"strings"
	"testing"
	"time"

	"github.com/rogersnm/calsync/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testMeta struct {
	ID    string    `yaml:"id"`
	Title string    `yaml:"title"`
	Tags  []string  `yaml:"tags,omitempty"`
	Start time.Time `yaml:"start"`
}

func TestParse_AllFields(t *testing.T) {
	input := `---
id: 0190c2f4-0000-7000-8000-000000000001
title: "Spring sale"
tags:
  - retail
  - q2
start: 2026-03-15T10:00:00Z
---

Discounts on everything.
`
	meta, body, err := Parse[testMeta](strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "0190c2f4-0000-7000-8000-000000000001", meta.ID)
	assert.Equal(t, "Spring sale", meta.Title)
	assert.Equal(t, []string{"retail", "q2"}, meta.Tags)
	assert.True(t, meta.Start.Equal(time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Discounts on everything.", body)
}

func TestParse_NoFrontmatter(t *testing.T) {
	meta, body, err := Parse[testMeta](strings.NewReader("Just some plain markdown."))
	require.NoError(t, err)
	assert.Equal(t, "", meta.ID)
	assert.Equal(t, "Just some plain markdown.", body)
}

func TestParse_MalformedYAML(t *testing.T) {
	_, _, err := Parse[testMeta](strings.NewReader("---\n{{invalid yaml\n---\n"))
	assert.Error(t, err)
}

func TestMarshal_PreservesBody(t *testing.T) {
	body := "Line 1\n\n- item\n- item\n\n**Bold** and *italic*"
	data, err := Marshal(testMeta{ID: "x", Title: "Notes"}, body)
	require.NoError(t, err)

	_, parsedBody, err := Parse[testMeta](strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Equal(t, body, parsedBody)
}

func TestMarshal_TrailingNewlines(t *testing.T) {
	data, err := Marshal(testMeta{ID: "x", Title: "Notes"}, "Body\n\n\n")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "---\n\nBody\n"))

	data, err = Marshal(testMeta{ID: "x", Title: "Notes"}, "\n")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "---\n"))
}

func TestParse_MalformedYAMLNamesEventHeader(t *testing.T) {
	_, _, err := Parse[testMeta](strings.NewReader("---\n{{invalid yaml\n---\n"))
	assert.ErrorContains(t, err, "reading event header")
}

func TestMarshal_EmptyBody(t *testing.T) {
	data, err := Marshal(testMeta{ID: "x", Title: "No Body"}, "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "---\n"))

	_, body, err := Parse[testMeta](strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Equal(t, "", body)
}

func TestEventFile_RoundTrip(t *testing.T) {
	t0 := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	e := model.Event{
		ID: "evt-1", Title: "Stock count", Description: "Count the **back room** too.",
		Start: t0, End: t0.Add(3 * time.Hour),
		Type: model.TypeInventory, Status: model.StatusActive, RemoteID: "rec123",
	}

	data, err := MarshalEvent(e)
	require.NoError(t, err)
	assert.Contains(t, string(data), "remote_id: rec123")
	assert.NotContains(t, string(data), "description")

	got, err := ParseEvent(strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Equal(t, e, got)
}

func TestParseEvent_Defaults(t *testing.T) {
	input := `---
title: "  Newsletter  "
start: 2026-06-01
end: 2026-06-01T12:00:00+02:00
---
`
	e, err := ParseEvent(strings.NewReader(input))
	require.NoError(t, err)
	assert.True(t, e.IsNew())
	assert.Equal(t, "Newsletter", e.Title)
	assert.Equal(t, model.TypeOrder, e.Type)
	assert.Equal(t, model.StatusPending, e.Status)
	assert.Equal(t, time.UTC, e.End.Location())
	assert.Equal(t, 10, e.End.Hour())
	assert.Empty(t, e.Description)
}

func TestParseEvent_CaseInsensitiveEnums(t *testing.T) {
	input := "---\ntitle: X\nstart: 2026-06-01\nend: 2026-06-02\ntype: Marketing\nstatus: COMPLETED\n---\n"
	e, err := ParseEvent(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, model.TypeMarketing, e.Type)
	assert.Equal(t, model.StatusCompleted, e.Status)
}

func TestParseEvent_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown type", "---\ntitle: X\nstart: 2026-06-01\nend: 2026-06-02\ntype: party\n---\n"},
		{"unknown status", "---\ntitle: X\nstart: 2026-06-01\nend: 2026-06-02\nstatus: done\n---\n"},
		{"missing title", "---\nstart: 2026-06-01\nend: 2026-06-02\n---\n"},
		{"missing start", "---\ntitle: X\nend: 2026-06-02\n---\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEvent(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}
