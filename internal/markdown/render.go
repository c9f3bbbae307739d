package markdown

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/rogersnm/calsync/internal/model"
)

const displayTime = "2006-01-02 15:04"

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	activeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	completedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	localOnlyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	// Colours follow the calendar legend.
	typeColors = map[model.EventType]lipgloss.Color{
		model.TypeOrder:     lipgloss.Color("12"),
		model.TypeInventory: lipgloss.Color("10"),
		model.TypeMarketing: lipgloss.Color("13"),
		model.TypePromotion: lipgloss.Color("214"),
	}
)

func RenderMarkdown(content string) (string, error) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return "", fmt.Errorf("creating renderer: %w", err)
	}
	out, err := r.Render(content)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}

func StatusStyle(s model.Status) lipgloss.Style {
	switch s {
	case model.StatusCompleted:
		return completedStyle
	case model.StatusActive:
		return activeStyle
	default:
		return pendingStyle
	}
}

func TypeStyle(t model.EventType) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(typeColors[t])
}

func RenderField(label, value string) string {
	return labelStyle.Render(label+":") + " " + value
}

// RenderSynced marks events the remote has not acknowledged yet.
func RenderSynced(e model.Event) string {
	if e.RemoteID == "" {
		return localOnlyStyle.Render("local")
	}
	return e.RemoteID
}

// RenderEventHeader is the title line and field list shown above an event's
// description.
func RenderEventHeader(e model.Event) string {
	fields := []string{
		RenderField("ID", e.ID),
		RenderField("Type", TypeStyle(e.Type).Render(string(e.Type))),
		RenderField("Status", StatusStyle(e.Status).Render(string(e.Status))),
		RenderField("Start", e.Start.Local().Format(displayTime)),
		RenderField("End", e.End.Local().Format(displayTime)),
		RenderField("Remote", RenderSynced(e)),
	}
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(e.Title))
	sb.WriteString("\n")
	for _, f := range fields {
		sb.WriteString("  " + f + "\n")
	}
	return sb.String()
}
