package markdown

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rogersnm/calsync/internal/model"
)

var (
	headerRowStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cellStyle      = lipgloss.NewStyle()
)

func RenderEventTable(events []model.Event) string {
	if len(events) == 0 {
		return "No events found."
	}
	rows := make([][]string, len(events))
	for i, e := range events {
		rows[i] = []string{
			e.ID,
			e.Title,
			TypeStyle(e.Type).Render(string(e.Type)),
			StatusStyle(e.Status).Render(string(e.Status)),
			e.Start.Local().Format(displayTime),
			e.End.Local().Format(displayTime),
			RenderSynced(e),
		}
	}
	return renderTable([]string{"ID", "Title", "Type", "Status", "Start", "End", "Remote"}, rows)
}

func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Headers(headers...).
		Rows(rows...).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerRowStyle
			}
			return cellStyle
		})
	return t.Render()
}
