package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pilgrim-ai/pilgrim/store"
)

// Theme holds the lipgloss styles of the terminal transcript.
type Theme struct {
	Title    lipgloss.Style
	Role     map[string]lipgloss.Style
	ToolCall lipgloss.Style
	Result   lipgloss.Style
	Answer   lipgloss.Style
	Error    lipgloss.Style
	Muted    lipgloss.Style
}

// DefaultTheme returns the styles used by Terminal.
func DefaultTheme() Theme {
	return Theme{
		Title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		Role: map[string]lipgloss.Style{
			"human":  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
			"ai":     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170")),
			"tool":   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
			"system": lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245")),
		},
		ToolCall: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Result:   lipgloss.NewStyle().Foreground(lipgloss.Color("250")).PaddingLeft(2),
		Answer: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("170")).
			Padding(0, 1),
		Error: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		Muted: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// Terminal renders the transcript of a run for a terminal.
func Terminal(r *store.RunRecord, theme Theme) string {
	var lines []string
	lines = append(lines, theme.Title.Render("pilgrim run "+r.ID))

	for _, m := range r.Messages {
		style, ok := theme.Role[m.Role]
		if !ok {
			style = theme.Muted
		}
		lines = append(lines, style.Render(m.Role+":"))
		for _, p := range m.Parts {
			switch p.Type {
			case store.PartText:
				if p.Text != "" {
					lines = append(lines, "  "+p.Text)
				}
			case store.PartToolCall:
				lines = append(lines, theme.ToolCall.Render(fmt.Sprintf("  -> %s(%s)", p.Name, p.Arguments)))
			case store.PartToolResult:
				lines = append(lines, theme.Result.Render(truncate(p.Text, 400)))
			}
		}
	}

	if r.Answer != "" {
		lines = append(lines, "", theme.Answer.Render(r.Answer))
	}
	if r.Error != "" {
		lines = append(lines, "", theme.Error.Render("error: "+r.Error))
	}
	lines = append(lines, theme.Muted.Render(fmt.Sprintf("%s in %d steps, %v", r.Status, r.Steps, r.Duration().Round(1e6))))

	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
