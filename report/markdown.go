package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pilgrim-ai/pilgrim/store"
)

// Markdown renders a run record as a Markdown document.
func Markdown(r *store.RunRecord) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Run %s\n\n", r.ID)
	fmt.Fprintf(&sb, "- **Question:** %s\n", oneLine(r.Question))
	fmt.Fprintf(&sb, "- **Status:** %s\n", r.Status)
	fmt.Fprintf(&sb, "- **Steps:** %d\n", r.Steps)
	if !r.StartedAt.IsZero() {
		fmt.Fprintf(&sb, "- **Duration:** %v\n", r.Duration().Round(1e6))
	}
	if r.Error != "" {
		fmt.Fprintf(&sb, "- **Error:** `%s`\n", r.Error)
	}

	if r.Answer != "" {
		sb.WriteString("\n## Answer\n\n")
		sb.WriteString(r.Answer)
		sb.WriteString("\n")
	}

	sb.WriteString("\n## Transcript\n")
	for i, m := range r.Messages {
		fmt.Fprintf(&sb, "\n### %d. %s\n", i+1, m.Role)
		for _, p := range m.Parts {
			sb.WriteString("\n")
			switch p.Type {
			case store.PartText:
				sb.WriteString(p.Text)
				sb.WriteString("\n")
			case store.PartToolCall:
				fmt.Fprintf(&sb, "Calls `%s` (%s):\n\n```json\n%s\n```\n", p.Name, p.ToolCallID, prettyJSON(p.Arguments))
			case store.PartToolResult:
				fmt.Fprintf(&sb, "Result of `%s` (%s):\n\n```\n%s\n```\n", p.Name, p.ToolCallID, p.Text)
			}
		}
	}
	return sb.String()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func prettyJSON(s string) string {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return s
	}
	return string(out)
}
