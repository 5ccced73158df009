package transcript

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Format selects an export rendering of a session summary.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// ParseFormat maps a wire value to a Format. "plain_text" is accepted
// as an alias for text for compatibility with older archives.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "plain_text", "txt":
		return FormatText, nil
	default:
		return "", fmt.Errorf("transcript: unsupported export format %q", s)
	}
}

// Export renders the summary in the given format.
func Export(s Summary, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(s, "", "  ")
	case FormatMarkdown:
		return []byte(exportMarkdown(s)), nil
	case FormatText:
		return []byte(exportText(s)), nil
	default:
		return nil, fmt.Errorf("transcript: unsupported export format %q", format)
	}
}

func exportMarkdown(s Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Techronicle Newsroom Session %s\n\n", s.SessionID)
	fmt.Fprintf(&b, "**Started:** %s\n", s.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "**Participants:** %s\n\n", strings.Join(s.Participants, ", "))

	b.WriteString("## Conversation\n\n")
	for _, t := range s.Turns {
		fmt.Fprintf(&b, "**%s** *[%s]*: %s\n\n", t.Speaker, t.ProducedAt.Format("15:04:05"), t.Text)
	}

	if len(s.Decisions) > 0 {
		b.WriteString("## Editorial Decisions\n\n")
		for _, d := range s.Decisions {
			label := "approved"
			if d.Forced {
				label = "approved by editorial override"
			}
			fmt.Fprintf(&b, "- **%s**: %s %s\n", d.DecisionMaker, label, decisionTitles(s, d))
		}
		b.WriteString("\n")
	}

	if len(s.SelectedItems) > 0 {
		b.WriteString("## Published\n\n")
		for _, it := range s.SelectedItems {
			fmt.Fprintf(&b, "- [%s](%s) (%s, relevance %.2f)\n", it.Title, it.Link, it.Source, it.Relevance)
		}
	}
	return b.String()
}

func exportText(s Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Techronicle Newsroom Session %s\n", s.SessionID)
	b.WriteString(strings.Repeat("=", 50) + "\n\n")
	for _, t := range s.Turns {
		fmt.Fprintf(&b, "[%s] %s: %s\n", t.ProducedAt.Format("15:04:05"), t.Speaker, t.Text)
	}
	if len(s.SelectedItems) > 0 {
		b.WriteString("\nApproved for publication:\n")
		for _, it := range s.SelectedItems {
			fmt.Fprintf(&b, "  - %s (%s)\n", it.Title, it.Source)
		}
	}
	return b.String()
}

func decisionTitles(s Summary, d Decision) string {
	byID := make(map[string]string, len(s.Items))
	for _, it := range s.Items {
		byID[it.ID] = it.Title
	}
	titles := make([]string, 0, len(d.ItemIDs))
	for _, id := range d.ItemIDs {
		if t, ok := byID[id]; ok {
			titles = append(titles, fmt.Sprintf("%q", t))
		}
	}
	return strings.Join(titles, ", ")
}
