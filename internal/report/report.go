// Package report renders a saved preference profile as a Markdown report or a
// JSON export document.
package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/steveyegge/esgmatch/internal/conversation"
	"github.com/steveyegge/esgmatch/internal/types"
)

// Format selects an export encoding
type Format string

const (
	FormatMarkdown Format = "md"
	FormatJSON     Format = "json"
)

// IsValid checks if the format value is valid
func (f Format) IsValid() bool {
	switch f {
	case FormatMarkdown, FormatJSON:
		return true
	}
	return false
}

// Markdown builds the preference report for p
func Markdown(p *conversation.Profile) string {
	var b strings.Builder
	b.WriteString("# Your ESG Investment Preference Profile\n\n")

	sum := p.Summary
	if len(sum.High) > 0 {
		b.WriteString("## Top Priorities\n\n")
		for _, item := range sum.High {
			fmt.Fprintf(&b, "### %s\n", item.Name)
			if item.Notes != "" {
				fmt.Fprintf(&b, "%s\n", item.Notes)
			}
			if len(item.Mentions) > 0 {
				b.WriteString("\n**Specific interests:**\n")
				for _, m := range item.Mentions {
					fmt.Fprintf(&b, "- %s\n", m)
				}
			}
			b.WriteString("\n")
		}
	}

	if len(sum.Medium) > 0 {
		b.WriteString("## Areas of Interest\n\n")
		for _, item := range sum.Medium {
			fmt.Fprintf(&b, "- **%s**", item.Name)
			if item.Notes != "" {
				fmt.Fprintf(&b, ": %s", item.Notes)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(sum.Low) > 0 {
		b.WriteString("## Low Priority Areas\n\n")
		b.WriteString(strings.Join(names(sum.Low), ", "))
		b.WriteString("\n\n")
	}

	if len(sum.Uncertain) > 0 {
		b.WriteString("## Areas for Further Discussion\n\n")
		b.WriteString("You expressed uncertainty about: ")
		b.WriteString(strings.Join(names(sum.Uncertain), ", "))
		b.WriteString("\n\nThese might be worth exploring further with your advisor.\n\n")
	}

	writeFieldPriorities(&b, p.Priorities)

	b.WriteString("\n---\n\n")
	fmt.Fprintf(&b, "*Based on conversation covering %d of %d ESG topic areas*\n",
		sum.TopicsExplored, sum.TopicsTotal)
	return b.String()
}

func writeFieldPriorities(b *strings.Builder, rows []conversation.PriorityRow) {
	if len(rows) == 0 {
		return
	}
	byImportance := make(map[types.Importance][]conversation.PriorityRow)
	for _, r := range rows {
		byImportance[r.Importance] = append(byImportance[r.Importance], r)
	}

	b.WriteString("## Field Priorities\n\n")
	for _, imp := range types.AllImportances() {
		group := byImportance[imp]
		if len(group) == 0 {
			continue
		}
		label := string(imp)
		fmt.Fprintf(b, "### %s%s\n\n", strings.ToUpper(label[:1]), label[1:])
		for _, r := range group {
			path := r.Pillar + " > " + r.Issue
			if r.SubIssue != "" {
				path += " > " + r.SubIssue
			}
			fmt.Fprintf(b, "- %s (`%s`): %s\n", r.FieldName, r.FieldID, path)
		}
		b.WriteString("\n")
	}
}

func names(items []conversation.TopicInterest) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Name)
	}
	return out
}

// Document is the JSON export of a profile
type Document struct {
	SessionID       string                       `json:"session_id"`
	StartedAt       time.Time                    `json:"started_at"`
	CompletedAt     time.Time                    `json:"completed_at"`
	TaxonomyVersion string                       `json:"taxonomy_version,omitempty"`
	Priorities      []conversation.PriorityRow   `json:"priorities"`
	Counts          map[types.Importance]int     `json:"counts"`
	Summary         conversation.InterestSummary `json:"summary"`
	Progress        conversation.Progress        `json:"progress"`
}

// NewDocument builds the export document for p
func NewDocument(p *conversation.Profile) Document {
	counts := make(map[types.Importance]int, len(types.AllImportances()))
	for _, imp := range types.AllImportances() {
		counts[imp] = 0
	}
	for _, r := range p.Priorities {
		counts[r.Importance]++
	}
	rows := p.Priorities
	if rows == nil {
		rows = []conversation.PriorityRow{}
	}
	return Document{
		SessionID:       p.SessionID,
		StartedAt:       p.StartedAt,
		CompletedAt:     p.CompletedAt,
		TaxonomyVersion: p.TaxonomyVersion,
		Priorities:      rows,
		Counts:          counts,
		Summary:         p.Summary,
		Progress:        p.Progress,
	}
}

// JSON encodes the export document for p
func JSON(p *conversation.Profile) ([]byte, error) {
	data, err := json.MarshalIndent(NewDocument(p), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile %s: %w", p.SessionID, err)
	}
	return append(data, '\n'), nil
}

// Export encodes p in the requested format
func Export(p *conversation.Profile, format Format) ([]byte, error) {
	switch format {
	case FormatMarkdown:
		return []byte(Markdown(p)), nil
	case FormatJSON:
		return JSON(p)
	default:
		return nil, fmt.Errorf("unknown export format: %q (want md or json)", format)
	}
}

// Render formats Markdown for the terminal. A width of zero uses 80 columns.
func Render(markdown string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}
