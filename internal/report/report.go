// Package report renders detection results as markdown and produces the
// polished document with clarification markers.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harrison/docpolish/internal/models"
)

var severityEmoji = map[models.Severity]string{
	models.SeverityCritical: "🔴",
	models.SeverityHigh:     "🟠",
	models.SeverityMedium:   "🟡",
	models.SeverityLow:      "🟢",
}

// Params carries the metadata printed in the report header.
type Params struct {
	RunID        string
	DocumentPath string
	JudgeModel   string
	ModelNames   []string
	Now          time.Time
}

// Generate renders the polish report. Sections are the number of sections
// tested; ambiguities come sorted by severity from detection.
func Generate(p Params, sectionsTested int, ambiguities []models.Ambiguity) string {
	var b strings.Builder

	now := p.Now
	if now.IsZero() {
		now = time.Now()
	}

	fmt.Fprintf(&b, "# Documentation Polish Report\n\n")
	fmt.Fprintf(&b, "**Run ID:** %s\n", p.RunID)
	fmt.Fprintf(&b, "**Document:** %s\n", p.DocumentPath)
	fmt.Fprintf(&b, "**Date:** %s\n", now.Format("2006-01-02 15:04:05"))
	if p.JudgeModel != "" {
		fmt.Fprintf(&b, "**Judge Model:** %s\n", p.JudgeModel)
	}

	fmt.Fprintf(&b, "\n## Summary\n\n")
	fmt.Fprintf(&b, "- **Sections Tested:** %d\n", sectionsTested)
	fmt.Fprintf(&b, "- **Ambiguities Found:** %d\n", len(ambiguities))
	fmt.Fprintf(&b, "- **Models Used:** %s\n", strings.Join(p.ModelNames, ", "))

	fmt.Fprintf(&b, "\n### Ambiguities by Severity\n\n")
	counts := map[models.Severity]int{}
	for _, a := range ambiguities {
		counts[a.Severity]++
	}
	for _, sev := range []models.Severity{models.SeverityCritical, models.SeverityHigh, models.SeverityMedium, models.SeverityLow} {
		fmt.Fprintf(&b, "- %s **%s:** %d\n", severityEmoji[sev], strings.ToUpper(string(sev)), counts[sev])
	}

	fmt.Fprintf(&b, "\n## Ambiguities Detected\n\n")
	if len(ambiguities) == 0 {
		b.WriteString("*No ambiguities detected. The documentation appears clear.*\n")
	}
	for i, amb := range ambiguities {
		fmt.Fprintf(&b, "### %d. %s %s (%s)\n\n", i+1, amb.SectionHeader, severityEmoji[amb.Severity], amb.Severity)
		fmt.Fprintf(&b, "**Original Text:**\n```\n%s\n```\n\n", truncate(amb.SectionContent, 500))

		b.WriteString("**Interpretations:**\n")
		for _, name := range sortedNames(amb.Interpretations) {
			interp := amb.Interpretations[name]
			fmt.Fprintf(&b, "\n**%s:**\n", name)
			fmt.Fprintf(&b, "- Understanding: %s\n", truncate(interp.Text, 300))
			if len(interp.Steps) > 0 {
				steps := interp.Steps
				if len(steps) > 5 {
					steps = steps[:5]
				}
				fmt.Fprintf(&b, "- Steps: %s\n", strings.Join(steps, ", "))
			}
			if len(interp.Assumptions) > 0 {
				fmt.Fprintf(&b, "- Assumptions: %s\n", strings.Join(interp.Assumptions, ", "))
			}
			if len(interp.Ambiguities) > 0 {
				fmt.Fprintf(&b, "- Noted ambiguities: %s\n", strings.Join(interp.Ambiguities, ", "))
			}
		}

		if c := amb.Comparison; c != nil {
			b.WriteString("\n**Analysis:**\n")
			if c.Reason != "" {
				fmt.Fprintf(&b, "- %s\n", c.Reason)
			}
			if c.Details != "" {
				fmt.Fprintf(&b, "- %s\n", c.Details)
			}
			if len(c.KeyDifferences) > 0 {
				fmt.Fprintf(&b, "- Key differences: %s\n", strings.Join(c.KeyDifferences, ", "))
			}
			if len(c.SharedConcerns) > 0 {
				fmt.Fprintf(&b, "- Shared concerns: %s\n", strings.Join(c.SharedConcerns, ", "))
			}
		}

		b.WriteString("\n---\n\n")
	}

	b.WriteString("\n---\n\n")
	b.WriteString("*For detailed test results, see `test_results.json` in this workspace directory.*\n")

	return b.String()
}

// Polished inserts a clarification marker after each ambiguous section of
// the original document. The section text itself is left intact.
func Polished(documentContent string, ambiguities []models.Ambiguity) string {
	content := documentContent

	for _, amb := range ambiguities {
		original := amb.SectionContent
		if original == "" || !strings.Contains(content, original) {
			continue
		}

		var note strings.Builder
		fmt.Fprintf(&note, "\n\n> **%s %s - CLARIFICATION NEEDED:**\n", severityEmoji[amb.Severity], strings.ToUpper(string(amb.Severity)))
		note.WriteString("> Different interpretations were found:\n")
		for _, name := range sortedNames(amb.Interpretations) {
			fmt.Fprintf(&note, "> - **%s:** %s\n", name, truncate(amb.Interpretations[name].Text, 150))
		}
		if amb.Comparison != nil && len(amb.Comparison.KeyDifferences) > 0 {
			fmt.Fprintf(&note, ">\n> **Key differences:** %s\n", strings.Join(amb.Comparison.KeyDifferences, ", "))
		}

		content = strings.Replace(content, original, original+note.String(), 1)
	}

	return content
}

func sortedNames(interps map[string]models.Interpretation) []string {
	names := make([]string, 0, len(interps))
	for name := range interps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
