// Package prompt builds the prompts sent to AI CLI models.
package prompt

import (
	"fmt"

	"github.com/harrison/docpolish/internal/models"
)

const interpretationTemplate = `You are testing documentation for clarity. Read the following section and provide your interpretation.

SECTION: %s

CONTENT:
%s

Please respond with a JSON object containing:
1. "interpretation": Your understanding of what should be done
2. "steps": List of specific steps you would take
3. "assumptions": Any assumptions you needed to make
4. "ambiguities": Any unclear or ambiguous parts you noticed

Respond ONLY with valid JSON in this format:
{
  "interpretation": "your interpretation here",
  "steps": ["step 1", "step 2", "..."],
  "assumptions": ["assumption 1", "assumption 2", "..."],
  "ambiguities": ["ambiguity 1", "ambiguity 2", "..."]
}
`

// Interpretation builds the prompt asking a model how it reads a section.
func Interpretation(section models.Section) string {
	header := section.Header
	if header == "" {
		header = "Section"
	}
	return fmt.Sprintf(interpretationTemplate, header, section.Content)
}

// SectionAnalysis wraps section content with an analysis instruction for
// session queries, where the model already holds the full document.
func SectionAnalysis(sectionContent, analysisPrompt string) string {
	return fmt.Sprintf(`Analyze the following section from the document:

---
%s
---

%s`, sectionContent, analysisPrompt)
}
