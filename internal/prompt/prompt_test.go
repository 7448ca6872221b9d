package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/harrison/docpolish/internal/models"
)

func TestInterpretation(t *testing.T) {
	p := Interpretation(models.Section{
		Header:  "Install",
		Content: "Run the installer and verify the checksum.",
	})

	assert.Contains(t, p, "SECTION: Install")
	assert.Contains(t, p, "CONTENT:\nRun the installer and verify the checksum.")
	assert.Contains(t, p, `"interpretation"`)
	assert.Contains(t, p, `"steps"`)
	assert.Contains(t, p, `"assumptions"`)
	assert.Contains(t, p, `"ambiguities"`)
	assert.Contains(t, p, "Respond ONLY with valid JSON")
}

func TestInterpretationEmptyHeader(t *testing.T) {
	p := Interpretation(models.Section{Content: "Run the setup script."})
	assert.Contains(t, p, "SECTION: Section")
}

func TestSectionAnalysis(t *testing.T) {
	p := SectionAnalysis("Run the installer.", "What could go wrong?")
	assert.Contains(t, p, "Analyze the following section from the document:")
	assert.Contains(t, p, "---\nRun the installer.\n---")
	assert.Contains(t, p, "What could go wrong?")
}
