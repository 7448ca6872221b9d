package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `# Install

Run the installer and verify the checksum.

` + "```bash" + `
# not a heading
echo done
` + "```" + `

# About

Plain prose with no directives at all.

## Deploy

You must deploy with step one and step two.`

func TestLoadDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte(sampleDoc), 0o644))

	doc, err := LoadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Path())
	assert.Equal(t, sampleDoc, doc.Content())
}

func TestLoadDocumentMissing(t *testing.T) {
	_, err := LoadDocument(filepath.Join(t.TempDir(), "absent.md"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read document")
}

func TestExtractSections(t *testing.T) {
	doc := NewDocument("doc.md", sampleDoc)
	sections := doc.ExtractSections()

	require.Len(t, sections, 2, "the prose-only section must be filtered out")

	assert.Equal(t, "section_0", sections[0].ID)
	assert.Equal(t, "Install", sections[0].Header)
	assert.Equal(t, 1, sections[0].Level)
	assert.Equal(t, 0, sections[0].StartLine)
	assert.Contains(t, sections[0].Content, "# not a heading",
		"heading-like lines inside a code fence stay in their section")

	assert.Equal(t, "section_1", sections[1].ID)
	assert.Equal(t, "Deploy", sections[1].Header)
	assert.Equal(t, 2, sections[1].Level)
}

func TestExtractSectionsPreamble(t *testing.T) {
	doc := NewDocument("doc.md", "Run the setup script first.\n\n# Later\n\nMore setup steps here.")
	sections := doc.ExtractSections()

	require.Len(t, sections, 2)
	assert.Equal(t, "", sections[0].Header, "content before the first heading keeps an empty header")
	assert.Contains(t, sections[0].Content, "Run the setup script")
}

func TestExtractSectionsEmptyDocument(t *testing.T) {
	doc := NewDocument("doc.md", "")
	assert.Empty(t, doc.ExtractSections())
}

func TestOutline(t *testing.T) {
	doc := NewDocument("doc.md", sampleDoc)
	outline := doc.Outline()

	require.Len(t, outline, 3)
	assert.Equal(t, Heading{Level: 1, Text: "Install"}, outline[0])
	assert.Equal(t, Heading{Level: 1, Text: "About"}, outline[1])
	assert.Equal(t, Heading{Level: 2, Text: "Deploy"}, outline[2])
}

func TestSummary(t *testing.T) {
	doc := NewDocument("doc.md", sampleDoc)
	summary := Summary(doc.ExtractSections())

	require.Len(t, summary, 2)
	assert.Equal(t, "[0] Install (lines 0-8)", summary[0])
	assert.Contains(t, summary[1], "[1] Deploy")
}

func TestIsInstructional(t *testing.T) {
	assert.True(t, isInstructional("You must configure the endpoint."))
	assert.True(t, isInstructional("STEP 1: open the file"), "matching is case-insensitive")
	assert.False(t, isInstructional("run"), "short fragments never qualify")
	assert.False(t, isInstructional("A plain description with no directives."))
}
