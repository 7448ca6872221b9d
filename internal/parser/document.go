// Package parser extracts testable sections from markdown documentation.
package parser

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/harrison/docpolish/internal/models"
)

// instructionKeywords mark a section as carrying instructions worth testing.
var instructionKeywords = []string{
	"step", "must", "should", "create", "generate", "validate",
	"process", "execute", "run", "configure", "setup", "install",
	"build", "deploy", "test", "check", "verify", "ensure",
}

var headerPattern = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

// Document is a loaded markdown document.
type Document struct {
	path     string
	content  string
	markdown goldmark.Markdown
}

// LoadDocument reads a markdown document from disk.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", path, err)
	}
	return NewDocument(path, string(data)), nil
}

// NewDocument wraps already-loaded content.
func NewDocument(path, content string) *Document {
	return &Document{path: path, content: content, markdown: goldmark.New()}
}

// Path returns the document's file path.
func (d *Document) Path() string { return d.path }

// Content returns the full document text.
func (d *Document) Content() string { return d.content }

// Heading is one entry in the document outline.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Outline returns every heading in document order, via the markdown AST.
func (d *Document) Outline() []Heading {
	source := []byte(d.content)
	doc := d.markdown.Parser().Parse(text.NewReader(source))

	var outline []Heading
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if heading, ok := n.(*ast.Heading); ok {
			outline = append(outline, Heading{
				Level: heading.Level,
				Text:  headingText(heading, source),
			})
		}
		return ast.WalkContinue, nil
	})
	return outline
}

// ExtractSections splits the document at headings and keeps the instructional
// sections. Sectioning is done line by line rather than from the AST because
// heading-like lines inside code fences must not split a section. Section IDs
// are positional ("section_0", "section_1", ...) and stable for a given
// document.
func (d *Document) ExtractSections() []models.Section {
	lines := strings.Split(d.content, "\n")

	type pending struct {
		header    string
		content   []string
		startLine int
		level     int
	}
	current := pending{}
	inFence := false

	var sections []models.Section
	flush := func(endLine int) {
		text := strings.Join(current.content, "\n")
		if len(current.content) == 0 || !isInstructional(text) {
			return
		}
		sections = append(sections, models.Section{
			ID:        fmt.Sprintf("section_%d", len(sections)),
			Header:    current.header,
			Content:   text,
			StartLine: current.startLine,
			EndLine:   endLine,
			Level:     current.level,
		})
	}

	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
		}

		var match []string
		if !inFence {
			match = headerPattern.FindStringSubmatch(line)
		}
		if match != nil {
			flush(i - 1)
			current = pending{
				header:    strings.TrimSpace(match[2]),
				startLine: i,
				level:     len(match[1]),
			}
			continue
		}
		current.content = append(current.content, line)
	}
	flush(len(lines) - 1)

	return sections
}

// Summary renders one line per section for display.
func Summary(sections []models.Section) []string {
	summary := make([]string, len(sections))
	for i, s := range sections {
		summary[i] = fmt.Sprintf("[%d] %s (lines %d-%d)", i, s.Header, s.StartLine, s.EndLine)
	}
	return summary
}

// isInstructional reports whether text contains instruction-bearing content.
// Trivially short fragments never qualify.
func isInstructional(text string) bool {
	if len(strings.TrimSpace(text)) < 10 {
		return false
	}
	lower := strings.ToLower(text)
	for _, kw := range instructionKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func headingText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(source))
		}
	}
	return buf.String()
}
