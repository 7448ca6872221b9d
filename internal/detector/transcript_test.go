package detector

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/docpolish/internal/models"
)

func TestFileTranscriptSinkAppendsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "judge_responses.jsonl")
	sink, err := NewFileTranscriptSink(path)
	require.NoError(t, err)

	sink.Record(TranscriptEntry{
		SectionID:      "section_0",
		SectionHeader:  "Install",
		ModelsCompared: []string{"claude", "gemini"},
		Comparison:     &models.ComparisonResult{Agree: true, Similarity: 0.9},
	})
	sink.Record(TranscriptEntry{
		SectionID:      "section_1",
		SectionHeader:  "Deploy",
		ModelsCompared: []string{"claude", "gemini"},
		Comparison:     &models.ComparisonResult{Agree: false, Similarity: 0.4},
	})
	require.NoError(t, sink.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var entries []TranscriptEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e TranscriptEntry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		entries = append(entries, e)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, entries, 2)
	assert.Equal(t, "section_0", entries[0].SectionID)
	assert.Equal(t, 0.9, entries[0].Comparison.Similarity)
	assert.Equal(t, "section_1", entries[1].SectionID)
	assert.False(t, entries[1].Comparison.Agree)
}

func TestFileTranscriptSinkAppendsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "judge_responses.jsonl")

	first, err := NewFileTranscriptSink(path)
	require.NoError(t, err)
	first.Record(TranscriptEntry{SectionID: "section_0"})
	require.NoError(t, first.Close())

	second, err := NewFileTranscriptSink(path)
	require.NoError(t, err)
	second.Record(TranscriptEntry{SectionID: "section_1"})
	require.NoError(t, second.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "section_0")
	assert.Contains(t, string(data), "section_1")
}
