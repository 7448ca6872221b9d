package detector

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/harrison/docpolish/internal/models"
)

// TranscriptEntry records one judge exchange for a section.
type TranscriptEntry struct {
	SectionID      string                   `json:"section_id"`
	SectionHeader  string                   `json:"section_header"`
	ModelsCompared []string                 `json:"models_compared"`
	Comparison     *models.ComparisonResult `json:"comparison"`
}

// TranscriptSink receives comparison transcripts as detection progresses.
type TranscriptSink interface {
	Record(entry TranscriptEntry)
}

// NopSink discards all entries.
type NopSink struct{}

func (NopSink) Record(TranscriptEntry) {}

// FileTranscriptSink appends entries as JSON lines to a file. Safe for
// concurrent use. Write errors are swallowed; a transcript is diagnostic
// output and must never abort detection.
type FileTranscriptSink struct {
	mu   sync.Mutex
	file *os.File
}

// NewFileTranscriptSink opens (or creates) the transcript file for appending.
func NewFileTranscriptSink(path string) (*FileTranscriptSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &FileTranscriptSink{file: f}, nil
}

func (s *FileTranscriptSink) Record(entry TranscriptEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.file.Write(append(data, '\n'))
}

// Close closes the underlying file.
func (s *FileTranscriptSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
