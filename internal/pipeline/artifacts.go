// Package pipeline runs the document polishing steps and persists their
// artifacts in the workspace. Each step reads the previous step's artifact,
// so every invocation of the CLI can resume from whatever already exists.
package pipeline

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/harrison/docpolish/internal/filelock"
	"github.com/harrison/docpolish/internal/models"
)

// Workspace artifact filenames.
const (
	SectionsFile        = "sections.json"
	SessionMetadataFile = "session_metadata.json"
	TestResultsFile     = "test_results.json"
	AmbiguitiesFile     = "ambiguities.json"
	ReportFile          = "report.md"
	TranscriptFile      = "judge_responses.jsonl"
)

// ExtractionResult is the output of the extraction step.
type ExtractionResult struct {
	Sections        []models.Section `json:"sections"`
	Summary         []string         `json:"summary"`
	DocumentContent string           `json:"document_content"`
	DocumentPath    string           `json:"document_path"`
}

// Save writes the extraction result atomically.
func (r *ExtractionResult) Save(path string) error {
	return filelock.AtomicWriteJSON(path, r)
}

// LoadExtractionResult reads a previously saved extraction result.
func LoadExtractionResult(path string) (*ExtractionResult, error) {
	var r ExtractionResult
	if err := loadJSON(path, "extraction result", &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// SessionMetadata records the outcome of session initialization. Session
// handles themselves live in the CLI tools; only the IDs survive a process
// restart.
type SessionMetadata struct {
	SessionIDs   map[string]string `json:"session_ids"`
	FailedModels []string          `json:"failed_models"`
	Enabled      bool              `json:"enabled"`
}

// Save writes the session metadata atomically.
func (r *SessionMetadata) Save(path string) error {
	return filelock.AtomicWriteJSON(path, r)
}

// LoadSessionMetadata reads previously saved session metadata.
func LoadSessionMetadata(path string) (*SessionMetadata, error) {
	var r SessionMetadata
	if err := loadJSON(path, "session metadata", &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// SectionResult holds every model's response for one section.
type SectionResult struct {
	SectionID string                      `json:"section_id"`
	Section   models.Section              `json:"section"`
	Results   map[string]*models.Response `json:"results"`
}

// TestResult is the output of the testing step. Sections keep document
// order so detection and reporting are deterministic.
type TestResult struct {
	Sections       []SectionResult `json:"sections"`
	ModelNames     []string        `json:"model_names"`
	SectionsTested int             `json:"sections_tested"`
	DocumentPath   string          `json:"document_path,omitempty"`
}

// Save writes the test result atomically.
func (r *TestResult) Save(path string) error {
	return filelock.AtomicWriteJSON(path, r)
}

// LoadTestResult reads a previously saved test result.
func LoadTestResult(path string) (*TestResult, error) {
	var r TestResult
	if err := loadJSON(path, "test results", &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// DetectionOutput is the output of the detection step.
type DetectionOutput struct {
	Ambiguities    []models.Ambiguity `json:"ambiguities"`
	SeverityCounts map[string]int     `json:"severity_counts"`
	Strategy       string             `json:"strategy"`
	JudgeModel     string             `json:"judge_model,omitempty"`
}

// Save writes the detection output atomically.
func (r *DetectionOutput) Save(path string) error {
	return filelock.AtomicWriteJSON(path, r)
}

// LoadDetectionOutput reads a previously saved detection output.
func LoadDetectionOutput(path string) (*DetectionOutput, error) {
	var r DetectionOutput
	if err := loadJSON(path, "ambiguities", &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func loadJSON(path, what string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s not found: %s", what, path)
		}
		return fmt.Errorf("failed to read %s: %w", what, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s %s: %w", what, path, err)
	}
	return nil
}
