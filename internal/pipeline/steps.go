package pipeline

import (
	"fmt"

	"github.com/harrison/docpolish/internal/config"
	"github.com/harrison/docpolish/internal/detector"
	"github.com/harrison/docpolish/internal/logger"
	"github.com/harrison/docpolish/internal/model"
	"github.com/harrison/docpolish/internal/models"
	"github.com/harrison/docpolish/internal/parser"
	"github.com/harrison/docpolish/internal/prompt"
	"github.com/harrison/docpolish/internal/session"
)

// ExtractStep reads a document and extracts its testable sections.
func ExtractStep(documentPath string) (*ExtractionResult, error) {
	doc, err := parser.LoadDocument(documentPath)
	if err != nil {
		return nil, err
	}
	sections := doc.ExtractSections()
	return &ExtractionResult{
		Sections:        sections,
		Summary:         parser.Summary(sections),
		DocumentContent: doc.Content(),
		DocumentPath:    documentPath,
	}, nil
}

// SessionInitStep initializes sessions for the given models. When sessions
// are disabled in config it returns empty metadata without touching any CLI.
func SessionInitStep(sessions *session.Manager, cfg config.SessionConfig, modelNames []string, document string) *SessionMetadata {
	if !cfg.Enabled {
		return &SessionMetadata{
			SessionIDs:   map[string]string{},
			FailedModels: []string{},
			Enabled:      false,
		}
	}

	ids := sessions.InitSessionsParallel(modelNames, document, cfg.PurposePrompt)

	var failed []string
	for _, name := range modelNames {
		if _, ok := ids[name]; !ok {
			failed = append(failed, name)
		}
	}
	if failed == nil {
		failed = []string{}
	}

	return &SessionMetadata{
		SessionIDs:   ids,
		FailedModels: failed,
		Enabled:      true,
	}
}

// TestingStep queries every model for every section.
type TestingStep struct {
	manager *model.Manager
	log     logger.Logger
}

// NewTestingStep creates a testing step over the given model manager.
func NewTestingStep(manager *model.Manager, log logger.Logger) *TestingStep {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &TestingStep{manager: manager, log: log}
}

// Run sends each section's interpretation prompt to every named model and
// collects the responses in document order. Individual model failures land
// in the responses as error-kind entries; Run itself only fails on an empty
// model list.
func (s *TestingStep) Run(sections []models.Section, modelNames []string, useSessions bool) (*TestResult, error) {
	if len(modelNames) == 0 {
		return nil, fmt.Errorf("no models to test with")
	}

	result := &TestResult{
		ModelNames:     modelNames,
		SectionsTested: len(sections),
	}

	for i, sec := range sections {
		s.log.Infof("testing section %d/%d: %s", i+1, len(sections), sec.Header)
		p := prompt.Interpretation(sec)
		responses := s.manager.QueryAll(p, modelNames, useSessions)
		result.Sections = append(result.Sections, SectionResult{
			SectionID: sec.ID,
			Section:   sec,
			Results:   responses,
		})
	}

	return result, nil
}

// DetectionStep compares interpretations and flags ambiguous sections.
type DetectionStep struct {
	cfg     config.DetectionConfig
	manager *model.Manager
	sink    detector.TranscriptSink
	log     logger.Logger
}

// NewDetectionStep creates a detection step. The sink receives judge
// transcripts; pass nil to discard them.
func NewDetectionStep(cfg config.DetectionConfig, manager *model.Manager, sink detector.TranscriptSink, log logger.Logger) *DetectionStep {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &DetectionStep{cfg: cfg, manager: manager, sink: sink, log: log}
}

// Run detects ambiguities in the test result. A judge malfunction surfaces
// as *detector.JudgeFailureError and no partial verdicts are returned.
func (s *DetectionStep) Run(tr *TestResult) (*DetectionOutput, error) {
	var query detector.QueryFunc
	if s.cfg.Strategy == "llm_judge" {
		if !s.manager.Has(s.cfg.JudgeModel) {
			return nil, fmt.Errorf("judge model %q not available", s.cfg.JudgeModel)
		}
		// Judge prompts are self-contained, so they bypass sessions.
		query = func(p string) *models.Response {
			return s.manager.Query(s.cfg.JudgeModel, p, false)
		}
	}

	strategy, err := detector.NewStrategy(s.cfg, query)
	if err != nil {
		return nil, err
	}

	inputs := make([]detector.SectionInput, len(tr.Sections))
	for i, sr := range tr.Sections {
		inputs[i] = detector.SectionInput{
			SectionID: sr.SectionID,
			Section:   sr.Section,
			Results:   sr.Results,
		}
	}

	det := detector.NewDetector(strategy, s.cfg.Severity, s.sink, s.log)
	ambiguities, err := det.Detect(inputs)
	if err != nil {
		return nil, err
	}

	out := &DetectionOutput{
		Ambiguities:    ambiguities,
		SeverityCounts: detector.SeverityCounts(ambiguities),
		Strategy:       s.cfg.Strategy,
	}
	if s.cfg.Strategy == "llm_judge" {
		out.JudgeModel = s.cfg.JudgeModel
	}
	return out, nil
}
