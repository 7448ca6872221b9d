package detector

import (
	"fmt"
	"sort"

	"github.com/harrison/docpolish/internal/config"
	"github.com/harrison/docpolish/internal/logger"
	"github.com/harrison/docpolish/internal/models"
)

// SectionInput pairs a section with the raw responses each model gave for it.
type SectionInput struct {
	SectionID string
	Section   models.Section
	Results   map[string]*models.Response
}

// Detector runs a comparison strategy over tested sections and emits
// severity-ranked ambiguities.
type Detector struct {
	strategy Strategy
	severity config.SeverityConfig
	sink     TranscriptSink
	log      logger.Logger
}

// NewDetector creates a detector. A nil sink records nothing; a nil log
// discards log output.
func NewDetector(strategy Strategy, severity config.SeverityConfig, sink TranscriptSink, log logger.Logger) *Detector {
	if sink == nil {
		sink = NopSink{}
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Detector{strategy: strategy, severity: severity, sink: sink, log: log}
}

// Detect walks sections in order, comparing the usable interpretations of
// each. Sections with fewer than two usable interpretations are skipped.
// A *JudgeFailureError from the strategy aborts detection immediately and
// propagates unmodified.
func (d *Detector) Detect(sections []SectionInput) ([]models.Ambiguity, error) {
	var ambiguities []models.Ambiguity

	for _, sec := range sections {
		usable := make(map[string]models.Interpretation)
		for _, name := range sortedModelNames(sec.Results) {
			interp := ParseInterpretation(name, sec.Results[name])
			if !interp.Usable() {
				d.log.Debugf("section %s: dropping %s interpretation: %s", sec.SectionID, name, interp.Err)
				continue
			}
			usable[name] = interp
		}

		if len(usable) < 2 {
			d.log.Debugf("section %s: %d usable interpretations, skipping", sec.SectionID, len(usable))
			continue
		}

		ordered := make([]models.Interpretation, 0, len(usable))
		names := make([]string, 0, len(usable))
		for _, name := range sortedModelNames(sec.Results) {
			if interp, ok := usable[name]; ok {
				ordered = append(ordered, interp)
				names = append(names, name)
			}
		}

		comparison, err := d.strategy.Compare(sec.SectionID, ordered)
		if err != nil {
			return nil, err
		}

		d.sink.Record(TranscriptEntry{
			SectionID:      sec.SectionID,
			SectionHeader:  sec.Section.Header,
			ModelsCompared: names,
			Comparison:     comparison,
		})

		switch {
		case !comparison.Agree:
			ambiguities = append(ambiguities, models.Ambiguity{
				SectionID:       sec.SectionID,
				SectionHeader:   sec.Section.Header,
				SectionContent:  sec.Section.Content,
				Severity:        d.determineSeverity(comparison),
				Interpretations: usable,
				Comparison:      comparison,
			})

		case comparison.SharedAmbiguities && len(comparison.SharedConcerns) > 0:
			shared := *comparison
			shared.Reason = "Models agreed but all noted similar concerns"
			severity := models.SeverityLow
			if len(usable) >= d.severity.SharedMediumAt {
				severity = models.SeverityMedium
			}
			ambiguities = append(ambiguities, models.Ambiguity{
				SectionID:       sec.SectionID,
				SectionHeader:   sec.Section.Header,
				SectionContent:  sec.Section.Content,
				Severity:        severity,
				Interpretations: usable,
				Comparison:      &shared,
			})

		case len(comparison.AssumptionsMade) > 0:
			assumed := *comparison
			assumed.Reason = "Models agreed but made assumptions"
			ambiguities = append(ambiguities, models.Ambiguity{
				SectionID:       sec.SectionID,
				SectionHeader:   sec.Section.Header,
				SectionContent:  sec.Section.Content,
				Severity:        models.SeverityLow,
				Interpretations: usable,
				Comparison:      &assumed,
			})
		}
	}

	models.SortBySeverity(ambiguities)
	return ambiguities, nil
}

// determineSeverity ranks a disagreement. Three or more interpretation groups
// means total divergence regardless of similarity score.
func (d *Detector) determineSeverity(comparison *models.ComparisonResult) models.Severity {
	if len(comparison.Groups) >= 3 {
		return models.SeverityCritical
	}
	switch {
	case comparison.Similarity < d.severity.CriticalBelow:
		return models.SeverityCritical
	case comparison.Similarity < d.severity.HighBelow:
		return models.SeverityHigh
	case comparison.Similarity < d.severity.MediumBelow:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// SeverityCounts tallies ambiguities per severity level.
func SeverityCounts(ambiguities []models.Ambiguity) map[string]int {
	counts := make(map[string]int)
	for _, a := range ambiguities {
		counts[string(a.Severity)]++
	}
	return counts
}

func sortedModelNames(results map[string]*models.Response) []string {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewStrategy builds the strategy named in config. The query function is
// required for the judge strategy and ignored otherwise.
func NewStrategy(cfg config.DetectionConfig, query QueryFunc) (Strategy, error) {
	switch cfg.Strategy {
	case "simple":
		return NewSimpleStrategy(cfg.SimilarityThreshold), nil
	case "llm_judge":
		if query == nil {
			return nil, fmt.Errorf("llm_judge strategy requires a judge query function")
		}
		return NewJudgeStrategy(query), nil
	default:
		return nil, fmt.Errorf("unknown detection strategy %q", cfg.Strategy)
	}
}
