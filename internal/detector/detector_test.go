package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/docpolish/internal/config"
	"github.com/harrison/docpolish/internal/models"
)

func defaultSeverity() config.SeverityConfig {
	return config.SeverityConfig{
		CriticalBelow:  0.3,
		HighBelow:      0.5,
		MediumBelow:    0.7,
		SharedMediumAt: 3,
	}
}

// stubStrategy returns canned results per section and records what it saw.
type stubStrategy struct {
	results map[string]*models.ComparisonResult
	err     error
	calls   []string
	seen    map[string][]models.Interpretation
}

func (s *stubStrategy) Compare(sectionID string, interps []models.Interpretation) (*models.ComparisonResult, error) {
	s.calls = append(s.calls, sectionID)
	if s.seen == nil {
		s.seen = make(map[string][]models.Interpretation)
	}
	s.seen[sectionID] = interps
	if s.err != nil {
		return nil, s.err
	}
	return s.results[sectionID], nil
}

func sectionInput(id, header string, results map[string]*models.Response) SectionInput {
	return SectionInput{
		SectionID: id,
		Section:   models.Section{ID: id, Header: header, Content: "Do the thing carefully."},
		Results:   results,
	}
}

func parsedResult(text string) *models.Response {
	return models.ParsedResponse(map[string]interface{}{
		"interpretation": text,
		"steps":          []interface{}{},
		"assumptions":    []interface{}{},
		"ambiguities":    []interface{}{},
	})
}

func TestDetectorFlagsDisagreement(t *testing.T) {
	strategy := &stubStrategy{results: map[string]*models.ComparisonResult{
		"section_0": {
			Agree:      false,
			Similarity: 0.4,
			Details:    "different entry counts",
			Groups:     [][]string{{"claude"}, {"gemini"}},
		},
	}}
	d := NewDetector(strategy, defaultSeverity(), nil, nil)

	ambiguities, err := d.Detect([]SectionInput{
		sectionInput("section_0", "Generate Output", map[string]*models.Response{
			"claude": parsedResult("three entries"),
			"gemini": parsedResult("one entry"),
		}),
	})

	require.NoError(t, err)
	require.Len(t, ambiguities, 1)
	assert.Equal(t, "section_0", ambiguities[0].SectionID)
	assert.Equal(t, "Generate Output", ambiguities[0].SectionHeader)
	assert.Equal(t, models.SeverityHigh, ambiguities[0].Severity)
	assert.Len(t, ambiguities[0].Interpretations, 2)
}

func TestDetectorSeverityFromSimilarity(t *testing.T) {
	cases := []struct {
		similarity float64
		groups     [][]string
		want       models.Severity
	}{
		{0.2, [][]string{{"claude"}, {"gemini"}}, models.SeverityCritical},
		{0.4, [][]string{{"claude"}, {"gemini"}}, models.SeverityHigh},
		{0.6, [][]string{{"claude"}, {"gemini"}}, models.SeverityMedium},
		{0.9, [][]string{{"claude"}, {"gemini"}}, models.SeverityLow},
		// Three groups is critical regardless of score.
		{0.9, [][]string{{"claude"}, {"gemini"}, {"codex"}}, models.SeverityCritical},
	}

	for _, tc := range cases {
		strategy := &stubStrategy{results: map[string]*models.ComparisonResult{
			"section_0": {Agree: false, Similarity: tc.similarity, Groups: tc.groups},
		}}
		d := NewDetector(strategy, defaultSeverity(), nil, nil)

		ambiguities, err := d.Detect([]SectionInput{
			sectionInput("section_0", "H", map[string]*models.Response{
				"claude": parsedResult("a"),
				"gemini": parsedResult("b"),
			}),
		})

		require.NoError(t, err)
		require.Len(t, ambiguities, 1)
		assert.Equal(t, tc.want, ambiguities[0].Severity,
			"similarity %.1f with %d groups", tc.similarity, len(tc.groups))
	}
}

func TestDetectorFiltersUnusableInterpretations(t *testing.T) {
	strategy := &stubStrategy{results: map[string]*models.ComparisonResult{
		"section_0": {Agree: true, Similarity: 1.0},
	}}
	d := NewDetector(strategy, defaultSeverity(), nil, nil)

	_, err := d.Detect([]SectionInput{
		sectionInput("section_0", "H", map[string]*models.Response{
			"claude": parsedResult("real interpretation"),
			"gemini": parsedResult("another real interpretation"),
			"codex":  models.ErrorResponse("timeout after 60s", ""),
		}),
	})

	require.NoError(t, err)
	require.Len(t, strategy.seen["section_0"], 2, "errored model must not reach the strategy")
	for _, interp := range strategy.seen["section_0"] {
		assert.NotEqual(t, "codex", interp.Model)
	}
}

func TestDetectorSkipsSectionWithFewerThanTwoUsable(t *testing.T) {
	strategy := &stubStrategy{}
	d := NewDetector(strategy, defaultSeverity(), nil, nil)

	ambiguities, err := d.Detect([]SectionInput{
		sectionInput("section_0", "H", map[string]*models.Response{
			"claude": parsedResult("only usable voice"),
			"gemini": models.ErrorResponse("command not found", ""),
		}),
		sectionInput("section_1", "H2", map[string]*models.Response{
			"claude": parsedResult("   "),
			"gemini": parsedResult(""),
		}),
	})

	require.NoError(t, err)
	assert.Empty(t, ambiguities)
	assert.Empty(t, strategy.calls, "skipped sections must never be compared")
}

func TestDetectorPropagatesJudgeFailureAndStops(t *testing.T) {
	strategy := &stubStrategy{err: &JudgeFailureError{
		SectionID: "section_0",
		Reason:    "Judge query error",
		Details:   "Timeout after 300s",
	}}
	d := NewDetector(strategy, defaultSeverity(), nil, nil)

	_, err := d.Detect([]SectionInput{
		sectionInput("section_0", "H", map[string]*models.Response{
			"claude": parsedResult("a"),
			"gemini": parsedResult("b"),
		}),
		sectionInput("section_1", "H2", map[string]*models.Response{
			"claude": parsedResult("c"),
			"gemini": parsedResult("d"),
		}),
	})

	var judgeErr *JudgeFailureError
	require.ErrorAs(t, err, &judgeErr)
	assert.Equal(t, "section_0", judgeErr.SectionID)
	assert.Equal(t, []string{"section_0"}, strategy.calls, "detection must abort at the failing section")
}

func TestDetectorFlagsSharedConcernsOnAgreement(t *testing.T) {
	strategy := &stubStrategy{results: map[string]*models.ComparisonResult{
		"section_0": {
			Agree:             true,
			Similarity:        0.9,
			Details:           "Models agree",
			Groups:            [][]string{{"claude", "gemini"}},
			SharedAmbiguities: true,
			SharedConcerns:    []string{"timeout value unclear"},
		},
	}}
	d := NewDetector(strategy, defaultSeverity(), nil, nil)

	ambiguities, err := d.Detect([]SectionInput{
		sectionInput("section_0", "Configuration", map[string]*models.Response{
			"claude": parsedResult("configure timeout"),
			"gemini": parsedResult("set timeout setting"),
		}),
	})

	require.NoError(t, err)
	require.Len(t, ambiguities, 1)
	assert.Equal(t, models.SeverityLow, ambiguities[0].Severity, "two models sharing a concern is low")
	assert.Equal(t, "Models agreed but all noted similar concerns", ambiguities[0].Comparison.Reason)
	assert.Equal(t, []string{"timeout value unclear"}, ambiguities[0].Comparison.SharedConcerns)
}

func TestDetectorSharedConcernsMediumForThreeModels(t *testing.T) {
	strategy := &stubStrategy{results: map[string]*models.ComparisonResult{
		"section_0": {
			Agree:             true,
			Similarity:        0.85,
			Groups:            [][]string{{"claude", "gemini", "codex"}},
			SharedAmbiguities: true,
			SharedConcerns:    []string{"timeout value unclear"},
		},
	}}
	d := NewDetector(strategy, defaultSeverity(), nil, nil)

	ambiguities, err := d.Detect([]SectionInput{
		sectionInput("section_0", "Configuration", map[string]*models.Response{
			"claude": parsedResult("configure timeout"),
			"gemini": parsedResult("set timeout setting"),
			"codex":  parsedResult("set timeout"),
		}),
	})

	require.NoError(t, err)
	require.Len(t, ambiguities, 1)
	assert.Equal(t, models.SeverityMedium, ambiguities[0].Severity)
}

func TestDetectorNoFlagOnCleanAgreement(t *testing.T) {
	strategy := &stubStrategy{results: map[string]*models.ComparisonResult{
		"section_0": {
			Agree:      true,
			Similarity: 0.95,
			Details:    "Models agree completely",
			Groups:     [][]string{{"claude", "gemini"}},
		},
	}}
	d := NewDetector(strategy, defaultSeverity(), nil, nil)

	ambiguities, err := d.Detect([]SectionInput{
		sectionInput("section_0", "Simple Section", map[string]*models.Response{
			"claude": parsedResult("clear instruction"),
			"gemini": parsedResult("clear instruction"),
		}),
	})

	require.NoError(t, err)
	assert.Empty(t, ambiguities)
}

func TestDetectorFlagsAssumptionsOnAgreement(t *testing.T) {
	strategy := &stubStrategy{results: map[string]*models.ComparisonResult{
		"section_0": {
			Agree:           true,
			Similarity:      0.9,
			Groups:          [][]string{{"claude", "gemini"}},
			AssumptionsMade: []string{"gemini"},
		},
	}}
	d := NewDetector(strategy, defaultSeverity(), nil, nil)

	ambiguities, err := d.Detect([]SectionInput{
		sectionInput("section_0", "H", map[string]*models.Response{
			"claude": parsedResult("a"),
			"gemini": parsedResult("a"),
		}),
	})

	require.NoError(t, err)
	require.Len(t, ambiguities, 1)
	assert.Equal(t, models.SeverityLow, ambiguities[0].Severity)
	assert.Equal(t, "Models agreed but made assumptions", ambiguities[0].Comparison.Reason)
}

func TestDetectorSortsBySeverity(t *testing.T) {
	strategy := &stubStrategy{results: map[string]*models.ComparisonResult{
		"section_0": {Agree: false, Similarity: 0.9, Groups: [][]string{{"claude"}, {"gemini"}}},  // low
		"section_1": {Agree: false, Similarity: 0.2, Groups: [][]string{{"claude"}, {"gemini"}}},  // critical
		"section_2": {Agree: false, Similarity: 0.6, Groups: [][]string{{"claude"}, {"gemini"}}},  // medium
	}}
	d := NewDetector(strategy, defaultSeverity(), nil, nil)

	results := map[string]*models.Response{
		"claude": parsedResult("a"),
		"gemini": parsedResult("b"),
	}
	ambiguities, err := d.Detect([]SectionInput{
		sectionInput("section_0", "A", results),
		sectionInput("section_1", "B", results),
		sectionInput("section_2", "C", results),
	})

	require.NoError(t, err)
	require.Len(t, ambiguities, 3)
	assert.Equal(t, models.SeverityCritical, ambiguities[0].Severity)
	assert.Equal(t, models.SeverityMedium, ambiguities[1].Severity)
	assert.Equal(t, models.SeverityLow, ambiguities[2].Severity)
}

func TestDetectorRecordsTranscripts(t *testing.T) {
	strategy := &stubStrategy{results: map[string]*models.ComparisonResult{
		"section_0": {Agree: true, Similarity: 1.0, Groups: [][]string{{"claude", "gemini"}}},
	}}

	var recorded []TranscriptEntry
	sink := sinkFunc(func(e TranscriptEntry) { recorded = append(recorded, e) })
	d := NewDetector(strategy, defaultSeverity(), sink, nil)

	_, err := d.Detect([]SectionInput{
		sectionInput("section_0", "Header", map[string]*models.Response{
			"claude": parsedResult("a"),
			"gemini": parsedResult("b"),
		}),
	})

	require.NoError(t, err)
	require.Len(t, recorded, 1)
	assert.Equal(t, "section_0", recorded[0].SectionID)
	assert.Equal(t, "Header", recorded[0].SectionHeader)
	assert.Equal(t, []string{"claude", "gemini"}, recorded[0].ModelsCompared)
	assert.True(t, recorded[0].Comparison.Agree)
}

type sinkFunc func(TranscriptEntry)

func (f sinkFunc) Record(e TranscriptEntry) { f(e) }

func TestParseInterpretation(t *testing.T) {
	t.Run("nil response", func(t *testing.T) {
		interp := ParseInterpretation("claude", nil)
		assert.Equal(t, "no response", interp.Err)
		assert.False(t, interp.Usable())
	})

	t.Run("error response", func(t *testing.T) {
		interp := ParseInterpretation("claude", models.ErrorResponse("exit status 1", "boom"))
		assert.Equal(t, "exit status 1", interp.Err)
		assert.False(t, interp.Usable())
	})

	t.Run("parsed response", func(t *testing.T) {
		interp := ParseInterpretation("claude", models.ParsedResponse(map[string]interface{}{
			"interpretation": "do the thing",
			"steps":          []interface{}{"step 1"},
			"assumptions":    []interface{}{"a1"},
			"ambiguities":    []interface{}{"q1"},
		}))
		assert.Equal(t, "do the thing", interp.Text)
		assert.Equal(t, []string{"step 1"}, interp.Steps)
		assert.Equal(t, []string{"a1"}, interp.Assumptions)
		assert.Equal(t, []string{"q1"}, interp.Ambiguities)
		assert.True(t, interp.Usable())
	})

	t.Run("raw text response", func(t *testing.T) {
		interp := ParseInterpretation("claude", models.RawTextResponse("free-form prose"))
		assert.Empty(t, interp.Text)
		assert.False(t, interp.Usable())
	})
}
