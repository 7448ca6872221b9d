// Package detector classifies model responses into interpretations, compares
// them for disagreement using a pluggable strategy, and turns genuine
// divergence into severity-ranked ambiguity records.
package detector

import (
	"fmt"

	"github.com/harrison/docpolish/internal/models"
)

// ParseInterpretation normalizes a model response into an Interpretation.
// Error responses yield an inert record whose Err field voids everything
// else. Raw-text responses yield an empty interpretation, which the detector
// filters out before comparison. Parsed responses read the four expected
// fields by key, each defaulting to its empty form.
func ParseInterpretation(model string, resp *models.Response) models.Interpretation {
	if resp == nil {
		return models.Interpretation{Model: model, Err: "no response"}
	}

	switch resp.Kind {
	case models.KindError:
		msg := resp.Message
		if msg == "" {
			msg = resp.Stderr
		}
		if msg == "" {
			msg = "unknown error"
		}
		return models.Interpretation{Model: model, Err: msg}

	case models.KindParsed:
		return models.Interpretation{
			Model:       model,
			Text:        resp.StringField("interpretation"),
			Steps:       resp.StringSliceField("steps"),
			Assumptions: resp.StringSliceField("assumptions"),
			Ambiguities: resp.StringSliceField("ambiguities"),
		}

	default:
		// Raw text carries no structured fields; the empty interpretation
		// makes the record unusable for comparison.
		return models.Interpretation{Model: model}
	}
}

// Strategy decides whether two or more interpretations of one section agree.
// Implementations must never be handed error-flagged or empty
// interpretations; the detector filters those first.
type Strategy interface {
	Compare(sectionID string, interps []models.Interpretation) (*models.ComparisonResult, error)
}

// JudgeFailureError signals that the adjudicating judge itself malfunctioned:
// its response was an error, empty, or structurally invalid. It is never
// interpreted as agreement or disagreement; it aborts the detection pass.
type JudgeFailureError struct {
	SectionID string
	Reason    string
	Details   string
}

func (e *JudgeFailureError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("judge failure on %s: %s (%s)", e.SectionID, e.Reason, e.Details)
	}
	return fmt.Sprintf("judge failure on %s: %s", e.SectionID, e.Reason)
}
