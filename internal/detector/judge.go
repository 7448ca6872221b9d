package detector

import (
	"fmt"
	"strings"

	"github.com/harrison/docpolish/internal/models"
)

// QueryFunc sends a prompt to the judge model and returns its response.
type QueryFunc func(prompt string) *models.Response

// JudgeStrategy asks a separate model whether interpretations agree. Any
// judge malfunction is a *JudgeFailureError so detection stops instead of
// reporting verdicts the judge never actually produced.
type JudgeStrategy struct {
	query QueryFunc
}

// NewJudgeStrategy creates a judge strategy backed by the given query
// function.
func NewJudgeStrategy(query QueryFunc) *JudgeStrategy {
	return &JudgeStrategy{query: query}
}

// Compare implements Strategy. Returns *JudgeFailureError when the judge
// errors, returns nothing parseable, or omits the agree field.
func (s *JudgeStrategy) Compare(sectionID string, interps []models.Interpretation) (*models.ComparisonResult, error) {
	if len(interps) < 2 {
		return &models.ComparisonResult{
			Agree:      true,
			Similarity: 1.0,
			Details:    "Only one interpretation",
		}, nil
	}

	prompt := buildComparisonPrompt(interps)
	resp := s.query(prompt)

	return parseJudgeResponse(sectionID, resp, interps)
}

// buildComparisonPrompt enumerates every interpretation with its steps,
// assumptions, and noted ambiguities, then asks for a strict JSON verdict
// that also covers concerns the models share.
func buildComparisonPrompt(interps []models.Interpretation) string {
	var b strings.Builder
	for i, in := range interps {
		fmt.Fprintf(&b, "\n**Interpretation %d (%s):**\n", i+1, in.Model)
		fmt.Fprintf(&b, "Understanding: %s\n", in.Text)
		if len(in.Steps) > 0 {
			steps := in.Steps
			if len(steps) > 5 {
				steps = steps[:5]
			}
			fmt.Fprintf(&b, "Steps: %s\n", strings.Join(steps, ", "))
		}
		if len(in.Assumptions) > 0 {
			fmt.Fprintf(&b, "Assumptions made: %s\n", strings.Join(in.Assumptions, ", "))
		}
		if len(in.Ambiguities) > 0 {
			fmt.Fprintf(&b, "Noted ambiguities: %s\n", strings.Join(in.Ambiguities, ", "))
		}
	}

	return fmt.Sprintf(`Compare these interpretations of the same documentation section.
%s
Do these interpretations describe the same understanding?

Also check: did the models note similar ambiguities or uncertainties about this section? If all models flagged the same unclear point, the section has a shared ambiguity even when the interpretations agree.

Respond with JSON only:
{
"agree": true/false,
"similarity": 0.0-1.0,
"explanation": "brief explanation of agreement or differences",
"key_differences": ["difference 1", "difference 2"] or [],
"shared_ambiguities": true/false,
"shared_concerns": ["concern noted by multiple models"] or []
}
`, b.String())
}

// parseJudgeResponse validates the judge's verdict. Malformed output is a
// failure, never a synthesized verdict.
func parseJudgeResponse(sectionID string, resp *models.Response, interps []models.Interpretation) (*models.ComparisonResult, error) {
	if resp == nil {
		return nil, &JudgeFailureError{
			SectionID: sectionID,
			Reason:    "Judge query error",
			Details:   "no response from judge model",
		}
	}
	if resp.Kind == models.KindError {
		msg := resp.Message
		if msg == "" {
			msg = "Unknown"
		}
		return nil, &JudgeFailureError{
			SectionID: sectionID,
			Reason:    "Judge query error",
			Details:   msg,
		}
	}
	if resp.Kind != models.KindParsed || len(resp.Fields) == 0 {
		return nil, &JudgeFailureError{
			SectionID: sectionID,
			Reason:    "Invalid judge response",
			Details:   "judge did not return JSON with an 'agree' field",
		}
	}

	agree, ok := resp.BoolField("agree")
	if !ok {
		keys := make([]string, 0, len(resp.Fields))
		for k := range resp.Fields {
			keys = append(keys, k)
		}
		return nil, &JudgeFailureError{
			SectionID: sectionID,
			Reason:    "Invalid judge response",
			Details:   fmt.Sprintf("missing 'agree' field, got keys: %s", strings.Join(keys, ", ")),
		}
	}

	var groups [][]string
	if agree {
		all := make([]string, len(interps))
		for i, in := range interps {
			all[i] = in.Model
		}
		groups = [][]string{all}
	} else {
		for _, in := range interps {
			groups = append(groups, []string{in.Model})
		}
	}

	sharedAmbiguities, _ := resp.BoolField("shared_ambiguities")

	return &models.ComparisonResult{
		Agree:             agree,
		Similarity:        resp.FloatField("similarity", 0.5),
		Details:           resp.StringField("explanation"),
		Groups:            groups,
		KeyDifferences:    resp.StringSliceField("key_differences"),
		SharedAmbiguities: sharedAmbiguities,
		SharedConcerns:    resp.StringSliceField("shared_concerns"),
	}, nil
}
