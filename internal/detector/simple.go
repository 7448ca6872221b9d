package detector

import (
	"fmt"
	"regexp"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/harrison/docpolish/internal/models"
)

// stopwords excluded from keyword extraction.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "been": true, "being": true, "have": true,
	"has": true, "had": true, "do": true, "does": true, "did": true,
	"will": true, "would": true, "could": true, "should": true, "may": true,
	"might": true, "must": true, "shall": true, "can": true, "need": true,
	"to": true, "of": true, "in": true, "for": true, "on": true, "with": true,
	"at": true, "by": true, "from": true, "as": true, "into": true,
	"through": true, "and": true, "or": true, "but": true, "if": true,
	"then": true, "else": true, "when": true, "where": true, "which": true,
	"that": true, "this": true, "these": true, "those": true, "it": true,
	"its": true, "i": true, "you": true, "we": true, "they": true,
}

var (
	wordPattern   = regexp.MustCompile(`\b[a-z]{3,}\b`)
	numberPattern = regexp.MustCompile(`\b\d+\b`)
)

// SimpleStrategy is a crude keyword-and-structure comparison with no external
// model dependency. Pairwise similarity blends Jaccard keyword overlap (70%)
// with a normalized step-count signal (30%); any stated assumption forces
// disagreement even under textual agreement, since assumptions are themselves
// evidence of ambiguity.
type SimpleStrategy struct {
	Threshold float64
}

// NewSimpleStrategy creates a simple strategy with the given agreement
// threshold.
func NewSimpleStrategy(threshold float64) *SimpleStrategy {
	return &SimpleStrategy{Threshold: threshold}
}

// element holds the comparison signals extracted from one interpretation.
type element struct {
	model            string
	keywords         map[string]bool
	stepCount        int
	hasAssumptions   bool
	notedAmbiguities bool
}

// Compare implements Strategy. It never returns an error.
func (s *SimpleStrategy) Compare(sectionID string, interps []models.Interpretation) (*models.ComparisonResult, error) {
	if len(interps) < 2 {
		return &models.ComparisonResult{
			Agree:      true,
			Similarity: 1.0,
			Details:    "Only one interpretation",
		}, nil
	}

	elements := make([]element, len(interps))
	for i, in := range interps {
		elements[i] = element{
			model:            in.Model,
			keywords:         extractKeywords(in.Text),
			stepCount:        len(in.Steps),
			hasAssumptions:   len(in.Assumptions) > 0,
			notedAmbiguities: len(in.Ambiguities) > 0,
		}
	}

	type pair struct {
		a, b string
		sim  float64
	}
	var pairs []pair
	var sims []float64
	for i := 0; i < len(elements); i++ {
		for j := i + 1; j < len(elements); j++ {
			sim := pairSimilarity(elements[i], elements[j])
			pairs = append(pairs, pair{elements[i].model, elements[j].model, sim})
			sims = append(sims, sim)
		}
	}

	avg := 1.0
	if len(sims) > 0 {
		avg = stat.Mean(sims, nil)
	}
	textualAgree := avg >= s.Threshold

	var assumed, noted []string
	for _, e := range elements {
		if e.hasAssumptions {
			assumed = append(assumed, e.model)
		}
		if e.notedAmbiguities {
			noted = append(noted, e.model)
		}
	}

	var details []string
	if !textualAgree {
		details = append(details, fmt.Sprintf("Average similarity: %.2f", avg))
		for _, p := range pairs {
			if p.sim < s.Threshold {
				details = append(details, fmt.Sprintf("%s vs %s: %.2f", p.a, p.b, p.sim))
			}
		}
	}
	if len(assumed) > 0 {
		details = append(details, "Models made assumptions: "+strings.Join(assumed, ", "))
	}
	if len(noted) > 0 {
		details = append(details, "Models noted ambiguities: "+strings.Join(noted, ", "))
	}
	detailText := "Interpretations agree"
	if len(details) > 0 {
		detailText = strings.Join(details, "; ")
	}

	return &models.ComparisonResult{
		Agree:            textualAgree && len(assumed) == 0,
		Similarity:       avg,
		Details:          detailText,
		Groups:           s.groupBySimilarity(elements),
		AssumptionsMade:  assumed,
		AmbiguitiesNoted: noted,
	}, nil
}

// extractKeywords pulls significant lowercase words (3+ letters) and numbers
// out of text, minus stopwords. Numbers matter for quantities.
func extractKeywords(text string) map[string]bool {
	keywords := make(map[string]bool)
	if text == "" {
		return keywords
	}
	text = strings.ToLower(text)
	for _, w := range wordPattern.FindAllString(text, -1) {
		if !stopwords[w] {
			keywords[w] = true
		}
	}
	for _, n := range numberPattern.FindAllString(text, -1) {
		keywords[n] = true
	}
	return keywords
}

// pairSimilarity blends Jaccard keyword similarity with a normalized
// step-count difference, weighted 70/30.
func pairSimilarity(a, b element) float64 {
	if len(a.keywords) == 0 && len(b.keywords) == 0 {
		return 1.0
	}
	if len(a.keywords) == 0 || len(b.keywords) == 0 {
		return 0.0
	}

	intersection := 0
	for kw := range a.keywords {
		if b.keywords[kw] {
			intersection++
		}
	}
	union := len(a.keywords) + len(b.keywords) - intersection
	keywordSim := 0.0
	if union > 0 {
		keywordSim = float64(intersection) / float64(union)
	}

	maxSteps := a.stepCount
	if b.stepCount > maxSteps {
		maxSteps = b.stepCount
	}
	if maxSteps < 1 {
		maxSteps = 1
	}
	stepDiff := a.stepCount - b.stepCount
	if stepDiff < 0 {
		stepDiff = -stepDiff
	}
	stepSim := 1.0 - float64(stepDiff)/float64(maxSteps)

	return 0.7*keywordSim + 0.3*stepSim
}

// groupBySimilarity greedily clusters models whose pairwise similarity meets
// the threshold. Every model lands in exactly one group.
func (s *SimpleStrategy) groupBySimilarity(elements []element) [][]string {
	var groups [][]string
	used := make(map[string]bool)

	for i, e := range elements {
		if used[e.model] {
			continue
		}
		group := []string{e.model}
		used[e.model] = true

		for _, other := range elements[i+1:] {
			if used[other.model] {
				continue
			}
			if pairSimilarity(e, other) >= s.Threshold {
				group = append(group, other.model)
				used[other.model] = true
			}
		}
		groups = append(groups, group)
	}

	return groups
}
