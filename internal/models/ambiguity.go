package models

import "sort"

// Severity classifies how serious a flagged ambiguity is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Rank returns the sort position of a severity, critical first.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	default:
		return 4
	}
}

// ComparisonResult is the verdict a comparison strategy produces for one
// section. Similarity is always in [0,1] and Groups partition the compared
// model names.
type ComparisonResult struct {
	Agree      bool       `json:"agree"`
	Similarity float64    `json:"similarity"`
	Details    string     `json:"details"`
	Groups     [][]string `json:"groups"`

	// Simple-strategy extras: which models hedged.
	AssumptionsMade  []string `json:"assumptions_made,omitempty"`
	AmbiguitiesNoted []string `json:"ambiguities_noted,omitempty"`

	// Judge-strategy extras.
	KeyDifferences    []string `json:"key_differences,omitempty"`
	SharedAmbiguities bool     `json:"shared_ambiguities,omitempty"`
	SharedConcerns    []string `json:"shared_concerns,omitempty"`

	// Reason is set when an Ambiguity is emitted for a reason other than
	// disagreement (shared concerns under agreement).
	Reason string `json:"reason,omitempty"`
}

// Ambiguity is a documentation section flagged as having divergent or
// commonly-hedged interpretations across models. Immutable after creation.
type Ambiguity struct {
	SectionID       string                    `json:"section_id"`
	SectionHeader   string                    `json:"section_header"`
	SectionContent  string                    `json:"section_content"`
	Severity        Severity                  `json:"severity"`
	Interpretations map[string]Interpretation `json:"interpretations"`
	Comparison      *ComparisonResult         `json:"comparison_details"`
}

// SortBySeverity orders ambiguities critical-first, preserving the relative
// order of equal severities.
func SortBySeverity(ambiguities []Ambiguity) {
	sort.SliceStable(ambiguities, func(i, j int) bool {
		return ambiguities[i].Severity.Rank() < ambiguities[j].Severity.Rank()
	})
}
