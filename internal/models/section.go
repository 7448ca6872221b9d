// Package models defines the core data types shared across the docpolish
// pipeline: document sections, model responses, interpretations, comparison
// results, and detected ambiguities.
package models

// Section is a contiguous, header-delimited span of the source document
// treated as one testable unit.
type Section struct {
	ID        string `json:"id"`
	Header    string `json:"header"`
	Content   string `json:"content"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Level     int    `json:"level"`
}
