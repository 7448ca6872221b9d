package models

import "strings"

// Interpretation is one model's structured understanding of one section.
// A non-empty Err voids all other content; such records never reach a
// comparison strategy.
type Interpretation struct {
	Model       string   `json:"-"`
	Text        string   `json:"interpretation"`
	Steps       []string `json:"steps"`
	Assumptions []string `json:"assumptions"`
	Ambiguities []string `json:"ambiguities"`
	Err         string   `json:"-"`
}

// Usable reports whether the interpretation can participate in a comparison.
// Error-flagged records and empty or whitespace-only interpretation text are
// both unusable; comparing against them would produce a meaningless judgment.
func (in Interpretation) Usable() bool {
	return in.Err == "" && strings.TrimSpace(in.Text) != ""
}
