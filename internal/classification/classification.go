// Package classification decides which job subfolder an email's attachments
// belong in. An ordered rule table handles the common cases; a generative
// model is consulted only when no rule fires.
package classification

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Category is a destination subfolder kind.
type Category string

const (
	Briefs   Category = "Briefs"
	Feedback Category = "Feedback"
	Round    Category = "Round"
	Other    Category = "Other"
)

var categories = []Category{Briefs, Feedback, Round, Other}

// ParseCategory matches s case-insensitively against the four categories.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range categories {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	return "", false
}

// Confidence is a three-level certainty label.
type Confidence string

const (
	High   Confidence = "high"
	Medium Confidence = "medium"
	Low    Confidence = "low"
)

// ParseConfidence clamps s to a known level. Anything unrecognised is Low.
func ParseConfidence(s string) Confidence {
	switch Confidence(strings.ToLower(strings.TrimSpace(s))) {
	case High:
		return High
	case Medium:
		return Medium
	default:
		return Low
	}
}

// Source records which classifier produced a Result.
type Source string

const (
	SourceRules Source = "rules"
	SourceModel Source = "model"
)

// Result is a classification decision. Round is non-zero only when
// Category is Round and the folder resolver has allocated a number.
type Result struct {
	Category   Category
	Round      int
	Confidence Confidence
	Reasoning  string
	Source     Source
}

// WithRound returns a copy carrying round n. It panics if the category is not Round.
func (r Result) WithRound(n int) Result {
	if r.Category != Round {
		panic(fmt.Sprintf("classification: round %d assigned to %s", n, r.Category))
	}
	r.Round = n
	return r
}

// Outgoing reports whether the result is an outgoing deliverable.
func (r Result) Outgoing() bool {
	return r.Category == Round
}

// MarshalJSON renders the response shape: folder, is_outgoing, confidence,
// reasoning, plus source and round.
func (r Result) MarshalJSON() ([]byte, error) {
	type summary struct {
		Folder     Category   `json:"folder"`
		IsOutgoing bool       `json:"is_outgoing"`
		Confidence Confidence `json:"confidence"`
		Reasoning  string     `json:"reasoning"`
		Source     Source     `json:"source"`
		Round      int        `json:"round,omitempty"`
	}
	return json.Marshal(summary{
		Folder:     r.Category,
		IsOutgoing: r.Outgoing(),
		Confidence: r.Confidence,
		Reasoning:  r.Reasoning,
		Source:     r.Source,
		Round:      r.Round,
	})
}

// Message is the subset of a filing request the classifiers read.
type Message struct {
	JobNumber   string
	SenderName  string
	SenderEmail string
	Subject     string
	Body        string
	Attachments []string
	Recipients  []string
	Route       string
	FolderType  string
}
