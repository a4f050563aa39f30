package model

import (
	"strings"
	"time"
)

// CandidatePair is an instruction/output pair proposed by the generation
// service. Transient: it exists until it is standardized or dropped.
type CandidatePair struct {
	Instruction string    `json:"instruction"`
	Input       string    `json:"input,omitempty"`
	Output      string    `json:"output"`
	Quality     *float64  `json:"overall_quality,omitempty"` // nil when the service supplied no score
	Confidence  float64   `json:"confidence"`
	ResourceID  string    `json:"resource_id"`
	GeneratedAt time.Time `json:"generation_timestamp"`
	Method      string    `json:"generation_method"`
	PairID      string    `json:"qa_pair_id,omitempty"`
}

// QualityOrDefault returns the generation-time quality score, defaulting to
// 0.5 when the service supplied none.
func (c CandidatePair) QualityOrDefault() float64 {
	if c.Quality == nil {
		return 0.5
	}
	return *c.Quality
}

// MinFieldLength is the minimum trimmed length for instruction and output of
// a standardized pair. Shorter pairs are dropped, not flagged.
const MinFieldLength = 10

// TrainingPair is a candidate that survived filtering, deduplication, and
// shape validation.
type TrainingPair struct {
	Instruction string `json:"instruction"`
	Input       string `json:"input"`
	Output      string `json:"output"`

	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`

	QualityScore float64 `json:"quality_score"`
	Confidence   float64 `json:"confidence"`

	Method           string `json:"generation_method"`
	Validated        bool   `json:"validated"`
	ReadyForTraining bool   `json:"ready_for_training"`
}

// Standardize maps a candidate into a TrainingPair, trimming all text fields.
// Returns ok=false when the trimmed instruction or output falls below
// MinFieldLength; such pairs are dropped rather than flagged.
func Standardize(c CandidatePair, fallbackID string) (TrainingPair, bool) {
	p := TrainingPair{
		Instruction:      strings.TrimSpace(c.Instruction),
		Input:            strings.TrimSpace(c.Input),
		Output:           strings.TrimSpace(c.Output),
		ID:               c.PairID,
		Source:           c.ResourceID,
		Timestamp:        c.GeneratedAt,
		QualityScore:     c.QualityOrDefault(),
		Confidence:       c.Confidence,
		Method:           c.Method,
		Validated:        true,
		ReadyForTraining: true,
	}
	if p.ID == "" {
		p.ID = fallbackID
	}
	if p.Source == "" {
		p.Source = "unknown"
	}
	if p.Timestamp.IsZero() {
		p.Timestamp = time.Now().UTC()
	}
	if len(p.Instruction) < MinFieldLength || len(p.Output) < MinFieldLength {
		return TrainingPair{}, false
	}
	return p, true
}
