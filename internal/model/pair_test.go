package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQualityOrDefault(t *testing.T) {
	q := 0.9
	assert.Equal(t, 0.9, CandidatePair{Quality: &q}.QualityOrDefault())
	assert.Equal(t, 0.5, CandidatePair{}.QualityOrDefault())
}

func TestStandardizeFillsDefaults(t *testing.T) {
	c := CandidatePair{
		Instruction: "  How does the billing cycle work?  ",
		Output:      "  Invoices are issued monthly on the signup anniversary.  ",
	}

	p, ok := Standardize(c, "fallback-id")
	require.True(t, ok)

	assert.Equal(t, "How does the billing cycle work?", p.Instruction)
	assert.Equal(t, "Invoices are issued monthly on the signup anniversary.", p.Output)
	assert.Equal(t, "fallback-id", p.ID)
	assert.Equal(t, "unknown", p.Source)
	assert.False(t, p.Timestamp.IsZero())
	assert.Equal(t, 0.5, p.QualityScore)
	assert.True(t, p.Validated)
	assert.True(t, p.ReadyForTraining)
}

func TestStandardizeKeepsProvidedFields(t *testing.T) {
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	q := 0.8
	c := CandidatePair{
		Instruction: "How does the billing cycle work?",
		Output:      "Invoices are issued monthly.",
		Quality:     &q,
		ResourceID:  "res_abc",
		GeneratedAt: ts,
		PairID:      "pair-1",
	}

	p, ok := Standardize(c, "fallback-id")
	require.True(t, ok)
	assert.Equal(t, "pair-1", p.ID)
	assert.Equal(t, "res_abc", p.Source)
	assert.Equal(t, ts, p.Timestamp)
	assert.Equal(t, 0.8, p.QualityScore)
}

func TestStandardizeDropsShortFields(t *testing.T) {
	_, ok := Standardize(CandidatePair{Instruction: "Why?", Output: "A long enough output here."}, "id")
	assert.False(t, ok)

	_, ok = Standardize(CandidatePair{Instruction: "A long enough instruction?", Output: "Because."}, "id")
	assert.False(t, ok)

	// Whitespace padding does not rescue a short field.
	_, ok = Standardize(CandidatePair{Instruction: "   Why?      ", Output: "A long enough output here."}, "id")
	assert.False(t, ok)
}

func TestSourceTypeValid(t *testing.T) {
	assert.True(t, SourceText.Valid())
	assert.True(t, SourceChat.Valid())
	assert.False(t, SourceAuto.Valid())
	assert.False(t, SourceType("bogus").Valid())
}
