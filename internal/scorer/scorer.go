// Package scorer rates candidate instructions by format, relevance, and
// complexity heuristics. It is independent of the generation service's own
// confidence score and is invoked only when explicitly enabled as a quality
// gate.
package scorer

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// garbagePatterns match known-bad question shapes: vague pronoun references
// and templated non-questions. A match short-circuits the score to 0.
var garbagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bwhat does i mean\b`),
	regexp.MustCompile(`\bhow do you execute what\b`),
	regexp.MustCompile(`\bwhat role does a play\b`),
	regexp.MustCompile(`\bwhat aspects of - are\b`),
	regexp.MustCompile(`\bwhat is explained about -\b`),
	regexp.MustCompile(`\bwhat does that mean\b`),
	regexp.MustCompile(`\bhow does it work\b`),
	regexp.MustCompile(`\bwhat is the purpose of it\b`),
	regexp.MustCompile(`^what is \w+\?$`),
	regexp.MustCompile(`^how does \w+ work\?$`),
}

var relevanceKeywords = []string{
	"revenue", "business", "strategy", "consulting", "automation",
	"ai", "client", "service", "process", "optimization", "growth",
}

var domainKeywords = []string{
	"revenue", "profit", "roi", "growth", "strategy",
	"client", "customer", "service", "consulting",
	"implementation", "optimization", "results",
}

// Scorer assesses instruction quality heuristically.
type Scorer struct{}

// New creates a Scorer.
func New() *Scorer {
	return &Scorer{}
}

// Score rates an instruction in [0,1]. Context is reserved for future
// relevance checks and may be empty.
func (s *Scorer) Score(instruction, _ string) float64 {
	lower := strings.ToLower(instruction)
	for _, p := range garbagePatterns {
		if p.MatchString(lower) {
			return 0.0
		}
	}

	score := 0.5
	score += s.formatQuality(instruction) * 0.3
	score += s.relevance(lower) * 0.3
	score += s.domainFocus(lower) * 0.2
	score += s.complexity(instruction) * 0.2

	return clamp01(score)
}

// formatQuality checks capitalization, the trailing question mark, and word
// count band.
func (s *Scorer) formatQuality(q string) float64 {
	score := 0.0
	if first, _ := utf8.DecodeRuneInString(q); unicode.IsUpper(first) {
		score += 0.3
	}
	if strings.HasSuffix(q, "?") {
		score += 0.4
	}
	if wc := len(strings.Fields(q)); wc >= 6 && wc <= 25 {
		score += 0.3
	}
	return score
}

// relevance rewards keyword density and penalizes the most generic question
// stems.
func (s *Scorer) relevance(lower string) float64 {
	score := 0.0
	matches := 0
	for _, kw := range relevanceKeywords {
		if strings.Contains(lower, kw) {
			matches++
		}
	}
	switch {
	case matches >= 2:
		score += 0.5
	case matches == 1:
		score += 0.3
	}
	if !strings.HasPrefix(lower, "what is") && !strings.HasPrefix(lower, "how does") {
		score += 0.2
	}
	return clamp01(score)
}

func (s *Scorer) domainFocus(lower string) float64 {
	matches := 0
	for _, kw := range domainKeywords {
		if strings.Contains(lower, kw) {
			matches++
		}
	}
	switch {
	case matches >= 2:
		return 1.0
	case matches == 1:
		return 0.6
	}
	return 0.0
}

// complexity rates the word-count band: 8-18 words is optimal, 6-22 acceptable.
func (s *Scorer) complexity(q string) float64 {
	wc := len(strings.Fields(q))
	switch {
	case wc >= 8 && wc <= 18:
		return 1.0
	case wc >= 6 && wc <= 22:
		return 0.7
	}
	return 0.3
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
