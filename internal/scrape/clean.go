package scrape

import (
	"regexp"
	"strings"
)

// boilerplatePatterns match whole lines of site chrome that survive DOM
// pruning: cookie banners, consent prompts, and video-page furniture.
var boilerplatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(accept|reject|manage)( all)? cookies?\b`),
	regexp.MustCompile(`(?i)^we use cookies\b`),
	regexp.MustCompile(`(?i)^sign (in|up)\b`),
	regexp.MustCompile(`(?i)^log ?in\b`),
	regexp.MustCompile(`(?i)^share (this|on)\b`),
	regexp.MustCompile(`(?i)^related (articles|posts|videos)\b`),
	regexp.MustCompile(`(?i)^advertisement$`),
	regexp.MustCompile(`(?i)^skip to (main )?content\b`),
	regexp.MustCompile(`(?i)^\d+(\.\d+)?[km]? (views|likes|subscribers)\b`),
	regexp.MustCompile(`(?i)^(like|dislike|share|download|clip|save)$`),
}

// promoPatterns match creator-description promo lines: channel plugs,
// social handles, sponsorship blurbs.
var promoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bsubscribe\b`),
	regexp.MustCompile(`(?i)\bfollow (me|us)\b`),
	regexp.MustCompile(`(?i)\b(instagram|twitter|tiktok|facebook|linkedin)\b`),
	regexp.MustCompile(`(?i)\bpatreon\b`),
	regexp.MustCompile(`(?i)\bmerch\b`),
	regexp.MustCompile(`(?i)\bsponsor(ed)?\b`),
	regexp.MustCompile(`(?i)\buse (code|coupon)\b`),
}

var navKeywords = []string{
	"home", "menu", "about", "contact", "search", "next", "previous",
	"back", "more", "login", "register",
}

var urlRe = regexp.MustCompile(`https?://\S+`)

// CleanWebContent drops boilerplate, promo, and navigation lines and
// collapses the remaining whitespace.
func CleanWebContent(content string) string {
	lines := strings.Split(content, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			kept = append(kept, "")
			continue
		}
		if isBoilerplate(line) || isPromo(line) || isNavLine(line) || isURLHeavy(line) {
			continue
		}
		kept = append(kept, line)
	}
	return collapseBlankLines(strings.Join(kept, "\n"))
}

// CleanDescription strips creator promo and link-dump lines from a video
// description, keeping the prose.
func CleanDescription(desc string) string {
	lines := strings.Split(desc, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			kept = append(kept, "")
			continue
		}
		if isPromo(line) || isURLHeavy(line) {
			continue
		}
		kept = append(kept, line)
	}
	return collapseBlankLines(strings.Join(kept, "\n"))
}

func isBoilerplate(line string) bool {
	for _, p := range boilerplatePatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

func isPromo(line string) bool {
	for _, p := range promoPatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

// isNavLine flags short link-farm lines: a single word, or up to three words
// one of which is a navigation keyword.
func isNavLine(line string) bool {
	words := strings.Fields(line)
	if len(words) == 1 && !strings.HasSuffix(line, ".") {
		return true
	}
	if len(words) > 3 {
		return false
	}
	for _, w := range words {
		lw := strings.ToLower(strings.Trim(w, ".,:;"))
		for _, kw := range navKeywords {
			if lw == kw {
				return true
			}
		}
	}
	return false
}

// isURLHeavy flags lines that are mostly links.
func isURLHeavy(line string) bool {
	urls := urlRe.FindAllString(line, -1)
	if len(urls) == 0 {
		return false
	}
	total := 0
	for _, u := range urls {
		total += len(u)
	}
	return total*2 > len(line)
}

var (
	bracketRe   = regexp.MustCompile(`\[[^\]]*\]`)
	parenCueRe  = regexp.MustCompile(`\((?i:music|applause|laughter|inaudible|crosstalk)[^)]*\)`)
	fillerRe    = regexp.MustCompile(`(?i)\b(um+|uh+|you know)\b[,.]?\s*`)
	spaceRe     = regexp.MustCompile(`[ \t]+`)
	blankRunsRe = regexp.MustCompile(`\n{3,}`)
)

// CleanTranscript normalizes caption text: cue annotations like [Music] and
// (applause), verbal fillers, and whitespace runs are removed.
func CleanTranscript(text string) string {
	text = bracketRe.ReplaceAllString(text, " ")
	text = parenCueRe.ReplaceAllString(text, " ")
	text = fillerRe.ReplaceAllString(text, "")
	text = spaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func collapseBlankLines(s string) string {
	return strings.TrimSpace(blankRunsRe.ReplaceAllString(s, "\n\n"))
}

// TruncateAtSentence caps content at max bytes, cutting back to the last
// sentence boundary when one exists in the tail; otherwise the cut falls on
// the last word boundary.
func TruncateAtSentence(content string, max int) string {
	if max <= 0 || len(content) <= max {
		return content
	}
	cut := content[:max]
	if i := lastSentenceEnd(cut); i > max/2 {
		return strings.TrimSpace(cut[:i+1])
	}
	if i := strings.LastIndexAny(cut, " \n\t"); i > 0 {
		return strings.TrimSpace(cut[:i])
	}
	return strings.TrimSpace(cut)
}

func lastSentenceEnd(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case '.', '!', '?':
			return i
		}
	}
	return -1
}
