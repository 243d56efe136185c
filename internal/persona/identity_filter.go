package persona

import (
	"regexp"
	"strings"
	"unicode"
)

// stageRule is one named stage-direction pattern. Keeping the set as
// named rules means new roleplay markup forms can be added without
// touching the filter logic.
type stageRule struct {
	name    string
	pattern *regexp.Regexp
}

var stageDirectionRules = []stageRule{
	{"asterisk-action", regexp.MustCompile(`\*[^*]{0,120}\*`)},
	{"bracket-action", regexp.MustCompile(`\[[^\]]{0,120}\]`)},
	{"paren-verb-action", regexp.MustCompile(`(?i)\((?:smiles|laughs|chuckles|sighs|clears throat|giggles)[^)]*\)`)},
}

var (
	aiDisclaimerPattern  = regexp.MustCompile(`(?i)^As an AI(?: language model)?[, ]*`)
	whitespaceRunPattern = regexp.MustCompile(`\s+`)

	// Whole-word substitutions that keep the persona airtight even when
	// the model leaks its own name or vendor.
	identityRules = []struct {
		pattern     *regexp.Regexp
		replacement string
	}{
		{regexp.MustCompile(`(?i)\bClaude\b`), Name},
		{regexp.MustCompile(`(?i)\bBlessed Boy\b`), Name},
		{regexp.MustCompile(`(?i)\bAnthropic\b`), "my team"},
	}

	// Leading "Rem:" / "Rem -" / "Rem." tags at the very start only.
	leadNameTagPattern = regexp.MustCompile(`(?i)^\s*` + Name + `\s*[:\-–—.,]\s*`)
)

// StripStageDirections removes roleplay markup spans and the leading
// AI disclaimer, then collapses whitespace.
func StripStageDirections(text string) string {
	out := text
	for _, rule := range stageDirectionRules {
		out = rule.pattern.ReplaceAllString(out, "")
	}
	out = aiDisclaimerPattern.ReplaceAllString(out, "")
	return strings.TrimSpace(whitespaceRunPattern.ReplaceAllString(out, " "))
}

// Clean normalizes raw model output into persona-safe dialogue. Identity
// substitution runs before the leading name-tag strip: substitution can
// itself introduce the exact "Rem:" prefix being stripped.
func Clean(text string) string {
	out := StripStageDirections(text)
	for _, rule := range identityRules {
		out = rule.pattern.ReplaceAllString(out, rule.replacement)
	}
	out = leadNameTagPattern.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}

// ClampSentences keeps the first n sentences, rejoined with single
// spaces. Terminal punctuation is not re-added if the last fragment
// lacked it.
func ClampSentences(text string, n int) string {
	parts := SplitSentences(text)
	if n < len(parts) {
		parts = parts[:n]
	}
	return strings.Join(parts, " ")
}

// SplitSentences splits on sentence-ending punctuation followed by
// whitespace, keeping the punctuation with its fragment.
func SplitSentences(text string) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}

	var parts []string
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isSentenceEnd(runes[i]) {
			continue
		}
		// Absorb a run of terminal punctuation ("?!", "...").
		for i+1 < len(runes) && isSentenceEnd(runes[i+1]) {
			i++
		}
		if i+1 >= len(runes) || !unicode.IsSpace(runes[i+1]) {
			continue
		}
		frag := strings.TrimSpace(string(runes[start : i+1]))
		if frag != "" {
			parts = append(parts, frag)
		}
		i++
		for i < len(runes) && unicode.IsSpace(runes[i]) {
			i++
		}
		start = i
		i--
	}
	if start < len(runes) {
		frag := strings.TrimSpace(string(runes[start:]))
		if frag != "" {
			parts = append(parts, frag)
		}
	}
	return parts
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
