package speech

import "strings"

// DefaultVoice is the hardcoded last-resort voice when no preference
// matches.
const DefaultVoice = "Ruth"

// voicesByLanguage maps base language codes to a single female voice.
// Used when no dialect preference list exists for the hint.
var voicesByLanguage = map[string]string{
	"en": "Ruth",
	"es": "Lucia",
	"fr": "Lea",
	"hi": "Aditi",
	"de": "Vicki",
	"it": "Bianca",
	"pt": "Camila",
	"ja": "Mizuki",
	"ko": "Seoyeon",
	"zh": "Zhiyu",
	"ar": "Zeina",
	"nl": "Lotte",
	"sv": "Astrid",
	"da": "Naja",
	"nb": "Liv",
	"pl": "Maja",
	"ru": "Tatyana",
	"tr": "Filiz",
}

// dialectPreferences lists ordered voice candidates per dialect; the
// first available wins.
var dialectPreferences = map[string][]string{
	"es-mx": {"Mia", "Lucia"},
	"es-es": {"Lucia", "Mia"},
	"es":    {"Lucia", "Mia"},
	"fr-ca": {"Chantal", "Lea", "Celine"},
	"fr-fr": {"Lea", "Celine", "Chantal"},
	"fr":    {"Lea", "Celine"},
	"hi-in": {"Aditi"},
	"hi":    {"Aditi"},
}

// CandidateVoices resolves the ordered voice candidate list for a
// request. Outside "auto" mode the configured default voice is used
// exclusively: switching voice mid-session breaks perceived character
// continuity, so no substitution is ever attempted. In auto mode the
// dialect preference table applies, falling back to the base language,
// then to the default voice.
func CandidateVoices(langHint, mode, defaultVoice string) []string {
	if strings.TrimSpace(defaultVoice) == "" {
		defaultVoice = DefaultVoice
	}
	if !strings.EqualFold(strings.TrimSpace(mode), "auto") {
		return []string{defaultVoice}
	}

	hint := strings.ToLower(strings.TrimSpace(langHint))
	if hint == "" {
		hint = "en"
	}
	base := strings.SplitN(hint, "-", 2)[0]

	var candidates []string
	switch {
	case len(dialectPreferences[hint]) > 0:
		candidates = dialectPreferences[hint]
	case len(dialectPreferences[base]) > 0:
		candidates = dialectPreferences[base]
	case voicesByLanguage[hint] != "":
		candidates = []string{voicesByLanguage[hint]}
	case voicesByLanguage[base] != "":
		candidates = []string{voicesByLanguage[base]}
	}

	out := make([]string, 0, len(candidates)+1)
	seen := make(map[string]bool, len(candidates)+1)
	for _, v := range append(append([]string{}, candidates...), defaultVoice) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
