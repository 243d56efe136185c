package speech

import (
	"fmt"
	"strings"

	"github.com/syedsofiyan2004/rem/internal/persona"
)

var languageTags = map[string]string{
	"es":    "es-ES",
	"es-es": "es-ES",
	"es-mx": "es-MX",
	"fr":    "fr-FR",
	"fr-fr": "fr-FR",
	"fr-ca": "fr-CA",
	"hi":    "hi-IN",
	"hi-in": "hi-IN",
	"en":    "en-US",
}

// NormalizeLanguage maps a loose language hint to the IETF-like tag the
// backend expects, or "" when the hint is unknown.
func NormalizeLanguage(lang string) string {
	return languageTags[strings.ToLower(strings.TrimSpace(lang))]
}

// speechRatePitch applies per-language pacing tweaks on top of the
// configured defaults. Spanish and French read a bit slower, Hindi
// slightly slower.
func speechRatePitch(lang, defaultRate, defaultPitch string) (string, string) {
	switch {
	case strings.HasPrefix(NormalizeLanguage(lang), "es-"):
		return "-10%", defaultPitch
	case strings.HasPrefix(NormalizeLanguage(lang), "fr-"):
		return "-10%", defaultPitch
	case strings.HasPrefix(NormalizeLanguage(lang), "hi-"):
		return "-5%", defaultPitch
	default:
		return defaultRate, defaultPitch
	}
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// BuildSpeechSSML wraps text in sentence tags with short inter-sentence
// pauses and language-aware prosody, for natural conversational pacing.
func BuildSpeechSSML(text, lang, defaultRate, defaultPitch string) string {
	var tagged []string
	for _, s := range persona.SplitSentences(text) {
		tagged = append(tagged, "<s>"+xmlEscaper.Replace(s)+"</s><break time='120ms'/>")
	}
	inner := strings.Join(tagged, "<break time='80ms'/>")

	rate, pitch := speechRatePitch(lang, defaultRate, defaultPitch)
	body := fmt.Sprintf("<prosody rate='%s' pitch='%s'>%s</prosody>", rate, pitch, inner)
	if tag := NormalizeLanguage(lang); tag != "" {
		return fmt.Sprintf("<speak><lang xml:lang='%s'>%s</lang></speak>", tag, body)
	}
	return "<speak>" + body + "</speak>"
}

// Pitch-step contours cycled across phrases so the melody does not feel
// repetitive. The backend cannot truly sing; pitch steps plus pacing
// simulate a melodic line.
var singContours = [][]int{
	{2, 5, 9, 7, 4, 2, 0, 3},
	{1, 3, 6, 8, 10, 8, 5, 2},
	{0, 2, 4, 7, 9, 7, 4, 1},
}

// BuildSingSSML produces a melodic rendition: phrase-level emphasis,
// per-token pitch contours, sustained long words, and musical rests.
func BuildSingSSML(text, lang string) string {
	var phrases []string
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		for _, p := range splitPhrases(line) {
			if p != "" {
				phrases = append(phrases, p)
			}
		}
	}

	var b strings.Builder
	for idx, phrase := range phrases {
		contour := singContours[idx%len(singContours)]
		b.WriteString("<emphasis level='moderate'>")
		for k, tok := range strings.Fields(phrase) {
			if k > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(stylizeSingToken(tok, contour[k%len(contour)]))
		}
		b.WriteString("</emphasis><break time='260ms'/>")
	}
	inner := b.String()
	if inner == "" {
		inner = xmlEscaper.Replace(text)
	}

	body := fmt.Sprintf("<prosody rate='%s'>%s</prosody>", singRate(lang), inner)
	if tag := NormalizeLanguage(lang); tag != "" {
		return fmt.Sprintf("<speak><lang xml:lang='%s'>%s</lang></speak>", tag, body)
	}
	return "<speak>" + body + "</speak>"
}

// singRate is the slow, musical outer rate, slowed further for the
// languages that already read slower in speech mode.
func singRate(lang string) string {
	switch {
	case strings.HasPrefix(NormalizeLanguage(lang), "es-"):
		return "-20%"
	case strings.HasPrefix(NormalizeLanguage(lang), "fr-"):
		return "-18%"
	case strings.HasPrefix(NormalizeLanguage(lang), "hi-"):
		return "-12%"
	default:
		return "-15%"
	}
}

// stylizeSingToken pitches one word along the phrase contour. Longer
// words with vowels get a sustained (slower) delivery to emulate held
// notes.
func stylizeSingToken(tok string, step int) string {
	escaped := xmlEscaper.Replace(tok)
	if len(tok) >= 7 && strings.ContainsAny(strings.ToLower(tok), "aeiou") {
		return fmt.Sprintf("<prosody pitch='%+d%%'><prosody rate='-10%%'>%s</prosody></prosody>", step, escaped)
	}
	return fmt.Sprintf("<prosody pitch='%+d%%'>%s</prosody>", step, escaped)
}

// splitPhrases cuts a lyric line into phrase units on sentence and
// clause punctuation.
func splitPhrases(line string) []string {
	var phrases []string
	var cur strings.Builder
	flush := func() {
		if p := strings.TrimSpace(cur.String()); p != "" {
			phrases = append(phrases, p)
		}
		cur.Reset()
	}
	for _, r := range line {
		switch r {
		case '.', '!', '?', ';', ',':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return phrases
}
