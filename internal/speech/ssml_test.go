package speech

import (
	"strings"
	"testing"
)

func TestNormalizeLanguage(t *testing.T) {
	cases := []struct{ in, want string }{
		{"es", "es-ES"},
		{"ES-MX", "es-MX"},
		{" fr ", "fr-FR"},
		{"hi", "hi-IN"},
		{"klingon", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeLanguage(tc.in); got != tc.want {
			t.Fatalf("NormalizeLanguage(%q) = %q, want %q", tc.in, tc.want, got)
		}
	}
}

func TestBuildSpeechSSMLSentenceStructure(t *testing.T) {
	ssml := BuildSpeechSSML("First one. Second one!", "", "medium", "+4%")
	if !strings.HasPrefix(ssml, "<speak>") || !strings.HasSuffix(ssml, "</speak>") {
		t.Fatalf("missing speak wrapper: %q", ssml)
	}
	if strings.Count(ssml, "<s>") != 2 {
		t.Fatalf("want one <s> per sentence, got %q", ssml)
	}
	if !strings.Contains(ssml, "<break time='120ms'/>") {
		t.Fatalf("missing sentence pause: %q", ssml)
	}
	if !strings.Contains(ssml, "rate='medium'") || !strings.Contains(ssml, "pitch='+4%'") {
		t.Fatalf("default prosody not applied: %q", ssml)
	}
}

func TestBuildSpeechSSMLLanguageWrapAndRate(t *testing.T) {
	ssml := BuildSpeechSSML("Hola.", "es-mx", "medium", "+4%")
	if !strings.Contains(ssml, "<lang xml:lang='es-MX'>") {
		t.Fatalf("missing lang wrapper: %q", ssml)
	}
	if !strings.Contains(ssml, "rate='-10%'") {
		t.Fatalf("spanish pacing not applied: %q", ssml)
	}
}

func TestBuildSpeechSSMLEscapesMarkup(t *testing.T) {
	ssml := BuildSpeechSSML("a <b> & 'c'.", "", "medium", "+4%")
	if strings.Contains(ssml, "<b>") {
		t.Fatalf("unescaped markup leaked into SSML: %q", ssml)
	}
	if !strings.Contains(ssml, "&lt;b&gt; &amp; &apos;c&apos;") {
		t.Fatalf("escaping incomplete: %q", ssml)
	}
}

func TestBuildSingSSML(t *testing.T) {
	ssml := BuildSingSSML("happiness is here, today\nsing along", "")
	if !strings.Contains(ssml, "rate='-15%'") {
		t.Fatalf("missing musical outer rate: %q", ssml)
	}
	if strings.Count(ssml, "<emphasis level='moderate'>") != 3 {
		t.Fatalf("want one emphasis block per phrase, got %q", ssml)
	}
	if !strings.Contains(ssml, "<break time='260ms'/>") {
		t.Fatalf("missing phrase rest: %q", ssml)
	}
	// "happiness" has 9 letters and vowels, so it gets a sustained note.
	if !strings.Contains(ssml, "<prosody rate='-10%'>happiness</prosody>") {
		t.Fatalf("long word not sustained: %q", ssml)
	}
	// Short words still ride the pitch contour.
	if !strings.Contains(ssml, "pitch='+") {
		t.Fatalf("no pitch contour applied: %q", ssml)
	}
}

func TestBuildSingSSMLLanguageRates(t *testing.T) {
	cases := []struct{ lang, rate string }{
		{"es", "-20%"},
		{"fr-ca", "-18%"},
		{"hi", "-12%"},
		{"", "-15%"},
	}
	for _, tc := range cases {
		if ssml := BuildSingSSML("la la la", tc.lang); !strings.Contains(ssml, "rate='"+tc.rate+"'") {
			t.Fatalf("lang %q: want outer rate %s in %q", tc.lang, tc.rate, ssml)
		}
	}
}

func TestCandidateVoices(t *testing.T) {
	cases := []struct {
		name string
		lang string
		mode string
		want []string
	}{
		{"fixed mode ignores hint", "es-mx", "", []string{"Ruth"}},
		{"auto dialect preference", "es-mx", "auto", []string{"Mia", "Lucia", "Ruth"}},
		{"auto base fallback", "fr-be", "auto", []string{"Lea", "Celine", "Ruth"}},
		{"auto single-voice language", "ja", "auto", []string{"Mizuki", "Ruth"}},
		{"auto unknown language", "xx", "auto", []string{"Ruth"}},
		{"auto empty hint", "", "auto", []string{"Ruth"}},
	}
	for _, tc := range cases {
		got := CandidateVoices(tc.lang, tc.mode, "Ruth")
		if len(got) != len(tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
			}
		}
	}
}

func TestCandidateVoicesDedupesDefault(t *testing.T) {
	got := CandidateVoices("es", "auto", "Lucia")
	for i, v := range got {
		for j := i + 1; j < len(got); j++ {
			if got[j] == v {
				t.Fatalf("duplicate voice %q in %v", v, got)
			}
		}
	}
}

func TestParseMarkStream(t *testing.T) {
	raw := []byte(`{"time":240,"type":"viseme","value":"p"}
{"time":80,"type":"viseme","value":"a"}
{"time":100,"type":"word","value":"hello"}
not json at all
{"time":0,"type":"viseme","value":"sil"}
`)
	got := ParseMarkStream(raw)
	want := []Viseme{{TimeMS: 0, Value: "sil"}, {TimeMS: 80, Value: "a"}, {TimeMS: 240, Value: "p"}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
