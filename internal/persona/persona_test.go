package persona

import (
	"strings"
	"testing"
)

func TestComposeKnownStyle(t *testing.T) {
	got := Compose(Base, "witty")
	if !strings.HasPrefix(got, Base) {
		t.Fatalf("composed prompt must start with the base persona")
	}
	if !strings.Contains(got, styleGuides["witty"]) {
		t.Fatalf("composed prompt missing the witty style guide")
	}
	if !strings.Contains(got, "currently in witty mode") {
		t.Fatalf("composed prompt missing the active-mode instruction: %q", got)
	}
}

func TestComposeStyleNormalized(t *testing.T) {
	if Compose(Base, "  WITTY  ") != Compose(Base, "witty") {
		t.Fatalf("style matching should be case- and space-insensitive")
	}
}

func TestComposeUnknownStyleFallsToDefault(t *testing.T) {
	for _, style := range []string{"", "garbage", "sarcastic"} {
		got := Compose(Base, style)
		if !strings.Contains(got, "default mode") {
			t.Fatalf("Compose(%q) should land in the default branch", style)
		}
	}
}

func TestTemperatureFor(t *testing.T) {
	tests := map[string]float64{
		"witty":      0.9,
		"spicy":      0.9,
		"precise":    0.4,
		"empathetic": 0.7,
		"":           0.7,
		"unknown":    0.7,
	}
	for style, want := range tests {
		if got := TemperatureFor(style); got != want {
			t.Fatalf("TemperatureFor(%q) = %v, want %v", style, got, want)
		}
	}
}
