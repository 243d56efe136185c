package assistant

import (
	"strings"

	"github.com/syedsofiyan2004/rem/internal/persona"
)

// nameQuestions are answered locally with the persona's name; the model
// tends to over-explain these.
var nameQuestions = map[string]bool{
	"what's your name": true,
	"whats your name":  true,
	"your name?":       true,
	"who are you":      true,
}

// intercept answers date, time, and identity questions without a model
// round trip. Returns ok=false when the message should go to the brain.
func (s *Service) intercept(text string) (string, bool) {
	q := strings.ToLower(strings.TrimSpace(text))
	q = strings.TrimRight(q, ".!")

	if nameQuestions[q] || nameQuestions[strings.TrimRight(q, "?")] {
		return persona.Name + ".", true
	}
	if strings.Contains(q, "date") && !strings.Contains(q, "update") {
		return "It's " + s.now().Format("Monday, January 2, 2006") + ".", true
	}
	if strings.Contains(q, "time") {
		return "It's " + s.now().Format("3:04 PM") + ".", true
	}
	return "", false
}
