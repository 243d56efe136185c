package speech

import (
	"context"
	"fmt"
	"sync"
)

// MockBackend is an in-process speech backend for tests and local runs
// without credentials. Responses can be scripted per call.
type MockBackend struct {
	region string

	mu        sync.Mutex
	calls     []SynthesisInput
	markCalls []SynthesisInput

	SynthesizeFn func(in SynthesisInput) ([]byte, error)
	MarksFn      func(in SynthesisInput) ([]Viseme, error)
	VoiceList    []Voice
}

func NewMockBackend(region string) *MockBackend {
	return &MockBackend{region: region}
}

func (m *MockBackend) Region() string { return m.region }

func (m *MockBackend) Synthesize(_ context.Context, in SynthesisInput) ([]byte, error) {
	m.mu.Lock()
	m.calls = append(m.calls, in)
	fn := m.SynthesizeFn
	m.mu.Unlock()

	if fn != nil {
		return fn(in)
	}
	return []byte(fmt.Sprintf("audio:%s:%s:%s", m.region, in.VoiceID, in.Engine)), nil
}

func (m *MockBackend) SpeechMarks(_ context.Context, in SynthesisInput) ([]Viseme, error) {
	m.mu.Lock()
	m.markCalls = append(m.markCalls, in)
	fn := m.MarksFn
	m.mu.Unlock()

	if fn != nil {
		return fn(in)
	}
	return []Viseme{{TimeMS: 0, Value: "sil"}, {TimeMS: 120, Value: "a"}}, nil
}

func (m *MockBackend) Voices(context.Context) ([]Voice, error) {
	if m.VoiceList != nil {
		return m.VoiceList, nil
	}
	return []Voice{
		{ID: "Ruth", LanguageCode: "en-US", LanguageName: "US English", Gender: "Female", SupportedEngines: []string{"neural", "standard"}},
		{ID: "Lucia", LanguageCode: "es-ES", LanguageName: "Castilian Spanish", Gender: "Female", SupportedEngines: []string{"neural"}},
	}, nil
}

// Calls returns a copy of the synthesis inputs seen so far.
func (m *MockBackend) Calls() []SynthesisInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SynthesisInput, len(m.calls))
	copy(out, m.calls)
	return out
}

// MarkCalls returns a copy of the speech-mark inputs seen so far.
func (m *MockBackend) MarkCalls() []SynthesisInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SynthesisInput, len(m.markCalls))
	copy(out, m.markCalls)
	return out
}
