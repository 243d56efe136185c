package session

import "sync"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	// DefaultMaxTurns is the number of user+assistant pairs kept per session.
	DefaultMaxTurns = 10
)

// Turn is one message in a session's conversation log. Immutable once
// appended; ordering within a session is chat order.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Memory is a bounded per-session rolling turn log. Sessions are created
// lazily on first append and live for the process lifetime. Each log
// holds at most 2*maxTurns entries; the oldest entry is discarded first.
type Memory struct {
	mu       sync.Mutex
	logs     map[string][]Turn
	capacity int
}

func NewMemory(maxTurns int) *Memory {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Memory{
		logs:     make(map[string][]Turn),
		capacity: maxTurns * 2,
	}
}

// Append records a turn. It never fails; overflow silently evicts the
// oldest entry.
func (m *Memory) Append(sessionID, role, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	log := append(m.logs[sessionID], Turn{Role: role, Content: content})
	if len(log) > m.capacity {
		log = log[len(log)-m.capacity:]
	}
	m.logs[sessionID] = log
}

// Read returns a copy of the session's turns in chat order. Unknown
// sessions yield an empty slice.
func (m *Memory) Read(sessionID string) []Turn {
	m.mu.Lock()
	defer m.mu.Unlock()

	log := m.logs[sessionID]
	out := make([]Turn, len(log))
	copy(out, log)
	return out
}

// Sessions reports how many session logs currently exist.
func (m *Memory) Sessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.logs)
}
