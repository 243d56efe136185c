package speech

import (
	"bufio"
	"bytes"
	"encoding/json"
	"sort"
)

// speechMark is one line of the backend's newline-delimited mark stream.
type speechMark struct {
	Time  int    `json:"time"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// ParseMarkStream decodes a newline-delimited speech-mark stream into a
// viseme timeline. Non-viseme marks and malformed lines are skipped;
// the result is ordered by time.
func ParseMarkStream(raw []byte) []Viseme {
	var out []Viseme
	sc := bufio.NewScanner(bytes.NewReader(raw))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var mark speechMark
		if err := json.Unmarshal(line, &mark); err != nil {
			continue
		}
		if mark.Type != "" && mark.Type != "viseme" {
			continue
		}
		if mark.Value == "" {
			continue
		}
		out = append(out, Viseme{TimeMS: mark.Time, Value: mark.Value})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TimeMS < out[j].TimeMS })
	return out
}
