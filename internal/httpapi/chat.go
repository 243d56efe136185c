package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Style     string `json:"style,omitempty"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

// normalize fills a missing session id so a client can start chatting
// without a separate session call; the generated id comes back in the
// response for reuse.
func (req *chatRequest) normalize() {
	if strings.TrimSpace(req.SessionID) == "" {
		req.SessionID = uuid.NewString()
	}
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	req.normalize()

	reply, err := s.service.Chat(r.Context(), req.SessionID, req.Message, req.Style)
	if err != nil {
		respondClassified(w, err)
		return
	}
	respondJSON(w, http.StatusOK, chatResponse{SessionID: req.SessionID, Reply: reply})
}

type streamFrame struct {
	Delta     string `json:"delta,omitempty"`
	Reply     string `json:"reply,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Error     string `json:"error,omitempty"`
	Done      bool   `json:"done,omitempty"`
}

// handleChatStream responds with newline-delimited JSON: one frame per
// delta, then a final done frame carrying the full reply. Errors after
// the stream has started become an error frame, since the status line
// is already on the wire.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	req.normalize()

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "no_streaming", "response writer does not support streaming")
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")

	enc := json.NewEncoder(w)
	started := false
	onDelta := func(delta string) error {
		started = true
		if err := enc.Encode(streamFrame{Delta: delta}); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	reply, err := s.service.ChatStream(r.Context(), req.SessionID, req.Message, req.Style, onDelta)
	if err != nil {
		if !started {
			respondClassified(w, err)
			return
		}
		_ = enc.Encode(streamFrame{Error: err.Error(), Done: true})
		flusher.Flush()
		return
	}

	_ = enc.Encode(streamFrame{Reply: reply, SessionID: req.SessionID, Done: true})
	flusher.Flush()
}
