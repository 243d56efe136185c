package httpapi

import (
	"net/http"

	"github.com/gorilla/websocket"
)

type wsFrame struct {
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	Reply     string `json:"reply,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// handleChatWS serves streaming chat over a websocket. The client sends
// chat requests as JSON text messages and receives delta frames followed
// by a done frame per request. The connection carries any number of
// exchanges.
func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	for {
		var req chatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug().Err(err).Msg("websocket closed")
			}
			return
		}
		req.normalize()

		onDelta := func(delta string) error {
			return conn.WriteJSON(wsFrame{Type: "delta", Text: delta})
		}

		reply, err := s.service.ChatStream(r.Context(), req.SessionID, req.Message, req.Style, onDelta)
		if err != nil {
			if writeErr := conn.WriteJSON(wsFrame{Type: "error", Error: err.Error(), SessionID: req.SessionID}); writeErr != nil {
				return
			}
			continue
		}
		if err := conn.WriteJSON(wsFrame{Type: "done", Reply: reply, SessionID: req.SessionID}); err != nil {
			return
		}
	}
}
