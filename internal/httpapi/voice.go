package httpapi

import (
	"net/http"
)

type synthesisRequest struct {
	Text string `json:"text"`
	Lang string `json:"lang,omitempty"`
	Mode string `json:"mode,omitempty"`
}

func (s *Server) handleTTS(w http.ResponseWriter, r *http.Request) {
	var req synthesisRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	res, err := s.service.TextToSpeech(r.Context(), req.Text, req.Lang, req.Mode)
	if err != nil {
		respondClassified(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleSing(w http.ResponseWriter, r *http.Request) {
	var req synthesisRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	res, err := s.service.Sing(r.Context(), req.Text, req.Lang, req.Mode)
	if err != nil {
		respondClassified(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleListVoices(w http.ResponseWriter, r *http.Request) {
	voices, err := s.service.ListVoices(r.Context())
	if err != nil {
		respondClassified(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"voices": voices})
}
