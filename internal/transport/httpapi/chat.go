package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sandevgo/skylark/internal/core"
	"github.com/sandevgo/skylark/pkg/log"
)

const turnFailedMessage = "Sorry, something went wrong while handling your message. Please try again."

type chatRequest struct {
	Message      string `json:"message"`
	SessionToken string `json:"session_token,omitempty"`
}

type memoryResponse struct {
	SessionToken string      `json:"session_token"`
	Memory       []core.Turn `json:"memory"`
}

type newSessionResponse struct {
	SessionToken string `json:"session_token"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		return
	}
	if req.Message == "" {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "message is required")
		return
	}

	result, err := s.agent.Run(r.Context(), req.SessionToken, req.Message)
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Msg("chat turn failed")
		writeError(w, r, http.StatusInternalServerError, "turn_failed", turnFailedMessage)
		return
	}

	writeJSON(w, r, http.StatusOK, result)
}

// handleStream delivers the final response as server-sent events, one
// word-chunk per event, terminated by a [DONE] sentinel.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	message := r.URL.Query().Get("message")
	if message == "" {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "message is required")
		return
	}
	token := r.URL.Query().Get("session_token")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, http.StatusInternalServerError, "streaming_unsupported", "response writer cannot stream")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	send := func(chunk string) {
		fmt.Fprintf(w, "data: %s\n\n", chunk)
		flusher.Flush()
	}

	if _, err := s.agent.StreamResponse(r.Context(), token, message, send); err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Msg("stream turn failed")
		send(turnFailedMessage)
	}
	send("[DONE]")
}

func (s *Server) handleMemory(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("session_token")
	if token == "" {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "session_token is required")
		return
	}

	memory, err := s.agent.GetMemory(r.Context(), token)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "memory_failed", turnFailedMessage)
		return
	}
	if memory == nil {
		memory = []core.Turn{}
	}

	writeJSON(w, r, http.StatusOK, memoryResponse{SessionToken: token, Memory: memory})
}

func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, newSessionResponse{SessionToken: s.agent.NewSessionToken()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": core.SkylarkVersion,
	})
}
