package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/sandevgo/skylark/pkg/log"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Status already sent; nothing left to do but log.
		log.FromCtx(r.Context()).Error().Err(err).Msg("failed to encode json response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, errTag, message string) {
	writeJSON(w, r, status, errorResponse{Error: errTag, Message: message})
}
