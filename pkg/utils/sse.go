package utils

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// SetupSSEHeaders prepares the response for a Server-Sent Events stream.
func SetupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

// SendSSEChunk marshals the payload and flushes it as one SSE data frame.
func SendSSEChunk(w http.ResponseWriter, flusher http.Flusher, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to marshal sse payload", "error", err)
		return
	}

	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		slog.Debug("failed to write sse payload", "error", err)
		return
	}
	flusher.Flush()
}

// SendSSERaw flushes a pre-formatted value, used for the terminating sentinel.
func SendSSERaw(w http.ResponseWriter, flusher http.Flusher, value string) {
	if _, err := fmt.Fprintf(w, "data: %s\n\n", value); err != nil {
		slog.Debug("failed to write sse sentinel", "error", err)
		return
	}
	flusher.Flush()
}
