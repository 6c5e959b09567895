package server

import (
	"net/http"
	"runtime"
	"time"
)

type healthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
	Tools     int    `json:"tools"`
	History   string `json:"history"`
	Queue     string `json:"queue"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	history := "disabled"
	if s.store != nil {
		history = "enabled"
	}
	queueState := "not_configured"
	if s.queue != nil {
		queueState = "configured"
	}

	respondOK(w, reqID, healthResponse{
		Status:    "healthy",
		Version:   "0.1.0",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Tools:     len(s.registry.List()),
		History:   history,
		Queue:     queueState,
	})
}
