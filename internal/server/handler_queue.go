package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/me/bioexec/pkg/model"
)

// queueUnavailable answers queue endpoints when no broker is configured.
func (s *Server) queueUnavailable(w http.ResponseWriter, reqID string) bool {
	if s.queue != nil {
		return false
	}
	respondError(w, reqID, http.StatusServiceUnavailable, &model.APIError{
		Code:    model.ErrUnavailable,
		Message: "no job broker configured (set BIOEXEC_QUEUE_URL)",
	})
	return true
}

// submitJobBody is the async submission payload.
type submitJobBody struct {
	Params   map[string]any `json:"params"`
	Priority int            `json:"priority"`
	Tags     []string       `json:"tags"`
}

// handleSubmitJob forwards a run request to the remote broker. Only the
// passthrough lives here; scheduling and result storage belong to the
// broker.
func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	if s.queueUnavailable(w, reqID) {
		return
	}

	name := chi.URLParam(r, "name")
	if _, ok := s.registry.Get(name); !ok {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("tool", name))
		return
	}

	var body submitJobBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if body.Priority == 0 {
		body.Priority = 5
	}

	job, err := s.queue.Submit(r.Context(), model.SubmitJobRequest{
		JobType:    name,
		Parameters: body.Params,
		Priority:   body.Priority,
		Tags:       body.Tags,
	})
	if err != nil {
		s.logger.Error("submit job", "tool", name, "error", err)
		respondError(w, reqID, http.StatusBadGateway, &model.APIError{
			Code: model.ErrInternal, Message: "broker submission failed: " + err.Error(),
		})
		return
	}
	respondOK(w, reqID, job)
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	if s.queueUnavailable(w, reqID) {
		return
	}

	id := chi.URLParam(r, "id")
	job, err := s.queue.Status(r.Context(), id)
	if err != nil {
		respondError(w, reqID, http.StatusBadGateway, &model.APIError{
			Code: model.ErrInternal, Message: err.Error(),
		})
		return
	}
	respondOK(w, reqID, job)
}

func (s *Server) handleJobResult(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	if s.queueUnavailable(w, reqID) {
		return
	}

	id := chi.URLParam(r, "id")
	result, err := s.queue.Result(r.Context(), id)
	if err != nil {
		respondError(w, reqID, http.StatusBadGateway, &model.APIError{
			Code: model.ErrInternal, Message: err.Error(),
		})
		return
	}
	respondOK(w, reqID, result)
}

func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	if s.queueUnavailable(w, reqID) {
		return
	}

	id := chi.URLParam(r, "id")
	job, err := s.queue.Cancel(r.Context(), id)
	if err != nil {
		respondError(w, reqID, http.StatusBadGateway, &model.APIError{
			Code: model.ErrInternal, Message: err.Error(),
		})
		return
	}
	respondOK(w, reqID, job)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	if s.queueUnavailable(w, reqID) {
		return
	}

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	jobs, err := s.queue.List(r.Context(), r.URL.Query().Get("status"), limit)
	if err != nil {
		respondError(w, reqID, http.StatusBadGateway, &model.APIError{
			Code: model.ErrInternal, Message: err.Error(),
		})
		return
	}
	respondOK(w, reqID, jobs)
}
