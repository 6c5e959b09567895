package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/me/bioexec/internal/store"
	"github.com/me/bioexec/pkg/model"
)

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	if s.store == nil {
		respondError(w, reqID, http.StatusServiceUnavailable, &model.APIError{
			Code: model.ErrInternal, Message: "invocation history is not enabled",
		})
		return
	}

	opts := model.DefaultListOptions()
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Offset = n
		}
	}
	opts.Tool = r.URL.Query().Get("tool")
	opts.Clamp()

	recs, total, err := s.store.ListInvocations(r.Context(), opts)
	if err != nil {
		s.logger.Error("list history", "error", err)
		respondError(w, reqID, http.StatusInternalServerError, &model.APIError{
			Code: model.ErrInternal, Message: "failed to list history",
		})
		return
	}

	respondList(w, reqID, recs, &model.Pagination{
		Total:   total,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
		HasMore: opts.Offset+len(recs) < total,
	})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	if s.store == nil {
		respondError(w, reqID, http.StatusServiceUnavailable, &model.APIError{
			Code: model.ErrInternal, Message: "invocation history is not enabled",
		})
		return
	}

	id := chi.URLParam(r, "id")
	rec, err := s.store.GetInvocation(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("invocation", id))
		return
	}
	if err != nil {
		s.logger.Error("get history", "id", id, "error", err)
		respondError(w, reqID, http.StatusInternalServerError, &model.APIError{
			Code: model.ErrInternal, Message: "failed to load invocation",
		})
		return
	}
	respondOK(w, reqID, rec)
}
