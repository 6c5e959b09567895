package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/me/bioexec/internal/config"
	"github.com/me/bioexec/internal/detect"
	"github.com/me/bioexec/internal/registry"
	"github.com/me/bioexec/internal/sandbox"
	"github.com/me/bioexec/pkg/model"
)

// maxStoredOutput caps stdout/stderr persisted to the history store.
const maxStoredOutput = 64 * 1024

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, s.registry.List())
}

func (s *Server) handleGetTool(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	name := chi.URLParam(r, "name")

	def, ok := s.registry.Get(name)
	if !ok {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("tool", name))
		return
	}
	respondOK(w, reqID, def)
}

// handleDetection reports how the tool would be invoked: the resolver's
// cached resolution, or a fresh probe on first request.
func (s *Server) handleDetection(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	name := chi.URLParam(r, "name")

	def, ok := s.registry.Get(name)
	if !ok {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("tool", name))
		return
	}

	res := s.resolver.Resolve(r.Context(), s.resolveSpec(def))
	respondOK(w, reqID, model.DetectionReport{
		Tool:           res.Tool,
		Strategy:       string(res.Strategy),
		Available:      res.Available(),
		ExecutablePath: res.ExecutablePath,
		Version:        res.Version,
		ModuleName:     res.ModuleName,
		ContainerImage: res.ContainerImage,
	})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	name := chi.URLParam(r, "name")

	def, ok := s.registry.Get(name)
	if !ok {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("tool", name))
		return
	}

	var req model.RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("invalid request body: "+err.Error()))
		return
	}

	args, err := def.BuildArgs(req.Params, s.eval)
	if err != nil {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError(err.Error()))
		return
	}

	res := s.resolver.Resolve(r.Context(), s.resolveSpec(def))

	files := stagedFiles(def, req)
	start := time.Now()
	outcome := s.invoker.Invoke(r.Context(), sandbox.Request{
		Resolution: res,
		Args:       args,
		Files:      files,
		TimeLimit:  s.execCfg.Timeout,
		SizeLimit:  s.execCfg.MaxInputSize,
		TempRoot:   s.execCfg.TempDir,
	})
	elapsed := time.Since(start)

	result := runResult(name, res, outcome, elapsed)
	s.recordInvocation(r, result)

	status, apiErr := outcomeStatus(outcome)
	if apiErr == nil {
		respondOK(w, reqID, result)
		return
	}
	respondOutcome(w, reqID, status, result, apiErr)
}

// resolveSpec builds the resolver request for a tool definition,
// applying the server-level configuration overrides.
func (s *Server) resolveSpec(def registry.ToolDef) detect.Spec {
	spec := detect.Spec{
		Tool:           def.Name,
		ModuleNames:    def.ModuleNames,
		ContainerImage: def.ContainerImage,
		Preferred:      detect.ParseStrategies(s.execCfg.PreferredModes, s.logger),
	}
	if s.execCfg.ModuleNames != "" {
		spec.ModuleNames = config.SplitList(s.execCfg.ModuleNames)
	}
	if s.execCfg.ContainerImage != "" {
		spec.ContainerImage = s.execCfg.ContainerImage
	}
	if s.execCfg.ForcedMode != "" {
		if forced, ok := detect.ParseStrategy(s.execCfg.ForcedMode); ok {
			spec.Forced = forced
		} else {
			s.logger.Warn("ignoring unrecognized forced execution strategy", "value", s.execCfg.ForcedMode)
		}
	}
	return spec
}

// stagedFiles assembles the sandbox file map: declared file parameters
// (an existing path is copied, anything else is treated as inline
// content, matching the original query-string-or-file behavior) plus
// explicit inline uploads.
func stagedFiles(def registry.ToolDef, req model.RunRequest) map[string]sandbox.FileSource {
	files := make(map[string]sandbox.FileSource)
	for _, p := range def.FileParams() {
		raw, ok := req.Params[p.Name]
		if !ok {
			continue
		}
		val, ok := raw.(string)
		if !ok {
			continue
		}
		if _, err := os.Stat(val); err == nil {
			files[p.StagedName()] = sandbox.FileSource{Path: val}
		} else {
			files[p.StagedName()] = sandbox.FileSource{Content: []byte(val)}
		}
	}
	for dest, content := range req.Files {
		files[dest] = sandbox.FileSource{Content: []byte(content)}
	}
	return files
}

func runResult(tool string, res detect.Resolution, outcome sandbox.Outcome, elapsed time.Duration) model.RunResult {
	result := model.RunResult{
		Tool:      tool,
		Strategy:  string(res.Strategy),
		Outcome:   string(outcome.Kind),
		ElapsedMS: elapsed.Milliseconds(),
	}
	switch outcome.Kind {
	case sandbox.OutcomeSuccess:
		result.Stdout = string(outcome.Stdout)
	case sandbox.OutcomeFailure:
		result.ExitInfo = outcome.ExitInfo
		result.Stderr = string(outcome.Stderr)
	case sandbox.OutcomeTimedOut:
		result.Detail = fmt.Sprintf("timed out after %s", outcome.Elapsed)
	case sandbox.OutcomeInputTooLarge:
		result.Detail = fmt.Sprintf("input exceeds limit of %d bytes", outcome.Limit)
	case sandbox.OutcomeInputMissing:
		result.Detail = "input file not found: " + outcome.MissingPath
	case sandbox.OutcomeToolUnavailable:
		result.Detail = "tool is not available under any execution strategy"
	case sandbox.OutcomeInternalError:
		result.Detail = outcome.Detail
	}
	return result
}

// outcomeStatus maps an outcome kind onto an HTTP status and API error.
// Success maps to (200, nil).
func outcomeStatus(outcome sandbox.Outcome) (int, *model.APIError) {
	switch outcome.Kind {
	case sandbox.OutcomeSuccess:
		return http.StatusOK, nil
	case sandbox.OutcomeFailure:
		return http.StatusUnprocessableEntity, &model.APIError{
			Code:    model.ErrExecFailed,
			Message: "tool exited with " + outcome.ExitInfo,
		}
	case sandbox.OutcomeTimedOut:
		return http.StatusGatewayTimeout, &model.APIError{
			Code:    model.ErrTimeout,
			Message: fmt.Sprintf("command timed out after %s", outcome.Elapsed),
		}
	case sandbox.OutcomeToolUnavailable:
		return http.StatusServiceUnavailable, &model.APIError{
			Code:    model.ErrUnavailable,
			Message: "tool is not available under any execution strategy",
		}
	case sandbox.OutcomeInputTooLarge:
		return http.StatusRequestEntityTooLarge, &model.APIError{
			Code:    model.ErrTooLarge,
			Message: fmt.Sprintf("input exceeds maximum size of %d bytes", outcome.Limit),
		}
	case sandbox.OutcomeInputMissing:
		return http.StatusBadRequest, &model.APIError{
			Code:    model.ErrValidation,
			Message: "input file not found: " + outcome.MissingPath,
		}
	default:
		return http.StatusInternalServerError, &model.APIError{
			Code:    model.ErrInternal,
			Message: outcome.Detail,
		}
	}
}

// recordInvocation persists one history row, best effort.
func (s *Server) recordInvocation(r *http.Request, result model.RunResult) {
	if s.store == nil {
		return
	}
	rec := &model.InvocationRecord{
		ID:        "inv_" + uuid.New().String()[:8],
		Tool:      result.Tool,
		Strategy:  result.Strategy,
		Outcome:   result.Outcome,
		ExitInfo:  result.ExitInfo,
		Stdout:    truncate(result.Stdout, maxStoredOutput),
		Stderr:    truncate(result.Stderr, maxStoredOutput),
		ElapsedMS: result.ElapsedMS,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.SaveInvocation(r.Context(), rec); err != nil {
		s.logger.Warn("failed to record invocation", "tool", result.Tool, "error", err)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
