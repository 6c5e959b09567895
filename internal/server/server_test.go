package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/me/bioexec/internal/config"
	"github.com/me/bioexec/internal/registry"
	"github.com/me/bioexec/internal/store"
	"github.com/me/bioexec/pkg/model"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestServer wires a registry holding the built-ins plus definitions
// over host binaries, so run tests exercise the full
// resolve-stage-invoke path without BLAST installed.
func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	reg := registry.Builtin(newTestLogger())
	reg.Register(registry.ToolDef{
		Name:        "echo",
		Description: "print a message",
		Params: []registry.Param{
			{Name: "message", Type: registry.ParamString, Required: true},
		},
		Bindings: []registry.Binding{
			{Param: "message"},
		},
	})
	reg.Register(registry.ToolDef{
		Name:        "false",
		Description: "always fails",
	})
	reg.Register(registry.ToolDef{
		Name: "bioexec-no-such-tool",
	})

	execCfg := config.DefaultExecConfig()
	execCfg.Timeout = 30 * time.Second
	execCfg.TempDir = t.TempDir()
	execCfg.PreferredModes = "native"

	return New(config.DefaultServerConfig(), execCfg, reg, newTestLogger(), opts...)
}

func doRequest(t *testing.T, s *Server, method, path string, body any) (*httptest.ResponseRecorder, model.Response) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var resp model.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
	}
	return rec, resp
}

func requireTool(t *testing.T, tool string) {
	t.Helper()
	if _, err := exec.LookPath(tool); err != nil {
		t.Skipf("%s not on PATH", tool)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec, resp := doRequest(t, s, http.MethodGet, "/api/v1/health", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp.Status != "ok" || resp.Error != nil {
		t.Errorf("envelope = %+v", resp)
	}
	if !strings.HasPrefix(resp.RequestID, "req_") {
		t.Errorf("RequestID = %q, want req_ prefix", resp.RequestID)
	}
	data := resp.Data.(map[string]any)
	if data["status"] != "healthy" {
		t.Errorf("health status = %v", data["status"])
	}
	if data["history"] != "disabled" {
		t.Errorf("history = %v, want disabled without a store", data["history"])
	}
}

func TestListTools(t *testing.T) {
	s := newTestServer(t)
	rec, resp := doRequest(t, s, http.MethodGet, "/api/v1/tools", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	tools := resp.Data.([]any)
	names := make(map[string]bool)
	for _, raw := range tools {
		names[raw.(map[string]any)["name"].(string)] = true
	}
	for _, want := range []string{"blastn", "blastp", "makeblastdb", "echo"} {
		if !names[want] {
			t.Errorf("tool %q missing from list", want)
		}
	}
}

func TestGetToolNotFound(t *testing.T) {
	s := newTestServer(t)
	rec, resp := doRequest(t, s, http.MethodGet, "/api/v1/tools/ghost", nil)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != model.ErrNotFound {
		t.Errorf("error = %+v, want NOT_FOUND", resp.Error)
	}
}

func TestRunSuccess(t *testing.T) {
	requireTool(t, "echo")
	s := newTestServer(t)

	rec, resp := doRequest(t, s, http.MethodPost, "/api/v1/tools/echo/run",
		model.RunRequest{Params: map[string]any{"message": "hello"}})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var result model.RunResult
	remarshal(t, resp.Data, &result)
	if result.Outcome != "success" {
		t.Fatalf("Outcome = %q (detail %q), want success", result.Outcome, result.Detail)
	}
	if result.Stdout != "hello\n" {
		t.Errorf("Stdout = %q, want %q", result.Stdout, "hello\n")
	}
	if result.Strategy != "native" {
		t.Errorf("Strategy = %q, want native", result.Strategy)
	}
}

func TestRunFailureKeepsResult(t *testing.T) {
	requireTool(t, "false")
	s := newTestServer(t)

	rec, resp := doRequest(t, s, http.MethodPost, "/api/v1/tools/false/run",
		model.RunRequest{Params: map[string]any{}})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422 (body %s)", rec.Code, rec.Body.String())
	}
	if resp.Error == nil || resp.Error.Code != model.ErrExecFailed {
		t.Fatalf("error = %+v, want EXECUTION_FAILED", resp.Error)
	}
	// The discriminated result still travels with the error.
	var result model.RunResult
	remarshal(t, resp.Data, &result)
	if result.Outcome != "failure" || result.ExitInfo != "exit 1" {
		t.Errorf("result = %+v, want failure with exit 1", result)
	}
}

func TestRunToolUnavailable(t *testing.T) {
	s := newTestServer(t)

	rec, resp := doRequest(t, s, http.MethodPost, "/api/v1/tools/bioexec-no-such-tool/run",
		model.RunRequest{Params: map[string]any{}})

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 (body %s)", rec.Code, rec.Body.String())
	}
	if resp.Error == nil || resp.Error.Code != model.ErrUnavailable {
		t.Errorf("error = %+v, want TOOL_UNAVAILABLE", resp.Error)
	}
}

func TestRunInputTooLarge(t *testing.T) {
	requireTool(t, "echo")
	reg := registry.Builtin(newTestLogger())
	reg.Register(registry.ToolDef{
		Name: "echo",
		Params: []registry.Param{
			{Name: "message", Type: registry.ParamString, Required: true},
		},
		Bindings: []registry.Binding{{Param: "message"}},
	})
	execCfg := config.DefaultExecConfig()
	execCfg.MaxInputSize = 16
	execCfg.TempDir = t.TempDir()
	execCfg.PreferredModes = "native"
	s := New(config.DefaultServerConfig(), execCfg, reg, newTestLogger())

	rec, resp := doRequest(t, s, http.MethodPost, "/api/v1/tools/echo/run",
		model.RunRequest{
			Params: map[string]any{"message": "hi"},
			Files:  map[string]string{"big.fasta": strings.Repeat("A", 32)},
		})

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413 (body %s)", rec.Code, rec.Body.String())
	}
	if resp.Error == nil || resp.Error.Code != model.ErrTooLarge {
		t.Errorf("error = %+v, want INPUT_TOO_LARGE", resp.Error)
	}
}

func TestRunValidationError(t *testing.T) {
	s := newTestServer(t)

	rec, resp := doRequest(t, s, http.MethodPost, "/api/v1/tools/echo/run",
		model.RunRequest{Params: map[string]any{"bogus": 1}})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != model.ErrValidation {
		t.Errorf("error = %+v, want VALIDATION_ERROR", resp.Error)
	}
}

func TestDetection(t *testing.T) {
	requireTool(t, "echo")
	s := newTestServer(t)

	rec, resp := doRequest(t, s, http.MethodGet, "/api/v1/tools/echo/detection", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var report model.DetectionReport
	remarshal(t, resp.Data, &report)
	if !report.Available || report.Strategy != "native" {
		t.Errorf("report = %+v, want available native", report)
	}
	if report.ExecutablePath == "" {
		t.Error("ExecutablePath empty for native resolution")
	}
}

func TestHistoryDisabledWithoutStore(t *testing.T) {
	s := newTestServer(t)
	rec, _ := doRequest(t, s, http.MethodGet, "/api/v1/history", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 without a store", rec.Code)
	}
}

func TestRunRecordsHistory(t *testing.T) {
	requireTool(t, "echo")
	st, err := store.NewSQLiteStore(":memory:", newTestLogger())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.Migrate(t.Context()); err != nil {
		t.Fatal(err)
	}
	s := newTestServer(t, WithStore(st))

	doRequest(t, s, http.MethodPost, "/api/v1/tools/echo/run",
		model.RunRequest{Params: map[string]any{"message": "logged"}})

	rec, resp := doRequest(t, s, http.MethodGet, "/api/v1/history", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp.Pagination == nil || resp.Pagination.Total != 1 {
		t.Fatalf("pagination = %+v, want total 1", resp.Pagination)
	}
	rows := resp.Data.([]any)
	row := rows[0].(map[string]any)
	if row["tool"] != "echo" || row["outcome"] != "success" {
		t.Errorf("history row = %v", row)
	}
	if row["stdout"] != "logged\n" {
		t.Errorf("stored stdout = %v", row["stdout"])
	}
}

func TestQueueNotConfigured(t *testing.T) {
	s := newTestServer(t)
	rec, resp := doRequest(t, s, http.MethodGet, "/api/v1/queue/jobs", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 without a broker", rec.Code)
	}
	if resp.Error == nil {
		t.Error("error missing from envelope")
	}
}

// remarshal converts the envelope's decoded any-typed data into a
// concrete model type.
func remarshal(t *testing.T, data any, out any) {
	t.Helper()
	b, err := json.Marshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		t.Fatal(err)
	}
}
