package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/me/bioexec/internal/cmdline"
	"github.com/me/bioexec/internal/detect"
)

// FileSource describes one staged input. Either Path names an existing
// file to copy, or Content carries the bytes inline.
type FileSource struct {
	Path    string
	Content []byte
}

// Request describes one invocation. A Request and its Outcome are owned
// exclusively by the call that created them and are never shared across
// concurrent invocations.
type Request struct {
	Resolution detect.Resolution
	Args       []string

	// Files maps destination filenames to their sources. Staged files
	// land in the ephemeral working directory, so the tool can refer to
	// them by bare filename. Colliding destinations overwrite; the last
	// write wins.
	Files map[string]FileSource

	// TimeLimit bounds process execution. Zero means no deadline.
	TimeLimit time.Duration

	// SizeLimit bounds each staged input in bytes. Zero means unlimited.
	SizeLimit int64

	// TempRoot is the parent for the ephemeral working directory.
	// Empty means the system default.
	TempRoot string
}

// Invoker runs invocations. It holds no per-invocation state; multiple
// invocations, including of the same tool, may proceed concurrently.
type Invoker struct {
	logger *slog.Logger
}

// NewInvoker creates an Invoker.
func NewInvoker(logger *slog.Logger) *Invoker {
	return &Invoker{logger: logger.With("component", "invoker")}
}

// Invoke stages inputs, spawns the resolved command, and maps the exit
// condition to an Outcome. One invocation moves Staging → Running →
// terminal; no retries are attempted by this layer.
//
// ToolUnavailable, InputMissing, and InputTooLarge are detected before
// any process is spawned and never consume the time budget. The
// ephemeral working directory is removed on every exit path.
func (iv *Invoker) Invoke(ctx context.Context, req Request) Outcome {
	if !req.Resolution.Available() {
		return toolUnavailable()
	}

	// Staging: validate inputs before anything is spawned.
	for dest, src := range req.Files {
		if src.Path != "" {
			info, err := os.Stat(src.Path)
			if err != nil {
				return inputMissing(src.Path)
			}
			if req.SizeLimit > 0 && info.Size() > req.SizeLimit {
				return inputTooLarge(req.SizeLimit)
			}
		} else if req.SizeLimit > 0 && int64(len(src.Content)) > req.SizeLimit {
			return inputTooLarge(req.SizeLimit)
		}
		if dest == "" {
			return internalError("staged file with empty destination name")
		}
	}

	workDir, err := os.MkdirTemp(req.TempRoot, "bioexec-")
	if err != nil {
		return internalError(fmt.Sprintf("create working directory: %v", err))
	}
	defer os.RemoveAll(workDir)

	for dest, src := range req.Files {
		if err := stage(workDir, dest, src); err != nil {
			return internalError(fmt.Sprintf("stage %s: %v", dest, err))
		}
	}

	tokens, requiresShell, err := cmdline.Build(req.Resolution, req.Args)
	if err != nil {
		if errors.Is(err, cmdline.ErrUnavailable) {
			return toolUnavailable()
		}
		return internalError(err.Error())
	}
	tokens = substituteWorkdir(tokens, workDir)

	runCtx := ctx
	var cancel context.CancelFunc
	if req.TimeLimit > 0 {
		runCtx, cancel = context.WithTimeout(ctx, req.TimeLimit)
		defer cancel()
	}

	var cmd *exec.Cmd
	if requiresShell {
		cmd = exec.CommandContext(runCtx, "/bin/sh", "-c", cmdline.Shellify(tokens))
	} else {
		cmd = exec.CommandContext(runCtx, tokens[0], tokens[1:]...)
	}
	cmd.Dir = workDir

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	iv.logger.Info("invoking tool",
		"tool", req.Resolution.Tool,
		"strategy", req.Resolution.Strategy,
		"shell", requiresShell,
	)

	runErr := cmd.Run()

	// A deadline hit is a hard cancellation: the process was killed and
	// no partial output is recovered.
	if runCtx.Err() == context.DeadlineExceeded {
		return timedOut(req.TimeLimit)
	}

	switch e := runErr.(type) {
	case nil:
		return success(stdoutBuf.Bytes())
	case *exec.ExitError:
		return failure(fmt.Sprintf("exit %d", e.ExitCode()), stderrBuf.Bytes())
	default:
		return internalError(fmt.Sprintf("spawn: %v", runErr))
	}
}

// stage writes one input into the working directory under its
// destination filename.
func stage(workDir, dest string, src FileSource) error {
	target := filepath.Join(workDir, filepath.Base(dest))
	data := src.Content
	if src.Path != "" {
		var err error
		data, err = os.ReadFile(src.Path)
		if err != nil {
			return err
		}
	}
	return os.WriteFile(target, data, 0o644)
}

// substituteWorkdir replaces the workdir placeholder in command tokens.
// Container prefixes use it to bind-mount the staged inputs, since the
// resolution is produced before any working directory exists.
func substituteWorkdir(tokens []string, workDir string) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = strings.ReplaceAll(tok, detect.WorkdirToken, workDir)
	}
	return out
}
