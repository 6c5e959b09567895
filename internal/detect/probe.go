package detect

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// Probe timeouts. Probes issue lightweight diagnostic subprocesses and
// must never block longer than these bounds.
const (
	versionProbeTimeout = 5 * time.Second
	moduleProbeTimeout  = 10 * time.Second
	daemonProbeTimeout  = 5 * time.Second
)

// versionFlags are tried in order when asking a native tool for its
// version; the first flag that exits zero wins.
var versionFlags = []string{"--version", "-v", "-V", "version"}

// Prober answers, for one tool and one strategy, "is this tool reachable
// this way, and how do I name it?" Probes are read-only: they never
// mutate shared state beyond issuing diagnostic subprocess calls.
//
// A probe returns nil for "not available". Truly exceptional conditions
// (the probe process cannot be spawned) are logged at WARN and also
// yield nil, so the resolver can move on to the next strategy.
type Prober struct {
	logger   *slog.Logger
	runner   CommandRunner
	lookPath func(string) (string, error)

	moduleOnce sync.Once
	moduleCmd  string   // "module" or "ml", empty when no module system
	moduleSys  Strategy // StrategyModule or StrategyLmod
}

// NewProber creates a Prober using real subprocess execution.
func NewProber(logger *slog.Logger) *Prober {
	return newProberWith(logger, &osCommandRunner{}, exec.LookPath)
}

// newProberWith is used by tests to inject a fake runner and PATH lookup.
func newProberWith(logger *slog.Logger, runner CommandRunner, lookPath func(string) (string, error)) *Prober {
	return &Prober{
		logger:   logger.With("component", "prober"),
		runner:   runner,
		lookPath: lookPath,
	}
}

// Native checks whether the tool is directly on the executable search
// path. A found tool is reported even when no version flag succeeds;
// the version is informational only.
func (p *Prober) Native(ctx context.Context, tool string) *Resolution {
	path, err := p.lookPath(tool)
	if err != nil {
		return nil
	}

	version := ""
	for _, flag := range versionFlags {
		stdout, stderr, code, runErr := p.runner.Run(ctx, versionProbeTimeout, path, flag)
		if runErr != nil || code != 0 {
			continue
		}
		out := stdout
		if strings.TrimSpace(out) == "" {
			// Some tools print their version to stderr.
			out = stderr
		}
		if line, _, _ := strings.Cut(out, "\n"); strings.TrimSpace(line) != "" {
			version = strings.TrimSpace(line)
			break
		}
	}

	return &Resolution{
		Tool:           tool,
		Strategy:       StrategyNative,
		ExecutablePath: path,
		Version:        version,
	}
}

// moduleSystem detects which module command is reachable, once per
// Prober. It returns the command name and the matching strategy.
func (p *Prober) moduleSystem(ctx context.Context) (string, Strategy, bool) {
	p.moduleOnce.Do(func() {
		for _, cand := range []struct {
			cmd  string
			sys  Strategy
		}{
			{"module", StrategyModule},
			{"ml", StrategyLmod},
		} {
			if _, err := p.lookPath(cand.cmd); err != nil {
				continue
			}
			if _, _, _, err := p.runner.Run(ctx, moduleProbeTimeout, cand.cmd, "avail"); err != nil {
				p.logger.Warn("module command present but not runnable", "command", cand.cmd, "error", err)
				continue
			}
			p.moduleCmd = cand.cmd
			p.moduleSys = cand.sys
			p.logger.Debug("module system detected", "command", cand.cmd)
			return
		}
	})
	return p.moduleCmd, p.moduleSys, p.moduleCmd != ""
}

// ModuleSystem checks whether any of the candidate module names is
// listed by the host's module system. Candidates are tried in caller
// order; a case-insensitive substring match of the candidate in either
// output stream counts as available. The matching is deliberately
// lenient to stay compatible with existing module deployments.
func (p *Prober) ModuleSystem(ctx context.Context, tool string, candidates []string) *Resolution {
	moduleCmd, sys, ok := p.moduleSystem(ctx)
	if !ok {
		return nil
	}

	for _, name := range candidates {
		stdout, stderr, _, err := p.runner.Run(ctx, moduleProbeTimeout, moduleCmd, "avail", name)
		if err != nil {
			p.logger.Warn("module avail probe failed", "module", name, "error", err)
			continue
		}
		lower := strings.ToLower(name)
		if strings.Contains(strings.ToLower(stdout), lower) || strings.Contains(strings.ToLower(stderr), lower) {
			return &Resolution{
				Tool:          tool,
				Strategy:      sys,
				ModuleName:    name,
				CommandPrefix: []string{moduleCmd, "load", name, "&&"},
			}
		}
	}
	return nil
}

// Container checks whether the given container runtime can serve the
// tool. Singularity needs only the binary; Docker additionally needs a
// live daemon. Neither probe verifies that the image itself is pullable;
// that risk is deferred to invocation time.
func (p *Prober) Container(ctx context.Context, tool, image string, kind Strategy) *Resolution {
	switch kind {
	case StrategySingularity:
		if _, err := p.lookPath("singularity"); err != nil {
			return nil
		}
		return &Resolution{
			Tool:           tool,
			Strategy:       StrategySingularity,
			ContainerImage: image,
			CommandPrefix:  []string{"singularity", "exec", tool + ".sif"},
		}

	case StrategyDocker:
		if _, err := p.lookPath("docker"); err != nil {
			return nil
		}
		_, _, code, err := p.runner.Run(ctx, daemonProbeTimeout, "docker", "info")
		if err != nil {
			p.logger.Warn("docker daemon probe failed", "error", err)
			return nil
		}
		if code != 0 {
			return nil
		}
		return &Resolution{
			Tool:           tool,
			Strategy:       StrategyDocker,
			ContainerImage: image,
			CommandPrefix: []string{
				"docker", "run", "--rm",
				"-v", WorkdirToken + ":/data",
				"-w", "/data",
				image,
			},
		}
	}
	return nil
}
