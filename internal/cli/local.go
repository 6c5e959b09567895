package cli

import (
	"fmt"
	"time"

	"github.com/me/bioexec/internal/argexpr"
	"github.com/me/bioexec/internal/config"
	"github.com/me/bioexec/internal/detect"
	"github.com/me/bioexec/internal/registry"
	"github.com/me/bioexec/internal/sandbox"
	"github.com/me/bioexec/pkg/model"
	"github.com/spf13/cobra"
)

// runLocal resolves and invokes a tool in this process, bypassing the
// server. The execution configuration comes from BIOEXEC_* environment
// variables, as it does server-side.
func runLocal(cmd *cobra.Command, tool, toolsFile string, params map[string]any, files map[string]string) error {
	reg := registry.Builtin(logger)
	if toolsFile != "" {
		if err := reg.LoadFile(toolsFile); err != nil {
			return err
		}
	}

	def, ok := reg.Get(tool)
	if !ok {
		return fmt.Errorf("unknown tool %q", tool)
	}

	args, err := def.BuildArgs(params, argexpr.New())
	if err != nil {
		return err
	}

	execCfg := config.DefaultExecConfig().FromEnv()

	spec := detect.Spec{
		Tool:           def.Name,
		ModuleNames:    def.ModuleNames,
		ContainerImage: def.ContainerImage,
		Preferred:      detect.ParseStrategies(execCfg.PreferredModes, logger),
	}
	if execCfg.ModuleNames != "" {
		spec.ModuleNames = config.SplitList(execCfg.ModuleNames)
	}
	if execCfg.ContainerImage != "" {
		spec.ContainerImage = execCfg.ContainerImage
	}
	if execCfg.ForcedMode != "" {
		if forced, ok := detect.ParseStrategy(execCfg.ForcedMode); ok {
			spec.Forced = forced
		} else {
			logger.Warn("ignoring unrecognized forced execution strategy", "value", execCfg.ForcedMode)
		}
	}

	res := detect.NewResolver(logger).Resolve(cmd.Context(), spec)

	staged := make(map[string]sandbox.FileSource, len(files))
	for dest, content := range files {
		staged[dest] = sandbox.FileSource{Content: []byte(content)}
	}
	for _, p := range def.FileParams() {
		if raw, ok := params[p.Name]; ok {
			if path, ok := raw.(string); ok {
				staged[p.StagedName()] = sandbox.FileSource{Path: path}
			}
		}
	}

	start := time.Now()
	outcome := sandbox.NewInvoker(logger).Invoke(cmd.Context(), sandbox.Request{
		Resolution: res,
		Args:       args,
		Files:      staged,
		TimeLimit:  execCfg.Timeout,
		SizeLimit:  execCfg.MaxInputSize,
		TempRoot:   execCfg.TempDir,
	})

	result := model.RunResult{
		Tool:      tool,
		Strategy:  string(res.Strategy),
		Outcome:   string(outcome.Kind),
		Stdout:    string(outcome.Stdout),
		Stderr:    string(outcome.Stderr),
		ExitInfo:  outcome.ExitInfo,
		ElapsedMS: time.Since(start).Milliseconds(),
		Detail:    outcome.Detail,
	}
	switch outcome.Kind {
	case sandbox.OutcomeTimedOut:
		result.Detail = fmt.Sprintf("timed out after %s", outcome.Elapsed)
	case sandbox.OutcomeInputTooLarge:
		result.Detail = fmt.Sprintf("input exceeds limit of %d bytes", outcome.Limit)
	case sandbox.OutcomeInputMissing:
		result.Detail = "input file not found: " + outcome.MissingPath
	case sandbox.OutcomeToolUnavailable:
		result.Detail = "tool is not available under any execution strategy"
	}

	return printResult(cmd, result, nil)
}
