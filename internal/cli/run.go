package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/me/bioexec/pkg/model"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var (
		params    []string
		files     []string
		local     bool
		toolsFile string
	)

	cmd := &cobra.Command{
		Use:   "run <tool>",
		Short: "Run a tool and print its standard output",
		Long: `Run a tool synchronously. Parameters are given as repeated --param k=v
flags; input files as --file dest=path. With --local the tool is
resolved and invoked in this process instead of going through a server.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tool := args[0]

			paramMap, err := parseParams(params)
			if err != nil {
				return err
			}

			fileMap := make(map[string]string)
			for _, f := range files {
				dest, path, ok := strings.Cut(f, "=")
				if !ok {
					return fmt.Errorf("invalid --file %q (want dest=path)", f)
				}
				content, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				fileMap[dest] = string(content)
			}

			if local {
				return runLocal(cmd, tool, toolsFile, paramMap, fileMap)
			}

			resp, apiErr := client.Post("/api/v1/tools/"+tool+"/run", model.RunRequest{
				Params: paramMap,
				Files:  fileMap,
			})
			if resp == nil {
				return apiErr
			}

			var result model.RunResult
			if err := json.Unmarshal(resp.Data, &result); err != nil {
				if apiErr != nil {
					return apiErr
				}
				return fmt.Errorf("parse response: %w", err)
			}
			return printResult(cmd, result, apiErr)
		},
	}

	cmd.Flags().StringArrayVar(&params, "param", nil, "Tool parameter as k=v (repeatable)")
	cmd.Flags().StringArrayVar(&files, "file", nil, "Staged input as dest=path (repeatable)")
	cmd.Flags().BoolVar(&local, "local", false, "Resolve and invoke in this process, without a server")
	cmd.Flags().StringVar(&toolsFile, "tools", "", "Tool definitions YAML for --local runs")

	return cmd
}

// parseParams turns repeated k=v flags into a parameter map.
func parseParams(kvs []string) (map[string]any, error) {
	out := make(map[string]any, len(kvs))
	for _, kv := range kvs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --param %q (want k=v)", kv)
		}
		out[k] = coerce(v)
	}
	return out, nil
}

// coerce gives flag values their natural JSON types so boolean bindings
// and expressions see real booleans and numbers.
func coerce(v string) any {
	switch v {
	case "true":
		return true
	case "false":
		return false
	}
	var n float64
	if err := json.Unmarshal([]byte(v), &n); err == nil {
		return n
	}
	return v
}

func printResult(cmd *cobra.Command, result model.RunResult, apiErr error) error {
	switch result.Outcome {
	case "success":
		fmt.Fprint(cmd.OutOrStdout(), result.Stdout)
		return nil
	case "failure":
		fmt.Fprintf(cmd.ErrOrStderr(), "%s (%s) failed: %s\n", result.Tool, result.Strategy, result.ExitInfo)
		fmt.Fprint(cmd.ErrOrStderr(), result.Stderr)
		return fmt.Errorf("tool failed: %s", result.ExitInfo)
	default:
		if apiErr != nil {
			return apiErr
		}
		return fmt.Errorf("%s: %s", result.Outcome, result.Detail)
	}
}
