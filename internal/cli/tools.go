package cli

import (
	"encoding/json"
	"fmt"

	"github.com/me/bioexec/internal/registry"
	"github.com/spf13/cobra"
)

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools the server exposes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Get("/api/v1/tools")
			if err != nil {
				return fmt.Errorf("list tools: %w", err)
			}

			var defs []registry.ToolDef
			if err := json.Unmarshal(resp.Data, &defs); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			for _, def := range defs {
				fmt.Printf("%-16s %s\n", def.Name, def.Description)
				for _, p := range def.Params {
					req := ""
					if p.Required {
						req = " (required)"
					}
					fmt.Printf("    --param %s=<%s>%s  %s\n", p.Name, p.Type, req, p.Description)
				}
			}
			return nil
		},
	}
}

func newDetectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect <tool>",
		Short: "Show how the server would invoke a tool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Get("/api/v1/tools/" + args[0] + "/detection")
			if err != nil {
				return fmt.Errorf("detect tool: %w", err)
			}

			var report map[string]any
			if err := json.Unmarshal(resp.Data, &report); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			fmt.Printf("Tool:     %v\n", report["tool"])
			fmt.Printf("Strategy: %v\n", report["strategy"])
			if v, ok := report["executable_path"].(string); ok && v != "" {
				fmt.Printf("Path:     %s\n", v)
			}
			if v, ok := report["version"].(string); ok && v != "" {
				fmt.Printf("Version:  %s\n", v)
			}
			if v, ok := report["module_name"].(string); ok && v != "" {
				fmt.Printf("Module:   %s\n", v)
			}
			if v, ok := report["container_image"].(string); ok && v != "" {
				fmt.Printf("Image:    %s\n", v)
			}
			return nil
		},
	}
}
