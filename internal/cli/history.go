package cli

import (
	"encoding/json"
	"fmt"

	"github.com/me/bioexec/pkg/model"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var (
		limit int
		tool  string
	)

	cmd := &cobra.Command{
		Use:   "history [invocation_id]",
		Short: "Show the server's invocation history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				resp, err := client.Get("/api/v1/history/" + args[0])
				if err != nil {
					return fmt.Errorf("get invocation: %w", err)
				}
				var rec model.InvocationRecord
				if err := json.Unmarshal(resp.Data, &rec); err != nil {
					return fmt.Errorf("parse response: %w", err)
				}
				fmt.Printf("ID:       %s\n", rec.ID)
				fmt.Printf("Tool:     %s\n", rec.Tool)
				fmt.Printf("Strategy: %s\n", rec.Strategy)
				fmt.Printf("Outcome:  %s\n", rec.Outcome)
				if rec.ExitInfo != "" {
					fmt.Printf("Exit:     %s\n", rec.ExitInfo)
				}
				fmt.Printf("Elapsed:  %dms\n", rec.ElapsedMS)
				fmt.Printf("At:       %s\n", rec.CreatedAt.Format("2006-01-02 15:04:05"))
				if rec.Stdout != "" {
					fmt.Printf("--- stdout ---\n%s", rec.Stdout)
				}
				if rec.Stderr != "" {
					fmt.Printf("--- stderr ---\n%s", rec.Stderr)
				}
				return nil
			}

			path := fmt.Sprintf("/api/v1/history?limit=%d", limit)
			if tool != "" {
				path += "&tool=" + tool
			}
			resp, err := client.Get(path)
			if err != nil {
				return fmt.Errorf("list history: %w", err)
			}

			var recs []model.InvocationRecord
			if err := json.Unmarshal(resp.Data, &recs); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			for _, rec := range recs {
				fmt.Printf("%s  %-12s %-12s %-16s %6dms  %s\n",
					rec.ID, rec.Tool, rec.Strategy, rec.Outcome, rec.ElapsedMS,
					rec.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			if resp.Pagination != nil && resp.Pagination.HasMore {
				fmt.Printf("(%d of %d)\n", len(recs), resp.Pagination.Total)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum rows to list")
	cmd.Flags().StringVar(&tool, "tool", "", "Filter by tool name")

	return cmd
}
