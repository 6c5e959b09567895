package cli

import (
	"encoding/json"
	"fmt"

	"github.com/me/bioexec/pkg/model"
	"github.com/spf13/cobra"
)

func newJobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Work with jobs forwarded to the remote broker",
	}
	cmd.AddCommand(
		newJobsSubmitCmd(),
		newJobsStatusCmd(),
		newJobsResultCmd(),
		newJobsCancelCmd(),
		newJobsListCmd(),
	)
	return cmd
}

func newJobsSubmitCmd() *cobra.Command {
	var (
		params   []string
		priority int
		tags     []string
	)

	cmd := &cobra.Command{
		Use:   "submit <tool>",
		Short: "Submit a tool run as a background job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paramMap, err := parseParams(params)
			if err != nil {
				return err
			}

			resp, err := client.Post("/api/v1/tools/"+args[0]+"/submit", map[string]any{
				"params":   paramMap,
				"priority": priority,
				"tags":     tags,
			})
			if err != nil {
				return fmt.Errorf("submit job: %w", err)
			}

			var job model.QueueJob
			if err := json.Unmarshal(resp.Data, &job); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}
			fmt.Printf("Job submitted: %s (status %s)\n", job.JobID, job.Status)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&params, "param", nil, "Tool parameter as k=v (repeatable)")
	cmd.Flags().IntVar(&priority, "priority", 5, "Job priority (1-10)")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "Job tag (repeatable)")

	return cmd
}

func newJobsStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <job_id>",
		Short: "Check a background job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Get("/api/v1/queue/jobs/" + args[0])
			if err != nil {
				return fmt.Errorf("job status: %w", err)
			}
			return printJob(resp.Data)
		},
	}
}

func newJobsResultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "result <job_id>",
		Short: "Retrieve a completed job's result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Get("/api/v1/queue/jobs/" + args[0] + "/result")
			if err != nil {
				return fmt.Errorf("job result: %w", err)
			}
			fmt.Println(string(resp.Data))
			return nil
		},
	}
}

func newJobsCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <job_id>",
		Short: "Cancel a background job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Delete("/api/v1/queue/jobs/" + args[0])
			if err != nil {
				return fmt.Errorf("cancel job: %w", err)
			}
			return printJob(resp.Data)
		},
	}
}

func newJobsListCmd() *cobra.Command {
	var (
		status string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent background jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/api/v1/queue/jobs?limit=%d", limit)
			if status != "" {
				path += "&status=" + status
			}
			resp, err := client.Get(path)
			if err != nil {
				return fmt.Errorf("list jobs: %w", err)
			}

			var jobs []model.QueueJob
			if err := json.Unmarshal(resp.Data, &jobs); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}
			for _, job := range jobs {
				fmt.Printf("%s  %-12s %-10s %s\n", job.JobID, job.JobType, job.Status, job.CreatedAt)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (pending, running, completed, failed)")
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum jobs to list")

	return cmd
}

func printJob(data json.RawMessage) error {
	var job model.QueueJob
	if err := json.Unmarshal(data, &job); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	fmt.Printf("Job:     %s\n", job.JobID)
	fmt.Printf("Type:    %s\n", job.JobType)
	fmt.Printf("Status:  %s\n", job.Status)
	if job.Progress > 0 {
		fmt.Printf("Progress: %d%%\n", job.Progress)
	}
	if job.ResultURL != "" {
		fmt.Printf("Result:  %s\n", job.ResultURL)
	}
	if job.Error != "" {
		fmt.Printf("Error:   %s\n", job.Error)
	}
	return nil
}
