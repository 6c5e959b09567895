// Package queue forwards tool invocations to a remote job broker.
// The broker owns scheduling and result storage; this client is the
// boundary shim only.
package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/me/bioexec/pkg/model"
)

// Client talks to the broker's REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a broker client with connection pooling.
func NewClient(baseURL string) *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

// BaseURL returns the broker base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Submit forwards a job to the broker.
func (c *Client) Submit(ctx context.Context, req model.SubmitJobRequest) (*model.QueueJob, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	var job model.QueueJob
	if err := c.do(ctx, http.MethodPost, "/jobs/submit", body, &job); err != nil {
		return nil, fmt.Errorf("submit job: %w", err)
	}
	return &job, nil
}

// Status returns the broker's view of a job.
func (c *Client) Status(ctx context.Context, jobID string) (*model.QueueJob, error) {
	var job model.QueueJob
	if err := c.do(ctx, http.MethodGet, "/jobs/"+jobID+"/status", nil, &job); err != nil {
		return nil, fmt.Errorf("job status: %w", err)
	}
	return &job, nil
}

// Result retrieves a completed job's result payload.
func (c *Client) Result(ctx context.Context, jobID string) (map[string]any, error) {
	var result map[string]any
	if err := c.do(ctx, http.MethodGet, "/jobs/"+jobID+"/result", nil, &result); err != nil {
		return nil, fmt.Errorf("job result: %w", err)
	}
	return result, nil
}

// Cancel asks the broker to cancel a job.
func (c *Client) Cancel(ctx context.Context, jobID string) (*model.QueueJob, error) {
	var job model.QueueJob
	if err := c.do(ctx, http.MethodDelete, "/jobs/"+jobID, nil, &job); err != nil {
		return nil, fmt.Errorf("cancel job: %w", err)
	}
	return &job, nil
}

// List returns the broker's recent jobs, optionally filtered by status.
func (c *Client) List(ctx context.Context, status string, limit int) ([]model.QueueJob, error) {
	path := fmt.Sprintf("/jobs?limit=%d", limit)
	if status != "" && status != "all" {
		path += "&status=" + status
	}
	var jobs []model.QueueJob
	if err := c.do(ctx, http.MethodGet, path, nil, &jobs); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("not found: %s", path)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("broker returned %d: %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode broker response: %w", err)
		}
	}
	return nil
}
