package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL      = "https://api.firecrawl.dev"
	defaultPollInterval = 2 * time.Second

	// pollGrace extends the client-side deadline past the job's own time
	// limit so the service gets a chance to finish and report on its own.
	pollGrace = 30 * time.Second
)

// Client talks to a Firecrawl-compatible deep research API.
type Client struct {
	BaseURL      string
	APIKey       string
	HTTPClient   *http.Client
	PollInterval time.Duration
	Logger       *slog.Logger
}

// NewClient returns a client for the given key. An empty baseURL selects the
// hosted service; self-hosted deployments pass their own.
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		APIKey:       apiKey,
		HTTPClient:   &http.Client{Timeout: 60 * time.Second},
		PollInterval: defaultPollInterval,
		Logger:       slog.Default(),
	}
}

type startRequest struct {
	Query     string `json:"query"`
	MaxDepth  int    `json:"maxDepth"`
	TimeLimit int    `json:"timeLimit"`
	MaxURLs   int    `json:"maxUrls"`
}

type startResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Error   string `json:"error"`
}

type statusResponse struct {
	Success      bool   `json:"success"`
	Status       string `json:"status"`
	CurrentDepth int    `json:"currentDepth"`
	MaxDepth     int    `json:"maxDepth"`
	Error        string `json:"error"`
	Data         struct {
		FinalAnalysis string     `json:"finalAnalysis"`
		Sources       []Source   `json:"sources"`
		Activities    []Activity `json:"activities"`
	} `json:"data"`
}

// DeepResearch runs one research job to completion: it starts the job, polls
// its status, forwards every previously unseen activity to onActivity (which
// may be nil), and returns the final analysis and sources. The wait is
// bounded by ctx and by the job's own time limit plus a grace margin.
func (c *Client) DeepResearch(ctx context.Context, query string, params Params, onActivity ActivityFunc) (*Result, error) {
	params = params.WithDefaults()

	ctx, cancel := context.WithTimeout(ctx, time.Duration(params.TimeLimit)*time.Second+pollGrace)
	defer cancel()

	id, err := c.start(ctx, query, params)
	if err != nil {
		return nil, err
	}
	c.Logger.Info("Deep research job started", "id", id, "query", query)

	ticker := time.NewTicker(c.PollInterval)
	defer ticker.Stop()

	seen := 0
	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("deep research job %s did not finish: %w", id, ctx.Err())
		case <-ticker.C:
		}

		status, err := c.status(ctx, id)
		if err != nil {
			return nil, err
		}

		activities := status.Data.Activities
		if seen > len(activities) {
			seen = len(activities)
		}
		for _, activity := range activities[seen:] {
			c.Logger.Debug("Research activity", "type", activity.Type, "message", activity.Message)
			if onActivity != nil {
				onActivity(activity)
			}
		}
		seen = len(activities)

		switch status.Status {
		case "completed":
			sources := status.Data.Sources
			if sources == nil {
				sources = []Source{}
			}
			c.Logger.Info("Deep research job completed", "id", id, "sources", len(sources))
			return &Result{
				Success:       true,
				FinalAnalysis: status.Data.FinalAnalysis,
				Sources:       sources,
			}, nil
		case "failed":
			msg := status.Error
			if msg == "" {
				msg = "job failed without detail"
			}
			return nil, fmt.Errorf("deep research job failed: %s", msg)
		}
	}
}

func (c *Client) start(ctx context.Context, query string, params Params) (string, error) {
	body, err := json.Marshal(startRequest{
		Query:     query,
		MaxDepth:  params.MaxDepth,
		TimeLimit: params.TimeLimit,
		MaxURLs:   params.MaxURLs,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/deep-research", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	var start startResponse
	if err := c.do(req, &start); err != nil {
		return "", err
	}
	if !start.Success || start.ID == "" {
		msg := start.Error
		if msg == "" {
			msg = "no job id returned"
		}
		return "", fmt.Errorf("deep research start rejected: %s", msg)
	}
	return start.ID, nil
}

func (c *Client) status(ctx context.Context, id string) (*statusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/v1/deep-research/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	var status statusResponse
	if err := c.do(req, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach deep research API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("deep research API returned status code: %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
