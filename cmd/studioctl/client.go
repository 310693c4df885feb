package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"studio/internal/production"
	"studio/internal/progress"
)

// apiClient is a thin wrapper over the production API's JSON surface.
type apiClient struct {
	base string
	http *http.Client
}

func newAPIClient(addr string) *apiClient {
	return &apiClient{
		base: strings.TrimRight(addr, "/"),
		http: &http.Client{Timeout: 10 * time.Minute},
	}
}

type startRequest struct {
	Prompt     string   `json:"prompt"`
	Modalities []string `json:"modalities,omitempty"`
	Async      bool     `json:"async,omitempty"`
}

type apiError struct {
	Kind    string `json:"error"`
	Message string `json:"message"`
}

func (c *apiClient) start(ctx context.Context, req startRequest) (*production.ProductionRun, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/v1/productions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var run production.ProductionRun
	if err := c.do(httpReq, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

func (c *apiClient) getRun(ctx context.Context, id string) (*production.ProductionRun, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/v1/productions/"+id, nil)
	if err != nil {
		return nil, err
	}
	var run production.ProductionRun
	if err := c.do(httpReq, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

func (c *apiClient) latestProgress(ctx context.Context, id string) (*progress.Event, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/v1/productions/"+id+"/progress", nil)
	if err != nil {
		return nil, err
	}
	var ev progress.Event
	if err := c.do(httpReq, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

func (c *apiClient) progressHistory(ctx context.Context, id string) ([]progress.Event, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/v1/productions/"+id+"/progress?history=1", nil)
	if err != nil {
		return nil, err
	}
	var events []progress.Event
	if err := c.do(httpReq, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *apiClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr apiError
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
