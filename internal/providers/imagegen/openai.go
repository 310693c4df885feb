package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// OpenAIOptions controls how the image generator is configured.
type OpenAIOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// OpenAIGenerator talks to an OpenAI-compatible images endpoint. One outbound
// call per invocation, no retries, no caching.
type OpenAIGenerator struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

const defaultImageModel = "dall-e-3"

const imageDefaultTimeout = 120 * time.Second

// Supported generation sizes; unsupported dimensions snap to the nearest.
var supportedSizes = []struct {
	w, h int
}{
	{1024, 1024},
	{1792, 1024},
	{1024, 1792},
}

type imageGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type imageGenerateResponse struct {
	Data []struct {
		URL           string `json:"url"`
		B64JSON       string `json:"b64_json"`
		RevisedPrompt string `json:"revised_prompt"`
	} `json:"data"`
}

// NewOpenAIGenerator validates the options and returns a ready generator.
func NewOpenAIGenerator(opts OpenAIOptions) (*OpenAIGenerator, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("imagegen: api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultImageModel
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: imageDefaultTimeout}
	}
	return &OpenAIGenerator{
		apiKey:  strings.TrimSpace(opts.APIKey),
		model:   model,
		baseURL: baseURL,
		client:  client,
	}, nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, req GenerateRequest) (*Result, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, errors.New("imagegen: prompt is required")
	}
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = g.model
	}
	payload := imageGenerateRequest{
		Model:  model,
		Prompt: req.Prompt,
		N:      1,
		Size:   normalizeSize(req.Width, req.Height),
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("imagegen: encode request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/images/generations", g.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("imagegen: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("imagegen: http request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("imagegen: generation status %d", resp.StatusCode)
	}
	var out imageGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("imagegen: decode response: %w", err)
	}
	if len(out.Data) == 0 {
		return nil, errors.New("imagegen: no images in response")
	}
	first := out.Data[0]
	url := first.URL
	if url == "" && first.B64JSON != "" {
		url = "data:image/png;base64," + first.B64JSON
	}
	if url == "" {
		return nil, errors.New("imagegen: response carries neither url nor data")
	}
	return &Result{
		URL:           url,
		RevisedPrompt: first.RevisedPrompt,
		Model:         model,
	}, nil
}

func normalizeSize(width, height int) string {
	if width <= 0 || height <= 0 {
		return "1024x1024"
	}
	best := supportedSizes[0]
	bestDiff := -1
	for _, s := range supportedSizes {
		diff := abs(s.w-width) + abs(s.h-height)
		if bestDiff < 0 || diff < bestDiff {
			best = s
			bestDiff = diff
		}
	}
	return fmt.Sprintf("%dx%d", best.w, best.h)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

var _ Generator = (*OpenAIGenerator)(nil)
