package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OpenAIOptions controls how the speech synthesizer is configured.
type OpenAIOptions struct {
	APIKey     string
	Model      string
	Voice      string
	BaseURL    string
	HTTPClient *http.Client
}

// OpenAISynthesizer talks to an OpenAI-compatible audio/speech endpoint. The
// endpoint streams raw audio bytes; the result is re-encoded as a data URL so
// downstream consumers never touch provider storage.
type OpenAISynthesizer struct {
	apiKey  string
	model   string
	voice   string
	baseURL string
	client  *http.Client
}

const (
	defaultSpeechModel = "tts-1"
	defaultSpeechVoice = "alloy"

	speechDefaultTimeout = 120 * time.Second

	// Narration pace used to estimate duration when the capability does not
	// report one: roughly 150 words per minute.
	wordsPerSecond = 2.5

	maxSpeechInputChars = 4096
)

type speechRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
	Voice string `json:"voice"`
}

// NewOpenAISynthesizer validates the options and returns a ready synthesizer.
func NewOpenAISynthesizer(opts OpenAIOptions) (*OpenAISynthesizer, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("speech: api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultSpeechModel
	}
	voice := strings.TrimSpace(opts.Voice)
	if voice == "" {
		voice = defaultSpeechVoice
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: speechDefaultTimeout}
	}
	return &OpenAISynthesizer{
		apiKey:  strings.TrimSpace(opts.APIKey),
		model:   model,
		voice:   voice,
		baseURL: baseURL,
		client:  client,
	}, nil
}

func (s *OpenAISynthesizer) Synthesize(ctx context.Context, req SynthesizeRequest) (*Result, error) {
	input := strings.TrimSpace(req.Text)
	if input == "" {
		return nil, errors.New("speech: text is required")
	}
	if len(input) > maxSpeechInputChars {
		input = input[:maxSpeechInputChars]
	}
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = s.model
	}
	voice := strings.TrimSpace(req.Voice)
	if voice == "" {
		voice = s.voice
	}
	payload := speechRequest{Model: model, Input: input, Voice: voice}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("speech: encode request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/audio/speech", s.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("speech: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("speech: http request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("speech: synthesis status %d", resp.StatusCode)
	}
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("speech: read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("speech: empty audio response")
	}
	mime := resp.Header.Get("Content-Type")
	if mime == "" || strings.HasPrefix(mime, "application/") {
		mime = "audio/mpeg"
	}
	return &Result{
		DataURL:  fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(audio)),
		Duration: EstimateDuration(input),
		Model:    model,
	}, nil
}

// EstimateDuration approximates narration length in seconds from word count.
func EstimateDuration(script string) float64 {
	words := len(strings.Fields(script))
	if words == 0 {
		return 0
	}
	return float64(words) / wordsPerSecond
}

var _ Synthesizer = (*OpenAISynthesizer)(nil)
