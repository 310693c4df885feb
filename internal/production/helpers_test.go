package production

import (
	"context"
	"errors"
	"strings"
	"sync"

	"studio/internal/assets"
	"studio/internal/providers/imagegen"
	"studio/internal/providers/speech"
	"studio/internal/providers/text"
)

type fakeCompleter struct {
	complete func(context.Context, text.CompletionRequest) (*text.CompletionResult, error)
}

func (f fakeCompleter) Complete(ctx context.Context, req text.CompletionRequest) (*text.CompletionResult, error) {
	if f.complete != nil {
		return f.complete(ctx, req)
	}
	return nil, errors.New("complete not implemented")
}

type fakeImageGenerator struct {
	generate func(context.Context, imagegen.GenerateRequest) (*imagegen.Result, error)
}

func (f fakeImageGenerator) Generate(ctx context.Context, req imagegen.GenerateRequest) (*imagegen.Result, error) {
	if f.generate != nil {
		return f.generate(ctx, req)
	}
	return &imagegen.Result{URL: "https://img.example/out.png", Model: "fake"}, nil
}

type fakeSynthesizer struct {
	synthesize func(context.Context, speech.SynthesizeRequest) (*speech.Result, error)
}

func (f fakeSynthesizer) Synthesize(ctx context.Context, req speech.SynthesizeRequest) (*speech.Result, error) {
	if f.synthesize != nil {
		return f.synthesize(ctx, req)
	}
	return &speech.Result{DataURL: "data:audio/mpeg;base64,AAAA", Duration: 3, Model: "fake"}, nil
}

type memorySink struct {
	mu     sync.Mutex
	fail   map[string]error
	stored []assets.NewAsset
}

func (s *memorySink) CreateAsset(ctx context.Context, in assets.NewAsset) (*assets.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail[in.Type]; err != nil {
		return nil, err
	}
	s.stored = append(s.stored, in)
	return &assets.Asset{ID: "asset-" + in.Type, RunID: in.RunID, Type: in.Type, Title: in.Title}, nil
}

// scriptedCompleter answers analysis and blueprint calls with canned JSON and
// everything else with plain content.
func scriptedCompleter(analysisJSON, blueprintJSON, taskContent string) fakeCompleter {
	return fakeCompleter{complete: func(ctx context.Context, req text.CompletionRequest) (*text.CompletionResult, error) {
		switch {
		case req.JSONOnly && containsAll(req.Prompt, "Classify"):
			return &text.CompletionResult{Content: analysisJSON, Model: "fake"}, nil
		case req.JSONOnly && containsAll(req.Prompt, "production brief"):
			return &text.CompletionResult{Content: blueprintJSON, Model: "fake"}, nil
		default:
			return &text.CompletionResult{Content: taskContent, Model: "fake", Usage: text.Usage{TotalTokens: 7}}, nil
		}
	}}
}

func containsAll(haystack string, needles ...string) bool {
	for _, n := range needles {
		if !strings.Contains(haystack, n) {
			return false
		}
	}
	return true
}
