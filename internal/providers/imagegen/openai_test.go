package imagegen

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestOpenAIGeneratorGenerate(t *testing.T) {
	var captured imageGenerateRequest
	gen, err := NewOpenAIGenerator(OpenAIOptions{
		APIKey: "dummy",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if !strings.HasSuffix(r.URL.Path, "/images/generations") {
				t.Fatalf("path = %q", r.URL.Path)
			}
			if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(`{"data":[{"url":"https://img.example/1.png","revised_prompt":"a refined prompt"}]}`)),
			}, nil
		})},
	})
	if err != nil {
		t.Fatalf("NewOpenAIGenerator returned error: %v", err)
	}
	res, err := gen.Generate(context.Background(), GenerateRequest{Prompt: "eco coffee", Width: 1024, Height: 1024})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if res.URL != "https://img.example/1.png" {
		t.Fatalf("URL = %q", res.URL)
	}
	if res.RevisedPrompt != "a refined prompt" {
		t.Fatalf("RevisedPrompt = %q", res.RevisedPrompt)
	}
	if captured.Size != "1024x1024" || captured.N != 1 {
		t.Fatalf("request = %+v", captured)
	}
}

func TestOpenAIGeneratorBase64Fallback(t *testing.T) {
	gen, err := NewOpenAIGenerator(OpenAIOptions{
		APIKey: "dummy",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(`{"data":[{"b64_json":"aGVsbG8="}]}`)),
			}, nil
		})},
	})
	if err != nil {
		t.Fatalf("NewOpenAIGenerator returned error: %v", err)
	}
	res, err := gen.Generate(context.Background(), GenerateRequest{Prompt: "x"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if !strings.HasPrefix(res.URL, "data:image/png;base64,") {
		t.Fatalf("URL = %q, want data url", res.URL)
	}
}

func TestOpenAIGeneratorErrors(t *testing.T) {
	if _, err := NewOpenAIGenerator(OpenAIOptions{}); err == nil {
		t.Fatal("expected error for missing api key")
	}
	gen, err := NewOpenAIGenerator(OpenAIOptions{
		APIKey: "dummy",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{StatusCode: http.StatusBadGateway, Body: io.NopCloser(strings.NewReader(`{}`))}, nil
		})},
	})
	if err != nil {
		t.Fatalf("NewOpenAIGenerator returned error: %v", err)
	}
	if _, err := gen.Generate(context.Background(), GenerateRequest{Prompt: "x"}); err == nil {
		t.Fatal("expected error for bad status")
	}
	if _, err := gen.Generate(context.Background(), GenerateRequest{}); err == nil {
		t.Fatal("expected error for empty prompt")
	}
}

func TestNormalizeSizeSnapsToSupported(t *testing.T) {
	cases := map[string]string{
		"1600x900": normalizeSize(1600, 900),
		"512x512":  normalizeSize(512, 512),
		"900x1600": normalizeSize(900, 1600),
	}
	if cases["1600x900"] != "1792x1024" {
		t.Fatalf("wide = %q, want 1792x1024", cases["1600x900"])
	}
	if cases["512x512"] != "1024x1024" {
		t.Fatalf("square = %q, want 1024x1024", cases["512x512"])
	}
	if cases["900x1600"] != "1024x1792" {
		t.Fatalf("tall = %q, want 1024x1792", cases["900x1600"])
	}
}
