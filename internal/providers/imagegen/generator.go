// Package imagegen wraps the image synthesis capability.
package imagegen

import "context"

// GenerateRequest describes a normalized image synthesis call.
type GenerateRequest struct {
	Prompt string
	Width  int
	Height int
	Model  string
}

// Result is the normalized output of one image synthesis call.
type Result struct {
	URL           string `json:"url"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
	Model         string `json:"model"`
}

// Generator is the contract implemented by image synthesis providers.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*Result, error)
}
