// Package text wraps the text-completion capability consumed by every
// structured component in the pipeline (analysis, blueprint, storyboard) as
// well as the narrative generation task itself.
package text

import "context"

// CompletionRequest describes a normalized completion call.
type CompletionRequest struct {
	Prompt       string
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
	Model        string
	// JSONOnly asks the capability to constrain output to a JSON object.
	// Consumers still run the tolerant decode; models do not always honor it.
	JSONOnly bool
}

// Usage reports upstream token accounting when the capability provides it.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CompletionResult is the normalized output of one completion call.
type CompletionResult struct {
	Content string `json:"content"`
	Model   string `json:"model"`
	Usage   Usage  `json:"usage"`
}

// Completer is the contract implemented by text-completion providers.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)
}
