// Package speech wraps the speech synthesis capability.
package speech

import "context"

// SynthesizeRequest describes a normalized narration call.
type SynthesizeRequest struct {
	Text  string
	Voice string
	Model string
}

// Result is the normalized output of one synthesis call. DataURL is set when
// the capability returns raw audio bytes instead of a hosted URL.
type Result struct {
	URL      string  `json:"url,omitempty"`
	DataURL  string  `json:"data_url,omitempty"`
	Duration float64 `json:"duration"`
	Model    string  `json:"model"`
}

// Synthesizer is the contract implemented by speech providers.
type Synthesizer interface {
	Synthesize(ctx context.Context, req SynthesizeRequest) (*Result, error)
}
