package production

import (
	"context"
	"fmt"
	"strings"

	"studio/internal/jsonx"
	"studio/internal/providers/text"
)

// Intent classifies the creative goal behind a prompt.
type Intent string

const (
	IntentStory         Intent = "story"
	IntentMarketing     Intent = "marketing"
	IntentEducational   Intent = "educational"
	IntentEntertainment Intent = "entertainment"
	IntentProduct       Intent = "product"
	IntentGeneral       Intent = "general"
)

// PromptAnalysis is the classification derived once per run. It is never
// mutated after creation.
type PromptAnalysis struct {
	PrimaryIntent    Intent            `json:"primary_intent"`
	ContentTypes     map[Modality]bool `json:"content_types"`
	Tone             string            `json:"tone,omitempty"`
	TargetAudience   string            `json:"target_audience,omitempty"`
	SuggestedFormats []string          `json:"suggested_formats,omitempty"`
	EnhancedPrompts  map[Modality]string `json:"enhanced_prompts,omitempty"`
	// Source records whether the analysis came from the model or the total
	// default.
	Source string `json:"source"`
}

// EnabledModalities returns the content types the analysis switched on, in
// fixed reporting order.
func (a *PromptAnalysis) EnabledModalities() []Modality {
	var out []Modality
	for _, m := range Modalities {
		if a.ContentTypes[m] {
			out = append(out, m)
		}
	}
	return out
}

// EnhancedPrompt returns the per-modality enhanced prompt, falling back to
// the given default.
func (a *PromptAnalysis) EnhancedPrompt(m Modality, fallback string) string {
	if v := strings.TrimSpace(a.EnhancedPrompts[m]); v != "" {
		return v
	}
	return fallback
}

// Analyzer classifies prompts through the text-completion capability. Analyze
// never fails: every error path resolves to the total default analysis.
type Analyzer struct {
	completer text.Completer
}

// NewAnalyzer constructs an Analyzer over the given completer.
func NewAnalyzer(completer text.Completer) *Analyzer {
	return &Analyzer{completer: completer}
}

const analyzeSystemPrompt = "You classify creative prompts for a content production pipeline. Respond with valid JSON only, no prose, no code fences."

type analysisPayload struct {
	PrimaryIntent string `json:"primary_intent"`
	ContentTypes  struct {
		Text  bool `json:"text"`
		Image bool `json:"image"`
		Audio bool `json:"audio"`
		Video bool `json:"video"`
	} `json:"content_types"`
	Tone             string   `json:"tone"`
	TargetAudience   string   `json:"target_audience"`
	SuggestedFormats []string `json:"suggested_formats"`
	EnhancedPrompts  struct {
		Text  string `json:"text"`
		Image string `json:"image"`
		Audio string `json:"audio"`
		Video string `json:"video"`
	} `json:"enhanced_prompts"`
}

// Analyze classifies the prompt. On any failure — capability error, parse
// failure, or an analysis enabling no content type — the total default is
// returned instead.
func (a *Analyzer) Analyze(ctx context.Context, prompt string) *PromptAnalysis {
	if a == nil || a.completer == nil {
		return DefaultAnalysis(prompt)
	}
	res, err := a.completer.Complete(ctx, text.CompletionRequest{
		Prompt:       buildAnalyzePrompt(prompt),
		SystemPrompt: analyzeSystemPrompt,
		Temperature:  0.2,
		JSONOnly:     true,
	})
	if err != nil {
		return DefaultAnalysis(prompt)
	}
	payload, err := jsonx.Decode[analysisPayload](res.Content)
	if err != nil {
		return DefaultAnalysis(prompt)
	}
	types := map[Modality]bool{
		ModalityText:  payload.ContentTypes.Text,
		ModalityImage: payload.ContentTypes.Image,
		ModalityAudio: payload.ContentTypes.Audio,
		ModalityVideo: payload.ContentTypes.Video,
	}
	anyEnabled := false
	for _, enabled := range types {
		anyEnabled = anyEnabled || enabled
	}
	if !anyEnabled {
		return DefaultAnalysis(prompt)
	}
	enhanced := map[Modality]string{}
	for m, v := range map[Modality]string{
		ModalityText:  payload.EnhancedPrompts.Text,
		ModalityImage: payload.EnhancedPrompts.Image,
		ModalityAudio: payload.EnhancedPrompts.Audio,
		ModalityVideo: payload.EnhancedPrompts.Video,
	} {
		if v = strings.TrimSpace(v); v != "" {
			enhanced[m] = v
		}
	}
	return &PromptAnalysis{
		PrimaryIntent:    parseIntent(payload.PrimaryIntent),
		ContentTypes:     types,
		Tone:             strings.TrimSpace(payload.Tone),
		TargetAudience:   strings.TrimSpace(payload.TargetAudience),
		SuggestedFormats: payload.SuggestedFormats,
		EnhancedPrompts:  enhanced,
		Source:           "model",
	}
}

// DefaultAnalysis is the total fallback: text and image enabled, the raw
// prompt reused as the enhanced prompt for both.
func DefaultAnalysis(prompt string) *PromptAnalysis {
	return &PromptAnalysis{
		PrimaryIntent: IntentGeneral,
		ContentTypes: map[Modality]bool{
			ModalityText:  true,
			ModalityImage: true,
			ModalityAudio: false,
			ModalityVideo: false,
		},
		EnhancedPrompts: map[Modality]string{
			ModalityText:  prompt,
			ModalityImage: prompt,
		},
		Source: "default",
	}
}

func parseIntent(raw string) Intent {
	switch Intent(strings.ToLower(strings.TrimSpace(raw))) {
	case IntentStory:
		return IntentStory
	case IntentMarketing:
		return IntentMarketing
	case IntentEducational:
		return IntentEducational
	case IntentEntertainment:
		return IntentEntertainment
	case IntentProduct:
		return IntentProduct
	default:
		return IntentGeneral
	}
}

func buildAnalyzePrompt(prompt string) string {
	sb := &strings.Builder{}
	sb.WriteString("Classify the following creative prompt. Respond strictly with JSON matching this schema: ")
	sb.WriteString(`{"primary_intent":"story|marketing|educational|entertainment|product|general","content_types":{"text":bool,"image":bool,"audio":bool,"video":bool},"tone":string,"target_audience":string,"suggested_formats":string[],"enhanced_prompts":{"text":string,"image":string,"audio":string,"video":string}}`)
	fmt.Fprintf(sb, ". Enable a content type only when it clearly serves the request. Prompt: %q", prompt)
	return sb.String()
}
