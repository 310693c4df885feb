package production

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"studio/internal/jsonx"
	"studio/internal/providers/text"
)

// Blueprint is the structured creative brief derived once per run. Every
// field is always populated: missing model output is patched field by field
// with deterministic defaults derived from the raw prompt.
type Blueprint struct {
	Title        string   `json:"title"`
	Summary      string   `json:"summary"`
	Tone         string   `json:"tone"`
	TextBrief    string   `json:"text_brief"`
	ImagePrompt  string   `json:"image_prompt"`
	AudioScript  string   `json:"audio_script"`
	VideoConcept string   `json:"video_concept"`
	Keywords     []string `json:"keywords"`
	// Source records whether the blueprint came from the model, was patched,
	// or was built entirely from the prompt.
	Source string `json:"source"`
}

// BlueprintBuilder expands a raw prompt into a Blueprint through the
// text-completion capability. BuildBlueprint never fails and needs no network
// access to produce a usable result.
type BlueprintBuilder struct {
	completer text.Completer
}

// NewBlueprintBuilder constructs a builder over the given completer.
func NewBlueprintBuilder(completer text.Completer) *BlueprintBuilder {
	return &BlueprintBuilder{completer: completer}
}

const (
	blueprintSystemPrompt = "You are a creative director expanding a prompt into a production brief. Respond with compact valid JSON only, no prose, no code fences."

	titleFallbackPrefix = "Production: "

	maxTitlePromptLen   = 200
	maxSummaryPromptLen = 500
	maxFallbackKeywords = 8
)

type blueprintPayload struct {
	Title        string   `json:"title"`
	Summary      string   `json:"summary"`
	Tone         string   `json:"tone"`
	TextBrief    string   `json:"text_brief"`
	ImagePrompt  string   `json:"image_prompt"`
	AudioScript  string   `json:"audio_script"`
	VideoConcept string   `json:"video_concept"`
	Keywords     []string `json:"keywords"`
}

// BuildBlueprint derives the creative brief for the prompt. Total failure of
// the enrichment call falls through to a blueprint built purely from string
// operations on the prompt.
func (b *BlueprintBuilder) BuildBlueprint(ctx context.Context, prompt string) *Blueprint {
	if b == nil || b.completer == nil {
		return FallbackBlueprint(prompt)
	}
	res, err := b.completer.Complete(ctx, text.CompletionRequest{
		Prompt:       buildBlueprintPrompt(prompt),
		SystemPrompt: blueprintSystemPrompt,
		Temperature:  0.6,
		JSONOnly:     true,
	})
	if err != nil {
		return FallbackBlueprint(prompt)
	}
	payload, err := jsonx.Decode[blueprintPayload](res.Content)
	if err != nil {
		return FallbackBlueprint(prompt)
	}
	fb := FallbackBlueprint(prompt)
	bp := &Blueprint{
		Title:        coalesce(payload.Title, fb.Title),
		Summary:      coalesce(payload.Summary, fb.Summary),
		Tone:         coalesce(payload.Tone, fb.Tone),
		TextBrief:    coalesce(payload.TextBrief, fb.TextBrief),
		ImagePrompt:  coalesce(payload.ImagePrompt, fb.ImagePrompt),
		AudioScript:  coalesce(payload.AudioScript, fb.AudioScript),
		VideoConcept: coalesce(payload.VideoConcept, fb.VideoConcept),
		Keywords:     payload.Keywords,
		Source:       "model",
	}
	if len(bp.Keywords) == 0 {
		bp.Keywords = fb.Keywords
		bp.Source = "patched"
	}
	return bp
}

// FallbackBlueprint builds the deterministic blueprint from the prompt alone.
func FallbackBlueprint(prompt string) *Blueprint {
	trimmed := strings.TrimSpace(prompt)
	keywords := fallbackKeywords(trimmed)
	headline := cases.Title(language.Und).String(strings.Join(firstTokens(trimmed, 4), " "))
	return &Blueprint{
		Title:        titleFallbackPrefix + Truncate(trimmed, maxTitlePromptLen),
		Summary:      Truncate(trimmed, maxSummaryPromptLen),
		Tone:         "neutral",
		TextBrief:    trimmed,
		ImagePrompt:  coalesce(headline, trimmed),
		AudioScript:  trimmed,
		VideoConcept: trimmed,
		Keywords:     keywords,
		Source:       "fallback",
	}
}

// fallbackKeywords takes the first whitespace-delimited tokens, lowercased
// with non-alphanumeric runes stripped.
func fallbackKeywords(prompt string) []string {
	var out []string
	for _, token := range strings.Fields(prompt) {
		cleaned := strings.Map(func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				return r
			}
			if r >= 'A' && r <= 'Z' {
				return r + ('a' - 'A')
			}
			return -1
		}, token)
		if cleaned == "" {
			continue
		}
		out = append(out, cleaned)
		if len(out) == maxFallbackKeywords {
			break
		}
	}
	return out
}

func firstTokens(s string, n int) []string {
	fields := strings.Fields(s)
	if len(fields) > n {
		fields = fields[:n]
	}
	return fields
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func buildBlueprintPrompt(prompt string) string {
	sb := &strings.Builder{}
	sb.WriteString("Expand the following creative prompt into a production brief. Respond strictly with compact JSON matching this schema: ")
	sb.WriteString(`{"title":string,"summary":string,"tone":string,"text_brief":string,"image_prompt":string,"audio_script":string,"video_concept":string,"keywords":string[]}`)
	fmt.Fprintf(sb, ". Keep keywords short and ordered by relevance. Prompt: %q", prompt)
	return sb.String()
}
