// Package storyboard plans a video storyboard on top of the text-completion
// capability. The capability is asked for strict JSON; because models do not
// reliably comply, the planner owns the tolerant decode and a deterministic
// fallback, so a malformed response never escapes this boundary. Only the
// completion call itself failing surfaces as an error.
package storyboard

import (
	"context"
	"fmt"
	"strings"

	"studio/internal/jsonx"
	"studio/internal/providers/text"
)

// PlanRequest describes one storyboard planning call.
type PlanRequest struct {
	Prompt         string
	NumberOfFrames int
	// Duration is the requested total length in seconds.
	Duration int
}

// Frame is a single storyboard beat.
type Frame struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    int    `json:"duration"`
}

// Result is the planned storyboard.
type Result struct {
	Script        string  `json:"script"`
	Frames        []Frame `json:"frames"`
	TotalDuration int     `json:"total_duration"`
	// Fallback marks a result built deterministically from the request
	// because the model output was unusable.
	Fallback bool `json:"fallback,omitempty"`
}

// Planner generates storyboards through a text completer.
type Planner struct {
	completer text.Completer
}

const (
	defaultFrames   = 5
	defaultDuration = 30

	planSystemPrompt = "You are a video storyboard planner. Respond with valid JSON only, no prose, no code fences."
)

type planPayload struct {
	Script string  `json:"script"`
	Frames []Frame `json:"frames"`
}

// NewPlanner constructs a Planner over the given completer.
func NewPlanner(completer text.Completer) *Planner {
	return &Planner{completer: completer}
}

// Plan issues one completion call and normalizes its output. The returned
// error is always a capability failure; structural problems in the model
// output resolve to the deterministic fallback instead.
func (p *Planner) Plan(ctx context.Context, req PlanRequest) (*Result, error) {
	req = normalizeRequest(req)
	res, err := p.completer.Complete(ctx, text.CompletionRequest{
		Prompt:       buildPlanPrompt(req),
		SystemPrompt: planSystemPrompt,
		Temperature:  0.7,
		JSONOnly:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("storyboard: completion: %w", err)
	}
	payload, err := jsonx.Decode[planPayload](res.Content)
	if err != nil || len(payload.Frames) == 0 {
		return FallbackPlan(req), nil
	}
	return normalizePlan(payload, req), nil
}

// FallbackPlan builds the deterministic storyboard derived purely from the
// request: N frames of equal duration summing to the requested total.
func FallbackPlan(req PlanRequest) *Result {
	req = normalizeRequest(req)
	frames := make([]Frame, req.NumberOfFrames)
	per := req.Duration / req.NumberOfFrames
	remainder := req.Duration - per*req.NumberOfFrames
	for i := range frames {
		d := per
		// Spread any remainder over the leading frames so totals match.
		if i < remainder {
			d++
		}
		frames[i] = Frame{
			Title:       fmt.Sprintf("Frame %d", i+1),
			Description: req.Prompt,
			Duration:    d,
		}
	}
	return &Result{
		Script:        req.Prompt,
		Frames:        frames,
		TotalDuration: req.Duration,
		Fallback:      true,
	}
}

func normalizeRequest(req PlanRequest) PlanRequest {
	if req.NumberOfFrames <= 0 {
		req.NumberOfFrames = defaultFrames
	}
	if req.Duration <= 0 {
		req.Duration = defaultDuration
	}
	return req
}

func normalizePlan(payload planPayload, req PlanRequest) *Result {
	frames := payload.Frames
	needsRedistribute := false
	for _, f := range frames {
		if f.Duration <= 0 {
			needsRedistribute = true
			break
		}
	}
	total := 0
	for i := range frames {
		if needsRedistribute {
			frames[i].Duration = req.Duration / len(frames)
			if frames[i].Duration <= 0 {
				frames[i].Duration = 1
			}
		}
		if strings.TrimSpace(frames[i].Title) == "" {
			frames[i].Title = fmt.Sprintf("Frame %d", i+1)
		}
		total += frames[i].Duration
	}
	script := strings.TrimSpace(payload.Script)
	if script == "" {
		script = req.Prompt
	}
	return &Result{
		Script:        script,
		Frames:        frames,
		TotalDuration: total,
	}
}

func buildPlanPrompt(req PlanRequest) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Plan a video storyboard for the following concept. Respond strictly with JSON matching this schema: ")
	sb.WriteString(`{"script":string,"frames":[{"title":string,"description":string,"duration":number}]}`)
	fmt.Fprintf(sb, ". Use exactly %d frames and make frame durations (in seconds) sum to %d. Concept: %s", req.NumberOfFrames, req.Duration, req.Prompt)
	return sb.String()
}
