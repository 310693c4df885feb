package production

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"studio/internal/progress"
	"studio/internal/providers/imagegen"
	"studio/internal/providers/speech"
	"studio/internal/providers/storyboard"
	"studio/internal/providers/text"
)

const campaignPrompt = "launch campaign for eco coffee brand"

const (
	analysisJSON  = `{"primary_intent":"marketing","content_types":{"text":true,"image":true,"audio":false,"video":false},"tone":"warm","target_audience":"urban commuters","enhanced_prompts":{"text":"write launch copy","image":"eco coffee product shot"}}`
	blueprintJSON = `{"title":"Eco Coffee Launch","summary":"A launch brief","tone":"warm","text_brief":"write the post","image_prompt":"coffee cup on moss","audio_script":"radio spot script","video_concept":"morning ritual","keywords":["eco","coffee","launch"]}`
)

func newTestOrchestrator(adapters Adapters, sink *memorySink, store progress.Store, timeout time.Duration) *Orchestrator {
	opts := Options{
		Adapters:    adapters,
		Tracker:     progress.NewTracker(store),
		Logger:      zerolog.Nop(),
		TaskTimeout: timeout,
	}
	if sink != nil {
		opts.Sink = sink
	}
	return NewOrchestrator(opts)
}

func defaultAdapters() Adapters {
	return Adapters{
		Text:       scriptedCompleter(analysisJSON, blueprintJSON, "the launch post body"),
		Image:      fakeImageGenerator{},
		Speech:     fakeSynthesizer{},
		Storyboard: storyboard.NewPlanner(scriptedCompleter(analysisJSON, blueprintJSON, `{"script":"s","frames":[{"title":"F","description":"d","duration":30}]}`)),
	}
}

// Scenario A: text+image, both succeed.
func TestStartProductionTextAndImage(t *testing.T) {
	sink := &memorySink{}
	orch := newTestOrchestrator(defaultAdapters(), sink, nil, 0)
	run, err := orch.StartProduction(context.Background(), campaignPrompt, []Modality{ModalityImage, ModalityText})
	if err != nil {
		t.Fatalf("StartProduction returned error: %v", err)
	}
	if run.Stage != StageComplete {
		t.Fatalf("Stage = %q", run.Stage)
	}
	if len(run.Tasks) != 2 {
		t.Fatalf("tasks = %d, want 2", len(run.Tasks))
	}
	// Fixed reporting order regardless of the order the caller asked for.
	if run.Tasks[0].Modality != ModalityText || run.Tasks[1].Modality != ModalityImage {
		t.Fatalf("task order = %v, %v", run.Tasks[0].Modality, run.Tasks[1].Modality)
	}
	for _, task := range run.Tasks {
		if task.Status != TaskSucceeded {
			t.Fatalf("%s status = %q", task.Modality, task.Status)
		}
	}
	if run.Tasks[0].Text == nil || run.Tasks[0].Text.Content == "" {
		t.Fatal("text task missing result")
	}
	if run.Tasks[1].Image == nil || run.Tasks[1].Image.URL == "" {
		t.Fatal("image task missing result url")
	}
	if run.Blueprint.Title == "" {
		t.Fatal("blueprint title empty")
	}
	if len(run.Errors) != 0 {
		t.Fatalf("Errors = %v", run.Errors)
	}
	if len(run.Assets) != 2 || len(sink.stored) != 2 {
		t.Fatalf("assets = %d, stored = %d", len(run.Assets), len(sink.stored))
	}
	if sink.stored[0].Type != "text" || sink.stored[1].Type != "image" {
		t.Fatalf("persisted order = %q, %q", sink.stored[0].Type, sink.stored[1].Type)
	}
}

// Scenario B: audio adapter raises; siblings are untouched and the run still
// completes with errors.audio populated.
func TestStartProductionPartialFailure(t *testing.T) {
	adapters := defaultAdapters()
	adapters.Speech = fakeSynthesizer{synthesize: func(ctx context.Context, req speech.SynthesizeRequest) (*speech.Result, error) {
		return nil, errors.New("speech credential missing")
	}}
	orch := newTestOrchestrator(adapters, &memorySink{}, nil, 0)
	run, err := orch.StartProduction(context.Background(), campaignPrompt, []Modality{ModalityText, ModalityImage, ModalityAudio})
	if err != nil {
		t.Fatalf("StartProduction returned error: %v", err)
	}
	if run.Stage != StageComplete {
		t.Fatalf("Stage = %q, run must complete despite failure", run.Stage)
	}
	if run.Errors[ModalityAudio] == "" {
		t.Fatal("errors.audio not set")
	}
	byModality := map[Modality]GenerationTask{}
	for _, task := range run.Tasks {
		byModality[task.Modality] = task
	}
	if byModality[ModalityAudio].Status != TaskFailed {
		t.Fatalf("audio status = %q", byModality[ModalityAudio].Status)
	}
	if byModality[ModalityAudio].Audio != nil {
		t.Fatal("failed task must carry no result")
	}
	if byModality[ModalityText].Status != TaskSucceeded || byModality[ModalityText].Text == nil {
		t.Fatal("text task affected by audio failure")
	}
	if byModality[ModalityImage].Status != TaskSucceeded || byModality[ModalityImage].Image == nil {
		t.Fatal("image task affected by audio failure")
	}
}

// Scenario C: blueprint capability completely unavailable.
func TestStartProductionBlueprintFallback(t *testing.T) {
	adapters := defaultAdapters()
	adapters.Text = fakeCompleter{complete: func(ctx context.Context, req text.CompletionRequest) (*text.CompletionResult, error) {
		if req.JSONOnly {
			return nil, errors.New("capability unavailable")
		}
		return &text.CompletionResult{Content: "body"}, nil
	}}
	orch := newTestOrchestrator(adapters, nil, nil, 0)
	run, err := orch.StartProduction(context.Background(), campaignPrompt, []Modality{ModalityText})
	if err != nil {
		t.Fatalf("StartProduction returned error: %v", err)
	}
	if !strings.HasPrefix(run.Blueprint.Title, "Production: ") {
		t.Fatalf("Title = %q", run.Blueprint.Title)
	}
	if run.Blueprint.Summary != campaignPrompt {
		t.Fatalf("Summary = %q", run.Blueprint.Summary)
	}
}

func TestStartProductionRejectsEmptyPrompt(t *testing.T) {
	orch := newTestOrchestrator(defaultAdapters(), nil, nil, 0)
	if _, err := orch.StartProduction(context.Background(), "   ", []Modality{ModalityText}); !errors.Is(err, ErrEmptyPrompt) {
		t.Fatalf("err = %v, want ErrEmptyPrompt", err)
	}
}

func TestStartProductionAutoSelectsFromAnalysis(t *testing.T) {
	orch := newTestOrchestrator(defaultAdapters(), nil, nil, 0)
	run, err := orch.StartProduction(context.Background(), campaignPrompt, nil)
	if err != nil {
		t.Fatalf("StartProduction returned error: %v", err)
	}
	// The scripted analysis enables text+image only.
	if len(run.Tasks) != 2 || run.Tasks[0].Modality != ModalityText || run.Tasks[1].Modality != ModalityImage {
		t.Fatalf("tasks = %+v", run.Tasks)
	}
}

func TestStartProductionProgressMonotonic(t *testing.T) {
	store := progress.NewMemoryStore()
	orch := newTestOrchestrator(defaultAdapters(), nil, store, 0)
	run, err := orch.StartProduction(context.Background(), campaignPrompt, []Modality{ModalityText, ModalityImage, ModalityAudio, ModalityVideo})
	if err != nil {
		t.Fatalf("StartProduction returned error: %v", err)
	}
	history := store.History(run.ID)
	if len(history) == 0 {
		t.Fatal("no progress events recorded")
	}
	last := -1
	hundreds := 0
	for _, ev := range history {
		if ev.Percent < last {
			t.Fatalf("progress regressed: %d after %d (stage %s)", ev.Percent, last, ev.Stage)
		}
		last = ev.Percent
		if ev.Percent == 100 {
			hundreds++
			if ev.Stage != string(StageComplete) {
				t.Fatalf("100%% recorded at stage %q", ev.Stage)
			}
		}
	}
	if hundreds != 1 {
		t.Fatalf("percent hit 100 %d times, want exactly once", hundreds)
	}
	if history[len(history)-1].Percent != 100 {
		t.Fatal("final event must be 100")
	}
}

func TestStartProductionTaskTimeout(t *testing.T) {
	adapters := defaultAdapters()
	adapters.Image = fakeImageGenerator{generate: func(ctx context.Context, req imagegen.GenerateRequest) (*imagegen.Result, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	orch := newTestOrchestrator(adapters, nil, nil, 20*time.Millisecond)
	run, err := orch.StartProduction(context.Background(), campaignPrompt, []Modality{ModalityText, ModalityImage})
	if err != nil {
		t.Fatalf("StartProduction returned error: %v", err)
	}
	if run.Errors[ModalityImage] == "" || !strings.Contains(run.Errors[ModalityImage], "timed out") {
		t.Fatalf("errors.image = %q, want timeout", run.Errors[ModalityImage])
	}
	if run.Tasks[0].Status != TaskSucceeded {
		t.Fatal("text task affected by image timeout")
	}
}

func TestFinalizeExcludesFailedPersistsOnly(t *testing.T) {
	sink := &memorySink{fail: map[string]error{"image": errors.New("disk full")}}
	orch := newTestOrchestrator(defaultAdapters(), sink, nil, 0)
	run, err := orch.StartProduction(context.Background(), campaignPrompt, []Modality{ModalityText, ModalityImage})
	if err != nil {
		t.Fatalf("StartProduction returned error: %v", err)
	}
	if len(run.Assets) != 1 || run.Assets[0].Type != "text" {
		t.Fatalf("assets = %+v, want text only", run.Assets)
	}
	// Persistence failure does not demote the task itself.
	if run.Tasks[1].Status != TaskSucceeded {
		t.Fatalf("image task status = %q", run.Tasks[1].Status)
	}
}
