package production

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"studio/internal/assets"
	"studio/internal/progress"
	"studio/internal/providers/imagegen"
	"studio/internal/providers/speech"
	"studio/internal/providers/storyboard"
	"studio/internal/providers/text"
)

// Adapters bundles the per-modality generation capabilities. A nil adapter
// fails its own task at generation time; it never blocks the run.
type Adapters struct {
	Text       text.Completer
	Image      imagegen.Generator
	Speech     speech.Synthesizer
	Storyboard *storyboard.Planner
}

// Options configures the orchestrator.
type Options struct {
	Adapters Adapters
	Sink     assets.Sink
	Tracker  *progress.Tracker
	Logger   zerolog.Logger
	// TaskTimeout bounds each generation task; zero disables the deadline so
	// a stalled upstream call stalls only its own modality indefinitely.
	TaskTimeout time.Duration
	// Publish, when set, receives a snapshot of the run after every visible
	// mutation so concurrent readers never observe the live struct.
	Publish func(*ProductionRun)
}

// Orchestrator runs the production state machine:
// created, analyzing, planning, generating, finalizing, complete.
// Generating is the only phase with internal concurrency: one task per
// selected modality, joined with a full barrier. A run always reaches
// complete; per-modality failures land in the errors map, never abort.
type Orchestrator struct {
	analyzer    *Analyzer
	blueprints  *BlueprintBuilder
	adapters    Adapters
	sink        assets.Sink
	tracker     *progress.Tracker
	logger      zerolog.Logger
	taskTimeout time.Duration
	publish     func(*ProductionRun)
}

// ErrEmptyPrompt rejects a production with no usable prompt.
var ErrEmptyPrompt = errors.New("production: prompt is required")

const (
	textSystemPrompt = "You are a versatile writer producing polished, ready-to-publish copy. Respond with the content only."

	textTemperature = 0.8
	textMaxTokens   = 1500

	imageWidth  = 1024
	imageHeight = 1024

	storyboardFrames   = 5
	storyboardDuration = 30
)

// NewOrchestrator constructs an orchestrator from the options.
func NewOrchestrator(opts Options) *Orchestrator {
	tracker := opts.Tracker
	if tracker == nil {
		tracker = progress.NewTracker(nil)
	}
	publish := opts.Publish
	if publish == nil {
		publish = func(*ProductionRun) {}
	}
	return &Orchestrator{
		analyzer:    NewAnalyzer(opts.Adapters.Text),
		blueprints:  NewBlueprintBuilder(opts.Adapters.Text),
		adapters:    opts.Adapters,
		sink:        opts.Sink,
		tracker:     tracker,
		logger:      opts.Logger,
		taskTimeout: opts.TaskTimeout,
		publish:     publish,
	}
}

// Tracker exposes the progress tracker for polling surfaces.
func (o *Orchestrator) Tracker() *progress.Tracker {
	return o.tracker
}

// StartProduction runs one production to completion and returns the
// best-effort aggregate. An empty selected set asks the prompt analyzer to
// choose the modalities; explicit zero-modality requests are the caller's to
// reject before this point. The returned error covers pre-orchestration
// validation only — generation failures are reported inside the run.
func (o *Orchestrator) StartProduction(ctx context.Context, prompt string, selected []Modality) (*ProductionRun, error) {
	return o.StartProductionWithID(ctx, uuid.NewString(), prompt, selected)
}

// StartProductionWithID is StartProduction with a caller-chosen run id, used
// by the async surface which must know the id before orchestration begins.
func (o *Orchestrator) StartProductionWithID(ctx context.Context, id, prompt string, selected []Modality) (*ProductionRun, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	run := &ProductionRun{
		ID:        id,
		Prompt:    prompt,
		Stage:     StageCreated,
		Errors:    map[Modality]string{},
		CreatedAt: time.Now().UTC(),
	}
	o.transition(run, StageCreated, 0, "run created")

	o.transition(run, StageAnalyzing, 5, "classifying prompt")
	run.Analysis = o.analyzer.Analyze(ctx, prompt)

	o.transition(run, StagePlanning, 20, "building blueprint")
	run.Blueprint = o.blueprints.BuildBlueprint(ctx, prompt)
	if len(selected) == 0 {
		selected = run.Analysis.EnabledModalities()
	}
	selected = orderModalities(selected)
	plans := composePlans(run.Prompt, run.Analysis, run.Blueprint, selected)

	o.generate(ctx, run, selected, plans)
	o.finalize(ctx, run, plans)

	now := time.Now().UTC()
	run.CompletedAt = &now
	run.Stage = StageComplete
	o.tracker.Update(run.ID, string(StageComplete), 100, "production complete")
	o.publish(run.Snapshot())
	o.logger.Info().
		Str("run_id", run.ID).
		Int("tasks", len(run.Tasks)).
		Int("failed", len(run.Errors)).
		Msg("production: run complete")
	return run, nil
}

// generate fans out one task per modality and joins on all of them. Each task
// goroutine reads only its own plan and reports over the results channel; the
// orchestrator goroutine is the sole writer of task slots and progress.
func (o *Orchestrator) generate(ctx context.Context, run *ProductionRun, selected []Modality, plans map[Modality]taskPlan) {
	o.transition(run, StageGenerating, 30, fmt.Sprintf("launching %d generation tasks", len(selected)))

	run.Tasks = make([]GenerationTask, len(selected))
	for i, m := range selected {
		run.Tasks[i] = GenerationTask{Modality: m, Status: TaskPending}
	}
	results := make(chan taskOutcome, len(selected))
	for i, m := range selected {
		run.Tasks[i].Status = TaskRunning
		go o.runTask(ctx, i, plans[m], results)
	}
	o.publish(run.Snapshot())

	// Full barrier: every launched task resolves before the run proceeds.
	for done := 0; done < len(selected); done++ {
		out := <-results
		task := &run.Tasks[out.index]
		if out.err != nil {
			task.Status = TaskFailed
			task.Error = out.err.Error()
			run.Errors[task.Modality] = task.Error
			o.logger.Warn().
				Str("run_id", run.ID).
				Str("modality", string(task.Modality)).
				Err(out.err).
				Msg("production: task failed")
		} else {
			task.Status = TaskSucceeded
			task.Text = out.text
			task.Image = out.image
			task.Audio = out.audio
			task.Storyboard = out.storyboard
		}
		percent := 30 + (60*(done+1))/len(selected)
		o.tracker.Update(run.ID, string(StageGenerating), percent, fmt.Sprintf("%s task finished", task.Modality))
		o.publish(run.Snapshot())
	}
}

// finalize persists successful results sequentially so asset ordering stays
// deterministic. Sink failures exclude that asset only.
func (o *Orchestrator) finalize(ctx context.Context, run *ProductionRun, plans map[Modality]taskPlan) {
	o.transition(run, StageFinalizing, 92, "persisting assets")
	if o.sink == nil {
		return
	}
	for i := range run.Tasks {
		task := &run.Tasks[i]
		if task.Status != TaskSucceeded {
			continue
		}
		payload, err := json.Marshal(taskResultPayload(task))
		if err != nil {
			o.logger.Error().Err(err).Str("run_id", run.ID).Str("modality", string(task.Modality)).Msg("production: encode asset payload failed")
			continue
		}
		asset, err := o.sink.CreateAsset(ctx, assets.NewAsset{
			RunID:       run.ID,
			Type:        string(task.Modality),
			Title:       run.Blueprint.Title,
			InputPrompt: plans[task.Modality].prompt,
			OutputData:  payload,
			Metadata: map[string]any{
				"intent": string(run.Analysis.PrimaryIntent),
				"tone":   run.Blueprint.Tone,
			},
		})
		if err != nil {
			o.logger.Error().Err(err).Str("run_id", run.ID).Str("modality", string(task.Modality)).Msg("production: persist asset failed")
			continue
		}
		run.Assets = append(run.Assets, *asset)
	}
	o.publish(run.Snapshot())
}

type taskOutcome struct {
	index      int
	text       *text.CompletionResult
	image      *imagegen.Result
	audio      *speech.Result
	storyboard *storyboard.Result
	err        error
}

func (o *Orchestrator) runTask(ctx context.Context, index int, plan taskPlan, results chan<- taskOutcome) {
	if o.taskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.taskTimeout)
		defer cancel()
	}
	out := taskOutcome{index: index}
	switch plan.modality {
	case ModalityText:
		if o.adapters.Text == nil {
			out.err = errors.New("text capability not configured")
			break
		}
		out.text, out.err = o.adapters.Text.Complete(ctx, text.CompletionRequest{
			Prompt:       plan.prompt,
			SystemPrompt: textSystemPrompt,
			Temperature:  textTemperature,
			MaxTokens:    textMaxTokens,
		})
	case ModalityImage:
		if o.adapters.Image == nil {
			out.err = errors.New("image capability not configured")
			break
		}
		out.image, out.err = o.adapters.Image.Generate(ctx, imagegen.GenerateRequest{
			Prompt: plan.prompt,
			Width:  imageWidth,
			Height: imageHeight,
		})
	case ModalityAudio:
		if o.adapters.Speech == nil {
			out.err = errors.New("speech capability not configured")
			break
		}
		out.audio, out.err = o.adapters.Speech.Synthesize(ctx, speech.SynthesizeRequest{
			Text: plan.script,
		})
	case ModalityVideo:
		if o.adapters.Storyboard == nil {
			out.err = errors.New("storyboard capability not configured")
			break
		}
		out.storyboard, out.err = o.adapters.Storyboard.Plan(ctx, storyboard.PlanRequest{
			Prompt:         plan.prompt,
			NumberOfFrames: plan.frames,
			Duration:       plan.duration,
		})
	default:
		out.err = fmt.Errorf("unsupported modality %q", plan.modality)
	}
	if out.err != nil && errors.Is(out.err, context.DeadlineExceeded) {
		out.err = fmt.Errorf("task timed out after %s: %w", o.taskTimeout, out.err)
	}
	results <- out
}

func (o *Orchestrator) transition(run *ProductionRun, stage Stage, percent int, message string) {
	run.Stage = stage
	o.tracker.Update(run.ID, string(stage), percent, message)
	o.publish(run.Snapshot())
	o.logger.Debug().Str("run_id", run.ID).Str("stage", string(stage)).Msg("production: stage transition")
}

// taskPlan carries the per-modality composed inputs derived during planning.
type taskPlan struct {
	modality Modality
	prompt   string
	script   string
	frames   int
	duration int
}

// composePlans merges the blueprint briefs with the analyzer's enhanced
// prompts into the final per-modality generation inputs.
func composePlans(prompt string, analysis *PromptAnalysis, bp *Blueprint, selected []Modality) map[Modality]taskPlan {
	plans := make(map[Modality]taskPlan, len(selected))
	for _, m := range selected {
		plan := taskPlan{modality: m}
		switch m {
		case ModalityText:
			base := analysis.EnhancedPrompt(ModalityText, coalesce(bp.TextBrief, prompt))
			plan.prompt = withToneAndAudience(base, bp.Tone, analysis.TargetAudience)
		case ModalityImage:
			base := analysis.EnhancedPrompt(ModalityImage, coalesce(bp.ImagePrompt, prompt))
			plan.prompt = composeImagePrompt(base, bp.Tone, bp.Keywords)
		case ModalityAudio:
			plan.script = coalesce(bp.AudioScript, bp.Summary, prompt)
			plan.prompt = plan.script
		case ModalityVideo:
			plan.prompt = analysis.EnhancedPrompt(ModalityVideo, coalesce(bp.VideoConcept, prompt))
			plan.frames = storyboardFrames
			plan.duration = storyboardDuration
		}
		plans[m] = plan
	}
	return plans
}

func withToneAndAudience(base, tone, audience string) string {
	sb := &strings.Builder{}
	sb.WriteString(base)
	if tone != "" {
		fmt.Fprintf(sb, "\n\nTone: %s.", tone)
	}
	if audience != "" {
		fmt.Fprintf(sb, " Audience: %s.", audience)
	}
	return sb.String()
}

func composeImagePrompt(base, tone string, keywords []string) string {
	parts := []string{base}
	if tone != "" {
		parts = append(parts, tone+" mood")
	}
	if len(keywords) > 5 {
		keywords = keywords[:5]
	}
	if len(keywords) > 0 {
		parts = append(parts, strings.Join(keywords, ", "))
	}
	return strings.Join(parts, ", ")
}

func taskResultPayload(task *GenerationTask) any {
	switch {
	case task.Text != nil:
		return task.Text
	case task.Image != nil:
		return task.Image
	case task.Audio != nil:
		return task.Audio
	case task.Storyboard != nil:
		return task.Storyboard
	default:
		return struct{}{}
	}
}
