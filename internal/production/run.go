package production

import (
	"time"

	"studio/internal/assets"
	"studio/internal/providers/imagegen"
	"studio/internal/providers/speech"
	"studio/internal/providers/storyboard"
	"studio/internal/providers/text"
)

// Stage names the orchestrator's state machine positions.
type Stage string

const (
	StageCreated    Stage = "created"
	StageAnalyzing  Stage = "analyzing"
	StagePlanning   Stage = "planning"
	StageGenerating Stage = "generating"
	StageFinalizing Stage = "finalizing"
	StageComplete   Stage = "complete"
)

// TaskStatus is the lifecycle of one generation task. Transitions are
// monotonic: pending, running, then exactly one terminal status.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskSucceeded TaskStatus = "succeeded"
	TaskFailed    TaskStatus = "failed"
)

// Terminal reports whether the status is succeeded or failed.
func (s TaskStatus) Terminal() bool {
	return s == TaskSucceeded || s == TaskFailed
}

// GenerationTask is one per-modality unit of work within a run. Exactly one
// of the result pointers is non-nil on success; Error is non-empty exactly
// when the task failed.
type GenerationTask struct {
	Modality Modality   `json:"modality"`
	Status   TaskStatus `json:"status"`
	Error    string     `json:"error,omitempty"`

	Text       *text.CompletionResult `json:"text,omitempty"`
	Image      *imagegen.Result       `json:"image,omitempty"`
	Audio      *speech.Result         `json:"audio,omitempty"`
	Storyboard *storyboard.Result     `json:"storyboard,omitempty"`
}

// ProductionRun is the aggregate outcome of one orchestrated production. A
// run is complete once every task is terminal; completion is not synonymous
// with full success.
type ProductionRun struct {
	ID          string              `json:"id"`
	Prompt      string              `json:"prompt"`
	Stage       Stage               `json:"stage"`
	Analysis    *PromptAnalysis     `json:"analysis,omitempty"`
	Blueprint   *Blueprint          `json:"blueprint,omitempty"`
	Tasks       []GenerationTask    `json:"tasks"`
	Errors      map[Modality]string `json:"errors,omitempty"`
	Assets      []assets.Asset      `json:"assets,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
}

// Snapshot returns a copy safe to hand to concurrent readers while the
// orchestrator keeps mutating the original.
func (r *ProductionRun) Snapshot() *ProductionRun {
	cp := *r
	cp.Tasks = make([]GenerationTask, len(r.Tasks))
	copy(cp.Tasks, r.Tasks)
	if r.Errors != nil {
		cp.Errors = make(map[Modality]string, len(r.Errors))
		for k, v := range r.Errors {
			cp.Errors[k] = v
		}
	}
	if r.Assets != nil {
		cp.Assets = make([]assets.Asset, len(r.Assets))
		copy(cp.Assets, r.Assets)
	}
	return &cp
}
