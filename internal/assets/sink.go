// Package assets defines the persistence sink consumed by the orchestrator
// once generation has finished. The pipeline only ever calls CreateAsset;
// listing and serving persisted assets belongs to whichever backend owns them.
package assets

import (
	"context"
	"encoding/json"
	"time"
)

// NewAsset is the input contract for persisting one finished artifact.
type NewAsset struct {
	RunID       string
	Type        string
	Title       string
	InputPrompt string
	OutputData  json.RawMessage
	Metadata    map[string]any
}

// Asset is a persisted artifact record.
type Asset struct {
	ID          string          `json:"id"`
	RunID       string          `json:"run_id"`
	Type        string          `json:"type"`
	Title       string          `json:"title"`
	InputPrompt string          `json:"input_prompt"`
	OutputData  json.RawMessage `json:"output_data"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
	StorageKey  string          `json:"storage_key,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Sink persists finished assets. Implementations must treat each call as
// independent; a failed CreateAsset must not affect earlier or later calls.
type Sink interface {
	CreateAsset(ctx context.Context, in NewAsset) (*Asset, error)
}
