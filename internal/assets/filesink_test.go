package assets

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"studio/internal/storage"
)

func TestFileSinkCreateAsset(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	sink, err := NewFileSink(store)
	if err != nil {
		t.Fatalf("NewFileSink returned error: %v", err)
	}
	asset, err := sink.CreateAsset(context.Background(), NewAsset{
		RunID:       "run-1",
		Type:        "text",
		Title:       "Production: eco coffee",
		InputPrompt: "eco coffee",
		OutputData:  json.RawMessage(`{"content":"hello"}`),
		Metadata:    map[string]any{"model": "gpt-4o-mini"},
	})
	if err != nil {
		t.Fatalf("CreateAsset returned error: %v", err)
	}
	if asset.ID == "" || asset.StorageKey == "" {
		t.Fatalf("asset = %+v", asset)
	}
	raw, err := os.ReadFile(filepath.Join(store.BasePath(), filepath.FromSlash(asset.StorageKey)))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var stored Asset
	if err := json.Unmarshal(raw, &stored); err != nil {
		t.Fatalf("decode stored asset: %v", err)
	}
	if stored.Type != "text" || stored.RunID != "run-1" {
		t.Fatalf("stored = %+v", stored)
	}
}

func TestFileSinkRequiresType(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	sink, err := NewFileSink(store)
	if err != nil {
		t.Fatalf("NewFileSink returned error: %v", err)
	}
	if _, err := sink.CreateAsset(context.Background(), NewAsset{RunID: "run-1"}); err == nil {
		t.Fatal("expected error for missing type")
	}
}
