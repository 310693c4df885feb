package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"studio/internal/storage"
)

// FileSink persists assets as JSON documents in the local file store. It is
// the default sink when no database is configured.
type FileSink struct {
	store *storage.FileStore
}

// NewFileSink constructs a FileSink over the given store.
func NewFileSink(store *storage.FileStore) (*FileSink, error) {
	if store == nil {
		return nil, errors.New("assets: file store is required")
	}
	return &FileSink{store: store}, nil
}

func (s *FileSink) CreateAsset(ctx context.Context, in NewAsset) (*Asset, error) {
	if in.Type == "" {
		return nil, errors.New("assets: type is required")
	}
	asset := &Asset{
		ID:          uuid.NewString(),
		RunID:       in.RunID,
		Type:        in.Type,
		Title:       in.Title,
		InputPrompt: in.InputPrompt,
		OutputData:  in.OutputData,
		Metadata:    in.Metadata,
		CreatedAt:   time.Now().UTC(),
	}
	doc, err := json.MarshalIndent(asset, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("assets: encode asset: %w", err)
	}
	key := fmt.Sprintf("productions/%s/%s-%s.json", in.RunID, in.Type, asset.ID)
	savedKey, err := s.store.Write(ctx, key, doc)
	if err != nil {
		return nil, fmt.Errorf("assets: persist asset: %w", err)
	}
	asset.StorageKey = savedKey
	return asset, nil
}

var _ Sink = (*FileSink)(nil)
