package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"studio/internal/assets"
)

// AssetRepositoryPG implements assets.Sink backed by PostgreSQL. Used when
// DATABASE_URL is configured; otherwise the filesystem sink serves.
type AssetRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewAssetRepository constructs a new asset repository instance.
func NewAssetRepository(pool *pgxpool.Pool) *AssetRepositoryPG {
	return &AssetRepositoryPG{pool: pool}
}

func (r *AssetRepositoryPG) CreateAsset(ctx context.Context, in assets.NewAsset) (*assets.Asset, error) {
	if in.Type == "" {
		return nil, fmt.Errorf("repo: asset type is required")
	}
	asset := &assets.Asset{
		ID:          uuid.NewString(),
		RunID:       in.RunID,
		Type:        in.Type,
		Title:       in.Title,
		InputPrompt: in.InputPrompt,
		OutputData:  in.OutputData,
		Metadata:    in.Metadata,
		CreatedAt:   time.Now().UTC(),
	}
	query := `
INSERT INTO assets (id, run_id, kind, title, input_prompt, output_data, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`
	if _, err := r.pool.Exec(ctx, query,
		asset.ID, asset.RunID, asset.Type, asset.Title, asset.InputPrompt,
		asset.OutputData, asset.Metadata, asset.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("repo: insert asset: %w", err)
	}
	return asset, nil
}

// ListByRunID returns all assets belonging to the run.
func (r *AssetRepositoryPG) ListByRunID(ctx context.Context, runID string) ([]assets.Asset, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, run_id, kind, title, input_prompt, output_data, metadata, created_at
FROM assets
WHERE run_id = $1
ORDER BY created_at ASC;
`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []assets.Asset
	for rows.Next() {
		var a assets.Asset
		if err := rows.Scan(&a.ID, &a.RunID, &a.Type, &a.Title, &a.InputPrompt, &a.OutputData, &a.Metadata, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

var _ assets.Sink = (*AssetRepositoryPG)(nil)
