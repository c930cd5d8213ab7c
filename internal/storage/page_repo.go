package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"spallflow/internal/indexer"
)

type PageRepo struct {
	db *DB
}

func NewPageRepo(db *DB) *PageRepo {
	return &PageRepo{db: db}
}

// UpsertPage stores one page's structure as JSONB, replacing any earlier
// extraction of the same page.
func (r *PageRepo) UpsertPage(ctx context.Context, documentID string, page indexer.PageStructure) error {
	b, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("marshal page structure: %w", err)
	}
	_, err = r.db.Pool.Exec(ctx, `
INSERT INTO document_pages (document_id, page_number, structure, error)
VALUES ($1, $2, $3, NULLIF($4,''))
ON CONFLICT (document_id, page_number)
DO UPDATE SET structure = EXCLUDED.structure, error = EXCLUDED.error, updated_at = NOW()`,
		documentID, page.PageNumber, b, page.Error)
	if err != nil {
		return fmt.Errorf("upsert page: %w", err)
	}
	return nil
}

func (r *PageRepo) ListPages(ctx context.Context, documentID string) ([]indexer.PageStructure, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT structure
FROM document_pages
WHERE document_id=$1
ORDER BY page_number ASC`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()

	out := make([]indexer.PageStructure, 0)
	for rows.Next() {
		var b []byte
		if err := rows.Scan(&b); err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		var p indexer.PageStructure
		if err := json.Unmarshal(b, &p); err != nil {
			return nil, fmt.Errorf("decode page structure: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pages: %w", err)
	}
	return out, nil
}
