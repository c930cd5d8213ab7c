package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"spallflow/internal/schema"
)

type RecordRepo struct {
	db *DB
}

func NewRecordRepo(db *DB) *RecordRepo {
	return &RecordRepo{db: db}
}

// ReplaceRecords swaps the document's record set for the given one. Position
// preserves extraction order across reads.
func (r *RecordRepo) ReplaceRecords(ctx context.Context, documentID string, records []schema.Record) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin records tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM experiment_records WHERE document_id=$1`, documentID); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}
	for i, rec := range records {
		b, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal record %d: %w", i, err)
		}
		if _, err := tx.Exec(ctx, `
INSERT INTO experiment_records (document_id, position, record)
VALUES ($1, $2, $3)`, documentID, i, b); err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit records tx: %w", err)
	}
	return nil
}

func (r *RecordRepo) ListRecords(ctx context.Context, documentID string) ([]schema.Record, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT record
FROM experiment_records
WHERE document_id=$1
ORDER BY position ASC`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	out := make([]schema.Record, 0)
	for rows.Next() {
		var b []byte
		if err := rows.Scan(&b); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		var rec schema.Record
		if err := json.Unmarshal(b, &rec); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}
