package storage

import (
	"context"
	"fmt"
)

// ModelCallRecord is one row of the model-call audit trail: which stage asked
// which provider to do what, and how it ended.
type ModelCallRecord struct {
	CallID       string
	Operation    string
	DocumentID   string
	Stage        string
	ProviderName string
	Model        string
	Status       string
	ErrorType    string
}

type ModelAuditRepo struct {
	db *DB
}

func NewModelAuditRepo(db *DB) *ModelAuditRepo {
	return &ModelAuditRepo{db: db}
}

func (r *ModelAuditRepo) Insert(ctx context.Context, rec ModelCallRecord) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO model_calls(call_id, operation, document_id, stage, provider_name, model, status, error_type)
VALUES (COALESCE(NULLIF($1,'')::uuid, gen_random_uuid()), $2, NULLIF($3,''), $4, $5, $6, $7, NULLIF($8,''))`,
		rec.CallID, rec.Operation, rec.DocumentID, rec.Stage, rec.ProviderName, rec.Model, rec.Status, rec.ErrorType)
	if err != nil {
		return fmt.Errorf("insert model call: %w", err)
	}
	return nil
}
