package models

import "time"

type Document struct {
	DocumentID string    `json:"document_id"`
	Name       string    `json:"name"`
	SourceDir  string    `json:"source_dir"`
	PageCount  int       `json:"page_count"`
	Status     string    `json:"status"`
	FailReason string    `json:"fail_reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Document status values, in pipeline order.
const (
	StatusPending   = "pending"
	StatusIndexing  = "indexing"
	StatusIndexed   = "indexed"
	StatusExtracted = "extracted"
	StatusExported  = "exported"
	StatusFailed    = "failed"
)

// RunManifest summarizes one pipeline run over a document. It is written
// next to the exported tables so dropped data can be triaged afterwards.
type RunManifest struct {
	DocumentID   string    `json:"document_id"`
	Name         string    `json:"name"`
	Pages        int       `json:"pages"`
	FailedPages  []int     `json:"failed_pages,omitempty"`
	Elements     int       `json:"elements"`
	Fragments    int       `json:"fragments"`
	Chunks       int       `json:"chunks"`
	Records      int       `json:"records"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	VLMProvider  string    `json:"vlm_provider"`
	LLMProvider  string    `json:"llm_provider"`
	OutputPrefix string    `json:"output_prefix,omitempty"`
}
