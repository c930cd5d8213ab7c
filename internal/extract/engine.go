package extract

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"spallflow/internal/fragments"
	"spallflow/internal/modeljson"
	"spallflow/internal/providers"
	"spallflow/internal/schema"
)

const previewLimit = 256

// Engine drives chunked record extraction against the LLM. Chunks run
// strictly one after another; a failed chunk reduces output cardinality and
// never aborts the run.
type Engine struct {
	llm       providers.Querier
	validator *schema.Validator
	budget    int
	maxTokens int
	log       *slog.Logger
}

func NewEngine(llm providers.Querier, validator *schema.Validator, budget, maxTokens int, log *slog.Logger) *Engine {
	return &Engine{llm: llm, validator: validator, budget: budget, maxTokens: maxTokens, log: log}
}

// Extract chunks the fragment set, queries the LLM once per chunk and
// validates every returned object into a record. Records keep chunk
// submission order, then response order within a chunk.
func (e *Engine) Extract(ctx context.Context, set fragments.Set) []schema.Record {
	chunks := fragments.Chunk(set, e.budget)
	e.log.Info("extracting records", "chunks", len(chunks))

	var records []schema.Record
	for i, chunk := range chunks {
		got := e.extractChunk(ctx, i, chunk)
		records = append(records, got...)
	}
	e.log.Info("extraction complete", "records", len(records))
	return records
}

func (e *Engine) extractChunk(ctx context.Context, idx int, chunk fragments.Set) []schema.Record {
	resp, _, err := e.llm.Query(ctx, providers.QueryRequest{
		Operation: "extract_records",
		System:    systemPrompt(),
		Prompt:    userMessage(chunk),
		MaxTokens: e.maxTokens,
	})
	if err != nil {
		if providers.IsResourceExhaustion(err) {
			e.log.Error("model resources exhausted, skipping chunk", "chunk", idx, "err", err)
		} else {
			e.log.Error("model query failed, skipping chunk", "chunk", idx, "err", err)
		}
		return nil
	}

	list, perr := modeljson.ParseList(resp.Text)
	if perr != nil {
		return e.salvageChunk(idx, perr)
	}

	var records []schema.Record
	for i, v := range list {
		raw, ok := v.(map[string]any)
		if !ok {
			e.log.Warn("array element is not an object", "chunk", idx, "index", i)
			continue
		}
		rec, err := e.validator.BuildRecord(raw)
		if err != nil {
			e.log.Warn("record failed validation",
				"chunk", idx, "index", i, "err", err, "payload", preview(raw))
			continue
		}
		records = append(records, rec)
	}
	return records
}

// salvageChunk runs after a full parse failure: every object the salvage
// scan recovered is validated independently; the rest of the chunk is lost.
func (e *Engine) salvageChunk(idx int, perr error) []schema.Record {
	var pe *modeljson.ParseError
	if !errors.As(perr, &pe) {
		e.log.Error("chunk response unparseable", "chunk", idx, "err", perr)
		return nil
	}
	e.log.Error("chunk response unparseable, salvaging",
		"chunk", idx, "offset", pe.Offset, "context", pe.Context, "dropped", pe.Dropped)

	var records []schema.Record
	for i, raw := range pe.Salvaged {
		rec, err := e.validator.BuildRecord(raw)
		if err != nil {
			e.log.Warn("salvaged object failed validation",
				"chunk", idx, "index", i, "err", err, "payload", preview(raw))
			continue
		}
		records = append(records, rec)
	}
	e.log.Info("salvage recovered records", "chunk", idx, "records", len(records))
	return records
}

func preview(raw map[string]any) string {
	b, err := json.Marshal(raw)
	if err != nil {
		return "<unmarshalable>"
	}
	if len(b) > previewLimit {
		return string(b[:previewLimit]) + "..."
	}
	return string(b)
}
