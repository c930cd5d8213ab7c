package extract

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"spallflow/internal/fragments"
	"spallflow/internal/providers"
	"spallflow/internal/schema"
)

type stubLLM struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (s *stubLLM) Query(ctx context.Context, req providers.QueryRequest) (providers.QueryResponse, providers.ProviderInfo, error) {
	i := s.calls
	s.calls++
	s.prompts = append(s.prompts, req.Prompt)
	info := providers.ProviderInfo{Name: "stub", Model: "stub"}
	if i < len(s.errs) && s.errs[i] != nil {
		return providers.QueryResponse{}, info, s.errs[i]
	}
	if i < len(s.responses) {
		return providers.QueryResponse{Text: s.responses[i]}, info, nil
	}
	return providers.QueryResponse{Text: "[]"}, info, nil
}

func newEngine(t *testing.T, llm providers.Querier, budget int) *Engine {
	t.Helper()
	v, err := schema.NewValidator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEngine(llm, v, budget, 6144, log)
}

func smallSet() fragments.Set {
	return fragments.Set{
		"sample_info":   {"[Page 1] polycrystalline silver"},
		"spall_results": {"[Page 2] spall strength 0.57 GPa"},
	}
}

func TestExtractValidatesEveryObject(t *testing.T) {
	llm := &stubLLM{responses: []string{`[
		{"Sample": "Silver", "Sample_evidence": "Page 1", "Spall (GPa)": 0.57},
		{"Sample": "Copper", "Sample_evidence": "Page 3"}
	]`}}
	records := newEngine(t, llm, 24000).Extract(context.Background(), smallSet())
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0]["Sample"] != "Silver" || records[1]["Sample"] != "Copper" {
		t.Fatalf("response order must be preserved, got %v", records)
	}
	if llm.calls != 1 {
		t.Fatalf("set under budget must be a single chunk, got %d calls", llm.calls)
	}
}

func TestExtractDropsInvalidRecordKeepsRest(t *testing.T) {
	llm := &stubLLM{responses: []string{`[
		{"Sample": "Silver"},
		{"Spall (GPa)": "not a number"},
		{"Sample": "Copper"}
	]`}}
	records := newEngine(t, llm, 24000).Extract(context.Background(), smallSet())
	if len(records) != 2 {
		t.Fatalf("invalid record must be dropped alone, got %d records", len(records))
	}
}

func TestExtractSalvagesTruncatedArray(t *testing.T) {
	llm := &stubLLM{responses: []string{`[{"Sample":"Ag"}, {"Sample":"Cu"`}}
	records := newEngine(t, llm, 24000).Extract(context.Background(), smallSet())
	if len(records) < 1 {
		t.Fatal("salvage must recover the first complete object")
	}
	if records[0]["Sample"] != "Ag" {
		t.Fatalf("expected salvaged Ag record first, got %v", records[0])
	}
}

func TestExtractFailedChunkDoesNotAbortRun(t *testing.T) {
	set := fragments.Set{
		"sample_info":   {strings.Repeat("silver sample description ", 20)},
		"spall_results": {strings.Repeat("pullback velocity data ", 20)},
	}
	llm := &stubLLM{
		errs:      []error{errors.New("CUDA out of memory")},
		responses: []string{"", `[{"Sample": "Silver", "Sample_evidence": "Page 1"}]`},
	}
	records := newEngine(t, llm, 100).Extract(context.Background(), set)
	if llm.calls != 2 {
		t.Fatalf("expected 2 chunks, got %d calls", llm.calls)
	}
	if len(records) != 1 {
		t.Fatalf("surviving chunk's records must be kept, got %d", len(records))
	}
}

func TestExtractPromptCarriesChunkFragments(t *testing.T) {
	llm := &stubLLM{responses: []string{"[]"}}
	newEngine(t, llm, 24000).Extract(context.Background(), smallSet())
	if len(llm.prompts) != 1 {
		t.Fatalf("expected 1 prompt, got %d", len(llm.prompts))
	}
	if !strings.Contains(llm.prompts[0], "polycrystalline silver") {
		t.Fatal("chunk fragments must be embedded in the prompt")
	}
	if !strings.Contains(llm.prompts[0], "Output the JSON array now:") {
		t.Fatal("prompt must end with the output instruction")
	}
}
