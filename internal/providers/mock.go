package providers

import (
	"context"
	"strings"
)

// MockProvider returns deterministic canned responses so the pipeline can run
// end to end without model weights or API keys. Responses are keyed on
// markers in the prompt text.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Query(ctx context.Context, req QueryRequest) (QueryResponse, ProviderInfo, error) {
	_ = ctx
	info := ProviderInfo{Name: "mock", Model: "mock-v1", Key: "mock"}
	p := strings.ToLower(req.Prompt)
	switch {
	case strings.Contains(p, "list every element"):
		return QueryResponse{Text: `[
  {"type": "data_table", "description": "Table of shot conditions", "contains_data": true},
  {"type": "text_paragraph", "description": "Results discussion", "contains_data": false}
]`}, info, nil
	case strings.Contains(p, `"headers"`):
		return QueryResponse{Text: `{
  "description": "Shot conditions",
  "headers": ["TEST", "Impact velocity, m/s", "Initial temperature K"],
  "rows": [
    {"TEST": "AGA1", "Impact velocity, m/s": "125", "Initial temperature K": "296"},
    {"TEST": "AGA2", "Impact velocity, m/s": "303", "Initial temperature K": null}
  ]
}`}, info, nil
	case strings.Contains(p, `"data_series"`):
		return QueryResponse{Text: `{
  "caption": "Free surface velocity histories",
  "type": "line_graph",
  "x_axis": {"label": "Time", "unit": "ns", "range": [0, 400]},
  "y_axis": {"label": "Velocity", "unit": "m/s", "range": [0, 350]},
  "data_series": [{"name": "296 K", "data_points": [[0, 0], [50, 120], [100, 260], [150, 310], [200, 295]]}],
  "legend": ["296 K"],
  "annotations": ["pullback minimum"]
}`}, info, nil
	case strings.Contains(p, "json array now"):
		return QueryResponse{Text: `[
  {
    "Sample": "Silver",
    "Sample_evidence": "Page 1, Table 1: Silver (Ag)",
    "impact velocity (m/s)": 125,
    "impact velocity (m/s)_evidence": "Page 1, Table 1, row AGA1: 125 m/s",
    "Spall (GPa)": 0.57,
    "Spall (GPa)_evidence": "Page 2, text section: spall strength 0.57 GPa"
  }
]`}, info, nil
	default:
		return QueryResponse{Text: "The section describes planar plate impact experiments on shock-loaded silver samples at an initial temperature of 296 K."}, info, nil
	}
}
