package providers

import "context"

type ProviderInfo struct {
	Name  string `json:"name"`
	Model string `json:"model"`
	Key   string `json:"key"`
}

// QueryRequest is one synchronous model invocation. Image is optional: the
// VLM stage attaches a page raster, the LLM stage sends text only.
type QueryRequest struct {
	Operation string `json:"operation"`
	System    string `json:"system,omitempty"`
	Prompt    string `json:"prompt"`
	Image     []byte `json:"image,omitempty"`
	ImageMIME string `json:"image_mime,omitempty"`
	MaxTokens int    `json:"max_tokens"`
}

type QueryResponse struct {
	Text string `json:"text"`
}

// Querier is the single capability the extraction core consumes. The call
// blocks until the model returns; responses are untrusted free text.
type Querier interface {
	Query(ctx context.Context, req QueryRequest) (QueryResponse, ProviderInfo, error)
}
