package providers

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	genai "google.golang.org/genai"
)

// GeminiProvider drives a multimodal Gemini model for both page-image and
// text-only queries. The client is created lazily on first use so the manager
// can be constructed without network access.
type GeminiProvider struct {
	keyName string
	apiKey  string
	model   string

	once    sync.Once
	client  *genai.Client
	initErr error
}

func NewGeminiProvider(keyName string) *GeminiProvider {
	model := strings.TrimSpace(os.Getenv("SPALLFLOW_GEMINI_MODEL"))
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiProvider{
		keyName: keyName,
		apiKey:  resolveGeminiKey(keyName),
		model:   model,
	}
}

func (g *GeminiProvider) Query(ctx context.Context, req QueryRequest) (QueryResponse, ProviderInfo, error) {
	info := ProviderInfo{Name: "gemini", Model: g.model, Key: g.keyName}
	if g.apiKey == "" {
		return QueryResponse{}, info, fmt.Errorf("gemini key missing for alias %q", g.keyName)
	}
	g.once.Do(func() {
		g.client, g.initErr = genai.NewClient(ctx, &genai.ClientConfig{APIKey: g.apiKey})
	})
	if g.initErr != nil {
		return QueryResponse{}, info, fmt.Errorf("create gemini client: %w", g.initErr)
	}

	parts := []*genai.Part{{Text: req.Prompt}}
	if len(req.Image) > 0 {
		mt := req.ImageMIME
		if mt == "" {
			mt = "image/png"
		}
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: mt, Data: req.Image}})
	}
	cfg := &genai.GenerateContentConfig{
		Temperature:     ptr(float32(0.1)),
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	res, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{{Role: genai.RoleUser, Parts: parts}}, cfg)
	if err != nil {
		return QueryResponse{}, info, fmt.Errorf("gemini generate: %w", err)
	}
	return QueryResponse{Text: res.Text()}, info, nil
}

func resolveGeminiKey(alias string) string {
	if alias != "" {
		if v := os.Getenv("SPALLFLOW_GEMINI_KEY_" + strings.ToUpper(alias)); v != "" {
			return v
		}
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		return v
	}
	return os.Getenv("GOOGLE_API_KEY")
}

func ptr[T any](v T) *T { return &v }
