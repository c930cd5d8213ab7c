package providers

import (
	"fmt"
	"strings"

	"spallflow/internal/config"
)

type NamedQuerier struct {
	Ref      ProviderRef
	Provider Querier
}

// Manager holds the configured VLM and LLM provider chains. The first
// provider in each list is the active one; mock is always a valid fallback.
type Manager struct {
	vlmProviders []NamedQuerier
	llmProviders []NamedQuerier
}

func NewManager(cfg config.Config) (*Manager, error) {
	m := &Manager{}
	for _, ref := range ParseProviderList(cfg.VLMProviders) {
		p, err := buildProvider(ref)
		if err != nil {
			return nil, err
		}
		m.vlmProviders = append(m.vlmProviders, NamedQuerier{Ref: ref, Provider: p})
	}
	for _, ref := range ParseProviderList(cfg.LLMProviders) {
		p, err := buildProvider(ref)
		if err != nil {
			return nil, err
		}
		m.llmProviders = append(m.llmProviders, NamedQuerier{Ref: ref, Provider: p})
	}
	if len(m.vlmProviders) == 0 {
		m.vlmProviders = []NamedQuerier{{Ref: ProviderRef{Raw: "mock", Name: "mock"}, Provider: NewMockProvider()}}
	}
	if len(m.llmProviders) == 0 {
		m.llmProviders = []NamedQuerier{{Ref: ProviderRef{Raw: "mock", Name: "mock"}, Provider: NewMockProvider()}}
	}
	return m, nil
}

func (m *Manager) VLM() Querier { return m.vlmProviders[0].Provider }
func (m *Manager) LLM() Querier { return m.llmProviders[0].Provider }

func (m *Manager) VLMRef() ProviderRef { return m.vlmProviders[0].Ref }
func (m *Manager) LLMRef() ProviderRef { return m.llmProviders[0].Ref }

func buildProvider(ref ProviderRef) (Querier, error) {
	switch strings.ToLower(ref.Name) {
	case "mock":
		return NewMockProvider(), nil
	case "gemini":
		return NewGeminiProvider(ref.KeyAlias), nil
	case "openai":
		return NewOpenAIProvider(ref.KeyAlias), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", ref.Name)
	}
}
