package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/medbridge/medbridge/internal/config"
)

type stubProvider struct {
	name  string
	calls int
	fail  int // fail this many calls before succeeding
	reply string
}

func (p *stubProvider) Name() string     { return p.name }
func (p *stubProvider) Models() []string { return []string{"stub-model"} }

func (p *stubProvider) ChatCompletion(_ context.Context, req ChatRequest) (*ChatResponse, error) {
	p.calls++
	if p.calls <= p.fail {
		return nil, errors.New("transient upstream failure")
	}
	return &ChatResponse{Provider: p.name, Model: req.Model, Content: p.reply}, nil
}

func TestGatewayNotConfigured(t *testing.T) {
	g := NewGateway(config.LLMConfig{DefaultProvider: "openai"})
	if g.Configured() {
		t.Fatal("expected unconfigured gateway")
	}
	_, err := g.Chat(context.Background(), ChatRequest{Model: "gpt-4o-mini"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestGatewayRetriesThenSucceeds(t *testing.T) {
	p := &stubProvider{name: "openai", fail: 1, reply: "hola"}
	g := &gateway{
		providers:       map[string]Provider{"openai": p},
		defaultProvider: "openai",
		maxRetries:      2,
	}

	resp, err := g.Chat(context.Background(), ChatRequest{Model: "gpt-4o-mini"})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if resp.Content != "hola" {
		t.Fatalf("unexpected content %q", resp.Content)
	}
	if p.calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", p.calls)
	}
}

func TestGatewayFallbackProvider(t *testing.T) {
	primary := &stubProvider{name: "openai", fail: 100}
	backup := &stubProvider{name: "anthropic", reply: "from backup"}
	g := &gateway{
		providers:        map[string]Provider{"openai": primary, "anthropic": backup},
		defaultProvider:  "openai",
		fallbackProvider: "anthropic",
		maxRetries:       0,
	}

	resp, err := g.Chat(context.Background(), ChatRequest{Model: "stub-model"})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if resp.Provider != "anthropic" || resp.Content != "from backup" {
		t.Fatalf("expected fallback response, got %+v", resp)
	}
}

func TestGatewayExplicitProviderSelection(t *testing.T) {
	a := &stubProvider{name: "openai", reply: "a"}
	b := &stubProvider{name: "ollama", reply: "b"}
	g := &gateway{
		providers:       map[string]Provider{"openai": a, "ollama": b},
		defaultProvider: "openai",
	}

	resp, err := g.Chat(context.Background(), ChatRequest{Provider: "ollama", Model: "llama3"})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if resp.Content != "b" {
		t.Fatalf("expected ollama to serve the request, got %q", resp.Content)
	}
}

func TestListModels(t *testing.T) {
	g := &gateway{providers: map[string]Provider{
		"openai": &stubProvider{name: "openai"},
	}}
	models := g.ListModels()
	if len(models) != 1 || models[0].Provider != "openai" || models[0].Model != "stub-model" {
		t.Fatalf("unexpected models %+v", models)
	}
}
