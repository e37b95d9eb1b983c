package translate

import (
	"context"
	"log/slog"
	"strings"
)

// GrammarModelID identifies the auxiliary English grammar-correction
// model on the serving endpoint.
const GrammarModelID = "grammar-corrector-en"

// Enhancer applies an optional grammar-correction pass to English
// input before translation. Enhancement is best-effort: any failure is
// absorbed and the trimmed original returned.
type Enhancer struct {
	model Model // nil when the grammar model failed to load at startup
	gen   GenerationConfig
}

// NewEnhancer loads the grammar model eagerly. A load failure is logged
// and leaves the enhancer in pass-through mode rather than failing
// startup.
func NewEnhancer(ctx context.Context, loader Loader) *Enhancer {
	e := &Enhancer{gen: DefaultGeneration}
	m, err := loader.Load(ctx, GrammarModelID)
	if err != nil {
		slog.Warn("grammar model unavailable, enhancement disabled", "model", GrammarModelID, "error", err)
		return e
	}
	e.model = m
	return e
}

// NewEnhancerWithModel wires an already-loaded model; nil disables
// enhancement.
func NewEnhancerWithModel(m Model) *Enhancer {
	return &Enhancer{model: m, gen: DefaultGeneration}
}

// Enabled reports whether the grammar model is loaded.
func (e *Enhancer) Enabled() bool { return e.model != nil }

// Enhance returns grammar-corrected text for English input when the
// model is available, and the trimmed input in every other case —
// including a model failure mid-request.
func (e *Enhancer) Enhance(ctx context.Context, text, source string) string {
	trimmed := strings.TrimSpace(text)
	if source != hubLang || e.model == nil || trimmed == "" {
		return trimmed
	}

	out, err := e.model.Generate(ctx, trimmed, e.gen)
	if err != nil {
		slog.Warn("enhancement failed, passing text through", "error", err)
		return trimmed
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return trimmed
	}
	return out
}
