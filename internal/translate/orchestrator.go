package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// hubLang is the pivot language for two-hop routing. Every published
// model pairs with it, so a missing direct model falls back to
// source→hub→target.
const hubLang = "en"

// Result carries a finished translation and the models that produced it.
type Result struct {
	Text   string   `json:"text"`
	Models []string `json:"models"`
	Hops   int      `json:"hops"`
}

// Orchestrator composes resolver lookups into the fixed two-hop star
// topology through English.
type Orchestrator struct {
	resolver *Resolver
	gen      GenerationConfig
}

func NewOrchestrator(resolver *Resolver) *Orchestrator {
	return &Orchestrator{resolver: resolver, gen: DefaultGeneration}
}

// Translate converts text from source to target. It tries the direct
// pair first and otherwise routes through English; a missing required
// leg fails with ErrNoRoute.
func (o *Orchestrator) Translate(ctx context.Context, text, source, target string) (*Result, error) {
	if source == target {
		return nil, ErrSameLanguage
	}

	text = strings.TrimSpace(text)

	// Direct pair.
	if m, err := o.resolver.Resolve(ctx, source, target); err == nil {
		out, err := m.Generate(ctx, text, o.gen)
		if err != nil {
			return nil, fmt.Errorf("generate %s: %w", m.ID(), err)
		}
		return &Result{Text: out, Models: []string{m.ID()}, Hops: 1}, nil
	} else if !errors.Is(err, ErrModelUnavailable) {
		return nil, err
	}

	// Hub leg one: source→en. English input is its own intermediate.
	intermediate := text
	var models []string
	if source != hubLang {
		m, err := o.resolver.Resolve(ctx, source, hubLang)
		if err != nil {
			if errors.Is(err, ErrModelUnavailable) {
				return nil, fmt.Errorf("%w: %s→%s", ErrNoRoute, source, target)
			}
			return nil, err
		}
		intermediate, err = m.Generate(ctx, text, o.gen)
		if err != nil {
			return nil, fmt.Errorf("generate %s: %w", m.ID(), err)
		}
		models = append(models, m.ID())
	}

	// Hub leg two: en→target, skipped when English is the destination.
	if target == hubLang {
		return &Result{Text: intermediate, Models: models, Hops: len(models)}, nil
	}

	m, err := o.resolver.Resolve(ctx, hubLang, target)
	if err != nil {
		if errors.Is(err, ErrModelUnavailable) {
			return nil, fmt.Errorf("%w: %s→%s", ErrNoRoute, source, target)
		}
		return nil, err
	}
	out, err := m.Generate(ctx, intermediate, o.gen)
	if err != nil {
		return nil, fmt.Errorf("generate %s: %w", m.ID(), err)
	}
	models = append(models, m.ID())

	return &Result{Text: out, Models: models, Hops: len(models)}, nil
}
