package translate

import (
	"context"
	"errors"
	"fmt"
)

// ErrSameLanguage is returned when a language pair has identical source
// and target codes.
var ErrSameLanguage = errors.New("source and target language must differ")

// ErrModelUnavailable means no model is published for the requested
// pair. Callers treat this as a normal negative result and apply
// fallback routing, not as a hard failure.
var ErrModelUnavailable = errors.New("translation model unavailable")

// ErrNoRoute means neither a direct model nor a route through English
// exists for the requested pair.
var ErrNoRoute = errors.New("no translation route found")

// GenerationConfig holds the decoding parameters applied to every
// generation pass. They are uniform regardless of text length.
type GenerationConfig struct {
	NumBeams      int  `json:"num_beams"`
	MaxNewTokens  int  `json:"max_new_tokens"`
	EarlyStopping bool `json:"early_stopping"`
}

// DefaultGeneration is used for all translation and enhancement passes.
var DefaultGeneration = GenerationConfig{
	NumBeams:      4,
	MaxNewTokens:  128,
	EarlyStopping: true,
}

// Model is a loaded tokenizer/generator pair addressed by a
// language-pair identifier.
type Model interface {
	// ID returns the model identifier the handle was loaded under.
	ID() string
	// Generate runs one generation pass over the input text.
	Generate(ctx context.Context, text string, cfg GenerationConfig) (string, error)
}

// Loader constructs model handles by identifier. Load returns
// ErrModelUnavailable (possibly wrapped) when the identifier is not
// published; any other error is an upstream failure.
type Loader interface {
	Load(ctx context.Context, modelID string) (Model, error)
}

// PairID builds the model identifier for a (source, target) pair.
func PairID(source, target string) string {
	return fmt.Sprintf("opus-mt-%s-%s", source, target)
}
