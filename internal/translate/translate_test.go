package translate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeModel returns a canned transformation of its input and counts
// generation calls.
type fakeModel struct {
	id    string
	out   func(text string) string
	err   error
	mu    sync.Mutex
	calls int
}

func (m *fakeModel) ID() string { return m.id }

func (m *fakeModel) Generate(_ context.Context, text string, _ GenerationConfig) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	return m.out(text), nil
}

func (m *fakeModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// fakeLoader serves models from a fixed registry and counts load
// attempts per identifier.
type fakeLoader struct {
	mu     sync.Mutex
	models map[string]*fakeModel
	loads  map[string]int
	delay  time.Duration
}

func newFakeLoader(models ...*fakeModel) *fakeLoader {
	l := &fakeLoader{models: make(map[string]*fakeModel), loads: make(map[string]int)}
	for _, m := range models {
		l.models[m.id] = m
	}
	return l
}

func (l *fakeLoader) Load(_ context.Context, modelID string) (Model, error) {
	l.mu.Lock()
	l.loads[modelID]++
	l.mu.Unlock()
	if l.delay > 0 {
		time.Sleep(l.delay)
	}
	m, ok := l.models[modelID]
	if !ok {
		return nil, fmt.Errorf("%w: %s not published", ErrModelUnavailable, modelID)
	}
	return m, nil
}

func (l *fakeLoader) loadCount(modelID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loads[modelID]
}

func echoModel(id, prefix string) *fakeModel {
	return &fakeModel{id: id, out: func(text string) string { return prefix + text }}
}

func TestResolveSameLanguage(t *testing.T) {
	r := NewResolver(newFakeLoader())
	if _, err := r.Resolve(context.Background(), "es", "es"); !errors.Is(err, ErrSameLanguage) {
		t.Fatalf("expected ErrSameLanguage, got %v", err)
	}
}

func TestResolveCachesHandles(t *testing.T) {
	loader := newFakeLoader(echoModel("opus-mt-en-es", "es:"))
	r := NewResolver(loader)

	for i := 0; i < 3; i++ {
		if _, err := r.Resolve(context.Background(), "en", "es"); err != nil {
			t.Fatalf("resolve %d: %v", i, err)
		}
	}
	if got := loader.loadCount("opus-mt-en-es"); got != 1 {
		t.Fatalf("expected 1 load, got %d", got)
	}
	if !r.Cached("en", "es") {
		t.Fatal("expected pair to be cached")
	}
}

func TestResolveUnavailableNotCached(t *testing.T) {
	loader := newFakeLoader()
	r := NewResolver(loader)

	for i := 0; i < 2; i++ {
		if _, err := r.Resolve(context.Background(), "en", "sw"); !errors.Is(err, ErrModelUnavailable) {
			t.Fatalf("expected ErrModelUnavailable, got %v", err)
		}
	}
	// Negative results are retried, so the loader is consulted each time.
	if got := loader.loadCount("opus-mt-en-sw"); got != 2 {
		t.Fatalf("expected 2 load attempts, got %d", got)
	}
	if r.Size() != 0 {
		t.Fatalf("expected empty cache, got %d entries", r.Size())
	}
}

func TestResolveConcurrentCallersShareOneLoad(t *testing.T) {
	loader := newFakeLoader(echoModel("opus-mt-en-fr", "fr:"))
	loader.delay = 20 * time.Millisecond
	r := NewResolver(loader)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Resolve(context.Background(), "en", "fr"); err != nil {
				t.Errorf("resolve: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := loader.loadCount("opus-mt-en-fr"); got != 1 {
		t.Fatalf("expected a single shared load, got %d", got)
	}
}

func TestTranslateDirectPair(t *testing.T) {
	direct := echoModel("opus-mt-fr-es", "es:")
	o := NewOrchestrator(NewResolver(newFakeLoader(direct)))

	res, err := o.Translate(context.Background(), "bonjour", "fr", "es")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if res.Text != "es:bonjour" {
		t.Fatalf("unexpected output %q", res.Text)
	}
	if direct.callCount() != 1 {
		t.Fatalf("expected exactly 1 generation call, got %d", direct.callCount())
	}
	if res.Hops != 1 {
		t.Fatalf("expected 1 hop, got %d", res.Hops)
	}
}

func TestTranslateHubFallback(t *testing.T) {
	toEn := echoModel("opus-mt-fr-en", "en:")
	fromEn := echoModel("opus-mt-en-es", "es:")
	loader := newFakeLoader(toEn, fromEn)
	o := NewOrchestrator(NewResolver(loader))

	res, err := o.Translate(context.Background(), "bonjour", "fr", "es")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if res.Text != "es:en:bonjour" {
		t.Fatalf("unexpected output %q", res.Text)
	}
	if toEn.callCount() != 1 || fromEn.callCount() != 1 {
		t.Fatalf("expected exactly one call per leg, got %d and %d", toEn.callCount(), fromEn.callCount())
	}
	if got := loader.loadCount("opus-mt-fr-es"); got != 1 {
		t.Fatalf("expected the direct pair to be tried exactly once, got %d", got)
	}
	if res.Hops != 2 {
		t.Fatalf("expected 2 hops, got %d", res.Hops)
	}
}

func TestTranslateEnglishSourceSkipsFirstLeg(t *testing.T) {
	fromEn := echoModel("opus-mt-en-de", "de:")
	loader := newFakeLoader(fromEn)
	o := NewOrchestrator(NewResolver(loader))

	res, err := o.Translate(context.Background(), "hello", "en", "de")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if res.Text != "de:hello" {
		t.Fatalf("unexpected output %q", res.Text)
	}
	// Only the direct pair and the en→de leg may be consulted; an
	// en→en intermediate must never be requested.
	if got := loader.loadCount("opus-mt-en-en"); got != 0 {
		t.Fatalf("unexpected en→en load attempts: %d", got)
	}
	if res.Hops != 1 {
		t.Fatalf("expected 1 hop, got %d", res.Hops)
	}
}

func TestTranslateEnglishTargetReturnsIntermediate(t *testing.T) {
	toEn := echoModel("opus-mt-pt-en", "en:")
	o := NewOrchestrator(NewResolver(newFakeLoader(toEn)))

	res, err := o.Translate(context.Background(), "ola", "pt", "en")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if res.Text != "en:ola" {
		t.Fatalf("unexpected output %q", res.Text)
	}
	if toEn.callCount() != 1 {
		t.Fatalf("expected 1 generation call, got %d", toEn.callCount())
	}
}

func TestTranslateNoRoute(t *testing.T) {
	// Only the return leg exists; the source→en leg is missing.
	o := NewOrchestrator(NewResolver(newFakeLoader(echoModel("opus-mt-en-es", "es:"))))

	if _, err := o.Translate(context.Background(), "konnichiwa", "ja", "es"); !errors.Is(err, ErrNoRoute) {
		t.Fatalf("expected ErrNoRoute, got %v", err)
	}
}

func TestTranslateSameLanguage(t *testing.T) {
	o := NewOrchestrator(NewResolver(newFakeLoader()))
	if _, err := o.Translate(context.Background(), "hola", "es", "es"); !errors.Is(err, ErrSameLanguage) {
		t.Fatalf("expected ErrSameLanguage, got %v", err)
	}
}

func TestEnhanceCorrectsEnglish(t *testing.T) {
	grammar := &fakeModel{id: GrammarModelID, out: func(string) string { return "The patient has a fever." }}
	e := NewEnhancerWithModel(grammar)

	got := e.Enhance(context.Background(), "  the patient have fever  ", "en")
	if got != "The patient has a fever." {
		t.Fatalf("unexpected enhancement %q", got)
	}
}

func TestEnhancePassThroughForNonEnglish(t *testing.T) {
	grammar := &fakeModel{id: GrammarModelID, out: func(string) string { return "corrected" }}
	e := NewEnhancerWithModel(grammar)

	got := e.Enhance(context.Background(), "  el paciente tiene fiebre ", "es")
	if got != "el paciente tiene fiebre" {
		t.Fatalf("expected trimmed pass-through, got %q", got)
	}
	if grammar.callCount() != 0 {
		t.Fatalf("grammar model must not run for non-English input")
	}
}

func TestEnhanceAbsorbsModelFailure(t *testing.T) {
	grammar := &fakeModel{id: GrammarModelID, err: errors.New("boom")}
	e := NewEnhancerWithModel(grammar)

	got := e.Enhance(context.Background(), " the patient have fever ", "en")
	if got != "the patient have fever" {
		t.Fatalf("expected trimmed original on failure, got %q", got)
	}
}

func TestEnhanceDisabledWithoutModel(t *testing.T) {
	e := NewEnhancerWithModel(nil)
	if e.Enabled() {
		t.Fatal("expected enhancer to be disabled")
	}
	if got := e.Enhance(context.Background(), " hello ", "en"); got != "hello" {
		t.Fatalf("expected trimmed pass-through, got %q", got)
	}
}

func TestNewEnhancerSurvivesLoadFailure(t *testing.T) {
	e := NewEnhancer(context.Background(), newFakeLoader())
	if e.Enabled() {
		t.Fatal("expected enhancer disabled when grammar model is unpublished")
	}
}

func TestPairID(t *testing.T) {
	if got := PairID("en", "es"); got != "opus-mt-en-es" {
		t.Fatalf("unexpected identifier %q", got)
	}
}
