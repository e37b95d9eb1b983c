package vision

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/medbridge/medbridge/internal/llm"
)

type fakeGateway struct {
	lastReq llm.ChatRequest
	reply   string
}

func (g *fakeGateway) Chat(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	g.lastReq = req
	return &llm.ChatResponse{Content: g.reply, Model: req.Model, Provider: "fake"}, nil
}

func (g *fakeGateway) Provider(string) (llm.Provider, error) { return nil, llm.ErrNotConfigured }
func (g *fakeGateway) Configured() bool                      { return true }
func (g *fakeGateway) ListModels() []llm.ModelInfo           { return nil }

func TestDataURLRoundTrip(t *testing.T) {
	original := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x01, 0x02}

	url := EncodeDataURL(original, "image/png")
	decoded, mimeType, err := DecodeDataURL(url)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if mimeType != "image/png" {
		t.Fatalf("unexpected mime type %q", mimeType)
	}
	if !bytes.Equal(decoded, original) {
		t.Fatalf("round trip mismatch: %v != %v", decoded, original)
	}
}

func TestEncodeDataURLDefaultsMimeType(t *testing.T) {
	url := EncodeDataURL([]byte{1, 2, 3}, "")
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Fatalf("unexpected prefix in %q", url)
	}
}

func TestDecodeDataURLRejectsGarbage(t *testing.T) {
	if _, _, err := DecodeDataURL("http://example.com/cat.png"); err == nil {
		t.Fatal("expected error for non-data URL")
	}
	if _, _, err := DecodeDataURL("data:image/png,plain"); err == nil {
		t.Fatal("expected error for missing base64 payload")
	}
}

func TestAnalyzeEmbedsImageAsDataURL(t *testing.T) {
	gw := &fakeGateway{reply: "a rash on the forearm"}
	svc := NewService(gw, "")

	img := []byte{0xff, 0xd8, 0xff, 0xe0}
	reply, err := svc.Analyze(context.Background(), img, "image/jpeg", "what does this show?")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if reply.Content != "a rash on the forearm" {
		t.Fatalf("unexpected reply %q", reply.Content)
	}

	if len(gw.lastReq.Messages) != 2 {
		t.Fatalf("expected system+user message, got %d", len(gw.lastReq.Messages))
	}
	userMsg := gw.lastReq.Messages[1].Content
	if !strings.Contains(userMsg, "what does this show?") {
		t.Fatalf("prompt missing from message %q", userMsg)
	}

	// The embedded data URL must round-trip to the original bytes.
	start := strings.Index(userMsg, "data:")
	end := strings.Index(userMsg, "]")
	if start < 0 || end < start {
		t.Fatalf("no data URL in message %q", userMsg)
	}
	decoded, mimeType, err := DecodeDataURL(userMsg[start:end])
	if err != nil {
		t.Fatalf("decode embedded image: %v", err)
	}
	if mimeType != "image/jpeg" || !bytes.Equal(decoded, img) {
		t.Fatalf("embedded image mismatch: %q %v", mimeType, decoded)
	}
}

func TestMimeFromExtension(t *testing.T) {
	if got := MimeFromExtension(".JPG"); got != "image/jpeg" {
		t.Fatalf("unexpected mime %q", got)
	}
	if got := MimeFromExtension(".bin"); got != "image/png" {
		t.Fatalf("expected png default, got %q", got)
	}
}
