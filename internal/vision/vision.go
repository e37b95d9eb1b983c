package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/medbridge/medbridge/internal/llm"
)

// Service handles image understanding queries using vision-capable
// chat models.
type Service struct {
	gateway llm.Gateway
	model   string // must be vision-capable (gpt-4o, claude-sonnet, ...)
}

func NewService(gw llm.Gateway, model string) *Service {
	if model == "" {
		model = "gpt-4o"
	}
	return &Service{gateway: gw, model: model}
}

// Reply holds the model's answer about an image.
type Reply struct {
	Content string `json:"reply"`
	Model   string `json:"model"`
}

// Analyze embeds the image as a data URL and asks the vision model the
// given question about it.
func (s *Service) Analyze(ctx context.Context, image []byte, mimeType, prompt string) (*Reply, error) {
	dataURL := EncodeDataURL(image, mimeType)

	var sb strings.Builder
	fmt.Fprintf(&sb, "[Image: %s]\n\n", dataURL)
	sb.WriteString(prompt)

	resp, err := s.gateway.Chat(ctx, llm.ChatRequest{
		Model: s.model,
		Messages: []llm.Message{
			{
				Role:    "system",
				Content: "You are a careful assistant for patient-provider communication. Answer questions about the supplied image accurately; if the image shows medical content, use precise terminology and note any uncertainty.",
			},
			{
				Role:    "user",
				Content: sb.String(),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("vision analyze: %w", err)
	}

	return &Reply{Content: resp.Content, Model: resp.Model}, nil
}

// EncodeDataURL base64-embeds image bytes for transmission. An empty
// MIME type defaults to image/png.
func EncodeDataURL(data []byte, mimeType string) string {
	if mimeType == "" {
		mimeType = "image/png"
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

// DecodeDataURL inverts EncodeDataURL, returning the image bytes and
// MIME type.
func DecodeDataURL(dataURL string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return nil, "", fmt.Errorf("not a data URL")
	}
	mimeType, payload, ok := strings.Cut(rest, ";base64,")
	if !ok {
		return nil, "", fmt.Errorf("missing base64 payload")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode image data: %w", err)
	}
	return data, mimeType, nil
}

// MimeFromExtension maps a file extension to an image MIME type.
func MimeFromExtension(ext string) string {
	switch strings.ToLower(ext) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}
