package tts

import (
	"context"
	"io"
)

// SynthesisRequest holds the parameters for text-to-speech generation.
type SynthesisRequest struct {
	Input  string  `json:"input"`
	Voice  string  `json:"voice,omitempty"`
	Format string  `json:"format,omitempty"` // mp3|wav|ogg, default mp3
	Speed  float64 `json:"speed,omitempty"`
}

// SynthesisResult holds a stream of generated audio and its content
// type. The caller owns Body and must close it.
type SynthesisResult struct {
	Body        io.ReadCloser
	ContentType string
}

// Provider is the interface for text-to-speech backends.
type Provider interface {
	Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error)
	Name() string
	Model() string
}

// contentTypes maps supported output formats to their MIME types.
var contentTypes = map[string]string{
	"mp3": "audio/mpeg",
	"wav": "audio/wav",
	"ogg": "audio/ogg",
}

// ValidFormat reports whether the output format is supported.
func ValidFormat(format string) bool {
	_, ok := contentTypes[format]
	return ok
}

// ContentTypeFor returns the MIME type for a supported format.
func ContentTypeFor(format string) string {
	return contentTypes[format]
}
