package stt

import (
	"context"
	"io"
)

// TranscriptionRequest holds the audio payload for transcription. The
// filename extension lets the backend infer the container format
// (webm/mp3/wav/ogg).
type TranscriptionRequest struct {
	Audio    io.Reader
	Filename string
	Language string
	Prompt   string
}

// TranscriptionResponse holds the transcription result.
type TranscriptionResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
}

// Provider is the interface for speech-to-text backends.
type Provider interface {
	Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error)
	Name() string
	Model() string
}
