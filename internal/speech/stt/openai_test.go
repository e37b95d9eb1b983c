package stt

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTranscribeMultipartUpload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Fatalf("unexpected auth header %q", auth)
		}

		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Fatalf("unexpected model field %q", got)
		}
		if got := r.FormValue("language"); got != "es" {
			t.Fatalf("unexpected language field %q", got)
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		if header.Filename != "consult.webm" {
			t.Fatalf("unexpected filename %q", header.Filename)
		}
		data, _ := io.ReadAll(file)
		if string(data) != "fake audio bytes" {
			t.Fatalf("unexpected audio payload %q", data)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"text":     "me duele la cabeza",
			"language": "spanish",
			"duration": 2.4,
		})
	}))
	defer server.Close()

	p := NewOpenAISTT(OpenAIConfig{APIKey: "test-key", BaseURL: server.URL})
	resp, err := p.Transcribe(context.Background(), TranscriptionRequest{
		Audio:    strings.NewReader("fake audio bytes"),
		Filename: "consult.webm",
		Language: "es",
	})
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if resp.Text != "me duele la cabeza" {
		t.Fatalf("unexpected text %q", resp.Text)
	}
	if resp.Duration != 2.4 {
		t.Fatalf("unexpected duration %v", resp.Duration)
	}
}

func TestTranscribeUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad audio"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	p := NewOpenAISTT(OpenAIConfig{APIKey: "k", BaseURL: server.URL})
	_, err := p.Transcribe(context.Background(), TranscriptionRequest{
		Audio: strings.NewReader("x"),
	})
	if err == nil {
		t.Fatal("expected transcription to fail")
	}
	if !strings.Contains(err.Error(), "status 400") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestTranscribeDefaultFilename(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		_, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		if header.Filename != "audio.webm" {
			t.Fatalf("expected default filename, got %q", header.Filename)
		}
		json.NewEncoder(w).Encode(map[string]any{"text": "ok"})
	}))
	defer server.Close()

	p := NewOpenAISTT(OpenAIConfig{BaseURL: server.URL})
	if _, err := p.Transcribe(context.Background(), TranscriptionRequest{Audio: strings.NewReader("x")}); err != nil {
		t.Fatalf("transcribe: %v", err)
	}
}

func TestLocalSTTName(t *testing.T) {
	l := NewLocalSTT(LocalConfig{})
	if l.Name() != "local-whisper" {
		t.Fatalf("unexpected name %q", l.Name())
	}
}
