package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/medbridge/medbridge/internal/speech/stt"
	"github.com/medbridge/medbridge/internal/speech/tts"
	"github.com/medbridge/medbridge/internal/usage"
)

const maxAudioUpload = 32 << 20 // 32 MiB

// SpeechHandler serves transcription and synthesis. A nil provider
// means that backend has no credentials; requests against it get 503.
type SpeechHandler struct {
	stt   stt.Provider
	tts   tts.Provider
	usage *usage.Service
}

func NewSpeechHandler(sttProvider stt.Provider, ttsProvider tts.Provider, us *usage.Service) *SpeechHandler {
	return &SpeechHandler{stt: sttProvider, tts: ttsProvider, usage: us}
}

// Transcribe accepts a multipart audio upload and returns its transcript.
func (h *SpeechHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	if h.stt == nil {
		writeError(w, http.StatusServiceUnavailable, "STT backend is not configured. Set OPENAI_API_KEY or STT_BACKEND=local.")
		return
	}

	if err := r.ParseMultipartForm(maxAudioUpload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "audio file required")
		return
	}
	defer file.Close()

	start := time.Now()
	result, err := h.stt.Transcribe(r.Context(), stt.TranscriptionRequest{
		Audio:    file,
		Filename: header.Filename,
		Language: r.FormValue("language"),
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, fmt.Sprintf("STT error: %v", err))
		return
	}
	if strings.TrimSpace(result.Text) == "" {
		writeError(w, http.StatusBadGateway, "STT returned no text")
		return
	}

	h.usage.Log(r.Context(), usage.Record{
		Endpoint:  "stt",
		Provider:  h.stt.Name(),
		Model:     h.stt.Model(),
		LatencyMs: time.Since(start).Milliseconds(),
	})

	writeJSON(w, http.StatusOK, map[string]string{
		"text":  result.Text,
		"model": h.stt.Model(),
	})
}

type ttsRequest struct {
	Text   string  `json:"text"`
	Voice  string  `json:"voice,omitempty"`
	Format string  `json:"format,omitempty"`
	Speed  float64 `json:"speed,omitempty"`
}

// Speak converts text to audio and streams the bytes back without
// buffering the whole clip.
func (h *SpeechHandler) Speak(w http.ResponseWriter, r *http.Request) {
	if h.tts == nil {
		writeError(w, http.StatusServiceUnavailable, "TTS backend is not configured. Set OPENAI_API_KEY or TTS_BACKEND=local.")
		return
	}

	var req ttsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeError(w, http.StatusBadRequest, "Empty text")
		return
	}

	format := strings.ToLower(req.Format)
	if format == "" {
		format = "mp3"
	}
	if !tts.ValidFormat(format) {
		writeError(w, http.StatusBadRequest, "Invalid format. Use mp3, wav, or ogg")
		return
	}

	start := time.Now()
	result, err := h.tts.Synthesize(r.Context(), tts.SynthesisRequest{
		Input:  text,
		Voice:  req.Voice,
		Format: format,
		Speed:  req.Speed,
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, fmt.Sprintf("TTS error: %v", err))
		return
	}
	defer result.Body.Close()

	h.usage.Log(r.Context(), usage.Record{
		Endpoint:  "tts",
		Provider:  h.tts.Name(),
		Model:     h.tts.Model(),
		LatencyMs: time.Since(start).Milliseconds(),
	})

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", "speech."+format))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, result.Body); err != nil {
		// Headers are gone; all we can do is log the broken stream.
		slog.Warn("tts stream interrupted", "error", err)
	}
}
