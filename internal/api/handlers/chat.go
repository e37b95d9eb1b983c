package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/medbridge/medbridge/internal/llm"
	"github.com/medbridge/medbridge/internal/usage"
	"github.com/medbridge/medbridge/internal/vision"
)

const maxImageUpload = 16 << 20 // 16 MiB

const assistantPrompt = "You are a helpful assistant supporting patient-provider communication. " +
	"Answer clearly and concisely; use plain language and define medical terms when they appear."

// ChatHandler serves free-form chat and vision queries through the LLM
// gateway.
type ChatHandler struct {
	gateway llm.Gateway
	vision  *vision.Service
	usage   *usage.Service
	model   string
}

func NewChatHandler(gw llm.Gateway, vs *vision.Service, us *usage.Service, model string) *ChatHandler {
	return &ChatHandler{gateway: gw, vision: vs, usage: us, model: model}
}

type chatRequest struct {
	Message string `json:"message"`
	Model   string `json:"model,omitempty"`
}

type replyResponse struct {
	Reply string `json:"reply"`
	Model string `json:"model"`
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "Empty message")
		return
	}

	model := req.Model
	if model == "" {
		model = h.model
	}

	resp, err := h.gateway.Chat(r.Context(), llm.ChatRequest{
		Model: model,
		Messages: []llm.Message{
			{Role: "system", Content: assistantPrompt},
			{Role: "user", Content: req.Message},
		},
	})
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			writeError(w, http.StatusServiceUnavailable, "no LLM provider is configured")
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	h.usage.Log(r.Context(), usage.Record{
		Endpoint:     "chat",
		Provider:     resp.Provider,
		Model:        resp.Model,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
		TotalTokens:  resp.TotalTokens,
		CostUSD:      resp.CostUSD,
		LatencyMs:    resp.LatencyMs,
	})

	writeJSON(w, http.StatusOK, replyResponse{Reply: resp.Content, Model: resp.Model})
}

// Vision accepts a multipart image upload plus a prompt field; the
// image is base64-embedded as a data URL for transmission upstream.
func (h *ChatHandler) Vision(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImageUpload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	prompt := strings.TrimSpace(r.FormValue("prompt"))
	if prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt required")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "read image: "+err.Error())
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = vision.MimeFromExtension(filepath.Ext(header.Filename))
	}

	reply, err := h.vision.Analyze(r.Context(), data, mimeType, prompt)
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			writeError(w, http.StatusServiceUnavailable, "no LLM provider is configured")
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	h.usage.Log(r.Context(), usage.Record{
		Endpoint: "vision",
		Model:    reply.Model,
	})

	writeJSON(w, http.StatusOK, replyResponse{Reply: reply.Content, Model: reply.Model})
}
