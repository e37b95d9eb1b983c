package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/medbridge/medbridge/internal/cache"
	"github.com/medbridge/medbridge/internal/language"
	"github.com/medbridge/medbridge/internal/llm"
	"github.com/medbridge/medbridge/internal/translate"
	"github.com/medbridge/medbridge/internal/usage"
)

// medicalTranslatorPrompt steers the LLM translation path toward
// terminology fidelity in patient-provider conversations.
const medicalTranslatorPrompt = "You are a professional medical translator. " +
	"Translate the user's text into the target language with high fidelity, " +
	"preserving medical terminology accurately. " +
	"Keep the output concise and natural for patient-provider communication. " +
	"Do not add explanations; return only the translation."

// TranslateHandler serves both translation paths: the local Marian
// pipeline with hub fallback (/process_text) and the remote LLM path
// (/translate).
type TranslateHandler struct {
	gateway      llm.Gateway
	orchestrator *translate.Orchestrator
	enhancer     *translate.Enhancer
	cache        *cache.TranslationCache
	usage        *usage.Service
	model        string
}

func NewTranslateHandler(gw llm.Gateway, orch *translate.Orchestrator, enh *translate.Enhancer, tc *cache.TranslationCache, us *usage.Service, model string) *TranslateHandler {
	return &TranslateHandler{
		gateway:      gw,
		orchestrator: orch,
		enhancer:     enh,
		cache:        tc,
		usage:        us,
		model:        model,
	}
}

type processTextRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

type processTextResponse struct {
	EnhancedText   string `json:"enhanced_text"`
	TranslatedText string `json:"translated_text"`
	TTSLang        string `json:"tts_lang"`
	TargetLang     string `json:"target_lang"`
}

// ProcessText enhances English input, then translates it over the
// Marian pipeline (direct pair first, hub fallback otherwise).
func (h *TranslateHandler) ProcessText(w http.ResponseWriter, r *http.Request) {
	var req processTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "Empty text")
		return
	}
	if req.SourceLang == "" || req.TargetLang == "" {
		writeError(w, http.StatusBadRequest, "source_lang and target_lang required")
		return
	}

	ctx := r.Context()
	enhanced := h.enhancer.Enhance(ctx, req.Text, req.SourceLang)

	translated, ok := h.cache.Get(ctx, enhanced, req.SourceLang, req.TargetLang)
	if !ok {
		res, err := h.orchestrator.Translate(ctx, enhanced, req.SourceLang, req.TargetLang)
		switch {
		case err == nil:
			translated = res.Text
			h.cache.Set(ctx, enhanced, req.SourceLang, req.TargetLang, translated)
			h.usage.Log(ctx, usage.Record{
				Endpoint: "process_text",
				Provider: "marian",
				Model:    strings.Join(res.Models, ","),
			})
		case errors.Is(err, translate.ErrSameLanguage):
			writeError(w, http.StatusBadRequest, "source and target language must differ")
			return
		case errors.Is(err, translate.ErrNoRoute):
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("no translation route from %s to %s", req.SourceLang, req.TargetLang))
			return
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	writeJSON(w, http.StatusOK, processTextResponse{
		EnhancedText:   enhanced,
		TranslatedText: translated,
		TTSLang:        language.BCP47(req.TargetLang),
		TargetLang:     req.TargetLang,
	})
}

type translateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang,omitempty"`
	TargetLang string `json:"target_lang"`
}

type translateResponse struct {
	TranslatedText string `json:"translated_text"`
	Model          string `json:"model"`
}

// Translate runs the remote LLM translation path.
func (h *TranslateHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "Empty text")
		return
	}
	if req.TargetLang == "" {
		writeError(w, http.StatusBadRequest, "target_lang required")
		return
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Target language: %s\n", language.Name(req.TargetLang))
	if req.SourceLang != "" {
		fmt.Fprintf(&prompt, "Source language: %s\n", language.Name(req.SourceLang))
	}
	fmt.Fprintf(&prompt, "Text:\n%s", req.Text)

	resp, err := h.gateway.Chat(r.Context(), llm.ChatRequest{
		Model: h.model,
		Messages: []llm.Message{
			{Role: "system", Content: medicalTranslatorPrompt},
			{Role: "user", Content: prompt.String()},
		},
		Temperature: 0.2,
	})
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			writeError(w, http.StatusServiceUnavailable, "OPENAI_API_KEY is not set. Add it to the environment.")
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	translated := strings.TrimSpace(resp.Content)
	if translated == "" {
		writeError(w, http.StatusBadGateway, "empty translation from model")
		return
	}

	h.usage.Log(r.Context(), usage.Record{
		Endpoint:     "translate",
		Provider:     resp.Provider,
		Model:        resp.Model,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
		TotalTokens:  resp.TotalTokens,
		CostUSD:      resp.CostUSD,
		LatencyMs:    resp.LatencyMs,
	})

	writeJSON(w, http.StatusOK, translateResponse{
		TranslatedText: translated,
		Model:          resp.Model,
	})
}
