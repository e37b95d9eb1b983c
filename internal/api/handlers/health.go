package handlers

import (
	"net/http"

	"github.com/medbridge/medbridge/internal/config"
	"github.com/medbridge/medbridge/internal/language"
)

type HealthHandler struct {
	cfg *config.Config
}

func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{cfg: cfg}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"models": map[string]string{
			"llm": h.cfg.LLM.DefaultModel,
			"stt": h.cfg.STT.Model,
			"tts": h.cfg.TTS.Model,
			"mt":  h.cfg.MT.BaseURL,
		},
		"has_api_key": h.cfg.HasAPIKey(),
	})
}

type LanguagesHandler struct{}

func NewLanguagesHandler() *LanguagesHandler {
	return &LanguagesHandler{}
}

func (h *LanguagesHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"languages": language.All(),
	})
}
