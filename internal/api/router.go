package api

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/medbridge/medbridge/internal/api/handlers"
	"github.com/medbridge/medbridge/internal/api/middleware"
	"github.com/medbridge/medbridge/internal/cache"
	"github.com/medbridge/medbridge/internal/config"
	"github.com/medbridge/medbridge/internal/llm"
	"github.com/medbridge/medbridge/internal/speech/stt"
	"github.com/medbridge/medbridge/internal/speech/tts"
	"github.com/medbridge/medbridge/internal/translate"
	"github.com/medbridge/medbridge/internal/usage"
	"github.com/medbridge/medbridge/internal/vision"
)

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	redis *redis.Client
	cfg   *config.Config
	llmGW llm.Gateway
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		db:    db,
		redis: rdb,
		cfg:   cfg,
		llmGW: llm.NewGateway(cfg.LLM),
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(rt.cfg.CORS.AllowedOrigins))

	rl := middleware.NewRateLimiter(50, 100)
	r.Use(rl.Limit)

	// Translation pipeline: Marian serving client behind the resolver,
	// two-hop orchestrator, eager grammar model load.
	marian := translate.NewMarianClient(translate.MarianConfig{BaseURL: rt.cfg.MT.BaseURL})
	resolver := translate.NewResolver(marian)
	orchestrator := translate.NewOrchestrator(resolver)
	enhancer := translate.NewEnhancer(context.Background(), marian)

	usageSvc := usage.NewService(rt.db)

	var translationCache *cache.TranslationCache
	if rt.redis != nil {
		translationCache = cache.NewTranslationCache(rt.redis, time.Hour)
	}

	translateH := handlers.NewTranslateHandler(
		rt.llmGW, orchestrator, enhancer, translationCache, usageSvc, rt.cfg.LLM.DefaultModel)

	speechH := handlers.NewSpeechHandler(rt.sttProvider(), rt.ttsProvider(), usageSvc)

	visionSvc := vision.NewService(rt.llmGW, rt.cfg.Vision.Model)
	chatH := handlers.NewChatHandler(rt.llmGW, visionSvc, usageSvc, rt.cfg.LLM.DefaultModel)

	healthH := handlers.NewHealthHandler(rt.cfg)
	languagesH := handlers.NewLanguagesHandler()
	adminH := handlers.NewAdminHandler(usageSvc)

	r.Get("/", rt.root)
	r.Get("/health", healthH.Health)
	r.Get("/languages", languagesH.List)
	r.Post("/process_text", translateH.ProcessText)
	r.Post("/translate", translateH.Translate)
	r.Post("/stt", speechH.Transcribe)
	r.Post("/tts", speechH.Speak)
	r.Post("/chat", chatH.Chat)
	r.Post("/vision", chatH.Vision)
	r.Get("/usage", adminH.Usage)

	if dir := rt.cfg.Server.StaticDir; dirExists(dir) {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(dir)))
		r.Get("/static/*", fs.ServeHTTP)
	}

	return r
}

// root serves the bundled web UI when present, or a small JSON hint.
func (rt *Router) root(w http.ResponseWriter, r *http.Request) {
	index := filepath.Join(rt.cfg.Server.StaticDir, "index.html")
	if _, err := os.Stat(index); err == nil {
		http.ServeFile(w, r, index)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"message":"healthcare translation backend is running","health":"/health"}` + "\n"))
}

// sttProvider returns nil when the configured backend has no
// credentials, which the handler reports as 503.
func (rt *Router) sttProvider() stt.Provider {
	switch rt.cfg.STT.Backend {
	case "local":
		return stt.NewLocalSTT(stt.LocalConfig{BaseURL: rt.cfg.STT.LocalBaseURL})
	default:
		if rt.cfg.STT.OpenAIKey == "" {
			return nil
		}
		return stt.NewOpenAISTT(stt.OpenAIConfig{
			APIKey:  rt.cfg.STT.OpenAIKey,
			BaseURL: rt.cfg.STT.OpenAIBaseURL,
			Model:   rt.cfg.STT.Model,
		})
	}
}

func (rt *Router) ttsProvider() tts.Provider {
	switch rt.cfg.TTS.Backend {
	case "local":
		return tts.NewLocalTTS(tts.LocalConfig{
			PiperBinPath: rt.cfg.TTS.LocalBinPath,
			ModelPath:    rt.cfg.TTS.LocalModel,
		})
	default:
		if rt.cfg.TTS.OpenAIKey == "" {
			return nil
		}
		return tts.NewOpenAITTS(tts.OpenAIConfig{
			APIKey:  rt.cfg.TTS.OpenAIKey,
			BaseURL: rt.cfg.TTS.OpenAIBaseURL,
			Model:   rt.cfg.TTS.Model,
			Voice:   rt.cfg.TTS.Voice,
		})
	}
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
