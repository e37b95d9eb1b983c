package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MarianConfig holds configuration for the Marian model-serving
// sidecar that hosts the opus-mt and grammar models.
type MarianConfig struct {
	BaseURL string // default: "http://localhost:8180"
	Timeout time.Duration
}

// MarianClient loads and runs translation models over the sidecar's
// HTTP API. It implements Loader.
type MarianClient struct {
	cfg        MarianConfig
	httpClient *http.Client
}

// NewMarianClient creates a MarianClient with defaults applied.
func NewMarianClient(cfg MarianConfig) *MarianClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8180"
	}
	if cfg.Timeout == 0 {
		// Model loads pull weights from disk; generation is slow on CPU.
		cfg.Timeout = 5 * time.Minute
	}
	return &MarianClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type marianLoadReq struct {
	Model string `json:"model"`
}

type marianGenerateReq struct {
	Model         string `json:"model"`
	Text          string `json:"text"`
	NumBeams      int    `json:"num_beams"`
	MaxNewTokens  int    `json:"max_new_tokens"`
	EarlyStopping bool   `json:"early_stopping"`
}

type marianGenerateResp struct {
	Text string `json:"text"`
}

// Load asks the sidecar to load the model into memory. A 404 means the
// model is not published and maps to ErrModelUnavailable.
func (c *MarianClient) Load(ctx context.Context, modelID string) (Model, error) {
	body, _ := json.Marshal(marianLoadReq{Model: modelID})
	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.BaseURL+"/models/load", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("marian load request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrModelUnavailable, modelID, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return &marianModel{id: modelID, client: c}, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s not published", ErrModelUnavailable, modelID)
	default:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: %s: load failed (status %d): %s",
			ErrModelUnavailable, modelID, resp.StatusCode, string(detail))
	}
}

// marianModel is a handle onto a model the sidecar has loaded.
type marianModel struct {
	id     string
	client *MarianClient
}

func (m *marianModel) ID() string { return m.id }

func (m *marianModel) Generate(ctx context.Context, text string, cfg GenerationConfig) (string, error) {
	body, _ := json.Marshal(marianGenerateReq{
		Model:         m.id,
		Text:          text,
		NumBeams:      cfg.NumBeams,
		MaxNewTokens:  cfg.MaxNewTokens,
		EarlyStopping: cfg.EarlyStopping,
	})
	req, err := http.NewRequestWithContext(ctx, "POST", m.client.cfg.BaseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("marian generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("marian generate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("marian generate failed (status %d): %s", resp.StatusCode, string(detail))
	}

	var out marianGenerateResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("marian decode: %w", err)
	}
	return out.Text, nil
}
