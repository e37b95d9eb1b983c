package usage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Record captures one upstream model call for cost accounting.
type Record struct {
	Endpoint     string
	Provider     string
	Model        string
	InputTokens  int
	OutputTokens int
	TotalTokens  int
	CostUSD      float64
	LatencyMs    int64
}

// Service writes usage records to Postgres. A Service with a nil pool
// degrades to a no-op so the server runs without a database.
type Service struct {
	db *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

func (s *Service) Enabled() bool { return s != nil && s.db != nil }

// Log inserts a usage record. Failures are logged, never surfaced:
// accounting must not fail a request that already succeeded.
func (s *Service) Log(ctx context.Context, rec Record) {
	if !s.Enabled() {
		return
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO usage_logs (id, endpoint, provider, model, input_tokens, output_tokens, total_tokens, cost_usd, latency_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.New(), rec.Endpoint, rec.Provider, rec.Model, rec.InputTokens,
		rec.OutputTokens, rec.TotalTokens, rec.CostUSD, rec.LatencyMs,
	)
	if err != nil {
		slog.Warn("usage log insert failed", "endpoint", rec.Endpoint, "error", err)
	}
}

// Summary aggregates calls per provider and model.
type Summary struct {
	Provider     string  `json:"provider"`
	Model        string  `json:"model"`
	TotalCalls   int     `json:"total_calls"`
	TotalTokens  int     `json:"total_tokens"`
	TotalCostUSD float64 `json:"total_cost_usd"`
}

func (s *Service) Summaries(ctx context.Context) ([]Summary, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("usage log not configured")
	}

	rows, err := s.db.Query(ctx,
		`SELECT provider, model, COUNT(*),
		        COALESCE(SUM(total_tokens), 0),
		        COALESCE(SUM(cost_usd), 0)
		 FROM usage_logs GROUP BY provider, model
		 ORDER BY SUM(cost_usd) DESC`)
	if err != nil {
		return nil, fmt.Errorf("query usage summary: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.Provider, &s.Model, &s.TotalCalls, &s.TotalTokens, &s.TotalCostUSD); err != nil {
			return nil, fmt.Errorf("scan usage summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
