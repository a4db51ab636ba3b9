package catalog

import (
	"log/slog"
	"time"

	"github.com/movienight/movienight/internal/config"
	"github.com/movienight/movienight/internal/domain"
)

// demoLatency makes the offline catalog feel like a network call.
const demoLatency = 300 * time.Millisecond

// New returns the TMDB client when credentials are configured and the demo
// catalog otherwise.
func New(cfg *config.Config, logger *slog.Logger) (domain.Catalog, error) {
	if cfg.IsConfigured() {
		return NewClient(cfg.TMDB, logger), nil
	}
	if logger != nil {
		logger.Info("no TMDB credentials configured, using demo catalog")
	}
	demo, err := NewDemo(demoLatency, logger)
	if err != nil {
		return nil, err
	}
	return demo, nil
}
