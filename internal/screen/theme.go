package screen

import (
	"context"
	"log/slog"
	"sync"

	"github.com/movienight/movienight/internal/domain"
)

// ThemeController owns the in-memory dark-mode flag.
type ThemeController struct {
	repo   ListRepository
	logger *slog.Logger

	mu   sync.RWMutex
	dark bool
}

// NewThemeController starts in the default theme until Load runs.
func NewThemeController(repo ListRepository, logger *slog.Logger) *ThemeController {
	if logger == nil {
		logger = slog.Default()
	}
	return &ThemeController{repo: repo, logger: logger, dark: domain.DefaultUserSettings().DarkMode}
}

func (c *ThemeController) DarkMode() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dark
}

// Set overrides the flag without persisting it.
func (c *ThemeController) Set(dark bool) {
	c.mu.Lock()
	c.dark = dark
	c.mu.Unlock()
}

// Load reads the saved preference. On failure the current flag is kept.
func (c *ThemeController) Load(ctx context.Context) error {
	settings, err := c.repo.GetUserSettings(ctx)
	if err != nil {
		c.logger.Error("failed to load theme", "error", err)
		return err
	}
	c.Set(settings.DarkMode)
	return nil
}

// BeginToggle flips the flag and returns the new value.
func (c *ThemeController) BeginToggle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dark = !c.dark
	return c.dark
}

// Commit persists dark through a read-modify-write of the settings record.
func (c *ThemeController) Commit(ctx context.Context, dark bool) error {
	settings, err := c.repo.GetUserSettings(ctx)
	if err != nil {
		return err
	}
	settings.DarkMode = dark
	return c.repo.SaveUserSettings(ctx, settings)
}

// Settle reverts to !dark when the write failed and nothing has changed the
// flag since.
func (c *ThemeController) Settle(dark bool, err error) {
	if err == nil {
		return
	}
	c.logger.Warn("reverting theme change", "darkMode", dark, "error", err)
	c.mu.Lock()
	if c.dark == dark {
		c.dark = !dark
	}
	c.mu.Unlock()
}

// Toggle flips and persists the flag, reverting on failure.
func (c *ThemeController) Toggle(ctx context.Context) (bool, error) {
	dark := c.BeginToggle()
	err := c.Commit(ctx, dark)
	c.Settle(dark, err)
	return c.DarkMode(), err
}
