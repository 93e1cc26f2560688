package anthropic

import (
	"time"

	"github.com/pactscan/pactscan/internal/config"
	"github.com/pactscan/pactscan/internal/provider"
)

// NewTierSet constructs the three ranked tier clients from config.
// Called once at startup.
func NewTierSet(cfg config.AIConfig) provider.TierSet {
	tier := func(name provider.Tier, model string, timeout time.Duration) *Client {
		return NewClient(Config{
			Name:      string(name),
			APIKey:    cfg.APIKey,
			BaseURL:   cfg.BaseURL,
			Model:     model,
			MaxTokens: cfg.MaxTokens,
			Timeout:   timeout,
		})
	}
	return provider.TierSet{
		Fast:     tier(provider.TierFast, cfg.FastModel, cfg.FastTimeout),
		Thorough: tier(provider.TierThorough, cfg.ThoroughModel, cfg.ThoroughTimeout),
		Fallback: tier(provider.TierFallbackThorough, cfg.FallbackModel, cfg.FallbackTimeout),
	}
}
