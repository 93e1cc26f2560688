package provider

import "github.com/pactscan/pactscan/pkg/models"

// Tier identifies one ranked capability level.
type Tier string

const (
	TierFast             Tier = "fast"
	TierThorough         Tier = "thorough"
	TierFallbackThorough Tier = "fallback-thorough"
)

// TierSet holds the three ranked providers the escalation controller selects
// between. Selection is by explicit tier, never by polymorphic dispatch.
// Vendor clients construct one at startup (see anthropic.NewTierSet).
type TierSet struct {
	Fast     models.Provider
	Thorough models.Provider
	Fallback models.Provider
}
