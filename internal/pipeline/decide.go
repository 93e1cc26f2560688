package pipeline

import (
	"fmt"

	"github.com/pactscan/pactscan/pkg/models"
)

// Contract types that always warrant a thorough pass. These tend to bury
// costs and obligations across clauses the fast tier misses.
var escalatingTypes = map[models.ContractType]bool{
	models.ContractRental:    true,
	models.ContractInsurance: true,
	models.ContractService:   true,
}

const (
	confidenceThreshold = 0.7
	keyTermsThreshold   = 6
)

// Decision says whether to escalate and why. Derived, never persisted.
type Decision struct {
	Trigger bool
	Reasons []string
}

// Decide evaluates the escalation criteria against a fast-tier result. It is
// a pure function of the normalized result and is computed exactly once per
// extraction; the escalated result is never re-evaluated.
func Decide(r *models.ExtractionResult) Decision {
	var reasons []string

	if r.ContractType != nil && escalatingTypes[*r.ContractType] {
		reasons = append(reasons, fmt.Sprintf("contract_type=%s", *r.ContractType))
	}
	if r.Confidence < confidenceThreshold {
		reasons = append(reasons, fmt.Sprintf("confidence<%.1f", confidenceThreshold))
	}
	if r.Complexity == models.ComplexityHigh {
		reasons = append(reasons, "complexity=high")
	}
	if len(r.KeyTerms) >= keyTermsThreshold {
		reasons = append(reasons, fmt.Sprintf("key_terms_count>=%d", keyTermsThreshold))
	}

	return Decision{Trigger: len(reasons) > 0, Reasons: reasons}
}
