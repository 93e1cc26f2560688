// Package security detects prompt-injection attempts in document inputs and
// in text the model produced from them. Both scans are pure functions; the
// findings they return drive confidence caps during normalization.
package security

import (
	"fmt"
	"strings"

	"github.com/pactscan/pactscan/pkg/models"
)

// injectionSignatures are phrases that read as instructions to the assistant
// rather than contract content. Matched case-insensitively with separator
// characters collapsed, so "ignore_previous_instructions.pdf" still matches.
var injectionSignatures = []string{
	"ignore previous instructions",
	"ignore all previous instructions",
	"ignore the above",
	"disregard the above",
	"disregard previous instructions",
	"forget your instructions",
	"new instructions",
	"system:",
	"system prompt",
	"you are now",
	"do not follow",
	"override instructions",
}

// outputMetaSignatures only apply to model output: references to the
// extraction machinery itself, which legitimate contract text never makes.
var outputMetaSignatures = []string{
	"extraction prompt",
	"json schema above",
	"the schema above",
	"as an ai",
	"assistant instructions",
	"return confidence 1",
	"set confidence to",
}

// Confidence ceilings applied per finding severity. A finding can only lower
// confidence, never raise it.
const (
	capHigh   = 0.4
	capMedium = 0.6
)

// normalize lowercases and collapses filename-style separators so signatures
// hit regardless of how the phrase was smuggled in.
func normalize(s string) string {
	s = strings.ToLower(s)
	r := strings.NewReplacer("_", " ", "-", " ", ".", " ", "/", " ")
	return r.Replace(s)
}

func matchSignatures(text string, signatures []string) []string {
	norm := normalize(text)
	var hits []string
	for _, sig := range signatures {
		if strings.Contains(norm, normalize(sig)) {
			hits = append(hits, sig)
		}
	}
	return hits
}

// ScanInputs checks filenames and labels against the injection signature set.
// Matches are medium severity: a hostile filename taints the request but the
// document body may still be a real contract.
func ScanInputs(b *models.DocumentBundle) []models.SecurityFinding {
	var findings []models.SecurityFinding
	for _, doc := range b.Documents {
		for _, field := range []struct{ name, value string }{
			{"filename", doc.Filename},
			{"label", doc.Label},
		} {
			for _, sig := range matchSignatures(field.value, injectionSignatures) {
				findings = append(findings, models.SecurityFinding{
					Kind:     models.FindingSuspiciousFilename,
					Detail:   fmt.Sprintf("%s %q matches injection signature %q", field.name, field.value, sig),
					Severity: models.SeverityMedium,
				})
			}
		}
	}
	return findings
}

// ScanOutput checks string fields of a normalized result for injection
// signatures and for meta-instructions referencing the extraction prompt.
// Matches are high severity: the model echoed instruction-shaped text, so the
// document content reached it as something other than data.
func ScanOutput(r *models.ExtractionResult) []models.SecurityFinding {
	var findings []models.SecurityFinding

	check := func(field, value string) {
		hits := matchSignatures(value, injectionSignatures)
		hits = append(hits, matchSignatures(value, outputMetaSignatures)...)
		for _, sig := range hits {
			findings = append(findings, models.SecurityFinding{
				Kind:     models.FindingSuspiciousOutput,
				Detail:   fmt.Sprintf("%s matches injection signature %q", field, sig),
				Severity: models.SeverityHigh,
			})
		}
	}

	if r.ProviderName != nil {
		check("provider_name", *r.ProviderName)
	}
	if r.ContractNickname != nil {
		check("contract_nickname", *r.ContractNickname)
	}
	for i, kt := range r.KeyTerms {
		check(fmt.Sprintf("key_terms[%d]", i), kt)
	}
	for i, p := range r.Parties {
		check(fmt.Sprintf("parties[%d].name", i), p.Name)
		check(fmt.Sprintf("parties[%d].role", i), p.Role)
	}
	for i, risk := range r.Risks {
		check(fmt.Sprintf("risks[%d].title", i), risk.Title)
		check(fmt.Sprintf("risks[%d].description", i), risk.Description)
	}
	for i, reason := range r.ComplexityReasons {
		check(fmt.Sprintf("complexity_reasons[%d]", i), reason)
	}
	for i, doc := range r.DocumentsAnalyzed {
		check(fmt.Sprintf("documents_analyzed[%d].summary", i), doc.Summary)
	}
	return findings
}

// ConfidenceCap returns the ceiling the given findings impose, or 1 when they
// impose none. Each high finding caps at 0.4, each medium at 0.6; the lowest
// ceiling wins.
func ConfidenceCap(findings []models.SecurityFinding) float64 {
	ceiling := 1.0
	for _, f := range findings {
		switch f.Severity {
		case models.SeverityHigh:
			if ceiling > capHigh {
				ceiling = capHigh
			}
		case models.SeverityMedium:
			if ceiling > capMedium {
				ceiling = capMedium
			}
		}
	}
	return ceiling
}
