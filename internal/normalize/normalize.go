// Package normalize converts loosely-typed model output into the strict
// ExtractionResult contract. Coercion runs first and is lenient; schema
// validation runs on the coerced result and is strict. Every coercion that
// changes or drops a value records a warning on the result instead of
// failing the extraction.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/pactscan/pactscan/internal/security"
	"github.com/pactscan/pactscan/pkg/models"
)

// ErrExtractionFailed is the terminal sentinel: no usable result could be
// produced. Raised here by the hard floor below, and reused by the pipeline
// for fast-tier failures.
var ErrExtractionFailed = errors.New("extraction failed")

const defaultConfidence = 0.5

// Result validates and normalizes a parsed model payload. The findings are
// input-scan findings; they are attached to the result and cap its
// confidence. Output-scan findings are applied later via ApplyFindings.
func Result(raw map[string]any, findings []models.SecurityFinding) (*models.ExtractionResult, error) {
	n := &normalizer{r: &models.ExtractionResult{Currency: models.CurrencyUSD}}
	n.build(raw)

	r := n.r
	// hard floor, distinct from soft confidence degradation: nothing here
	// identifies a contract at all
	if r.ProviderName == nil && r.ContractType == nil && r.MonthlyCost == nil && r.AnnualCost == nil {
		return nil, fmt.Errorf("%w: no recognizable contract content in bundle", ErrExtractionFailed)
	}

	checkCostConsistency(r)

	r.SecurityFindings = append(r.SecurityFindings, findings...)
	if r.SecurityFindings == nil {
		r.SecurityFindings = []models.SecurityFinding{}
	}
	if r.Warnings == nil {
		r.Warnings = []models.Warning{}
	}
	finalizeConfidence(r)

	if err := validateSchema(r); err != nil {
		return nil, err
	}
	return r, nil
}

// ApplyFindings attaches output-scan findings and re-caps confidence. The
// cap only ever lowers the score.
func ApplyFindings(r *models.ExtractionResult, findings []models.SecurityFinding) {
	if len(findings) == 0 {
		return
	}
	r.SecurityFindings = append(r.SecurityFindings, findings...)
	if ceiling := security.ConfidenceCap(r.SecurityFindings); r.Confidence > ceiling {
		r.Confidence = ceiling
	}
}

// ReconcileDocuments rewrites documents_analyzed so that entries correspond
// 1:1 with the bundle, in bundle order. Summaries from the model are matched
// by filename; a count or name mismatch is recorded as a warning.
func ReconcileDocuments(r *models.ExtractionResult, b *models.DocumentBundle) {
	byName := make(map[string]models.DocumentAnalyzed, len(r.DocumentsAnalyzed))
	for _, d := range r.DocumentsAnalyzed {
		if _, seen := byName[d.Filename]; !seen {
			byName[d.Filename] = d
		}
	}

	matched := 0
	reconciled := make([]models.DocumentAnalyzed, 0, len(b.Documents))
	for _, doc := range b.Documents {
		entry := models.DocumentAnalyzed{Filename: doc.Filename, DocumentType: doc.Type}
		if got, ok := byName[doc.Filename]; ok {
			entry.Summary = got.Summary
			matched++
		}
		reconciled = append(reconciled, entry)
	}

	if len(r.DocumentsAnalyzed) != len(b.Documents) || matched != len(b.Documents) {
		r.AddWarning(models.WarnDocumentsMismatch,
			fmt.Sprintf("model reported %d documents, bundle has %d (%d matched by filename)",
				len(r.DocumentsAnalyzed), len(b.Documents), matched))
	}
	r.DocumentsAnalyzed = reconciled
}

type normalizer struct {
	r *models.ExtractionResult
}

func (n *normalizer) build(raw map[string]any) {
	r := n.r

	r.ProviderName = asString(raw["provider_name"])
	r.ContractNickname = asString(raw["contract_nickname"])
	r.ContractType = n.contractType(raw["contract_type"])
	r.MonthlyCost = n.cost("monthly_cost", raw["monthly_cost"])
	r.AnnualCost = n.cost("annual_cost", raw["annual_cost"])
	r.Currency = n.currency(raw["currency"])
	r.PaymentFrequency = n.frequency(raw["payment_frequency"])
	r.StartDate = n.date("start_date", raw["start_date"])
	r.EndDate = n.date("end_date", raw["end_date"])
	r.AutoRenewal = asBool(raw["auto_renewal"])
	r.CancellationNoticeDays = n.noticeDays(raw["cancellation_notice_days"])
	r.KeyTerms = asStrings(raw["key_terms"])
	r.Parties = n.parties(raw["parties"])
	r.Risks = n.risks(raw["risks"])
	r.Confidence = n.confidence(raw["confidence"])
	r.Complexity = n.complexity(raw["complexity"])
	r.ComplexityReasons = asStrings(raw["complexity_reasons"])
	r.DocumentsAnalyzed = n.documents(raw["documents_analyzed"])
}

func (n *normalizer) contractType(v any) *models.ContractType {
	s := asString(v)
	if s == nil {
		return nil
	}
	ct := models.ContractType(strings.ToLower(*s))
	if !models.ValidContractTypes[ct] {
		n.r.AddWarning(models.WarnTypeCoerced, fmt.Sprintf("unknown contract_type %q coerced to other", *s))
		ct = models.ContractOther
	}
	return &ct
}

// currencySymbolsLongestFirst orders the symbol set so "C$" is stripped
// before "$"; ranging over the map would make "C$100" parse or drop
// depending on iteration order.
var currencySymbolsLongestFirst = func() []string {
	syms := make([]string, 0, len(models.CurrencySymbols))
	for sym := range models.CurrencySymbols {
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool {
		if len(syms[i]) != len(syms[j]) {
			return len(syms[i]) > len(syms[j])
		}
		return syms[i] < syms[j]
	})
	return syms
}()

func (n *normalizer) cost(field string, v any) *float64 {
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		return &t
	case string:
		cleaned := strings.TrimSpace(t)
		for _, sym := range currencySymbolsLongestFirst {
			cleaned = strings.ReplaceAll(cleaned, sym, "")
		}
		cleaned = strings.TrimSpace(strings.ReplaceAll(cleaned, ",", ""))
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			n.r.AddWarning(models.WarnFieldDropped, fmt.Sprintf("%s value %q is not numeric", field, t))
			return nil
		}
		return &f
	default:
		n.r.AddWarning(models.WarnFieldDropped, fmt.Sprintf("%s has unexpected type", field))
		return nil
	}
}

func (n *normalizer) currency(v any) models.Currency {
	s := asString(v)
	if s == nil {
		return models.CurrencyUSD
	}
	if code, ok := models.CurrencySymbols[strings.TrimSpace(*s)]; ok {
		return code
	}
	c := models.Currency(strings.ToUpper(strings.TrimSpace(*s)))
	if !models.ValidCurrencies[c] {
		n.r.AddWarning(models.WarnCurrencyCoerced, fmt.Sprintf("unknown currency %q defaulted to USD", *s))
		return models.CurrencyUSD
	}
	return c
}

var frequencySynonyms = map[string]models.PaymentFrequency{
	"yearly":   models.PayAnnual,
	"annually": models.PayAnnual,
	"per year": models.PayAnnual,
	"monthly":  models.PayMonthly,
	"one time": models.PayOneTime,
	"onetime":  models.PayOneTime,
}

func (n *normalizer) frequency(v any) *models.PaymentFrequency {
	s := asString(v)
	if s == nil {
		return nil
	}
	lower := strings.ToLower(strings.TrimSpace(*s))
	if f, ok := frequencySynonyms[lower]; ok {
		return &f
	}
	f := models.PaymentFrequency(lower)
	if !models.ValidPaymentFrequencies[f] {
		n.r.AddWarning(models.WarnFrequencyCoerced, fmt.Sprintf("unknown payment_frequency %q coerced to other", *s))
		f = models.PayOther
	}
	return &f
}

func (n *normalizer) date(field string, v any) *string {
	s := asString(v)
	if s == nil {
		return nil
	}
	iso, warnKind := normalizeDate(*s)
	if warnKind != "" {
		n.r.AddWarning(warnKind, fmt.Sprintf("%s value %q", field, *s))
	}
	return iso
}

func (n *normalizer) noticeDays(v any) *int {
	f := asFloat(v)
	if f == nil {
		return nil
	}
	days := int(*f)
	if days < 0 {
		n.r.AddWarning(models.WarnFieldDropped, fmt.Sprintf("cancellation_notice_days %d is negative", days))
		return nil
	}
	return &days
}

func (n *normalizer) confidence(v any) float64 {
	f := asFloat(v)
	if f == nil {
		return defaultConfidence
	}
	return *f
}

func (n *normalizer) complexity(v any) models.Complexity {
	s := asString(v)
	if s == nil {
		return models.ComplexityMedium
	}
	c := models.Complexity(strings.ToLower(strings.TrimSpace(*s)))
	switch c {
	case models.ComplexityLow, models.ComplexityMedium, models.ComplexityHigh:
		return c
	default:
		n.r.AddWarning(models.WarnFieldDropped, fmt.Sprintf("unknown complexity %q defaulted to medium", *s))
		return models.ComplexityMedium
	}
}

func (n *normalizer) parties(v any) []models.Party {
	items, _ := v.([]any)
	out := make([]models.Party, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		p := models.Party{}
		if s := asString(m["name"]); s != nil {
			p.Name = *s
		}
		if s := asString(m["role"]); s != nil {
			p.Role = *s
		}
		if p.Name != "" || p.Role != "" {
			out = append(out, p)
		}
	}
	return out
}

func (n *normalizer) risks(v any) []models.Risk {
	items, _ := v.([]any)
	out := make([]models.Risk, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		risk := models.Risk{Severity: models.SeverityMedium}
		if s := asString(m["title"]); s != nil {
			risk.Title = *s
		}
		if s := asString(m["description"]); s != nil {
			risk.Description = *s
		}
		if s := asString(m["severity"]); s != nil {
			sev := models.Severity(strings.ToLower(strings.TrimSpace(*s)))
			switch sev {
			case models.SeverityHigh, models.SeverityMedium, models.SeverityLow:
				risk.Severity = sev
			default:
				n.r.AddWarning(models.WarnSeverityCoerced,
					fmt.Sprintf("risk %q severity %q coerced to medium", risk.Title, *s))
			}
		}
		out = append(out, risk)
	}
	return out
}

func (n *normalizer) documents(v any) []models.DocumentAnalyzed {
	items, _ := v.([]any)
	out := make([]models.DocumentAnalyzed, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		d := models.DocumentAnalyzed{DocumentType: models.DocOther}
		if s := asString(m["filename"]); s != nil {
			d.Filename = *s
		}
		if s := asString(m["document_type"]); s != nil {
			dt := models.DocumentType(strings.ToLower(strings.TrimSpace(*s)))
			if models.ValidDocumentTypes[dt] {
				d.DocumentType = dt
			}
		}
		if s := asString(m["summary"]); s != nil {
			d.Summary = *s
		}
		out = append(out, d)
	}
	return out
}

// checkCostConsistency flags annual costs outside 11x..13x of the monthly
// cost. The discrepancy is surfaced, not corrected.
func checkCostConsistency(r *models.ExtractionResult) {
	if r.MonthlyCost == nil || r.AnnualCost == nil || *r.MonthlyCost <= 0 {
		return
	}
	lo, hi := *r.MonthlyCost*11, *r.MonthlyCost*13
	if *r.AnnualCost < lo || *r.AnnualCost > hi {
		r.AddWarning(models.WarnCostInconsistent,
			fmt.Sprintf("annual_cost %.2f is not within [%.2f, %.2f] of monthly_cost %.2f",
				*r.AnnualCost, lo, hi, *r.MonthlyCost))
	}
}

// finalizeConfidence clamps to [0,1], caps at 0.5 when provider_name is
// missing, and applies security-finding caps. Confidence only goes down.
func finalizeConfidence(r *models.ExtractionResult) {
	c := r.Confidence
	if c < 0 {
		c = 0
	}
	if c > 1 {
		c = 1
	}
	if r.ProviderName == nil && c > 0.5 {
		c = 0.5
	}
	if ceiling := security.ConfidenceCap(r.SecurityFindings); c > ceiling {
		c = ceiling
	}
	r.Confidence = c
}

func asString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func asStrings(v any) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := asString(item); s != nil {
			out = append(out, *s)
		}
	}
	return out
}

func asFloat(v any) *float64 {
	switch t := v.(type) {
	case float64:
		return &t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

func asBool(v any) *bool {
	switch t := v.(type) {
	case bool:
		return &t
	case string:
		b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(t)))
		if err != nil {
			return nil
		}
		return &b
	default:
		return nil
	}
}

var monthNameLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2 2006",
	"2006 January 2",
}

// normalizeDate converts common date spellings to ISO 8601. A numeric date
// whose day and month positions cannot be told apart (both components <= 12
// and unequal) is left null with a date_ambiguous warning rather than
// guessed.
func normalizeDate(s string) (*string, string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ""
	}
	// already ISO, possibly with a time suffix
	if t, err := time.Parse("2006-01-02", s); err == nil {
		iso := t.Format("2006-01-02")
		return &iso, ""
	}
	if idx := strings.IndexByte(s, 'T'); idx > 0 {
		if t, err := time.Parse("2006-01-02", s[:idx]); err == nil {
			iso := t.Format("2006-01-02")
			return &iso, ""
		}
	}
	for _, layout := range monthNameLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			iso := t.Format("2006-01-02")
			return &iso, ""
		}
	}

	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '/' || r == '-' || r == '.'
	})
	if len(parts) != 3 {
		return nil, models.WarnDateInvalid
	}
	nums := make([]int, 3)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, models.WarnDateInvalid
		}
		nums[i] = v
	}

	var year, month, day int
	switch {
	case len(parts[0]) == 4:
		year, month, day = nums[0], nums[1], nums[2]
	case len(parts[2]) == 4:
		year = nums[2]
		a, b := nums[0], nums[1]
		switch {
		case a > 12 && b <= 12:
			day, month = a, b
		case b > 12 && a <= 12:
			month, day = a, b
		case a == b:
			month, day = a, b
		default:
			return nil, models.WarnDateAmbiguous
		}
	default:
		return nil, models.WarnDateInvalid
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil, models.WarnDateInvalid
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return nil, models.WarnDateInvalid
	}
	iso := t.Format("2006-01-02")
	return &iso, ""
}

var resultSchema = jsonschema.MustCompileString("extraction_result.json", resultSchemaJSON)

// validateSchema re-checks the coerced result against the output contract.
func validateSchema(r *models.ExtractionResult) error {
	encoded, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	var doc any
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	if err := resultSchema.Validate(doc); err != nil {
		return fmt.Errorf("result schema validation: %w", err)
	}
	return nil
}
