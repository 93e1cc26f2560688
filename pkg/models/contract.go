// Package models contains shared data models used across the pactscan codebase.
package models

// ContractType categorizes the contractual relationship.
type ContractType string

const (
	ContractInsurance    ContractType = "insurance"
	ContractUtility      ContractType = "utility"
	ContractSubscription ContractType = "subscription"
	ContractRental       ContractType = "rental"
	ContractSaaS         ContractType = "saas"
	ContractService      ContractType = "service"
	ContractOther        ContractType = "other"
)

// ValidContractTypes is the closed set accepted from model output.
// Anything else is coerced to ContractOther.
var ValidContractTypes = map[ContractType]bool{
	ContractInsurance:    true,
	ContractUtility:      true,
	ContractSubscription: true,
	ContractRental:       true,
	ContractSaaS:         true,
	ContractService:      true,
	ContractOther:        true,
}

// Currency is an ISO 4217 code from the supported set.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyCAD Currency = "CAD"
	CurrencyAUD Currency = "AUD"
	CurrencyJPY Currency = "JPY"
)

// ValidCurrencies is the supported currency set; unknown values default to USD.
var ValidCurrencies = map[Currency]bool{
	CurrencyUSD: true,
	CurrencyEUR: true,
	CurrencyGBP: true,
	CurrencyCAD: true,
	CurrencyAUD: true,
	CurrencyJPY: true,
}

// CurrencySymbols maps common currency symbols to codes. Checked before the
// unknown-currency default applies, longest prefix first.
var CurrencySymbols = map[string]Currency{
	"$":   CurrencyUSD,
	"€":   CurrencyEUR,
	"£":   CurrencyGBP,
	"¥":   CurrencyJPY,
	"C$":  CurrencyCAD,
	"CA$": CurrencyCAD,
	"A$":  CurrencyAUD,
	"AU$": CurrencyAUD,
}

// PaymentFrequency describes how often the contract is billed.
type PaymentFrequency string

const (
	PayMonthly   PaymentFrequency = "monthly"
	PayAnnual    PaymentFrequency = "annual"
	PayQuarterly PaymentFrequency = "quarterly"
	PayOneTime   PaymentFrequency = "one-time"
	PayOther     PaymentFrequency = "other"
)

// ValidPaymentFrequencies is the closed payment frequency set.
var ValidPaymentFrequencies = map[PaymentFrequency]bool{
	PayMonthly:   true,
	PayAnnual:    true,
	PayQuarterly: true,
	PayOneTime:   true,
	PayOther:     true,
}

// Severity grades a risk or security finding.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Complexity grades how involved the contract package is.
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// Party is one party to the contract.
type Party struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// Risk is a concern identified in the contract text.
type Risk struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

// DocumentAnalyzed describes one bundle document as seen by the model.
// Entries always correspond 1:1 with the bundle, in bundle order.
type DocumentAnalyzed struct {
	Filename     string       `json:"filename"`
	DocumentType DocumentType `json:"document_type"`
	Summary      string       `json:"summary"`
}

// SecurityFinding records a suspected prompt-injection indicator.
type SecurityFinding struct {
	Kind     string   `json:"kind"`
	Detail   string   `json:"detail"`
	Severity Severity `json:"severity"`
}

// Finding kinds emitted by the security scanner.
const (
	FindingSuspiciousFilename = "suspicious_filename"
	FindingSuspiciousOutput   = "suspicious_output"
)

// Warning is a non-fatal normalization or consistency note attached to a
// result for user-facing review. Warnings never abort an extraction.
type Warning struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// Warning kinds accumulated during normalization and escalation.
const (
	WarnSeverityCoerced   = "severity_coerced"
	WarnFrequencyCoerced  = "frequency_coerced"
	WarnTypeCoerced       = "contract_type_coerced"
	WarnCurrencyCoerced   = "currency_coerced"
	WarnDateAmbiguous     = "date_ambiguous"
	WarnDateInvalid       = "date_invalid"
	WarnCostInconsistent  = "cost_consistency"
	WarnFieldDropped      = "field_dropped"
	WarnDocumentsMismatch = "documents_mismatch"
	WarnEscalationFailed  = "escalation_failed"
)

// ExtractionResult is the normalized output contract of the pipeline.
// Pointer fields are null when the documents do not determine a value;
// a null EndDate means the contract runs until terminated.
type ExtractionResult struct {
	ProviderName           *string            `json:"provider_name"`
	ContractNickname       *string            `json:"contract_nickname"`
	ContractType           *ContractType      `json:"contract_type"`
	MonthlyCost            *float64           `json:"monthly_cost"`
	AnnualCost             *float64           `json:"annual_cost"`
	Currency               Currency           `json:"currency"`
	PaymentFrequency       *PaymentFrequency  `json:"payment_frequency"`
	StartDate              *string            `json:"start_date"`
	EndDate                *string            `json:"end_date"`
	AutoRenewal            *bool              `json:"auto_renewal"`
	CancellationNoticeDays *int               `json:"cancellation_notice_days"`
	KeyTerms               []string           `json:"key_terms"`
	Parties                []Party            `json:"parties"`
	Risks                  []Risk             `json:"risks"`
	Confidence             float64            `json:"confidence"`
	Complexity             Complexity         `json:"complexity"`
	ComplexityReasons      []string           `json:"complexity_reasons"`
	DocumentsAnalyzed      []DocumentAnalyzed `json:"documents_analyzed"`
	Escalated              bool               `json:"escalated"`
	EscalationModel        *string            `json:"escalation_model"`
	SecurityFindings       []SecurityFinding  `json:"security_findings"`
	Warnings               []Warning          `json:"warnings"`
}

// AddWarning appends a non-fatal warning to the result.
func (r *ExtractionResult) AddWarning(kind, detail string) {
	r.Warnings = append(r.Warnings, Warning{Kind: kind, Detail: detail})
}
