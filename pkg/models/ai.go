package models

import "context"

// Mode selects the prompt depth for one inference run.
type Mode string

const (
	ModeFast     Mode = "fast"
	ModeThorough Mode = "thorough"
)

// Provider is the capability interface every inference tier implements.
// Never call a vendor client directly — always inject this interface.
// Invoke returns the raw model text on success; failures are *provider.Error
// values so the controller can apply its fallback policy. Providers never
// retry internally.
type Provider interface {
	Invoke(ctx context.Context, payload PromptPayload) (string, error)
	// Name returns the tier identifier (e.g., "fast", "fallback-thorough").
	Name() string
	// Model returns the underlying model ID.
	Model() string
}

// PromptPayload is a fully rendered, model-ready request. Pure data: building
// one performs no I/O, and the same payload is reused verbatim when the
// controller retries on the fallback tier.
type PromptPayload struct {
	Mode         Mode
	Instructions string
	Documents    []DocumentPart
}

// DocumentPart is one document rendered for transport.
type DocumentPart struct {
	Filename     string
	DocumentType DocumentType
	Label        string
	MediaType    string
	Data         string // base64
}
