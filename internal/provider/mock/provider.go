// Package mock provides models.Provider test doubles.
package mock

import (
	"context"

	"github.com/pactscan/pactscan/internal/provider"
	"github.com/pactscan/pactscan/pkg/models"
)

// Provider satisfies models.Provider for testing.
type Provider struct {
	Name_      string
	Model_     string
	InvokeFunc func(ctx context.Context, payload models.PromptPayload) (string, error)

	// Calls records every payload passed to Invoke, in order.
	Calls []models.PromptPayload
}

func (m *Provider) Name() string  { return m.Name_ }
func (m *Provider) Model() string { return m.Model_ }

func (m *Provider) Invoke(ctx context.Context, payload models.PromptPayload) (string, error) {
	m.Calls = append(m.Calls, payload)
	if m.InvokeFunc != nil {
		return m.InvokeFunc(ctx, payload)
	}
	return "{}", nil
}

// NewStaticProvider returns a provider that always answers with raw.
func NewStaticProvider(name, model, raw string) *Provider {
	return &Provider{
		Name_:  name,
		Model_: model,
		InvokeFunc: func(_ context.Context, _ models.PromptPayload) (string, error) {
			return raw, nil
		},
	}
}

// NewFailingProvider returns a provider that always fails with the given kind.
func NewFailingProvider(name string, kind provider.ErrorKind) *Provider {
	return &Provider{
		Name_:  name,
		Model_: name + "-model",
		InvokeFunc: func(_ context.Context, _ models.PromptPayload) (string, error) {
			return "", provider.NewError(name, kind, nil)
		},
	}
}

// NewTimeoutProvider returns a provider that blocks until context is cancelled.
func NewTimeoutProvider(name string) *Provider {
	return &Provider{
		Name_:  name,
		Model_: name + "-model",
		InvokeFunc: func(ctx context.Context, _ models.PromptPayload) (string, error) {
			<-ctx.Done()
			return "", provider.Classify(name, ctx.Err())
		},
	}
}

// Compile-time check that Provider implements models.Provider.
var _ models.Provider = (*Provider)(nil)
