package mock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pactscan/pactscan/internal/provider"
	"github.com/pactscan/pactscan/pkg/models"
)

func TestStaticProvider(t *testing.T) {
	p := NewStaticProvider("fast", "haiku", `{"provider_name":"Acme"}`)

	raw, err := p.Invoke(context.Background(), models.PromptPayload{Mode: models.ModeFast})
	require.NoError(t, err)
	assert.Equal(t, `{"provider_name":"Acme"}`, raw)
	assert.Equal(t, "fast", p.Name())
	assert.Equal(t, "haiku", p.Model())
	assert.Len(t, p.Calls, 1)
}

func TestFailingProvider(t *testing.T) {
	p := NewFailingProvider("thorough", provider.KindRateLimited)

	_, err := p.Invoke(context.Background(), models.PromptPayload{})
	var provErr *provider.Error
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, provider.KindRateLimited, provErr.Kind)
	assert.Equal(t, "thorough", provErr.Provider)
}

func TestTimeoutProvider(t *testing.T) {
	p := NewTimeoutProvider("thorough")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Invoke(ctx, models.PromptPayload{})
	var provErr *provider.Error
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, provider.KindTimeout, provErr.Kind)
}

func TestProvider_RecordsCallsInOrder(t *testing.T) {
	p := NewStaticProvider("fast", "haiku", "{}")

	_, _ = p.Invoke(context.Background(), models.PromptPayload{Mode: models.ModeFast})
	_, _ = p.Invoke(context.Background(), models.PromptPayload{Mode: models.ModeThorough})

	require.Len(t, p.Calls, 2)
	assert.Equal(t, models.ModeFast, p.Calls[0].Mode)
	assert.Equal(t, models.ModeThorough, p.Calls[1].Mode)
}
