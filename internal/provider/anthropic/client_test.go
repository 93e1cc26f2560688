package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pactscan/pactscan/internal/provider"
	"github.com/pactscan/pactscan/pkg/models"
)

func testPayload() models.PromptPayload {
	return models.PromptPayload{
		Mode:         models.ModeFast,
		Instructions: "Extract the contract fields.",
		Documents: []models.DocumentPart{
			{Filename: "msa.pdf", DocumentType: models.DocMainAgreement, MediaType: "application/pdf", Data: "JVBERi0x"},
		},
	}
}

func newTestClient(baseURL string) *Client {
	return NewClient(Config{
		Name:    "fast",
		APIKey:  "sk-ant-test",
		BaseURL: baseURL,
		Model:   "claude-3-5-haiku-20241022",
		Timeout: 5 * time.Second,
	})
}

func TestInvoke_ValidResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if got := r.Header.Get("x-api-key"); got != "sk-ant-test" {
			t.Errorf("unexpected api key header: %s", got)
		}
		if got := r.Header.Get("anthropic-version"); got == "" {
			t.Error("missing anthropic-version header")
		}

		var req messagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		// one document block plus the instruction text block
		require.Len(t, req.Messages[0].Content, 2)
		assert.Equal(t, "document", req.Messages[0].Content[0].Type)
		assert.Equal(t, "application/pdf", req.Messages[0].Content[0].Source.MediaType)
		assert.Equal(t, "text", req.Messages[0].Content[1].Type)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{
				{"type": "text", "text": `{"provider_name":"Acme"}`},
			},
		})
	}))
	defer ts.Close()

	text, err := newTestClient(ts.URL).Invoke(context.Background(), testPayload())
	require.NoError(t, err)
	assert.Equal(t, `{"provider_name":"Acme"}`, text)
}

func TestInvoke_ConcatenatesTextBlocks(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{
				{"type": "text", "text": "{\"a\":"},
				{"type": "text", "text": "1}"},
			},
		})
	}))
	defer ts.Close()

	text, err := newTestClient(ts.URL).Invoke(context.Background(), testPayload())
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, text)
}

func TestInvoke_RateLimited(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error","message":"rate limited"}}`))
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).Invoke(context.Background(), testPayload())
	var provErr *provider.Error
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, provider.KindRateLimited, provErr.Kind)
	assert.Equal(t, "fast", provErr.Provider)
}

func TestInvoke_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).Invoke(context.Background(), testPayload())
	var provErr *provider.Error
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, provider.KindUnavailable, provErr.Kind)
}

func TestInvoke_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestClient(ts.URL).Invoke(ctx, testPayload())
	var provErr *provider.Error
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, provider.KindTimeout, provErr.Kind)
}

func TestInvoke_EmptyContent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"content": []map[string]any{}})
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).Invoke(context.Background(), testPayload())
	var provErr *provider.Error
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, provider.KindMalformedResponse, provErr.Kind)
}

func TestInvoke_InvalidJSONBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).Invoke(context.Background(), testPayload())
	var provErr *provider.Error
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, provider.KindMalformedResponse, provErr.Kind)
}

func TestClassify_ContextDeadline(t *testing.T) {
	err := provider.Classify("thorough", context.DeadlineExceeded)
	assert.Equal(t, provider.KindTimeout, err.Kind)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
