package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/quickstart-go/internal/domain"
	"github.com/doeshing/quickstart-go/internal/pkg/logger"
)

var testPrompt = domain.Prompt{Instruction: "Write a quickstart.", Content: "Project files:\n- go.mod"}

func testConfig(url string) domain.RunConfig {
	cfg := domain.DefaultRunConfig()
	cfg.APIKey = "sk-test"
	cfg.BaseURL = url
	cfg.RequestTimeout = 2 * time.Second
	return cfg
}

func serve(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestCompleteSuccess(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody map[string]interface{}
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "chatcmpl-1",
			"model": "gpt-4o-2024",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "## Quickstart\n\ngo run ."}}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 5, "total_tokens": 17}
		}`)
	})

	res, err := NewClient(nil, logger.NewNop()).Complete(context.Background(), testConfig(srv.URL), testPrompt)
	require.NoError(t, err)

	assert.Equal(t, "## Quickstart\n\ngo run .", res.Text)
	assert.Equal(t, "gpt-4o-2024", res.Model)
	assert.Equal(t, 12, res.PromptTokens)
	assert.Equal(t, 5, res.CompletionTokens)
	want, err := NewClient(nil, logger.NewNop()).RequestBody(testConfig(srv.URL), testPrompt)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(res.RequestBody))

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "/chat/completions", gotPath)
	assert.Equal(t, "gpt-4o", gotBody["model"])
	messages, ok := gotBody["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]interface{})["role"])
	assert.Equal(t, testPrompt.Content, messages[1].(map[string]interface{})["content"])
}

func TestCompleteFailureKinds(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		timeout    time.Duration
		wantKind   domain.ErrorKind
		wantReason domain.ErrorReason
	}{
		{
			name: "server error with api body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = io.WriteString(w, `{"error": {"message": "boom", "type": "server_error"}}`)
			},
			wantKind:   domain.KindAPI,
			wantReason: domain.ReasonHTTPStatus,
		},
		{
			name: "server error with plain body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = io.WriteString(w, "internal error")
			},
			wantKind:   domain.KindAPI,
			wantReason: domain.ReasonHTTPStatus,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, `{"choices": [`)
			},
			wantKind:   domain.KindAPI,
			wantReason: domain.ReasonMalformedBody,
		},
		{
			name: "no choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, `{"id": "x", "choices": []}`)
			},
			wantKind:   domain.KindAPI,
			wantReason: domain.ReasonEmptyResponse,
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
			timeout:    50 * time.Millisecond,
			wantKind:   domain.KindNetwork,
			wantReason: domain.ReasonTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.handler)
			cfg := testConfig(srv.URL)
			if tt.timeout > 0 {
				cfg.RequestTimeout = tt.timeout
			}

			_, err := NewClient(nil, logger.NewNop()).Complete(context.Background(), cfg, testPrompt)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, domain.KindOf(err), err.Error())
			assert.Equal(t, tt.wantReason, domain.ReasonOf(err), err.Error())
		})
	}
}

func TestCompleteTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(nil, logger.NewNop()).Complete(context.Background(), testConfig(url), testPrompt)
	require.Error(t, err)
	assert.Equal(t, domain.KindNetwork, domain.KindOf(err))
	assert.Equal(t, domain.ReasonTransport, domain.ReasonOf(err))
}

func TestRequestBodyOmitsAPIKey(t *testing.T) {
	body, err := NewClient(nil, logger.NewNop()).RequestBody(testConfig("http://localhost"), testPrompt)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "sk-test")
	assert.Contains(t, string(body), `"model":"gpt-4o"`)
	assert.Contains(t, string(body), "Write a quickstart.")
}
