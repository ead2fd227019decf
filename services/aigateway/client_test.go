package aigateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/assistant"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/tests"
)

func newTestClient(t *testing.T, url string) *Client {
	conf := core.NewTestConfig()
	conf.AI.APIKey = "test-key"
	conf.AI.BaseURL = url
	return NewClient(conf, testutil.NewLogger(t))
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(core.NewTestConfig(), testutil.NewLogger(t))
	assert.Equal(t, defaultBaseURL, c.BaseURL)
	assert.Equal(t, defaultModel, c.Model)
	require.NotNil(t, c.HTTPClient)
	assert.Equal(t, defaultTimeout, c.HTTPClient.Timeout)
}

func TestComplete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, defaultModel, body["model"])
		msgs := body["messages"].([]interface{})
		require.Len(t, msgs, 2)
		assert.Equal(t, "system", msgs[0].(map[string]interface{})["role"])
		assert.Equal(t, "Corrija a redação", msgs[1].(map[string]interface{})["content"])

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Nota final: 880"}}]}`))
	}))
	defer server.Close()

	text, err := newTestClient(t, server.URL).Complete(context.Background(), assistant.Prompt{
		System: "Você é um corretor do ENEM",
		User:   "Corrija a redação",
	})
	require.NoError(t, err)
	assert.Equal(t, "Nota final: 880", text)
}

func TestComplete_ImagePart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw struct {
			Messages []struct {
				Role    string        `json:"role"`
				Content []contentPart `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		require.Len(t, raw.Messages, 1)
		parts := raw.Messages[0].Content
		require.Len(t, parts, 2)
		assert.Equal(t, "text", parts[0].Type)
		assert.Equal(t, "image_url", parts[1].Type)
		assert.Equal(t, "data:image/png;base64,AAAA", parts[1].ImageURL.URL)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Alternativa C"}}]}`))
	}))
	defer server.Close()

	text, err := newTestClient(t, server.URL).Complete(context.Background(), assistant.Prompt{
		User:     "Resolva a questão",
		ImageURL: "data:image/png;base64,AAAA",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alternativa C", text)
}

func TestComplete_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind core.ErrorKind
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{}`, wantKind: core.KindRateLimited},
		{name: "quota exceeded", status: http.StatusPaymentRequired, body: `{}`, wantKind: core.KindQuotaExceeded},
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":"internal secret detail"}`, wantKind: core.KindUpstream},
		{name: "bad request", status: http.StatusBadRequest, body: `{}`, wantKind: core.KindUpstream},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, wantKind: core.KindUpstream},
		{name: "not json", status: http.StatusOK, body: `<html>`, wantKind: core.KindUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(t, server.URL).Complete(context.Background(), assistant.Prompt{User: "oi"})
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, core.KindOf(err))
			assert.NotContains(t, err.Error(), "internal secret detail")
		})
	}
}

func TestComplete_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"tarde demais"}}]}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	c.HTTPClient.Timeout = 20 * time.Millisecond

	_, err := c.Complete(context.Background(), assistant.Prompt{User: "oi"})
	require.Error(t, err)
	assert.Equal(t, core.KindTimeout, core.KindOf(err))
}

func TestComplete_MissingAPIKey(t *testing.T) {
	c := NewClient(core.NewTestConfig(), testutil.NewLogger(t))
	_, err := c.Complete(context.Background(), assistant.Prompt{User: "oi"})
	require.Error(t, err)
	assert.Equal(t, core.KindUpstream, core.KindOf(err))
}
