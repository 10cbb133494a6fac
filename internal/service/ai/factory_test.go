package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/config"
	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/model/persona"
)

func TestNewClientHTTPProviderUsesEndpoint(t *testing.T) {
	srv, captured := newCompletionServer(t, http.StatusOK, `{"choices":[{"message":{"content":"ok"}}]}`)

	cfg := config.AssistantConfig{
		Provider:    config.ProviderHTTP,
		BaseURL:     srv.URL + "/v2/",
		Model:       "m",
		Temperature: 0.7,
		MaxTokens:   500,
	}
	client, err := NewClient(context.Background(), cfg, persona.Seed()[0], StaticCredential("k"), nil)
	require.NoError(t, err)
	require.IsType(t, &HTTPClient{}, client)

	reply, err := client.RequestReply(context.Background(), nil, "Hello")
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
	assert.Equal(t, "/v2/chat/completions", captured.Path)
	assert.Contains(t, captured.Body.Messages[0].Content, "Utkarsh Barad")
}

func TestNewClientLangChainProviderBuildsOnFirstRequest(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	cfg := config.AssistantConfig{Provider: config.ProviderLangChain, BaseURL: srv.URL, Model: "m", MaxTokens: 10}
	client, err := NewClient(context.Background(), cfg, persona.Seed()[0], StaticCredential("k"), nil)
	require.NoError(t, err)

	lazy, ok := client.(*lazyClient)
	require.True(t, ok)
	assert.Nil(t, lazy.client)

	_, err = client.RequestReply(context.Background(), nil, "Hello")
	assert.ErrorIs(t, err, ErrServiceUnavailable)
	assert.IsType(t, &LangChainClient{}, lazy.client)
}

func TestNewClientMissingCredentialFailsPerRequest(t *testing.T) {
	cases := []config.AssistantConfig{
		{Provider: config.ProviderHTTP, BaseURL: "http://127.0.0.1:1", Model: "m", MaxTokens: 10},
		{Provider: config.ProviderArk, Model: "ep-1", MaxTokens: 10},
		{Provider: config.ProviderOpenAI, BaseURL: "http://127.0.0.1:1", Model: "m", MaxTokens: 10},
		{Provider: config.ProviderLangChain, BaseURL: "http://127.0.0.1:1", Model: "m", MaxTokens: 10},
	}
	for _, cfg := range cases {
		t.Run(string(cfg.Provider), func(t *testing.T) {
			client, err := NewClient(context.Background(), cfg, persona.Seed()[0], StaticCredential(""), nil)
			require.NoError(t, err)

			reply, err := client.RequestReply(context.Background(), nil, "Hello")
			assert.Empty(t, reply)
			assert.ErrorIs(t, err, ErrServiceUnavailable)
		})
	}
}

func TestArkModelConfigKeepsZeroTimeout(t *testing.T) {
	cfg := config.AssistantConfig{Provider: config.ProviderArk, Model: "ep-1", MaxTokens: 500, Temperature: 0.7}

	arkCfg := arkModelConfig(cfg, "key")
	require.NotNil(t, arkCfg.Timeout)
	assert.Zero(t, *arkCfg.Timeout)
	require.NotNil(t, arkCfg.RetryTimes)
	assert.Zero(t, *arkCfg.RetryTimes)
	assert.Empty(t, arkCfg.BaseURL)

	cfg.Timeout = 20 * time.Second
	assert.Equal(t, 20*time.Second, *arkModelConfig(cfg, "key").Timeout)
}

func TestNewClientUnknownProvider(t *testing.T) {
	cfg := config.AssistantConfig{Provider: "telegraph"}
	_, err := NewClient(context.Background(), cfg, persona.Seed()[0], StaticCredential("k"), nil)
	assert.Error(t, err)
}
