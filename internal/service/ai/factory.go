package ai

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/openai"
	lcopenai "github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/config"
	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/model/persona"
)

// NewClient builds the Client selected by cfg.Provider for the given persona.
// Every provider resolves the credential per request, so a missing or rotated
// key surfaces as ErrServiceUnavailable on the turn instead of at mount.
func NewClient(ctx context.Context, cfg config.AssistantConfig, p persona.Persona, credentials CredentialProvider, logger *zap.Logger) (Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	preamble := BuildPreamble(p)

	switch cfg.Provider {
	case config.ProviderHTTP, "":
		return NewHTTPClient(HTTPConfig{
			Endpoint:    cfg.Endpoint(),
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
		}, preamble, credentials, nil, logger), nil

	case config.ProviderArk:
		// AK/SK 鉴权时 API Key 可以缺省
		if cfg.AccessKey != "" && cfg.SecretKey != "" {
			credentials = optionalCredential{credentials}
		}
		return newLazyClient(credentials, func(ctx context.Context, apiKey string) (Client, error) {
			if apiKey == "" && (cfg.AccessKey == "" || cfg.SecretKey == "") {
				return nil, fmt.Errorf("Ark 凭证缺失，需要 ASSISTANT_API_KEY 或 AK/SK 组合")
			}
			chatModel, err := ark.NewChatModel(ctx, arkModelConfig(cfg, apiKey))
			if err != nil {
				return nil, fmt.Errorf("failed to create ark chat model: %w", err)
			}
			return NewChainClient(ctx, chatModel, preamble, logger)
		}, logger), nil

	case config.ProviderOpenAI:
		return newLazyClient(credentials, func(ctx context.Context, token string) (Client, error) {
			chatModel, err := openai.NewChatModel(ctx, openAIModelConfig(cfg, token))
			if err != nil {
				return nil, fmt.Errorf("failed to create openai chat model: %w", err)
			}
			return NewChainClient(ctx, chatModel, preamble, logger)
		}, logger), nil

	case config.ProviderLangChain:
		return newLazyClient(credentials, func(ctx context.Context, token string) (Client, error) {
			opts := []lcopenai.Option{
				lcopenai.WithToken(token),
				lcopenai.WithModel(cfg.Model),
				lcopenai.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
			}
			if cfg.BaseURL != "" {
				opts = append(opts, lcopenai.WithBaseURL(cfg.BaseURL))
			}
			llm, err := lcopenai.New(opts...)
			if err != nil {
				return nil, fmt.Errorf("failed to create langchain model: %w", err)
			}
			return NewLangChainClient(llm, preamble, cfg.Temperature, cfg.MaxTokens, logger)
		}, logger), nil

	default:
		return nil, fmt.Errorf("unsupported assistant provider %q", cfg.Provider)
	}
}

// arkModelConfig always sets Timeout so that 0 means no timeout rather than
// the SDK default. Retries are disabled.
func arkModelConfig(cfg config.AssistantConfig, apiKey string) *ark.ChatModelConfig {
	temperature := float32(cfg.Temperature)
	maxTokens := cfg.MaxTokens
	noRetry := 0
	timeout := cfg.Timeout

	return &ark.ChatModelConfig{
		BaseURL:     cfg.BaseURL,
		Region:      cfg.Region,
		APIKey:      apiKey,
		AccessKey:   cfg.AccessKey,
		SecretKey:   cfg.SecretKey,
		Model:       cfg.Model,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
		RetryTimes:  &noRetry,
		Timeout:     &timeout,
	}
}

func openAIModelConfig(cfg config.AssistantConfig, token string) *openai.ChatModelConfig {
	temperature := float32(cfg.Temperature)
	maxTokens := cfg.MaxTokens

	return &openai.ChatModelConfig{
		APIKey:      token,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
		Timeout:     cfg.Timeout,
	}
}
