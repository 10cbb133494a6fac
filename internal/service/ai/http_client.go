package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/model/chat"
)

const maxResponseBytes = 4 << 20

// HTTPConfig describes a chat-completions endpoint.
type HTTPConfig struct {
	Endpoint    string
	Model       string
	Temperature float64
	MaxTokens   int
	// Timeout of zero means the request may wait forever.
	Timeout time.Duration
}

// HTTPClient issues one POST per reply against an OpenAI-compatible
// chat-completions endpoint.
type HTTPClient struct {
	cfg         HTTPConfig
	preamble    string
	credentials CredentialProvider
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewHTTPClient builds an HTTPClient. A nil httpClient gets a default one
// honoring cfg.Timeout.
func NewHTTPClient(cfg HTTPConfig, preamble string, credentials CredentialProvider, httpClient *http.Client, logger *zap.Logger) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		cfg:         cfg,
		preamble:    preamble,
		credentials: credentials,
		httpClient:  httpClient,
		logger:      logger.Named("ai.http"),
	}
}

type completionRequest struct {
	Model       string         `json:"model"`
	Messages    []chat.Message `json:"messages"`
	Temperature float64        `json:"temperature"`
	MaxTokens   int            `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// RequestReply implements Client.
func (c *HTTPClient) RequestReply(ctx context.Context, conversation []chat.Message, newUserText string) (string, error) {
	token, err := c.credentials.Credential(ctx)
	if err != nil {
		return "", unavailable("resolve credential: %v", err)
	}

	body, err := json.Marshal(completionRequest{
		Model:       c.cfg.Model,
		Messages:    BuildMessages(c.preamble, conversation, newUserText),
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		return "", unavailable("encode request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", unavailable("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", unavailable("send request: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", unavailable("read response: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", unavailable("unexpected status %d", resp.StatusCode)
	}

	reply, err := parseCompletion(raw)
	if err != nil {
		return "", err
	}

	c.logger.Debug("completion received",
		zap.Int("status", resp.StatusCode),
		zap.Int("history", len(conversation)),
		zap.Int("length", len(reply)),
		zap.Duration("elapsed", time.Since(started)))
	return reply, nil
}

func parseCompletion(raw []byte) (string, error) {
	var payload completionResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", unavailable("decode response: %v", err)
	}
	if len(payload.Choices) == 0 {
		return "", unavailable("response has no choices")
	}
	content := payload.Choices[0].Message.Content
	if content == nil {
		return "", unavailable("first choice has no message content")
	}
	return *content, nil
}

var _ Client = (*HTTPClient)(nil)
