package ai

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"

	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/model/chat"
)

// LangChainClient answers through a langchaingo model.
type LangChainClient struct {
	llm         llms.Model
	preamble    string
	temperature float64
	maxTokens   int
	logger      *zap.Logger
}

// NewLangChainClient wraps an initialized langchaingo model.
func NewLangChainClient(llm llms.Model, preamble string, temperature float64, maxTokens int, logger *zap.Logger) (*LangChainClient, error) {
	if llm == nil {
		return nil, fmt.Errorf("langchain model is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LangChainClient{
		llm:         llm,
		preamble:    preamble,
		temperature: temperature,
		maxTokens:   maxTokens,
		logger:      logger.Named("ai.langchain"),
	}, nil
}

// RequestReply implements Client.
func (c *LangChainClient) RequestReply(ctx context.Context, conversation []chat.Message, newUserText string) (string, error) {
	messages := BuildMessages(c.preamble, conversation, newUserText)

	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		content = append(content, llms.TextParts(messageType(msg.Role), msg.Content))
	}

	resp, err := c.llm.GenerateContent(ctx, content,
		llms.WithTemperature(c.temperature),
		llms.WithMaxTokens(c.maxTokens),
	)
	if err != nil {
		return "", unavailable("generate content: %v", err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", unavailable("response has no choices")
	}

	reply := resp.Choices[0].Content
	c.logger.Debug("generated response",
		zap.Int("history", len(conversation)),
		zap.Int("length", len(reply)))
	return reply, nil
}

func messageType(role chat.Role) schema.ChatMessageType {
	switch role {
	case chat.RoleSystem:
		return schema.ChatMessageTypeSystem
	case chat.RoleAssistant:
		return schema.ChatMessageTypeAI
	default:
		return schema.ChatMessageTypeHuman
	}
}

var _ Client = (*LangChainClient)(nil)
