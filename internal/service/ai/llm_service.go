package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/model/chat"
)

// ChainClient answers through an eino chain: the persona preamble and the
// conversation are rendered by a chat template and handed to a chat model.
type ChainClient struct {
	chatModel model.BaseChatModel
	preamble  string
	chain     compose.Runnable[map[string]any, *schema.Message]
	logger    *zap.Logger
}

// NewChainClient compiles the prompt chain around chatModel.
func NewChainClient(ctx context.Context, chatModel model.BaseChatModel, preamble string, logger *zap.Logger) (*ChainClient, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &ChainClient{
		chatModel: chatModel,
		preamble:  preamble,
		chain:     runnable,
		logger:    logger.Named("ai.chain"),
	}, nil
}

// RequestReply implements Client.
func (c *ChainClient) RequestReply(ctx context.Context, conversation []chat.Message, newUserText string) (string, error) {
	input := map[string]any{
		"system":  c.preamble,
		"history": buildHistoryMessages(conversation),
		"query":   newUserText,
	}

	response, err := c.chain.Invoke(ctx, input)
	if err != nil {
		return "", unavailable("run chat chain: %v", err)
	}
	if response == nil {
		return "", unavailable("chat chain returned no message")
	}

	c.logger.Debug("generated response",
		zap.Int("history", len(conversation)),
		zap.Int("length", len(response.Content)))
	return response.Content, nil
}

func buildHistoryMessages(messages []chat.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	history := make([]*schema.Message, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(msg.Content))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}
	return history
}

var _ Client = (*ChainClient)(nil)
