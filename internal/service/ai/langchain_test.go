package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/model/chat"
)

type fakeLLM struct {
	resp     *llms.ContentResponse
	err      error
	messages []llms.MessageContent
	opts     llms.CallOptions
}

func (f *fakeLLM) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	for _, opt := range options {
		opt(&f.opts)
	}
	return f.resp, f.err
}

func (f *fakeLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestLangChainClientMapsRolesAndOptions(t *testing.T) {
	fake := &fakeLLM{resp: &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "Sure thing. "}}}}
	client, err := NewLangChainClient(fake, "preamble", 0.7, 500, nil)
	require.NoError(t, err)

	reply, err := client.RequestReply(context.Background(), []chat.Message{chat.AssistantMessage("Hi")}, "Hello")
	require.NoError(t, err)
	assert.Equal(t, "Sure thing. ", reply)

	require.Len(t, fake.messages, 3)
	assert.Equal(t, schema.ChatMessageTypeSystem, fake.messages[0].Role)
	assert.Equal(t, schema.ChatMessageTypeAI, fake.messages[1].Role)
	assert.Equal(t, schema.ChatMessageTypeHuman, fake.messages[2].Role)
	assert.Equal(t, llms.TextContent{Text: "Hello"}, fake.messages[2].Parts[0])
	assert.Equal(t, 0.7, fake.opts.Temperature)
	assert.Equal(t, 500, fake.opts.MaxTokens)
}

func TestLangChainClientFailures(t *testing.T) {
	cases := map[string]*fakeLLM{
		"error":      {err: errors.New("connection refused")},
		"nil":        {},
		"no choices": {resp: &llms.ContentResponse{}},
	}
	for name, fake := range cases {
		t.Run(name, func(t *testing.T) {
			client, err := NewLangChainClient(fake, "p", 0.7, 500, nil)
			require.NoError(t, err)

			_, err = client.RequestReply(context.Background(), nil, "Hello")
			assert.ErrorIs(t, err, ErrServiceUnavailable)
		})
	}
}
