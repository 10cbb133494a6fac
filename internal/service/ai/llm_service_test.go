package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/model/chat"
)

type fakeChatModel struct {
	reply *schema.Message
	err   error
	input []*schema.Message
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.input = input
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func (f *fakeChatModel) Stream(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	f.input = input
	if f.err != nil {
		return nil, f.err
	}
	return schema.StreamReaderFromArray([]*schema.Message{f.reply}), nil
}

func TestChainClientRendersPreambleHistoryAndQuery(t *testing.T) {
	fake := &fakeChatModel{reply: schema.AssistantMessage("I build {web} apps.", nil)}
	client, err := NewChainClient(context.Background(), fake, "You speak for {Ada}.", nil)
	require.NoError(t, err)

	history := []chat.Message{
		chat.AssistantMessage("Hi there!"),
		chat.UserMessage("Hello"),
		chat.AssistantMessage("Hey"),
	}
	reply, err := client.RequestReply(context.Background(), history, "What do you build?")
	require.NoError(t, err)
	assert.Equal(t, "I build {web} apps.", reply)

	require.Len(t, fake.input, 5)
	assert.Equal(t, schema.System, fake.input[0].Role)
	assert.Equal(t, "You speak for {Ada}.", fake.input[0].Content)
	assert.Equal(t, schema.Assistant, fake.input[1].Role)
	assert.Equal(t, schema.User, fake.input[2].Role)
	assert.Equal(t, "Hey", fake.input[3].Content)
	assert.Equal(t, schema.User, fake.input[4].Role)
	assert.Equal(t, "What do you build?", fake.input[4].Content)
}

func TestChainClientWrapsModelErrors(t *testing.T) {
	fake := &fakeChatModel{err: errors.New("429 too many requests")}
	client, err := NewChainClient(context.Background(), fake, "p", nil)
	require.NoError(t, err)

	_, err = client.RequestReply(context.Background(), nil, "Hello")
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestNewChainClientRequiresModel(t *testing.T) {
	_, err := NewChainClient(context.Background(), nil, "p", nil)
	assert.Error(t, err)
}

func TestBuildHistoryMessagesDropsSystemTurns(t *testing.T) {
	history := buildHistoryMessages([]chat.Message{
		{Role: chat.RoleSystem, Content: "hidden"},
		chat.UserMessage("u"),
	})
	require.Len(t, history, 1)
	assert.Equal(t, schema.User, history[0].Role)
	assert.Nil(t, buildHistoryMessages(nil))
}
