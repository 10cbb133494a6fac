package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/model/chat"
)

// ErrServiceUnavailable is the single failure kind reported by every Client.
// Transport errors, non-2xx statuses, timeouts and malformed bodies all wrap it.
var ErrServiceUnavailable = errors.New("assistant service unavailable")

// Client turns a conversation into one completion request.
type Client interface {
	// RequestReply sends the persona preamble, the prior conversation and the
	// new user text, and returns the first completion verbatim.
	RequestReply(ctx context.Context, conversation []chat.Message, newUserText string) (string, error)
}

// BuildMessages lays out an outbound request: the system preamble, the prior
// conversation in order, then the new user turn.
func BuildMessages(preamble string, conversation []chat.Message, newUserText string) []chat.Message {
	messages := make([]chat.Message, 0, len(conversation)+2)
	messages = append(messages, chat.Message{Role: chat.RoleSystem, Content: preamble})
	messages = append(messages, conversation...)
	messages = append(messages, chat.UserMessage(newUserText))
	return messages
}

func unavailable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrServiceUnavailable, fmt.Sprintf(format, args...))
}
