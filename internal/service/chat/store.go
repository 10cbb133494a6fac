package chat

import (
	"errors"
	"strings"
	"sync"

	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/model/chat"
)

var (
	// ErrEmptyMessage is returned when the submitted text is blank after trimming.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrReplyPending is returned when a reply is still being composed.
	ErrReplyPending = errors.New("assistant reply pending")
)

// Store holds the transcript of one widget and its composing flag.
// It is the only place the transcript is mutated.
type Store struct {
	mu        sync.RWMutex
	messages  []chat.Message
	composing bool
}

// NewStore returns a Store seeded with the assistant greeting.
func NewStore(greeting string) *Store {
	messages := make([]chat.Message, 0, 16)
	messages = append(messages, chat.AssistantMessage(greeting))
	return &Store{messages: messages}
}

// AppendUserMessage appends the trimmed text as a user turn and marks the
// assistant as composing. It returns the transcript as it was before the new
// turn. Blank text and submissions while composing leave the store untouched.
func (s *Store) AppendUserMessage(text string) ([]chat.Message, error) {
	content := strings.TrimSpace(text)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.composing {
		return nil, ErrReplyPending
	}

	prior := make([]chat.Message, len(s.messages))
	copy(prior, s.messages)

	s.messages = append(s.messages, chat.UserMessage(content))
	s.composing = true
	return prior, nil
}

// AppendAssistantMessage appends an assistant turn and clears the composing flag.
func (s *Store) AppendAssistantMessage(text string) {
	s.mu.Lock()
	s.messages = append(s.messages, chat.AssistantMessage(text))
	s.composing = false
	s.mu.Unlock()
}

// Snapshot returns a copy of the transcript in display order.
func (s *Store) Snapshot() []chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]chat.Message, len(s.messages))
	copy(copied, s.messages)
	return copied
}

// Composing reports whether a reply is in flight.
func (s *Store) Composing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.composing
}

// Len returns the number of transcript entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}
