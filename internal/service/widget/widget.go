package widget

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/model/chat"
	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/model/persona"
	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/service/ai"
	chatservice "github.com/utkarshbhai007/resume-ripple-portfolio/internal/service/chat"
)

// FallbackMessage replaces the assistant reply when the completion service fails.
const FallbackMessage = "I'm having trouble connecting to my knowledge base right now. Please try again in a moment."

// ConnectionErrorNotification is raised alongside FallbackMessage. It never
// carries the underlying error.
var ConnectionErrorNotification = Notification{
	Title:       "Connection Error",
	Description: "Couldn't connect to the AI service. Please try again later.",
	Variant:     "destructive",
}

// State is the position of a widget in its per-turn cycle.
type State string

const (
	StateIdle          State = "idle"
	StateAwaitingReply State = "awaiting_reply"
)

// Outcome reports how a submitted turn was answered.
type Outcome struct {
	Reply    chat.Message `json:"reply"`
	Fallback bool         `json:"fallback"`
}

// Widget is one mounted assistant: a transcript, a completion client and the
// presentational flags of the chat window.
type Widget struct {
	id        string
	persona   persona.Persona
	createdAt time.Time
	store     *chatservice.Store
	client    ai.Client
	bus       *Bus
	logger    *zap.Logger

	mu        sync.RWMutex
	open      bool
	minimized bool
}

// New mounts a widget seeded with the persona greeting.
func New(id string, p persona.Persona, client ai.Client, logger *zap.Logger) *Widget {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Widget{
		id:        id,
		persona:   p,
		createdAt: time.Now().UTC(),
		store:     chatservice.NewStore(p.Greeting),
		client:    client,
		bus:       NewBus(),
		logger:    logger.With(zap.String("widget", id)),
	}
}

// ID returns the widget identifier.
func (w *Widget) ID() string { return w.id }

// Persona returns the persona the widget speaks for.
func (w *Widget) Persona() persona.Persona { return w.persona }

// Transcript returns a copy of the conversation.
func (w *Widget) Transcript() []chat.Message { return w.store.Snapshot() }

// Composing reports whether a reply is in flight.
func (w *Widget) Composing() bool { return w.store.Composing() }

// State derives the cycle state from the composing flag.
func (w *Widget) State() State {
	if w.store.Composing() {
		return StateAwaitingReply
	}
	return StateIdle
}

// Session describes the widget for the presentation layer.
func (w *Widget) Session() chat.Session {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return chat.Session{
		ID:        w.id,
		PersonaID: w.persona.ID,
		CreatedAt: w.createdAt,
		Open:      w.open,
		Minimized: w.minimized,
	}
}

// Subscribe registers an event listener. Callers must Close it.
func (w *Widget) Subscribe(buffer int) *Subscription {
	return w.bus.Subscribe(buffer)
}

// Submit runs one turn. Blank text returns chat.ErrEmptyMessage and a
// submission while a reply is pending returns chat.ErrReplyPending; neither
// changes state. Otherwise the turn is always answered, with FallbackMessage
// and a connection notification when the service fails. The completion
// request is detached from ctx cancellation and runs until it resolves.
func (w *Widget) Submit(ctx context.Context, text string) (Outcome, error) {
	prior, err := w.store.AppendUserMessage(text)
	if err != nil {
		return Outcome{}, err
	}

	content := strings.TrimSpace(text)
	w.publishMessage(chat.UserMessage(content))
	w.publishComposing(true)

	reply, err := w.requestReply(context.WithoutCancel(ctx), prior, content)
	if err != nil {
		w.logger.Warn("assistant request failed, using fallback",
			zap.Int("history", len(prior)),
			zap.Error(err))
		return w.answer(FallbackMessage, true), nil
	}

	w.logger.Info("assistant replied", zap.Int("length", len(reply)))
	return w.answer(reply, false), nil
}

// requestReply converts a panicking client into a failure so the user turn
// is still answered.
func (w *Widget) requestReply(ctx context.Context, prior []chat.Message, content string) (reply string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: client panic: %v", ai.ErrServiceUnavailable, r)
		}
	}()
	return w.client.RequestReply(ctx, prior, content)
}

func (w *Widget) answer(text string, fallback bool) Outcome {
	w.store.AppendAssistantMessage(text)

	msg := chat.AssistantMessage(text)
	w.publishMessage(msg)
	w.publishComposing(false)
	if fallback {
		notification := ConnectionErrorNotification
		w.bus.Publish(Event{Type: EventNotification, WidgetID: w.id, Notification: &notification})
	}
	return Outcome{Reply: msg, Fallback: fallback}
}

// Action names a presentational toggle.
type Action string

const (
	ActionOpen     Action = "open"
	ActionClose    Action = "close"
	ActionMinimize Action = "minimize"
	ActionRestore  Action = "restore"
)

// ErrUnknownAction is returned by Apply for an unrecognised action.
var ErrUnknownAction = errors.New("unknown visibility action")

// Apply performs a visibility toggle by name.
func (w *Widget) Apply(action Action) error {
	switch action {
	case ActionOpen:
		w.Open()
	case ActionClose:
		w.Close()
	case ActionMinimize:
		w.Minimize()
	case ActionRestore:
		w.Restore()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	return nil
}

// Open shows the chat window.
func (w *Widget) Open() { w.setVisibility(func() { w.open = true }) }

// Close hides the chat window. The transcript is kept.
func (w *Widget) Close() { w.setVisibility(func() { w.open = false }) }

// Minimize collapses the chat window to its header.
func (w *Widget) Minimize() { w.setVisibility(func() { w.minimized = true }) }

// Restore expands a minimized chat window.
func (w *Widget) Restore() { w.setVisibility(func() { w.minimized = false }) }

func (w *Widget) setVisibility(apply func()) {
	w.mu.Lock()
	apply()
	vis := Visibility{Open: w.open, Minimized: w.minimized}
	w.mu.Unlock()

	w.bus.Publish(Event{Type: EventVisibility, WidgetID: w.id, Visibility: &vis})
}

// unmount notifies listeners and releases every subscription.
func (w *Widget) unmount() {
	w.bus.Publish(Event{Type: EventUnmounted, WidgetID: w.id})
	w.bus.Close()
}

func (w *Widget) publishMessage(msg chat.Message) {
	w.bus.Publish(Event{Type: EventMessage, WidgetID: w.id, Message: &msg})
}

func (w *Widget) publishComposing(composing bool) {
	w.bus.Publish(Event{Type: EventComposing, WidgetID: w.id, Composing: &composing})
}
