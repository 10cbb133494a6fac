package widget

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/model/persona"
	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/service/ai"
)

var (
	ErrWidgetNotFound  = errors.New("widget not found")
	ErrPersonaNotFound = errors.New("persona not found")
)

// ClientFactory builds the completion client for a persona.
type ClientFactory func(ctx context.Context, p persona.Persona) (ai.Client, error)

// Service keeps the widgets mounted by connected pages.
type Service struct {
	personas         persona.Store
	factory          ClientFactory
	defaultPersonaID string
	logger           *zap.Logger

	mu      sync.RWMutex
	widgets map[string]*Widget
	clients map[string]ai.Client
}

// NewService returns an empty widget registry. Mount without a persona id
// uses defaultPersonaID.
func NewService(personas persona.Store, factory ClientFactory, defaultPersonaID string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		personas:         personas,
		factory:          factory,
		defaultPersonaID: defaultPersonaID,
		logger:           logger.Named("widget"),
		widgets:          make(map[string]*Widget),
		clients:          make(map[string]ai.Client),
	}
}

// Mount creates a widget for the persona. Completion clients are shared by
// every widget of the same persona.
func (s *Service) Mount(ctx context.Context, personaID string) (*Widget, error) {
	if personaID == "" {
		personaID = s.defaultPersonaID
	}

	p, ok := s.personas.FindByID(personaID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPersonaNotFound, personaID)
	}

	client, err := s.clientFor(ctx, p)
	if err != nil {
		return nil, err
	}

	w := New(uuid.NewString(), p, client, s.logger)

	s.mu.Lock()
	s.widgets[w.ID()] = w
	s.mu.Unlock()

	s.logger.Info("widget mounted", zap.String("widget", w.ID()), zap.String("persona", p.ID))
	return w, nil
}

// clientFor builds outside the registry lock. When two mounts race for the
// same persona the first stored client wins.
func (s *Service) clientFor(ctx context.Context, p persona.Persona) (ai.Client, error) {
	s.mu.RLock()
	client, ok := s.clients[p.ID]
	s.mu.RUnlock()
	if ok {
		return client, nil
	}

	built, err := s.factory(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create assistant client for %s: %w", p.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.clients[p.ID]; ok {
		return existing, nil
	}
	s.clients[p.ID] = built
	return built, nil
}

// Get returns a mounted widget.
func (s *Service) Get(id string) (*Widget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.widgets[id]
	if !ok {
		return nil, ErrWidgetNotFound
	}
	return w, nil
}

// Unmount discards a widget and closes its subscriptions. A reply still in
// flight is applied to the detached transcript and then dropped.
func (s *Service) Unmount(id string) error {
	s.mu.Lock()
	w, ok := s.widgets[id]
	delete(s.widgets, id)
	s.mu.Unlock()

	if !ok {
		return ErrWidgetNotFound
	}
	w.unmount()
	s.logger.Info("widget unmounted", zap.String("widget", id))
	return nil
}

// Len returns the number of mounted widgets.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.widgets)
}

// Close unmounts every widget.
func (s *Service) Close() {
	s.mu.Lock()
	widgets := s.widgets
	s.widgets = make(map[string]*Widget)
	s.mu.Unlock()

	for _, w := range widgets {
		w.unmount()
	}
}
