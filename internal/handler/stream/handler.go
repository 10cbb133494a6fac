package stream

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	widgetservice "github.com/utkarshbhai007/resume-ripple-portfolio/internal/service/widget"
	"github.com/utkarshbhai007/resume-ripple-portfolio/pkg/utils"
)

const defaultHeartbeat = 15 * time.Second

// Handler streams widget events via Server-Sent Events
type Handler struct {
	widgets   *widgetservice.Service
	logger    *zap.Logger
	heartbeat time.Duration
}

// New creates a new stream handler
func New(widgets *widgetservice.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		widgets:   widgets,
		logger:    logger.Named("handler.stream"),
		heartbeat: defaultHeartbeat,
	}
}

// RegisterRoutes registers the event stream route
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/widgets/{widgetID}/events", h.handleEvents)
}

// handleEvents sends a ready event with the current snapshot, then every
// widget event until the client leaves or the widget is unmounted.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widgetID")
	widget, err := h.widgets.Get(widgetID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sub := widget.Subscribe(32)
	defer sub.Close()

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	log := h.logger.With(zap.String("widget", widgetID))
	log.Debug("event stream opened")
	defer log.Debug("event stream closed")

	if err := utils.SendSSEEvent(w, flusher, "ready", map[string]any{
		"session":   widget.Session(),
		"messages":  widget.Transcript(),
		"composing": widget.Composing(),
	}); err != nil {
		log.Warn("send ready event failed", zap.Error(err))
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := utils.SendSSEEvent(w, flusher, string(ev.Type), ev); err != nil {
				log.Warn("send event failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := utils.SendSSEComment(w, flusher, "heartbeat"); err != nil {
				return
			}
		}
	}
}
