package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/config"
	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/handler/persona"
	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/handler/socket"
	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/handler/stream"
	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/handler/widget"
	middlewarePkg "github.com/utkarshbhai007/resume-ripple-portfolio/internal/middleware"
	personaModel "github.com/utkarshbhai007/resume-ripple-portfolio/internal/model/persona"
	widgetService "github.com/utkarshbhai007/resume-ripple-portfolio/internal/service/widget"
	"github.com/utkarshbhai007/resume-ripple-portfolio/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(serverCfg config.ServerConfig, personas personaModel.Store, widgets *widgetService.Service, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger(logger.Named("http")))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(serverCfg.AllowedOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"widgets": widgets.Len(),
		})
	})

	r.Route("/api", func(api chi.Router) {
		persona.New(personas).RegisterRoutes(api)
		widget.New(widgets, logger).RegisterRoutes(api)

		// 事件推送：SSE 与 WebSocket 两种通道
		stream.New(widgets, logger).RegisterRoutes(api)
		socket.New(widgets, serverCfg.AllowedOrigins, logger).RegisterRoutes(api)
	})

	return r
}
