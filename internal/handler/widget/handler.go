package widget

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/model/chat"
	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/model/persona"
	chatservice "github.com/utkarshbhai007/resume-ripple-portfolio/internal/service/chat"
	widgetservice "github.com/utkarshbhai007/resume-ripple-portfolio/internal/service/widget"
	"github.com/utkarshbhai007/resume-ripple-portfolio/pkg/utils"
)

// Handler 挂件服务的HTTP处理器
type Handler struct {
	widgets *widgetservice.Service
	logger  *zap.Logger
}

// New 创建挂件处理器
func New(widgets *widgetservice.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		widgets: widgets,
		logger:  logger.Named("handler.widget"),
	}
}

// RegisterRoutes 注册挂件相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/widgets", h.handleMount)
	r.Get("/widgets/{widgetID}", h.handleGet)
	r.Delete("/widgets/{widgetID}", h.handleUnmount)
	r.Post("/widgets/{widgetID}/messages", h.handleSubmit)
	r.Post("/widgets/{widgetID}/visibility", h.handleVisibility)
}

// View 是挂件的完整快照
type View struct {
	Session   chat.Session        `json:"session"`
	Persona   persona.Persona     `json:"persona"`
	Messages  []chat.Message      `json:"messages"`
	Composing bool                `json:"composing"`
	State     widgetservice.State `json:"state"`
}

// NewView 生成挂件快照
func NewView(w *widgetservice.Widget) View {
	return View{
		Session:   w.Session(),
		Persona:   w.Persona(),
		Messages:  w.Transcript(),
		Composing: w.Composing(),
		State:     w.State(),
	}
}

// SubmitResponse 是一轮对话的结果
type SubmitResponse struct {
	Reply    chat.Message   `json:"reply"`
	Fallback bool           `json:"fallback"`
	Messages []chat.Message `json:"messages"`
}

// handleMount 挂载新的挂件
func (h *Handler) handleMount(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PersonaID string `json:"personaId"`
	}
	// 空请求体使用默认 persona
	if err := utils.DecodeJSON(w, r, &payload); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	widget, err := h.widgets.Mount(r.Context(), payload.PersonaID)
	if err != nil {
		if errors.Is(err, widgetservice.ErrPersonaNotFound) {
			utils.RespondError(w, http.StatusBadRequest, "persona not found")
			return
		}
		h.logger.Error("mount widget failed", zap.Error(err))
		utils.RespondError(w, http.StatusServiceUnavailable, "assistant unavailable")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, NewView(widget))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	widget, ok := h.lookup(w, r)
	if !ok {
		return
	}
	utils.RespondJSON(w, http.StatusOK, NewView(widget))
}

func (h *Handler) handleUnmount(w http.ResponseWriter, r *http.Request) {
	if err := h.widgets.Unmount(chi.URLParam(r, "widgetID")); err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSubmit 提交用户消息并等待回复
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	widget, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	outcome, err := widget.Submit(r.Context(), payload.Text)
	switch {
	case errors.Is(err, chatservice.ErrEmptyMessage):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, chatservice.ErrReplyPending):
		utils.RespondError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.logger.Error("submit failed", zap.String("widget", widget.ID()), zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "submit failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, SubmitResponse{
		Reply:    outcome.Reply,
		Fallback: outcome.Fallback,
		Messages: widget.Transcript(),
	})
}

func (h *Handler) handleVisibility(w http.ResponseWriter, r *http.Request) {
	widget, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var payload struct {
		Action widgetservice.Action `json:"action"`
	}
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := widget.Apply(payload.Action); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, widget.Session())
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*widgetservice.Widget, bool) {
	widget, err := h.widgets.Get(chi.URLParam(r, "widgetID"))
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	return widget, true
}
