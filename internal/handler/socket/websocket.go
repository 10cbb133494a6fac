package socket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	chatservice "github.com/utkarshbhai007/resume-ripple-portfolio/internal/service/chat"
	widgetservice "github.com/utkarshbhai007/resume-ripple-portfolio/internal/service/widget"
)

const (
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
	pingInterval = 54 * time.Second
)

// Handler WebSocket挂件处理器
type Handler struct {
	widgets  *widgetservice.Service
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// New 创建WebSocket处理器，allowedOrigins 为空或包含 "*" 时不校验来源
func New(widgets *widgetservice.Service, allowedOrigins []string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		widgets: widgets,
		logger:  logger.Named("handler.socket"),
		upgrader: websocket.Upgrader{
			CheckOrigin:     originChecker(allowedOrigins),
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/widgets/{widgetID}/ws", h.handleWebSocket)
}

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// TextMessage 文本消息
type TextMessage struct {
	Text string `json:"text"`
}

// VisibilityMessage 窗口状态切换
type VisibilityMessage struct {
	Action widgetservice.Action `json:"action"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	WidgetID  string      `json:"widgetId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// connection 串行化对同一连接的写操作
type connection struct {
	conn     *websocket.Conn
	widget   *widgetservice.Widget
	outbound chan outgoingMessage
	logger   *zap.Logger
}

// handleWebSocket 处理WebSocket连接
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widgetID")
	widget, err := h.widgets.Get(widgetID)
	if err != nil {
		http.Error(w, "widget not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	log := h.logger.With(zap.String("widget", widgetID))
	log.Info("websocket connected")
	defer log.Info("websocket disconnected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sub := widget.Subscribe(32)
	defer sub.Close()

	c := &connection{
		conn:     conn,
		widget:   widget,
		outbound: make(chan outgoingMessage, 8),
		logger:   log,
	}

	c.send(ctx, outgoingMessage{
		Type:     "connected",
		WidgetID: widgetID,
		Data: map[string]any{
			"session":   widget.Session(),
			"messages":  widget.Transcript(),
			"composing": widget.Composing(),
		},
	})

	go func() {
		defer cancel()
		c.writeLoop(ctx, sub)
	}()

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) && ctx.Err() == nil {
				log.Warn("read failed", zap.Error(err))
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(readTimeout))

		c.handleMessage(ctx, &msg)
	}
}

func (c *connection) handleMessage(ctx context.Context, msg *inboundMessage) {
	switch msg.Type {
	case "message":
		var payload TextMessage
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			c.sendError(ctx, "invalid message payload")
			return
		}
		// 回复通过事件总线送达，读循环不等待
		go func() {
			_, err := c.widget.Submit(ctx, payload.Text)
			switch {
			case errors.Is(err, chatservice.ErrEmptyMessage), errors.Is(err, chatservice.ErrReplyPending):
				c.sendError(ctx, err.Error())
			case err != nil:
				c.logger.Error("submit failed", zap.Error(err))
				c.sendError(ctx, "submit failed")
			}
		}()
	case "visibility":
		var payload VisibilityMessage
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			c.sendError(ctx, "invalid visibility payload")
			return
		}
		if err := c.widget.Apply(payload.Action); err != nil {
			c.sendError(ctx, err.Error())
		}
	case "ping":
		c.send(ctx, outgoingMessage{Type: "pong", WidgetID: c.widget.ID()})
	default:
		c.sendError(ctx, "unsupported message type")
	}
}

// writeLoop 是连接唯一的写入者，同时负责心跳
func (c *connection) writeLoop(ctx context.Context, sub *widgetservice.Subscription) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.outbound:
			if err := c.write(msg); err != nil {
				return
			}
		case ev, ok := <-sub.Events():
			if !ok {
				c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "widget unmounted"),
					time.Now().Add(writeTimeout))
				return
			}
			if err := c.write(outgoingMessage{
				Type:      string(ev.Type),
				WidgetID:  ev.WidgetID,
				Data:      ev,
				Timestamp: ev.Timestamp,
			}); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}

func (c *connection) write(msg outgoingMessage) error {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteJSON(msg); err != nil {
		c.logger.Warn("write failed", zap.String("type", msg.Type), zap.Error(err))
		return err
	}
	return nil
}

func (c *connection) send(ctx context.Context, msg outgoingMessage) {
	select {
	case c.outbound <- msg:
	case <-ctx.Done():
	}
}

func (c *connection) sendError(ctx context.Context, message string) {
	c.send(ctx, outgoingMessage{
		Type:     "error",
		WidgetID: c.widget.ID(),
		Data:     map[string]string{"message": message},
	})
}

func originChecker(allowedOrigins []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowedOrigins) == 0 {
			return true
		}
		for _, o := range allowedOrigins {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}
