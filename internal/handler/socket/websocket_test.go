package socket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/model/chat"
	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/model/persona"
	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/service/ai"
	widgetservice "github.com/utkarshbhai007/resume-ripple-portfolio/internal/service/widget"
)

type stubClient struct{}

func (stubClient) RequestReply(_ context.Context, _ []chat.Message, text string) (string, error) {
	return "echo: " + text, nil
}

type frame struct {
	Type     string         `json:"type"`
	WidgetID string         `json:"widgetId"`
	Data     map[string]any `json:"data"`
}

func setup(t *testing.T, allowedOrigins []string) (*httptest.Server, *widgetservice.Service) {
	t.Helper()
	svc := widgetservice.NewService(persona.NewMemoryStore(persona.Seed()),
		func(context.Context, persona.Persona) (ai.Client, error) { return stubClient{}, nil },
		"utkarsh-barad", nil)

	r := chi.NewRouter()
	New(svc, allowedOrigins, nil).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, svc
}

func dial(t *testing.T, srv *httptest.Server, widgetID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/widgets/" + widgetID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func readUntil(t *testing.T, conn *websocket.Conn, match func(frame) bool) frame {
	t.Helper()
	for {
		var f frame
		require.NoError(t, conn.ReadJSON(&f))
		if match(f) {
			return f
		}
	}
}

func TestWebSocketSubmitDeliversReply(t *testing.T) {
	srv, svc := setup(t, nil)
	w, err := svc.Mount(context.Background(), "")
	require.NoError(t, err)

	conn := dial(t, srv, w.ID())
	connected := readUntil(t, conn, func(f frame) bool { return true })
	assert.Equal(t, "connected", connected.Type)
	assert.Equal(t, w.ID(), connected.WidgetID)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": "message",
		"data": map[string]string{"text": "  Hello  "},
	}))

	reply := readUntil(t, conn, func(f frame) bool {
		if f.Type != "message" {
			return false
		}
		msg, _ := f.Data["message"].(map[string]any)
		return msg["role"] == "assistant"
	})
	msg := reply.Data["message"].(map[string]any)
	assert.Equal(t, "echo: Hello", msg["content"])
	assert.Len(t, w.Transcript(), 3)
}

func TestWebSocketReportsBlankMessage(t *testing.T) {
	srv, svc := setup(t, nil)
	w, err := svc.Mount(context.Background(), "")
	require.NoError(t, err)

	conn := dial(t, srv, w.ID())
	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": "message",
		"data": map[string]string{"text": "   "},
	}))

	f := readUntil(t, conn, func(f frame) bool { return f.Type == "error" })
	assert.Contains(t, f.Data["message"], "empty")
	assert.Len(t, w.Transcript(), 1)
}

func TestWebSocketVisibilityAndUnmount(t *testing.T) {
	srv, svc := setup(t, nil)
	w, err := svc.Mount(context.Background(), "")
	require.NoError(t, err)

	conn := dial(t, srv, w.ID())
	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": "visibility",
		"data": map[string]string{"action": "open"},
	}))

	f := readUntil(t, conn, func(f frame) bool { return f.Type == "visibility" })
	vis := f.Data["visibility"].(map[string]any)
	assert.Equal(t, true, vis["open"])

	require.NoError(t, svc.Unmount(w.ID()))
	readUntil(t, conn, func(f frame) bool { return f.Type == "unmounted" })

	var next frame
	err = conn.ReadJSON(&next)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
}

func TestWebSocketUnknownWidget(t *testing.T) {
	srv, _ := setup(t, nil)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/widgets/missing/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://portfolio.example"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://portfolio.example")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(req))

	assert.True(t, originChecker([]string{"*"})(req))
}
