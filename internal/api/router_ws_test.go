package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/tesloshop/shop-auth/internal/api/ws"
	"github.com/tesloshop/shop-auth/internal/core/domain"
	"github.com/tesloshop/shop-auth/internal/core/realtime"
	"github.com/tesloshop/shop-auth/internal/infrastructure/queue"
)

func newWSRouterServer(t *testing.T) *httptest.Server {
	t.Helper()
	tokens := stubTokens{
		"user-token": {ID: "u", FullName: "User", IsActive: true, Roles: []domain.Role{domain.RoleUser}},
	}

	ctx, cancel := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(2, zerolog.Nop())
	dispatcher.Start(ctx)
	gateway := realtime.NewGateway(tokens, realtime.NewRegistry(), dispatcher, zerolog.Nop())

	srv := httptest.NewServer(NewRouter(Dependencies{
		Log:       zerolog.Nop(),
		Auth:      stubCredentials{},
		Validator: tokens,
		WS:        ws.NewHandler(gateway, dispatcher, zerolog.Nop()),
		Registry:  prometheus.NewRegistry(),
	}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return srv
}

type wsFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func readWSFrame(t *testing.T, conn *websocket.Conn) wsFrame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f wsFrame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read: %v", err)
	}
	return f
}

func TestRouter_WebsocketThroughMiddleware(t *testing.T) {
	srv := newWSRouterServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Authorization": {"Bearer user-token"}})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	f := readWSFrame(t, conn)
	var presence []realtime.Presence
	if err := json.Unmarshal(f.Data, &presence); err != nil {
		t.Fatalf("decode presence: %v", err)
	}
	if f.Event != realtime.EventClientsUpdated || len(presence) != 1 || presence[0].FullName != "User" {
		t.Fatalf("unexpected frame: %s %+v", f.Event, presence)
	}

	if err := conn.WriteJSON(map[string]any{"event": realtime.EventMessageFromClient}); err != nil {
		t.Fatalf("write: %v", err)
	}
	f = readWSFrame(t, conn)
	var msg realtime.ChatMessage
	if err := json.Unmarshal(f.Data, &msg); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if f.Event != realtime.EventMessageFromServer || msg != (realtime.ChatMessage{FullName: "User", Message: realtime.EmptyMessagePlaceholder}) {
		t.Fatalf("unexpected frame: %s %+v", f.Event, msg)
	}
}

func TestRouter_WebsocketRefusesBadToken(t *testing.T) {
	srv := newWSRouterServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	conn, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Authorization": {"Bearer forged"}})
	if err == nil {
		conn.Close()
		t.Fatalf("expected handshake to be refused")
	}
	if resp != nil {
		t.Fatalf("expected no HTTP response, got %d", resp.StatusCode)
	}
}
