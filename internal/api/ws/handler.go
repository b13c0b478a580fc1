// Package ws is the websocket transport for the real-time gateway.
//
// Frames are JSON envelopes {"event": name, "data": payload}. The handshake
// credential is the Authorization header of the upgrade request, either a
// raw token or "Bearer <token>". It is validated before the upgrade, and a
// refused request is dropped without any response.
package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tesloshop/shop-auth/internal/api/metrics"
	"github.com/tesloshop/shop-auth/internal/api/middleware"
	"github.com/tesloshop/shop-auth/internal/core/realtime"
	"github.com/tesloshop/shop-auth/internal/infrastructure/queue"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 << 10
)

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outboundEnvelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type clientMessage struct {
	Message string `json:"message"`
}

// Handler upgrades HTTP requests to websocket connections and runs one
// gateway session per connection.
type Handler struct {
	gateway    *realtime.Gateway
	dispatcher *queue.Dispatcher
	upgrader   websocket.Upgrader
	log        zerolog.Logger
}

func NewHandler(gateway *realtime.Gateway, dispatcher *queue.Dispatcher, log zerolog.Logger) *Handler {
	return &Handler{
		gateway:    gateway,
		dispatcher: dispatcher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log: log,
	}
}

// Serve handles GET /ws. The credential is validated before the upgrade; a
// refused request gets no HTTP response at all, its connection is closed.
func (h *Handler) Serve(c echo.Context) error {
	credential := middleware.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
	identity, err := h.gateway.Authenticate(c.Request().Context(), credential)
	if err != nil {
		metrics.TokenValidationsTotal.WithLabelValues("ws", middleware.ValidationResult(err)).Inc()
		metrics.GatewayHandshakesRejectedTotal.Inc()
		h.log.Debug().Err(err).Str("remote_ip", c.RealIP()).Msg("handshake rejected")
		h.drop(c)
		return nil
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already replied with an HTTP error.
		h.log.Debug().Err(err).Msg("websocket upgrade failed")
		return nil
	}

	connectionID := uuid.NewString()
	h.dispatcher.Attach(connectionID, &peer{conn: conn})
	session := h.gateway.Open(connectionID, identity)
	metrics.TokenValidationsTotal.WithLabelValues("ws", middleware.ValidationResult(nil)).Inc()
	metrics.GatewayConnections.Inc()

	done := make(chan struct{})
	defer func() {
		close(done)
		session.Close()
		h.dispatcher.Detach(connectionID)
		_ = conn.Close()
		metrics.GatewayConnections.Dec()
	}()

	go keepAlive(conn, done)
	h.readLoop(session, conn)
	return nil
}

func (h *Handler) readLoop(session *realtime.Session, conn *websocket.Conn) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug().Err(err).Str("connection_id", session.ID()).Msg("connection dropped")
			}
			return
		}

		var in envelope
		if err := json.Unmarshal(data, &in); err != nil {
			h.log.Debug().Err(err).Str("connection_id", session.ID()).Msg("ignoring malformed frame")
			continue
		}

		switch in.Event {
		case realtime.EventMessageFromClient:
			var msg clientMessage
			if len(in.Data) > 0 {
				if err := json.Unmarshal(in.Data, &msg); err != nil {
					h.log.Debug().Err(err).Str("connection_id", session.ID()).Msg("malformed message data, relaying placeholder")
				}
			}
			if err := session.Relay(msg.Message); err != nil {
				return
			}
			metrics.GatewayMessagesRelayedTotal.Inc()
		default:
			h.log.Debug().Str("event", in.Event).Str("connection_id", session.ID()).Msg("ignoring unknown event")
		}
	}
}

// drop closes the underlying TCP connection without writing a response.
func (h *Handler) drop(c echo.Context) {
	raw, _, err := c.Response().Hijack()
	if err != nil {
		h.log.Debug().Err(err).Msg("hijack failed, answering 401 without body")
		_ = c.NoContent(http.StatusUnauthorized)
		return
	}
	_ = raw.Close()
}

func keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// peer adapts a websocket connection to queue.Peer. WriteEvent is only ever
// called from the dispatcher worker that owns this connection id.
type peer struct {
	conn *websocket.Conn
}

func (p *peer) WriteEvent(ev realtime.Event) error {
	_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return p.conn.WriteJSON(outboundEnvelope{Event: ev.Name, Data: ev.Payload})
}

func (p *peer) Close() error {
	return p.conn.Close()
}
