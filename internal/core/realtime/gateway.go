// Package realtime holds the authenticated chat gateway: the connection
// registry and the per-connection session state machine. It is transport
// agnostic; the websocket adapter lives in internal/api/ws.
package realtime

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/tesloshop/shop-auth/internal/core/domain"
	"github.com/tesloshop/shop-auth/internal/core/ports"
)

const (
	EventMessageFromClient = "message-from-client"
	EventMessageFromServer = "message-from-server"
	EventClientsUpdated    = "clients-updated"
)

// EmptyMessagePlaceholder replaces an empty chat message body.
const EmptyMessagePlaceholder = "No message"

// Event is one outbound frame.
type Event struct {
	Name    string
	Payload any
}

// ChatMessage is the payload of EventMessageFromServer.
type ChatMessage struct {
	FullName string `json:"fullName"`
	Message  string `json:"message"`
}

// Presence is one item of the EventClientsUpdated payload.
type Presence struct {
	IdentityID string `json:"identityId"`
	FullName   string `json:"fullName"`
}

// Broadcaster delivers an event to the given connections. Implementations
// must not block the caller on slow peers.
type Broadcaster interface {
	Broadcast(connectionIDs []string, ev Event)
}

// State is the lifecycle state of one connection.
type State int32

const (
	StateConnecting State = iota
	StateAuthenticated
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticated:
		return "authenticated"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "invalid"
	}
}

// Gateway validates handshakes, keeps the registry current and fans events
// out to every open connection.
type Gateway struct {
	validator ports.TokenValidator
	registry  *Registry
	out       Broadcaster
	log       zerolog.Logger
}

func NewGateway(validator ports.TokenValidator, registry *Registry, out Broadcaster, log zerolog.Logger) *Gateway {
	return &Gateway{validator: validator, registry: registry, out: out, log: log}
}

// Registry exposes the gateway's connection registry for read access.
func (g *Gateway) Registry() *Registry {
	return g.registry
}

// Connect runs the handshake for connectionID. On failure nothing is
// registered and nothing is broadcast; the caller must drop the connection
// without a payload. On success the connection is Open and every open
// connection, including the new one, receives the updated presence list.
func (g *Gateway) Connect(ctx context.Context, connectionID, credential string) (*Session, error) {
	identity, err := g.Authenticate(ctx, credential)
	if err != nil {
		g.log.Debug().Err(err).Str("connection_id", connectionID).Msg("handshake rejected")
		return nil, err
	}
	return g.Open(connectionID, identity), nil
}

// Authenticate validates a handshake credential without touching the
// registry. Transports that must refuse before accepting the connection call
// it first and then Open.
func (g *Gateway) Authenticate(ctx context.Context, credential string) (*domain.Identity, error) {
	return g.validator.Validate(ctx, credential)
}

// Open registers an authenticated connection and broadcasts the new
// presence list.
func (g *Gateway) Open(connectionID string, identity *domain.Identity) *Session {
	s := &Session{gateway: g, id: connectionID, identity: identity}
	s.state.Store(int32(StateAuthenticated))

	g.registry.Add(connectionID, identity.ID, identity.FullName)
	s.state.Store(int32(StateOpen))

	g.log.Info().
		Str("connection_id", connectionID).
		Str("identity_id", identity.ID).
		Msg("connection opened")

	g.broadcastPresence()
	return s
}

func (g *Gateway) broadcastPresence() {
	snapshot := g.registry.Snapshot()
	ids := make([]string, len(snapshot))
	presence := make([]Presence, len(snapshot))
	for i, e := range snapshot {
		ids[i] = e.ConnectionID
		presence[i] = Presence{IdentityID: e.IdentityID, FullName: e.DisplayName}
	}
	g.out.Broadcast(ids, Event{Name: EventClientsUpdated, Payload: presence})
}

func (g *Gateway) openConnectionIDs() []string {
	snapshot := g.registry.Snapshot()
	ids := make([]string, len(snapshot))
	for i, e := range snapshot {
		ids[i] = e.ConnectionID
	}
	return ids
}

// Session is the gateway side of one authenticated connection. Relay must
// only be called from the goroutine that owns the connection; Close is safe
// to call from anywhere and more than once.
type Session struct {
	gateway  *Gateway
	id       string
	identity *domain.Identity
	state    atomic.Int32
}

func (s *Session) ID() string { return s.id }

func (s *Session) Identity() *domain.Identity { return s.identity }

func (s *Session) State() State { return State(s.state.Load()) }

// Relay broadcasts message to all open connections, the sender included,
// attributed to the sender's registered display name.
func (s *Session) Relay(message string) error {
	if s.State() != StateOpen {
		return domain.ErrConnectionClosed
	}
	if message == "" {
		message = EmptyMessagePlaceholder
	}

	name, _ := s.gateway.registry.DisplayNameFor(s.id)
	s.gateway.out.Broadcast(s.gateway.openConnectionIDs(), Event{
		Name:    EventMessageFromServer,
		Payload: ChatMessage{FullName: name, Message: message},
	})
	return nil
}

// Close removes the connection from the registry and tells the remaining
// connections. Only the first call has any effect.
func (s *Session) Close() {
	if !s.state.CompareAndSwap(int32(StateOpen), int32(StateClosed)) {
		return
	}
	s.gateway.registry.Remove(s.id)
	s.gateway.log.Info().Str("connection_id", s.id).Msg("connection closed")
	s.gateway.broadcastPresence()
}
