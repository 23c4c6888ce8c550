package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/slatedeck/slate/internal/server/domain"
	"github.com/slatedeck/slate/internal/server/service"
	"github.com/slatedeck/slate/internal/server/store"
	"github.com/slatedeck/slate/pkg/idx"
)

// SessionHandler runs the session protocol: handshake gating, per-message
// dispatch, and mutation-driven broadcast fan-out. Every message from one
// connection is handled in its read loop, so per-connection ordering is
// arrival order.
type SessionHandler struct {
	Registry *Registry
	Auth     *service.AuthService
	Profiles *service.ProfileService
	Buttons  *service.ButtonService
	Actions  *service.ActionService
	Logger   *slog.Logger

	upgrader websocket.Upgrader
}

func NewSessionHandler(
	registry *Registry,
	auth *service.AuthService,
	profiles *service.ProfileService,
	buttons *service.ButtonService,
	actions *service.ActionService,
	logger *slog.Logger,
) *SessionHandler {
	return &SessionHandler{
		Registry: registry,
		Auth:     auth,
		Profiles: profiles,
		Buttons:  buttons,
		Actions:  actions,
		Logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Remotes pair over the LAN from arbitrary origins; the session
			// token is the actual gate.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sock, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	conn := newConn(idx.New(), sock)
	h.Registry.Register(conn)
	h.Logger.Info("client connected", "conn_id", conn.id, "active", h.Registry.Count())

	go conn.writePump()
	h.readLoop(r.Context(), conn)
}

func (h *SessionHandler) readLoop(ctx context.Context, c *Conn) {
	defer h.drop(c, "read loop ended")

	for {
		_, data, err := c.sock.ReadMessage()
		if err != nil {
			return
		}
		h.HandleMessage(ctx, c, data)
	}
}

// drop unregisters and closes a connection. Idempotent; the registry decides
// whether this call was the one that removed it.
func (h *SessionHandler) drop(c *Conn, reason string) {
	if h.Registry.Unregister(c.id) {
		h.Logger.Info("connection closed",
			"conn_id", c.id, "reason", reason, "active", h.Registry.Count())
	}
	c.Close()
}

// HandleMessage dispatches one inbound frame. Exported so the protocol can
// be driven without a live socket.
func (h *SessionHandler) HandleMessage(ctx context.Context, c *Conn, data []byte) {
	var env inboundEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		h.sendError(c, "Invalid JSON")
		return
	}

	switch env.Type {
	case TypeHello:
		h.handleHello(ctx, c, env.Payload)
	case TypeButtonPressed:
		h.handleButtonPressed(ctx, c, env.Payload)
	case TypeGetButtons:
		if h.requireAuth(c) {
			h.sendButtonsList(ctx, c)
		}
	case TypeGetProfiles:
		if h.requireAuth(c) {
			h.sendProfilesList(ctx, c)
		}
	case TypeSwitchProfile:
		h.handleSwitchProfile(ctx, c, env.Payload)
	case TypePong:
		h.Registry.touchPong(c, time.Now())
	default:
		h.Logger.Warn("unknown message type", "type", string(env.Type))
	}
}

// handleHello is the handshake. The version mismatch is logged, never
// enforced; the token decides everything. An authenticated connection that
// says HELLO again keeps its bound profile.
func (h *SessionHandler) handleHello(ctx context.Context, c *Conn, raw json.RawMessage) {
	var payload HelloPayload
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &payload)
	}

	version := payload.Version
	if version == "" {
		version = "unknown"
	}
	h.Registry.setHello(c, version)

	if version != ProtocolVersion {
		h.Logger.Warn("client version mismatch",
			"client_version", version, "server_version", ProtocolVersion)
	}

	ok, err := h.Auth.ValidateSessionToken(ctx, payload.Token)
	if err != nil {
		h.Logger.Error("token validation failed", "error", err)
		ok = false
	}
	if !ok {
		c.Enqueue(Envelope{Type: TypeAuthRequired})
		return
	}

	h.Registry.markAuthenticated(c)

	if h.Registry.activeProfile(c) == "" {
		if def, err := h.Profiles.GetDefault(ctx); err == nil {
			h.Registry.bindProfileIfUnset(c, def.ID)
		}
	}

	c.Enqueue(Envelope{Type: TypeWelcome, Payload: WelcomePayload{Version: ProtocolVersion}})
	h.sendProfilesList(ctx, c)
	h.sendButtonsList(ctx, c)
}

func (h *SessionHandler) handleButtonPressed(ctx context.Context, c *Conn, raw json.RawMessage) {
	if !h.requireAuth(c) {
		return
	}

	var payload ButtonPressedPayload
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &payload)
	}
	if payload.ButtonID == "" {
		h.sendError(c, "Missing buttonId")
		return
	}

	profileID := h.Registry.activeProfile(c)
	if profileID == "" {
		h.sendError(c, "No active profile")
		return
	}

	button, err := h.Buttons.Get(ctx, payload.ButtonID, profileID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.sendError(c, "Button not found: "+payload.ButtonID)
			return
		}
		h.Logger.Error("button lookup failed", "button_id", payload.ButtonID, "error", err)
		h.sendError(c, "Failed to load button")
		return
	}

	result := h.Actions.Execute(ctx, button)
	c.Enqueue(Envelope{Type: TypeActionResult, Payload: result})
}

// handleSwitchProfile rebinds only the requesting connection. The global
// variant is BroadcastProfileSwitch, driven by the HTTP surface.
func (h *SessionHandler) handleSwitchProfile(ctx context.Context, c *Conn, raw json.RawMessage) {
	if !h.requireAuth(c) {
		return
	}

	var payload SwitchProfilePayload
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &payload)
	}
	if payload.ProfileID == "" {
		h.sendError(c, "Missing profileId")
		return
	}

	if _, err := h.Profiles.Get(ctx, payload.ProfileID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.sendError(c, "Profile not found: "+payload.ProfileID)
			return
		}
		h.Logger.Error("profile lookup failed", "profile_id", payload.ProfileID, "error", err)
		h.sendError(c, "Failed to load profile")
		return
	}

	h.Registry.setActiveProfile(c, payload.ProfileID)

	h.sendButtonsList(ctx, c)
	c.Enqueue(Envelope{Type: TypeProfileSwitched, Payload: ProfileSwitchedPayload{ProfileID: payload.ProfileID}})
}

func (h *SessionHandler) requireAuth(c *Conn) bool {
	if !h.Registry.isAuthenticated(c) {
		h.sendError(c, "Not authenticated")
		return false
	}
	return true
}

func (h *SessionHandler) sendError(c *Conn, message string) {
	c.Enqueue(Envelope{Type: TypeError, Payload: ErrorPayload{Message: message}})
}

func (h *SessionHandler) sendButtonsList(ctx context.Context, c *Conn) {
	profileID := h.Registry.activeProfile(c)
	if profileID == "" {
		c.Enqueue(Envelope{Type: TypeButtonsList, Payload: ButtonsListPayload{Buttons: []domain.Button{}}})
		return
	}

	buttons, err := h.Buttons.List(ctx, profileID)
	if err != nil {
		h.Logger.Error("buttons list failed", "profile_id", profileID, "error", err)
		h.sendError(c, "Failed to load buttons")
		return
	}
	c.Enqueue(Envelope{Type: TypeButtonsList, Payload: ButtonsListPayload{Buttons: buttons}})
}

func (h *SessionHandler) sendProfilesList(ctx context.Context, c *Conn) {
	profiles, err := h.Profiles.List(ctx)
	if err != nil {
		h.Logger.Error("profiles list failed", "error", err)
		h.sendError(c, "Failed to load profiles")
		return
	}
	c.Enqueue(Envelope{Type: TypeProfilesList, Payload: ProfilesListPayload{Profiles: profiles}})
}

// BroadcastButtonsUpdate pushes a fresh buttons list after a mutation. With
// a profile id it targets only connections on that profile; without one,
// each authenticated connection gets its own active profile's list. Send
// failures are swallowed; the liveness sweep reaps dead connections.
func (h *SessionHandler) BroadcastButtonsUpdate(ctx context.Context, profileID string) {
	views := h.Registry.authenticatedViews()
	if len(views) == 0 {
		return
	}

	lists := make(map[string][]domain.Button)
	for _, v := range views {
		target := profileID
		if target == "" {
			target = v.profileID
		}
		if target == "" || (profileID != "" && v.profileID != profileID) {
			continue
		}

		buttons, ok := lists[target]
		if !ok {
			var err error
			buttons, err = h.Buttons.List(ctx, target)
			if err != nil {
				h.Logger.Error("buttons list failed", "profile_id", target, "error", err)
				continue
			}
			lists[target] = buttons
		}

		v.conn.Enqueue(Envelope{Type: TypeButtonsList, Payload: ButtonsListPayload{Buttons: buttons}})
	}
}

// BroadcastProfilesUpdate pushes the full profile list to every
// authenticated connection.
func (h *SessionHandler) BroadcastProfilesUpdate(ctx context.Context) {
	views := h.Registry.authenticatedViews()
	if len(views) == 0 {
		return
	}

	profiles, err := h.Profiles.List(ctx)
	if err != nil {
		h.Logger.Error("profiles list failed", "error", err)
		return
	}

	env := Envelope{Type: TypeProfilesList, Payload: ProfilesListPayload{Profiles: profiles}}
	for _, v := range views {
		v.conn.Enqueue(env)
	}
}

// BroadcastProfileSwitch is the global override: every authenticated
// connection is rebound to profileID and told about it, regardless of what
// it was viewing.
func (h *SessionHandler) BroadcastProfileSwitch(ctx context.Context, profileID string) {
	if _, err := h.Profiles.Get(ctx, profileID); err != nil {
		h.Logger.Error("profile lookup failed", "profile_id", profileID, "error", err)
		return
	}

	conns := h.Registry.rebindAll(profileID)
	if len(conns) == 0 {
		return
	}

	buttons, err := h.Buttons.List(ctx, profileID)
	if err != nil {
		h.Logger.Error("buttons list failed", "profile_id", profileID, "error", err)
		buttons = []domain.Button{}
	}

	for _, c := range conns {
		c.Enqueue(Envelope{Type: TypeProfileSwitched, Payload: ProfileSwitchedPayload{ProfileID: profileID}})
		c.Enqueue(Envelope{Type: TypeButtonsList, Payload: ButtonsListPayload{Buttons: buttons}})
	}
}

// CloseAll drops every connection, for shutdown.
func (h *SessionHandler) CloseAll() {
	for _, c := range h.Registry.snapshot() {
		h.drop(c, "server shutting down")
	}
}
