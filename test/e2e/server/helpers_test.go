package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/slatedeck/slate/internal/server/domain"
	serverhttp "github.com/slatedeck/slate/internal/server/http"
	"github.com/slatedeck/slate/internal/server/service"
	"github.com/slatedeck/slate/internal/server/store/drivers/sqlite"
	"github.com/slatedeck/slate/internal/server/ws"
)

/*
 * Common helpers for deck server end-to-end tests. Each test boots the full
 * stack in-process (sqlite store, services, session handler, REST router)
 * behind an httptest server, then drives it exactly like a remote would:
 * REST over HTTP and the session protocol over a real websocket.
 */

const readTimeout = 2 * time.Second

// envelope mirrors the wire frame a remote sees. Tests decode payloads
// from raw JSON on purpose so they exercise the protocol as a client,
// not the server's internal types.
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// echoExecutor acknowledges every action it is asked to run. It stands in
// for the host-side executors, which have no business running in e2e.
type echoExecutor struct{}

func (echoExecutor) Execute(_ context.Context, actionType domain.ActionType, _ map[string]any) (string, error) {
	return fmt.Sprintf("Executed %s", actionType), nil
}

type testServer struct {
	*httptest.Server

	wsURL string
}

// setupServer wires the complete server and returns it ready to accept
// both REST and websocket traffic.
func setupServer(t *testing.T) *testServer {
	t.Helper()

	db, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.ApplyMigrations())
	t.Cleanup(func() { _ = db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	auth := service.NewAuthService(db, time.Minute)
	profiles := service.NewProfileService(db)
	buttons := service.NewButtonService(db)

	actions := service.NewActionService()
	actions.Register(echoExecutor{},
		domain.ActionMediaPlayPause,
		domain.ActionMediaNext,
		domain.ActionMediaPrev,
	)

	sessions := ws.NewSessionHandler(ws.NewRegistry(), auth, profiles, buttons, actions, logger)

	router := serverhttp.NewRouter(auth, profiles, buttons, sessions, logger, "test", 0)
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{
		Server: srv,
		wsURL:  "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws",
	}
}

// pairSession runs the QR pairing flow and returns a valid session token.
func pairSession(t *testing.T, ts *testServer) string {
	t.Helper()

	var issued struct {
		QRToken    string `json:"qrToken"`
		TTLSeconds int    `json:"ttlSeconds"`
	}
	doJSON(t, ts, http.MethodGet, "/api/auth/qr-token", nil, http.StatusOK, &issued)
	require.NotEmpty(t, issued.QRToken)

	var exchanged struct {
		SessionToken string `json:"sessionToken"`
	}
	doJSON(t, ts, http.MethodPost, "/api/auth/exchange?qrToken="+issued.QRToken, nil, http.StatusOK, &exchanged)
	require.NotEmpty(t, exchanged.SessionToken)

	return exchanged.SessionToken
}

// dialSession opens a websocket, sends HELLO with the given token and
// returns the connection together with every frame received during the
// handshake. For a valid token that is WELCOME, PROFILES_LIST and
// BUTTONS_LIST; for an invalid one it is a single AUTH_REQUIRED.
func dialSession(t *testing.T, ts *testServer, token string) (*websocket.Conn, []envelope) {
	t.Helper()

	sock, _, err := websocket.DefaultDialer.Dial(ts.wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sock.Close() })

	sendFrame(t, sock, "HELLO", map[string]any{"version": "1.0", "token": token})

	first := readFrame(t, sock)
	if first.Type == "AUTH_REQUIRED" {
		return sock, []envelope{first}
	}

	frames := []envelope{first}
	for len(frames) < 3 {
		frames = append(frames, readFrame(t, sock))
	}
	return sock, frames
}

func sendFrame(t *testing.T, sock *websocket.Conn, msgType string, payload any) {
	t.Helper()

	frame := map[string]any{"type": msgType}
	if payload != nil {
		frame["payload"] = payload
	}
	require.NoError(t, sock.WriteJSON(frame))
}

func readFrame(t *testing.T, sock *websocket.Conn) envelope {
	t.Helper()

	require.NoError(t, sock.SetReadDeadline(time.Now().Add(readTimeout)))

	var env envelope
	require.NoError(t, sock.ReadJSON(&env), "expected a frame before the read deadline")
	return env
}

// requireFrameTypes asserts the exact order of frame types.
func requireFrameTypes(t *testing.T, frames []envelope, want ...string) {
	t.Helper()

	got := make([]string, 0, len(frames))
	for _, f := range frames {
		got = append(got, f.Type)
	}
	require.Equal(t, want, got)
}

func decodePayload[T any](t *testing.T, env envelope) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(env.Payload, &out))
	return out
}

// doJSON performs an HTTP request against the test server, asserts the
// status code and decodes the response body into out when it is non-nil.
func doJSON(t *testing.T, ts *testServer, method, path string, body any, wantStatus int, out any) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, ts.URL+path, reqBody)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, wantStatus, resp.StatusCode, "unexpected status for %s %s", method, path)

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
}

// createProfile provisions a profile over REST and returns its id.
func createProfile(t *testing.T, ts *testServer, name string) string {
	t.Helper()

	var created struct {
		Status  string         `json:"status"`
		Profile domain.Profile `json:"profile"`
	}
	doJSON(t, ts, http.MethodPost, "/api/profiles", map[string]any{"name": name}, http.StatusOK, &created)
	require.NotEmpty(t, created.Profile.ID)
	return created.Profile.ID
}

// createButton provisions a button on the given profile over REST.
func createButton(t *testing.T, ts *testServer, profileID, id, label string, actionType domain.ActionType) {
	t.Helper()

	doJSON(t, ts, http.MethodPost, "/api/buttons?profileId="+profileID, map[string]any{
		"id":         id,
		"label":      label,
		"icon":       "circle",
		"actionType": string(actionType),
	}, http.StatusOK, nil)
}
