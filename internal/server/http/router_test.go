package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/slatedeck/slate/internal/server/domain"
	"github.com/slatedeck/slate/internal/server/service"
	"github.com/slatedeck/slate/internal/server/store/drivers/sqlite"
	"github.com/slatedeck/slate/internal/server/ws"
	"github.com/stretchr/testify/require"
)

type restHarness struct {
	router   *Router
	auth     *service.AuthService
	profiles *service.ProfileService
	buttons  *service.ButtonService
}

func newRestHarness(t *testing.T) *restHarness {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auth := service.NewAuthService(st, time.Minute)
	profiles := service.NewProfileService(st)
	buttons := service.NewButtonService(st)
	sessions := ws.NewSessionHandler(ws.NewRegistry(), auth, profiles, buttons,
		service.NewActionService(), logger)

	router := NewRouter(auth, profiles, buttons, sessions, logger, "test", 8000)
	router.ApplyRoutes()

	return &restHarness{router: router, auth: auth, profiles: profiles, buttons: buttons}
}

func (h *restHarness) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealthAndServerInfo(t *testing.T) {
	t.Parallel()
	h := newRestHarness(t)

	rec := h.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	health := decodeBody[HealthResponse](t, rec)
	require.Equal(t, "ok", health.Status)
	require.Equal(t, "slate-server", health.App)
	require.NotZero(t, health.PID)

	rec = h.do(t, http.MethodGet, "/api/server-info", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	info := decodeBody[ServerInfoResponse](t, rec)
	require.Equal(t, 8000, info.Port)
	require.NotEmpty(t, info.IP)
}

func TestQRPairingFlow(t *testing.T) {
	t.Parallel()
	h := newRestHarness(t)
	ctx := context.Background()

	t.Run("exchange without token is a bad request", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/api/auth/exchange", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("issue then exchange exactly once", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/api/auth/qr-token", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		issued := decodeBody[QRTokenResponse](t, rec)
		require.NotEmpty(t, issued.QRToken)
		require.Equal(t, 60, issued.TTLSeconds)

		rec = h.do(t, http.MethodPost, "/api/auth/exchange?qrToken="+issued.QRToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		exchanged := decodeBody[ExchangeResponse](t, rec)
		ok, err := h.auth.ValidateSessionToken(ctx, exchanged.SessionToken)
		require.NoError(t, err)
		require.True(t, ok)

		// Replay is a 401, not a different error shape.
		rec = h.do(t, http.MethodPost, "/api/auth/exchange?qrToken="+issued.QRToken, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown token is a 401", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/api/auth/exchange?qrToken=ghost", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestButtonsSurface(t *testing.T) {
	t.Parallel()
	h := newRestHarness(t)
	ctx := context.Background()

	t.Run("empty world lists no buttons", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/api/buttons", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, decodeBody[ButtonsListResponse](t, rec).Buttons)
	})

	t.Run("create without any profile is a 404", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/api/buttons", ButtonRequest{
			ID: "b1", Label: "B1", ActionType: "MEDIA_NEXT",
		})
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	profile, err := h.profiles.Create(ctx, "Default")
	require.NoError(t, err)

	t.Run("create resolves the default profile", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/api/buttons", ButtonRequest{
			ID: "play", Label: "Play", Icon: "play", ActionType: "MEDIA_PLAY_PAUSE",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "created", decodeBody[ButtonStatusResponse](t, rec).Status)

		buttons, err := h.buttons.List(ctx, profile.ID)
		require.NoError(t, err)
		require.Len(t, buttons, 1)
	})

	t.Run("duplicate id is a conflict", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/api/buttons", ButtonRequest{
			ID: "play", Label: "Play", ActionType: "MEDIA_PLAY_PAUSE",
		})
		require.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unknown action type is a bad request", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/api/buttons", ButtonRequest{
			ID: "x", Label: "X", ActionType: "SELF_DESTRUCT",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("get update delete round-trip", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/api/buttons/play", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "Play", decodeBody[domain.Button](t, rec).Label)

		rec = h.do(t, http.MethodPut, "/api/buttons/play", ButtonRequest{
			Label: "Pause", Icon: "pause", ActionType: "MEDIA_PLAY_PAUSE",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		rec = h.do(t, http.MethodGet, "/api/buttons/play", nil)
		require.Equal(t, "Pause", decodeBody[domain.Button](t, rec).Label)

		rec = h.do(t, http.MethodDelete, "/api/buttons/play", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = h.do(t, http.MethodGet, "/api/buttons/play", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("reorder returns the new ordering", func(t *testing.T) {
		for _, id := range []string{"a", "b", "c"} {
			require.NoError(t, h.buttons.Create(ctx, domain.Button{
				ID: id, Label: id, ActionType: domain.ActionVolumeUp,
			}, profile.ID))
		}

		rec := h.do(t, http.MethodPut, "/api/buttons/reorder", ReorderRequest{
			ButtonIDs: []string{"c", "a"},
		})
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody[ReorderResponse](t, rec)
		require.Equal(t, "reordered", resp.Status)

		ids := make([]string, 0, len(resp.Buttons))
		for _, b := range resp.Buttons {
			ids = append(ids, b.ID)
		}
		require.Equal(t, []string{"c", "a", "b"}, ids)
	})
}

func TestProfilesSurface(t *testing.T) {
	t.Parallel()
	h := newRestHarness(t)

	t.Run("create list get", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/api/profiles", ProfileRequest{Name: "Default"})
		require.Equal(t, http.StatusOK, rec.Code)

		created := decodeBody[ProfileStatusResponse](t, rec)
		require.Equal(t, "created", created.Status)
		require.NotNil(t, created.Profile)

		rec = h.do(t, http.MethodGet, "/api/profiles", nil)
		require.Len(t, decodeBody[ProfilesListResponse](t, rec).Profiles, 1)

		rec = h.do(t, http.MethodGet, "/api/profiles/"+created.Profile.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "Default", decodeBody[domain.Profile](t, rec).Name)
	})

	t.Run("missing name is a bad request", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/api/profiles", ProfileRequest{})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rename and delete", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/api/profiles", ProfileRequest{Name: "Temp"})
		created := decodeBody[ProfileStatusResponse](t, rec)

		rec = h.do(t, http.MethodPut, "/api/profiles/"+created.Profile.ID, ProfileRequest{Name: "Renamed"})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "Renamed", decodeBody[ProfileStatusResponse](t, rec).Profile.Name)

		rec = h.do(t, http.MethodDelete, "/api/profiles/"+created.Profile.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = h.do(t, http.MethodGet, "/api/profiles/"+created.Profile.ID, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("switch to unknown profile is a 404", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/api/profiles/ghost/switch", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("switch reports the profile", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/api/profiles", ProfileRequest{Name: "Stage"})
		created := decodeBody[ProfileStatusResponse](t, rec)

		rec = h.do(t, http.MethodPost, "/api/profiles/"+created.Profile.ID+"/switch", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		switched := decodeBody[SwitchResponse](t, rec)
		require.Equal(t, "switched", switched.Status)
		require.Equal(t, created.Profile.ID, switched.ProfileID)
	})
}
