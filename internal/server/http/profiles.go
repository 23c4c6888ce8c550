package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/slatedeck/slate/internal/server/domain"
	"github.com/slatedeck/slate/internal/server/service"
	"github.com/slatedeck/slate/internal/server/store"
	"github.com/slatedeck/slate/internal/server/ws"
	"github.com/slatedeck/slate/pkg/httpx"
	"github.com/slatedeck/slate/pkg/slogx"
)

// ProfilesHandler is the profile CRUD surface plus the global switch, which
// rebinds every connected remote at once.
type ProfilesHandler struct {
	Profiles *service.ProfileService
	Buttons  *service.ButtonService
	Sessions *ws.SessionHandler
}

type ProfileRequest struct {
	Name string `json:"name"`
}

type ProfilesListResponse struct {
	Profiles []domain.Profile `json:"profiles"`
}

type ProfileStatusResponse struct {
	Status  string          `json:"status"`
	Profile *domain.Profile `json:"profile,omitempty"`
}

type SwitchResponse struct {
	Status    string `json:"status"`
	ProfileID string `json:"profileId"`
}

func (h *ProfilesHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.Profiles.List(r.Context())
	if err != nil {
		slogx.FromContext(r.Context()).Error("profiles list failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to list profiles")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ProfilesListResponse{Profiles: profiles})
}

func (h *ProfilesHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile, err := h.Profiles.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Profile not found")
			return
		}
		slogx.FromContext(r.Context()).Error("profile get failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to load profile")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, profile)
}

func (h *ProfilesHandler) ListButtons(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID := r.PathValue("id")

	if _, err := h.Profiles.Get(ctx, profileID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Profile not found")
			return
		}
		slogx.FromContext(ctx).Error("profile get failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to load profile")
		return
	}

	buttons, err := h.Buttons.List(ctx, profileID)
	if err != nil {
		slogx.FromContext(ctx).Error("buttons list failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to list buttons")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ButtonsListResponse{Buttons: buttons})
}

func (h *ProfilesHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	name, ok := decodeProfileName(w, r)
	if !ok {
		return
	}

	profile, err := h.Profiles.Create(ctx, name)
	if err != nil {
		slogx.FromContext(ctx).Error("profile create failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to create profile")
		return
	}

	h.Sessions.BroadcastProfilesUpdate(ctx)
	httpx.WriteJSON(w, http.StatusOK, ProfileStatusResponse{Status: "created", Profile: &profile})
}

func (h *ProfilesHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	name, ok := decodeProfileName(w, r)
	if !ok {
		return
	}

	profile, err := h.Profiles.Rename(ctx, r.PathValue("id"), name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Profile not found")
			return
		}
		slogx.FromContext(ctx).Error("profile rename failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to update profile")
		return
	}

	h.Sessions.BroadcastProfilesUpdate(ctx)
	httpx.WriteJSON(w, http.StatusOK, ProfileStatusResponse{Status: "updated", Profile: &profile})
}

func (h *ProfilesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.Profiles.Delete(ctx, r.PathValue("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Profile not found")
			return
		}
		slogx.FromContext(ctx).Error("profile delete failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to delete profile")
		return
	}

	h.Sessions.BroadcastProfilesUpdate(ctx)
	httpx.WriteJSON(w, http.StatusOK, ProfileStatusResponse{Status: "deleted"})
}

// Switch is the global override: every authenticated remote is rebound to
// this profile. A remote switching only itself uses the websocket message
// instead.
func (h *ProfilesHandler) Switch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profileID := r.PathValue("id")

	if _, err := h.Profiles.Get(ctx, profileID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Profile not found")
			return
		}
		slogx.FromContext(ctx).Error("profile get failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to load profile")
		return
	}

	h.Sessions.BroadcastProfileSwitch(ctx, profileID)
	httpx.WriteJSON(w, http.StatusOK, SwitchResponse{Status: "switched", ProfileID: profileID})
}

func decodeProfileName(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return "", false
	}
	if req.Name == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "name is required")
		return "", false
	}
	return req.Name, true
}
