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

// ButtonsHandler is the button CRUD surface. An absent profileId query
// parameter resolves to the default profile; every mutation broadcasts the
// profile's fresh buttons list to connected remotes.
type ButtonsHandler struct {
	Buttons  *service.ButtonService
	Profiles *service.ProfileService
	Sessions *ws.SessionHandler
}

type ButtonRequest struct {
	ID            string         `json:"id"`
	Label         string         `json:"label"`
	Icon          string         `json:"icon"`
	ActionType    string         `json:"actionType"`
	ActionPayload map[string]any `json:"actionPayload"`
	Background    *string        `json:"background"`
	IconColor     *string        `json:"iconColor"`
}

type ButtonsListResponse struct {
	Buttons []domain.Button `json:"buttons"`
}

type ButtonStatusResponse struct {
	Status string         `json:"status"`
	Button *domain.Button `json:"button,omitempty"`
}

type ReorderRequest struct {
	ButtonIDs []string `json:"buttonIds"`
}

type ReorderResponse struct {
	Status  string          `json:"status"`
	Buttons []domain.Button `json:"buttons"`
}

// resolveProfileID maps an absent profileId query param to the default
// profile. With allowEmpty the caller tolerates a world with no profiles
// and gets "".
func (h *ButtonsHandler) resolveProfileID(r *http.Request, allowEmpty bool) (string, bool) {
	if id := r.URL.Query().Get("profileId"); id != "" {
		return id, true
	}

	def, err := h.Profiles.GetDefault(r.Context())
	if err != nil {
		if allowEmpty && errors.Is(err, store.ErrNotFound) {
			return "", true
		}
		return "", false
	}
	return def.ID, true
}

func (h *ButtonsHandler) List(w http.ResponseWriter, r *http.Request) {
	profileID, ok := h.resolveProfileID(r, true)
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "No profile found")
		return
	}
	if profileID == "" {
		httpx.WriteJSON(w, http.StatusOK, ButtonsListResponse{Buttons: []domain.Button{}})
		return
	}

	buttons, err := h.Buttons.List(r.Context(), profileID)
	if err != nil {
		slogx.FromContext(r.Context()).Error("buttons list failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to list buttons")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ButtonsListResponse{Buttons: buttons})
}

func (h *ButtonsHandler) Get(w http.ResponseWriter, r *http.Request) {
	profileID, ok := h.resolveProfileID(r, false)
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "No profile found")
		return
	}

	button, err := h.Buttons.Get(r.Context(), r.PathValue("id"), profileID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Button not found")
			return
		}
		slogx.FromContext(r.Context()).Error("button get failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to load button")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, button)
}

func (h *ButtonsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profileID, ok := h.resolveProfileID(r, false)
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "No profile found")
		return
	}

	button, ok := decodeButton(w, r, "")
	if !ok {
		return
	}

	if err := h.Buttons.Create(ctx, button, profileID); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			httpx.WriteError(w, http.StatusConflict, "already_exists", "Button with this ID already exists")
			return
		}
		slogx.FromContext(ctx).Error("button create failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to create button")
		return
	}

	h.Sessions.BroadcastButtonsUpdate(ctx, profileID)
	httpx.WriteJSON(w, http.StatusOK, ButtonStatusResponse{Status: "created", Button: &button})
}

func (h *ButtonsHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profileID, ok := h.resolveProfileID(r, false)
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "No profile found")
		return
	}

	button, ok := decodeButton(w, r, r.PathValue("id"))
	if !ok {
		return
	}

	if err := h.Buttons.Update(ctx, button, profileID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Button not found")
			return
		}
		slogx.FromContext(ctx).Error("button update failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to update button")
		return
	}

	h.Sessions.BroadcastButtonsUpdate(ctx, profileID)
	httpx.WriteJSON(w, http.StatusOK, ButtonStatusResponse{Status: "updated", Button: &button})
}

func (h *ButtonsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profileID, ok := h.resolveProfileID(r, false)
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "No profile found")
		return
	}

	if err := h.Buttons.Delete(ctx, r.PathValue("id"), profileID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Button not found")
			return
		}
		slogx.FromContext(ctx).Error("button delete failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to delete button")
		return
	}

	h.Sessions.BroadcastButtonsUpdate(ctx, profileID)
	httpx.WriteJSON(w, http.StatusOK, ButtonStatusResponse{Status: "deleted"})
}

func (h *ButtonsHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profileID, ok := h.resolveProfileID(r, false)
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "No profile found")
		return
	}

	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	if err := h.Buttons.Reorder(ctx, req.ButtonIDs, profileID); err != nil {
		slogx.FromContext(ctx).Error("button reorder failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to reorder buttons")
		return
	}

	h.Sessions.BroadcastButtonsUpdate(ctx, profileID)

	buttons, err := h.Buttons.List(ctx, profileID)
	if err != nil {
		slogx.FromContext(ctx).Error("buttons list failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to list buttons")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ReorderResponse{Status: "reordered", Buttons: buttons})
}

// decodeButton parses and validates a button body. A non-empty pathID wins
// over the body's id, matching update-by-path semantics.
func decodeButton(w http.ResponseWriter, r *http.Request, pathID string) (domain.Button, bool) {
	var req ButtonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return domain.Button{}, false
	}

	if pathID != "" {
		req.ID = pathID
	}
	if req.ID == "" || req.Label == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "id and label are required")
		return domain.Button{}, false
	}

	actionType := domain.ActionType(req.ActionType)
	if !actionType.Valid() {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Unknown actionType: "+req.ActionType)
		return domain.Button{}, false
	}

	return domain.Button{
		ID:            req.ID,
		Label:         req.Label,
		Icon:          req.Icon,
		ActionType:    actionType,
		ActionPayload: req.ActionPayload,
		Background:    req.Background,
		IconColor:     req.IconColor,
	}, true
}
