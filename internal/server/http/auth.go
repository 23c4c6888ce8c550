package http

import (
	"errors"
	"net/http"

	"github.com/slatedeck/slate/internal/server/service"
	"github.com/slatedeck/slate/pkg/httpx"
	"github.com/slatedeck/slate/pkg/slogx"
)

type QRTokenResponse struct {
	QRToken    string `json:"qrToken"`
	TTLSeconds int    `json:"ttlSeconds"`
}

// QRTokenHandler mints the pairing token rendered as a QR code on the
// desktop. Each call supersedes the previous pending token.
type QRTokenHandler struct {
	Auth *service.AuthService
}

func (h *QRTokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	qr, err := h.Auth.IssueQRToken()
	if err != nil {
		log.Error("failed to issue qr token", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to issue QR token")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, QRTokenResponse{
		QRToken:    qr.Token,
		TTLSeconds: int(h.Auth.QRTokenTTL.Seconds()),
	})
}

type ExchangeResponse struct {
	SessionToken string `json:"sessionToken"`
}

// ExchangeHandler trades a scanned QR token for a session token. All
// failure modes collapse to 401 so a caller cannot probe which tokens
// exist, which were used, and which merely expired.
type ExchangeHandler struct {
	Auth *service.AuthService
}

func (h *ExchangeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	qrToken := r.URL.Query().Get("qrToken")
	if qrToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Missing qrToken")
		return
	}

	session, err := h.Auth.ExchangeQRToken(ctx, qrToken)
	switch {
	case errors.Is(err, service.ErrQRTokenNotFound),
		errors.Is(err, service.ErrQRTokenAlreadyUsed),
		errors.Is(err, service.ErrQRTokenExpired):
		log.Info("qr token exchange rejected", "error", err)
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token",
			"Invalid, expired, or already used QR token")
		return
	case err != nil:
		log.Error("qr token exchange failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to exchange QR token")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, ExchangeResponse{SessionToken: session})
}
