package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/slatedeck/slate/internal/server/domain"
	"github.com/slatedeck/slate/internal/server/store"
	"github.com/slatedeck/slate/pkg/cryptox"
)

var (
	ErrQRTokenNotFound    = errors.New("qr_token_not_found")
	ErrQRTokenAlreadyUsed = errors.New("qr_token_already_used")
	ErrQRTokenExpired     = errors.New("qr_token_expired")
)

// AuthService issues and validates the two token kinds: long-lived session
// tokens persisted (fingerprinted) in the store, and short-lived single-use
// QR tokens held in memory. A QR token is exchanged exactly once for a fresh
// session token; issuing a new QR token supersedes the previous one.
type AuthService struct {
	Store      store.Store
	QRTokenTTL time.Duration

	// Now is the clock, injectable for expiry tests. Defaults to time.Now.
	Now func() time.Time

	mu       sync.Mutex
	qrTokens map[string]*domain.QRToken
	current  string
}

func NewAuthService(st store.Store, qrTTL time.Duration) *AuthService {
	if qrTTL <= 0 {
		qrTTL = 60 * time.Second
	}
	return &AuthService{
		Store:      st,
		QRTokenTTL: qrTTL,
		qrTokens:   make(map[string]*domain.QRToken),
	}
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// IssueSessionToken generates an opaque session token, persists its
// fingerprint, and returns the raw token. The raw value is never stored.
func (s *AuthService) IssueSessionToken(ctx context.Context) (string, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", err
	}

	if err := s.Store.SessionTokens().CreateSessionToken(ctx, cryptox.FingerprintToken(token)); err != nil {
		return "", err
	}
	return token, nil
}

// ValidateSessionToken reports whether the raw token's fingerprint is known.
func (s *AuthService) ValidateSessionToken(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	return s.Store.SessionTokens().SessionTokenExists(ctx, cryptox.FingerprintToken(token))
}

// RevokeSessionToken removes a session token, reporting whether it existed.
func (s *AuthService) RevokeSessionToken(ctx context.Context, token string) (bool, error) {
	return s.Store.SessionTokens().DeleteSessionToken(ctx, cryptox.FingerprintToken(token))
}

// IssueQRToken mints a fresh pairing token. Any previously issued, still
// pending token is dropped so only the newest QR code on screen can pair.
func (s *AuthService) IssueQRToken() (domain.QRToken, error) {
	raw, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return domain.QRToken{}, err
	}

	qr := domain.QRToken{
		Token:     raw,
		ExpiresAt: s.now().Add(s.QRTokenTTL),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != "" {
		delete(s.qrTokens, s.current)
	}
	s.qrTokens[raw] = &qr
	s.current = raw

	return qr, nil
}

// ExchangeQRToken consumes a pending QR token and issues a session token.
// The QR token is marked used before the session token is created, so a
// concurrent second exchange of the same token always fails.
func (s *AuthService) ExchangeQRToken(ctx context.Context, token string) (string, error) {
	s.mu.Lock()
	qr, ok := s.qrTokens[token]
	if !ok {
		s.mu.Unlock()
		return "", ErrQRTokenNotFound
	}
	if qr.Used {
		s.mu.Unlock()
		return "", ErrQRTokenAlreadyUsed
	}
	if qr.Expired(s.now()) {
		delete(s.qrTokens, token)
		if s.current == token {
			s.current = ""
		}
		s.mu.Unlock()
		return "", ErrQRTokenExpired
	}
	qr.Used = true
	if s.current == token {
		// Consumed tokens are no longer "the pending one"; they stay in the
		// map so a replay reports already-used until the sweep ages them out.
		s.current = ""
	}
	s.mu.Unlock()

	return s.IssueSessionToken(ctx)
}

// CleanupExpiredQRTokens drops expired entries and returns how many were
// removed. Used entries older than their TTL are swept too.
func (s *AuthService) CleanupExpiredQRTokens() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, qr := range s.qrTokens {
		if qr.Expired(now) {
			delete(s.qrTokens, token)
			if s.current == token {
				s.current = ""
			}
			removed++
		}
	}
	return removed
}
