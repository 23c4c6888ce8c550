package domain

import "time"

// QRToken is a short-lived, single-use credential exchanged for a session
// token. At most one is exchangeable at a time; issuing a new one drops the
// previous one even if it was never used.
type QRToken struct {
	Token     string
	ExpiresAt time.Time
	Used      bool
}

// Expired reports whether the token is past its expiry at the given instant.
func (t QRToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
