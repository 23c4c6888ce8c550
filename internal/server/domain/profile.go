package domain

import "time"

// Profile is a named set of buttons. The oldest profile by creation time is
// the default bound to freshly authenticated connections.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
