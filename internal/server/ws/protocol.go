package ws

import (
	"encoding/json"

	"github.com/slatedeck/slate/internal/server/domain"
)

// ProtocolVersion is sent in WELCOME and compared against the client's
// HELLO. A mismatch is logged but never blocks the session.
const ProtocolVersion = "1.0"

// MessageType is the closed set of frame types on the wire. Unknown types
// on inbound frames are logged and ignored.
type MessageType string

const (
	TypeHello           MessageType = "HELLO"
	TypeWelcome         MessageType = "WELCOME"
	TypeAuthRequired    MessageType = "AUTH_REQUIRED"
	TypeButtonPressed   MessageType = "BUTTON_PRESSED"
	TypeGetButtons      MessageType = "GET_BUTTONS"
	TypeActionResult    MessageType = "ACTION_RESULT"
	TypeButtonsList     MessageType = "BUTTONS_LIST"
	TypeError           MessageType = "ERROR"
	TypeGetProfiles     MessageType = "GET_PROFILES"
	TypeProfilesList    MessageType = "PROFILES_LIST"
	TypeSwitchProfile   MessageType = "SWITCH_PROFILE"
	TypeProfileSwitched MessageType = "PROFILE_SWITCHED"
	TypePing            MessageType = "PING"
	TypePong            MessageType = "PONG"
	TypeSystemStats     MessageType = "SYSTEM_STATS"
)

var messageTypes = map[MessageType]struct{}{
	TypeHello:           {},
	TypeWelcome:         {},
	TypeAuthRequired:    {},
	TypeButtonPressed:   {},
	TypeGetButtons:      {},
	TypeActionResult:    {},
	TypeButtonsList:     {},
	TypeError:           {},
	TypeGetProfiles:     {},
	TypeProfilesList:    {},
	TypeSwitchProfile:   {},
	TypeProfileSwitched: {},
	TypePing:            {},
	TypePong:            {},
	TypeSystemStats:     {},
}

// Valid reports whether t is a member of the closed message set.
func (t MessageType) Valid() bool {
	_, ok := messageTypes[t]
	return ok
}

// Envelope is the outbound wire frame: {"type": ..., "payload": {...}}.
type Envelope struct {
	Type    MessageType `json:"type"`
	Payload any         `json:"payload,omitempty"`
}

// inboundEnvelope defers payload decoding until the type is known.
type inboundEnvelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type HelloPayload struct {
	Version string `json:"version"`
	Token   string `json:"token"`
}

type WelcomePayload struct {
	Version string `json:"version"`
}

type ButtonPressedPayload struct {
	ButtonID string `json:"buttonId"`
}

type ButtonsListPayload struct {
	Buttons []domain.Button `json:"buttons"`
}

type ProfilesListPayload struct {
	Profiles []domain.Profile `json:"profiles"`
}

type SwitchProfilePayload struct {
	ProfileID string `json:"profileId"`
}

type ProfileSwitchedPayload struct {
	ProfileID string `json:"profileId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
