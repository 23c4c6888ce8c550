package domain

// Button is one tile in a profile's grid. IDs are caller-chosen and unique
// within a profile, not globally.
type Button struct {
	ID            string         `json:"id"`
	Label         string         `json:"label"`
	Icon          string         `json:"icon"`
	ActionType    ActionType     `json:"actionType"`
	ActionPayload map[string]any `json:"actionPayload"`
	Background    *string        `json:"background,omitempty"`
	IconColor     *string        `json:"iconColor,omitempty"`
}
