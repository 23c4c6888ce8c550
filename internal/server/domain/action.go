package domain

// ActionType identifies what pressing a button does. The set is closed;
// stores reject unknown values at the API boundary.
type ActionType string

const (
	ActionMediaPlayPause ActionType = "MEDIA_PLAY_PAUSE"
	ActionMediaNext      ActionType = "MEDIA_NEXT"
	ActionMediaPrev      ActionType = "MEDIA_PREV"
	ActionVolumeUp       ActionType = "VOLUME_UP"
	ActionVolumeDown     ActionType = "VOLUME_DOWN"
	ActionVolumeMute     ActionType = "VOLUME_MUTE"
	ActionAppLaunch      ActionType = "APP_LAUNCH"
	ActionHotkey         ActionType = "HOTKEY"
	ActionOpenURL        ActionType = "OPEN_URL"
	ActionOpenFolder     ActionType = "OPEN_FOLDER"

	// Display-only tiles rendered from the stats stream; no executor exists
	// for these and pressing them is a no-op on the server.
	ActionSystemCPU ActionType = "SYSTEM_CPU"
	ActionSystemRAM ActionType = "SYSTEM_RAM"
	ActionSystemGPU ActionType = "SYSTEM_GPU"
)

var actionTypes = map[ActionType]struct{}{
	ActionMediaPlayPause: {},
	ActionMediaNext:      {},
	ActionMediaPrev:      {},
	ActionVolumeUp:       {},
	ActionVolumeDown:     {},
	ActionVolumeMute:     {},
	ActionAppLaunch:      {},
	ActionHotkey:         {},
	ActionOpenURL:        {},
	ActionOpenFolder:     {},
	ActionSystemCPU:      {},
	ActionSystemRAM:      {},
	ActionSystemGPU:      {},
}

// Valid reports whether t is a member of the closed action set.
func (t ActionType) Valid() bool {
	_, ok := actionTypes[t]
	return ok
}

// Outcome statuses reported back to clients after an action runs.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ActionResult is the outcome of executing a button's action. Executor
// failures are outcomes, not errors; they travel to the client in the
// ACTION_RESULT payload.
type ActionResult struct {
	ButtonID string `json:"buttonId"`
	Status   string `json:"status"`
	Message  string `json:"message"`
}
