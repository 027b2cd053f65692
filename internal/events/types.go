package events

// Event type constants for kelindar/event.
const (
	TypeLightApplied uint32 = iota + 1
	TypeLightWriteFailed
	TypeAttentionChanged
	TypeSceneLoaded
	TypeScenePlaybackFinished
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// LightAppliedEvent is published after a light state reached its control
// node. Brightness carries the value actually written: the luma-derived
// backlight level or the RGB blink level. Winner names the endpoint whose
// state drives the RGB LED after this write; it is empty for the backlight,
// which has no contention.
type LightAppliedEvent struct {
	Endpoint   string `json:"endpoint"`
	Color      uint32 `json:"color"`
	Brightness int    `json:"brightness"`
	FlashMode  string `json:"flash_mode"`
	FlashOnMS  int    `json:"flash_on_ms"`
	FlashOffMS int    `json:"flash_off_ms"`
	Winner     string `json:"winner,omitempty"`
	Timestamp  string `json:"timestamp"`
}

// Type returns the event type identifier for LightAppliedEvent.
func (e LightAppliedEvent) Type() uint32 { return TypeLightApplied }

// LightWriteFailedEvent is published when a control node rejected a write.
type LightWriteFailedEvent struct {
	Endpoint  string `json:"endpoint"`
	Path      string `json:"path"`
	Error     string `json:"error"`
	Errno     int    `json:"errno"`
	Timestamp string `json:"timestamp"`
}

// Type returns the event type identifier for LightWriteFailedEvent.
func (e LightWriteFailedEvent) Type() uint32 { return TypeLightWriteFailed }

// AttentionChangedEvent tracks the attention override slot. Active is false
// when the slot was cleared and notifications show through again.
type AttentionChangedEvent struct {
	Active    bool   `json:"active"`
	Color     uint32 `json:"color"`
	Timestamp string `json:"timestamp"`
}

// Type returns the event type identifier for AttentionChangedEvent.
func (e AttentionChangedEvent) Type() uint32 { return TypeAttentionChanged }

// SceneLoadedEvent is published when a scene file is loaded or reloaded.
type SceneLoadedEvent struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Steps     int    `json:"steps"`
	Timestamp string `json:"timestamp"`
}

// Type returns the event type identifier for SceneLoadedEvent.
func (e SceneLoadedEvent) Type() uint32 { return TypeSceneLoaded }

// ScenePlaybackFinishedEvent is published when scene playback stops.
// Completed is false when playback was cancelled mid-run.
type ScenePlaybackFinishedEvent struct {
	Name         string `json:"name"`
	StepsApplied int    `json:"steps_applied"`
	Completed    bool   `json:"completed"`
	Timestamp    string `json:"timestamp"`
}

// Type returns the event type identifier for ScenePlaybackFinishedEvent.
func (e ScenePlaybackFinishedEvent) Type() uint32 { return TypeScenePlaybackFinished }
