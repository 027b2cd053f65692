package metrics

import (
	"github.com/smazurov/lightkit/internal/events"
)

// Recorder feeds bus events into the Prometheus registry. It is the only
// bridge between the event bus and this package; nothing here talks to the
// light module directly.
type Recorder struct {
	bus    *events.Bus
	unsubs []func()
}

// NewRecorder creates a recorder bound to the bus.
func NewRecorder(bus *events.Bus) *Recorder {
	return &Recorder{bus: bus}
}

// Start subscribes to light and scene events. Call Stop to detach.
func (r *Recorder) Start() {
	r.unsubs = append(r.unsubs,
		r.bus.Subscribe(func(e events.LightAppliedEvent) {
			IncWrite(e.Endpoint)
			if e.Endpoint == "backlight" {
				SetBacklightBrightness(e.Brightness)
				return
			}
			SetLEDState(e.Brightness, e.FlashOnMS, e.FlashOffMS)
		}),
		r.bus.Subscribe(func(e events.LightWriteFailedEvent) {
			IncWriteFailure(e.Endpoint)
		}),
		r.bus.Subscribe(func(e events.AttentionChangedEvent) {
			SetAttentionActive(e.Active)
		}),
		r.bus.Subscribe(func(e events.SceneLoadedEvent) {
			IncSceneReload(e.Steps)
		}),
		r.bus.Subscribe(func(e events.ScenePlaybackFinishedEvent) {
			IncScenePlayback(e.Completed)
		}),
	)
}

// Stop detaches all subscriptions.
func (r *Recorder) Stop() {
	for _, unsub := range r.unsubs {
		unsub()
	}
	r.unsubs = nil
}
