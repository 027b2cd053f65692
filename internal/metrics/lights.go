// Package metrics provides Prometheus metrics for light state and scene playback.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	backlightBrightness = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lightkit",
		Subsystem: "lights",
		Name:      "backlight_brightness",
		Help:      "Brightness level last written to the backlight node (0-255)",
	})

	ledLevel = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lightkit",
		Subsystem: "lights",
		Name:      "led_level",
		Help:      "Blink level last written to the RGB control node (0-255)",
	})

	ledFlashOnMS = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lightkit",
		Subsystem: "lights",
		Name:      "led_flash_on_ms",
		Help:      "Flash on duration last written to the RGB control node",
	})

	ledFlashOffMS = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lightkit",
		Subsystem: "lights",
		Name:      "led_flash_off_ms",
		Help:      "Flash off duration last written to the RGB control node",
	})

	attentionActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lightkit",
		Subsystem: "lights",
		Name:      "attention_active",
		Help:      "Whether a lit attention state currently overrides notifications (0 or 1)",
	})

	nodeBrightness = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lightkit",
		Subsystem: "node",
		Name:      "brightness",
		Help:      "Brightness the kernel currently reports for the backlight node",
	})

	lightWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lightkit",
		Subsystem: "lights",
		Name:      "writes_total",
		Help:      "Control node writes that succeeded, by endpoint",
	}, []string{"endpoint"})

	lightWriteFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lightkit",
		Subsystem: "lights",
		Name:      "write_failures_total",
		Help:      "Control node writes that failed, by endpoint",
	}, []string{"endpoint"})

	// Local cache so callers can read current values without scraping the
	// Prometheus registry.
	lightsCache   = LightsSnapshot{Writes: map[string]uint64{}, WriteFailures: map[string]uint64{}}
	lightsCacheMu sync.RWMutex
)

// LightsSnapshot holds the current light metric values.
type LightsSnapshot struct {
	BacklightBrightness int
	NodeBrightness      int
	LEDLevel            int
	LEDFlashOnMS        int
	LEDFlashOffMS       int
	AttentionActive     bool
	Writes              map[string]uint64
	WriteFailures       map[string]uint64
}

// SetBacklightBrightness records the level written to the backlight node.
func SetBacklightBrightness(level int) {
	backlightBrightness.Set(float64(level))
	updateLights(func(s *LightsSnapshot) { s.BacklightBrightness = level })
}

// SetNodeBrightness records the level the kernel reports for the backlight node.
func SetNodeBrightness(level int) {
	nodeBrightness.Set(float64(level))
	updateLights(func(s *LightsSnapshot) { s.NodeBrightness = level })
}

// SetLEDState records the blink tuple written to the RGB control node.
func SetLEDState(level, onMS, offMS int) {
	ledLevel.Set(float64(level))
	ledFlashOnMS.Set(float64(onMS))
	ledFlashOffMS.Set(float64(offMS))
	updateLights(func(s *LightsSnapshot) {
		s.LEDLevel = level
		s.LEDFlashOnMS = onMS
		s.LEDFlashOffMS = offMS
	})
}

// SetAttentionActive records whether attention currently overrides notifications.
func SetAttentionActive(active bool) {
	if active {
		attentionActive.Set(1)
	} else {
		attentionActive.Set(0)
	}
	updateLights(func(s *LightsSnapshot) { s.AttentionActive = active })
}

// IncWrite counts a successful control node write for an endpoint.
func IncWrite(endpoint string) {
	lightWrites.WithLabelValues(endpoint).Inc()
	updateLights(func(s *LightsSnapshot) { s.Writes[endpoint]++ })
}

// IncWriteFailure counts a failed control node write for an endpoint.
func IncWriteFailure(endpoint string) {
	lightWriteFailures.WithLabelValues(endpoint).Inc()
	updateLights(func(s *LightsSnapshot) { s.WriteFailures[endpoint]++ })
}

// Snapshot returns a copy of the current light metric values.
func Snapshot() LightsSnapshot {
	lightsCacheMu.RLock()
	defer lightsCacheMu.RUnlock()

	dup := lightsCache
	dup.Writes = make(map[string]uint64, len(lightsCache.Writes))
	for k, v := range lightsCache.Writes {
		dup.Writes[k] = v
	}
	dup.WriteFailures = make(map[string]uint64, len(lightsCache.WriteFailures))
	for k, v := range lightsCache.WriteFailures {
		dup.WriteFailures[k] = v
	}
	return dup
}

func updateLights(update func(*LightsSnapshot)) {
	lightsCacheMu.Lock()
	defer lightsCacheMu.Unlock()
	update(&lightsCache)
}
