package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sceneReloads = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lightkit",
		Subsystem: "scene",
		Name:      "reloads_total",
		Help:      "Scene file loads, including watcher-triggered reloads",
	})

	sceneSteps = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lightkit",
		Subsystem: "scene",
		Name:      "steps",
		Help:      "Step count of the currently loaded scene",
	})

	scenePlaybacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lightkit",
		Subsystem: "scene",
		Name:      "playbacks_total",
		Help:      "Finished scene playbacks, by outcome",
	}, []string{"outcome"})

	sceneCache   sceneSnapshot
	sceneCacheMu sync.RWMutex
)

type sceneSnapshot struct {
	reloads uint64
	steps   int
}

// IncSceneReload counts a scene load and records its step count.
func IncSceneReload(steps int) {
	sceneReloads.Inc()
	sceneSteps.Set(float64(steps))

	sceneCacheMu.Lock()
	sceneCache.reloads++
	sceneCache.steps = steps
	sceneCacheMu.Unlock()
}

// IncScenePlayback counts a finished playback. Outcome is "completed" or
// "cancelled".
func IncScenePlayback(completed bool) {
	outcome := "cancelled"
	if completed {
		outcome = "completed"
	}
	scenePlaybacks.WithLabelValues(outcome).Inc()
}

// SceneReloads returns the number of scene loads recorded so far.
func SceneReloads() uint64 {
	sceneCacheMu.RLock()
	defer sceneCacheMu.RUnlock()
	return sceneCache.reloads
}

// SceneSteps returns the step count of the most recently loaded scene.
func SceneSteps() int {
	sceneCacheMu.RLock()
	defer sceneCacheMu.RUnlock()
	return sceneCache.steps
}
