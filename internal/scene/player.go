package scene

import (
	"context"
	"sync"
	"time"

	"github.com/smazurov/lightkit/internal/events"
	"github.com/smazurov/lightkit/internal/logging"
	"github.com/smazurov/lightkit/pkg/lights"
)

// Sink receives resolved light states during playback. The panel implements
// it against real control nodes; tests substitute a recorder.
type Sink interface {
	Apply(endpoint lights.Endpoint, state lights.State) error
}

// Player runs scene playback against a sink. At most one scene plays at a
// time; starting a new one cancels the current run first.
type Player struct {
	sink   Sink
	bus    *events.Bus
	logger logging.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPlayer creates a player. The bus may be nil when no one listens for
// playback events.
func NewPlayer(sink Sink, bus *events.Bus, logger logging.Logger) *Player {
	return &Player{
		sink:   sink,
		bus:    bus,
		logger: logger,
	}
}

// Play runs the scene synchronously until it finishes or ctx is canceled.
// Sink errors do not abort playback; light writes are best effort and the
// remaining steps still run on schedule. A looping scene only ends by
// cancellation.
func (p *Player) Play(ctx context.Context, sc Scene) error {
	if err := sc.Validate(); err != nil {
		return err
	}

	p.logger.Info("scene playback started",
		"scene", sc.Name,
		"steps", len(sc.Steps),
		"loop", sc.Loop)

	applied, completed := p.run(ctx, sc)

	if p.bus != nil {
		p.bus.Publish(events.ScenePlaybackFinishedEvent{
			Name:         sc.Name,
			StepsApplied: applied,
			Completed:    completed,
			Timestamp:    time.Now().Format(time.RFC3339),
		})
	}

	if !completed {
		p.logger.Info("scene playback canceled", "scene", sc.Name)
		return ctx.Err()
	}

	p.logger.Info("scene playback finished", "scene", sc.Name)
	return nil
}

func (p *Player) run(ctx context.Context, sc Scene) (applied int, completed bool) {
	for {
		for i, st := range sc.Steps {
			if ctx.Err() != nil {
				return applied, false
			}

			ep, err := lights.ParseEndpoint(st.Endpoint)
			if err != nil {
				p.logger.Warn("skipping scene step",
					"scene", sc.Name, "step", i, "error", err)
				continue
			}
			state, err := st.State()
			if err != nil {
				p.logger.Warn("skipping scene step",
					"scene", sc.Name, "step", i, "error", err)
				continue
			}

			if applyErr := p.sink.Apply(ep, state); applyErr != nil {
				p.logger.Warn("scene step apply failed",
					"scene", sc.Name,
					"step", i,
					"endpoint", st.Endpoint,
					"error", applyErr)
			} else {
				applied++
			}

			if st.HoldMS > 0 {
				if !sleepCtx(ctx, time.Duration(st.HoldMS)*time.Millisecond) {
					return applied, false
				}
			}
		}

		if !sc.Loop {
			return applied, true
		}
	}
}

// Start launches playback in the background, replacing any scene already
// playing.
func (p *Player) Start(sc Scene) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done

	go func() {
		defer close(done)
		if err := p.Play(ctx, sc); err != nil && ctx.Err() == nil {
			p.logger.Error("scene playback failed", "scene", sc.Name, "error", err)
		}
	}()
}

// Stop cancels the running scene, if any, and waits for playback to end.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	if p.cancel == nil {
		return
	}

	p.cancel()
	<-p.done
	p.cancel = nil
	p.done = nil
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
