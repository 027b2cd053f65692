// Package panel ties the lights shim to the event bus. It owns one open
// device per endpoint and publishes an event for every write, so metrics and
// log consumers see light activity without touching the hardware layer.
package panel

import (
	"errors"
	"fmt"
	"sync"
	"syscall"
	"time"

	"github.com/smazurov/lightkit/internal/events"
	"github.com/smazurov/lightkit/internal/logging"
	"github.com/smazurov/lightkit/pkg/lights"
)

// device is the slice of lights.Device the panel uses. Tests substitute
// fakes.
type device interface {
	Endpoint() lights.Endpoint
	SetLight(state lights.State) error
	Close() error
}

// Panel routes light states to their endpoint devices and publishes the
// outcome on the bus. It implements scene.Sink.
type Panel struct {
	bus     *events.Bus
	logger  logging.Logger
	devices map[lights.Endpoint]device

	// attentionLit mirrors the module's override slot. The panel is the
	// only writer for its module, so it sees every attention change.
	mu           sync.Mutex
	attentionLit bool
}

// New opens every endpoint of the module. Opening is cheap and touches no
// hardware; writes happen per Apply call.
func New(m *lights.Module, bus *events.Bus, logger logging.Logger) (*Panel, error) {
	p := &Panel{
		bus:     bus,
		logger:  logger,
		devices: make(map[lights.Endpoint]device),
	}

	for _, ep := range lights.Endpoints() {
		dev, err := m.Open(ep.String())
		if err != nil {
			return nil, fmt.Errorf("failed to open %s endpoint: %w", ep, err)
		}
		p.devices[ep] = dev
	}

	return p, nil
}

// Apply writes a light state to an endpoint and publishes the result.
// Attention writes additionally publish the override slot change.
func (p *Panel) Apply(endpoint lights.Endpoint, state lights.State) error {
	dev, ok := p.devices[endpoint]
	if !ok {
		return fmt.Errorf("no device for endpoint %s: %w", endpoint, syscall.EINVAL)
	}

	// The module stores the attention slot before it touches the node, so
	// the flag updates even when the write below fails.
	if endpoint == lights.EndpointAttention {
		p.mu.Lock()
		p.attentionLit = state.IsLit()
		p.mu.Unlock()
	}

	err := dev.SetLight(state)
	now := time.Now().Format(time.RFC3339)

	if err != nil {
		p.logger.Warn("light write failed",
			"endpoint", endpoint.String(),
			"error", err)
		p.publish(events.LightWriteFailedEvent{
			Endpoint:  endpoint.String(),
			Path:      nodePath(endpoint),
			Error:     err.Error(),
			Errno:     lights.Errno(err),
			Timestamp: now,
		})
		return err
	}

	level, onMS, offMS := lights.Blink(state)
	brightness := level
	if endpoint == lights.EndpointBacklight {
		brightness = lights.BacklightBrightness(state)
	}

	p.logger.Debug("light applied",
		"endpoint", endpoint.String(),
		"color", fmt.Sprintf("%#08x", state.Color),
		"brightness", brightness)

	p.publish(events.LightAppliedEvent{
		Endpoint:   endpoint.String(),
		Color:      state.Color,
		Brightness: brightness,
		FlashMode:  state.Flash.String(),
		FlashOnMS:  onMS,
		FlashOffMS: offMS,
		Winner:     p.winner(endpoint),
		Timestamp:  now,
	})

	if endpoint == lights.EndpointAttention {
		p.publish(events.AttentionChangedEvent{
			Active:    state.IsLit(),
			Color:     state.Color,
			Timestamp: now,
		})
	}

	return nil
}

// Close releases every endpoint device.
func (p *Panel) Close() error {
	var errs []error
	for _, dev := range p.devices {
		if err := dev.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// winner reports which endpoint's state drives the RGB LED after a write to
// endpoint. The backlight has its own node and no contention.
func (p *Panel) winner(endpoint lights.Endpoint) string {
	switch endpoint {
	case lights.EndpointAttention:
		return lights.EndpointAttention.String()
	case lights.EndpointNotifications:
		p.mu.Lock()
		lit := p.attentionLit
		p.mu.Unlock()
		if lit {
			return lights.EndpointAttention.String()
		}
		return lights.EndpointNotifications.String()
	default:
		return ""
	}
}

func nodePath(endpoint lights.Endpoint) string {
	if endpoint == lights.EndpointBacklight {
		return lights.BacklightControlPath
	}
	return lights.RGBControlPath
}

func (p *Panel) publish(ev events.Event) {
	if p.bus != nil {
		p.bus.Publish(ev)
	}
}
