package lights

import (
	"fmt"
	"log/slog"
	"sync"
	"syscall"
)

// Control node paths. Fixed by the kernel driver, not configurable.
const (
	BacklightControlPath = "/sys/class/leds/lcd-backlight/brightness"
	RGBControlPath       = "/sys/class/leds/rgb/control"
)

// Endpoint identifies one of the three logical light sinks.
type Endpoint uint8

// The recognized endpoints.
const (
	EndpointBacklight Endpoint = iota
	EndpointNotifications
	EndpointAttention
)

// String returns the endpoint's wire identifier.
func (e Endpoint) String() string {
	switch e {
	case EndpointBacklight:
		return "backlight"
	case EndpointNotifications:
		return "notifications"
	case EndpointAttention:
		return "attention"
	default:
		return fmt.Sprintf("endpoint(%d)", uint8(e))
	}
}

// Endpoints lists every endpoint the module recognizes.
func Endpoints() []Endpoint {
	return []Endpoint{EndpointBacklight, EndpointNotifications, EndpointAttention}
}

// ParseEndpoint maps an identifier to its endpoint. Unrecognized identifiers
// fail with an error wrapping syscall.EINVAL, matching what HAL hosts expect
// from the open entry point.
func ParseEndpoint(name string) (Endpoint, error) {
	switch name {
	case "backlight":
		return EndpointBacklight, nil
	case "notifications":
		return EndpointNotifications, nil
	case "attention":
		return EndpointAttention, nil
	default:
		return 0, fmt.Errorf("unknown light endpoint %q: %w", name, syscall.EINVAL)
	}
}

// Info is the module descriptor metadata reported to hosts.
type Info struct {
	Name    string
	Author  string
	Version string
}

// Module owns the state shared by every light device: the lock serializing
// all writes and the attention slot. Construct one per process with New; the
// zero value is not usable.
type Module struct {
	log *slog.Logger

	// openNode is the write-path seam; production uses openNode from
	// writer.go, tests substitute a recorder.
	openNode func(path string) (nodeFile, error)

	initOnce sync.Once
	lcd      *nodeWriter
	rgb      *nodeWriter

	// mu serializes every set operation across all three endpoints, so no
	// two writes to either control node ever interleave. attention is the
	// last state received on the attention endpoint and is only touched
	// with mu held.
	mu        sync.Mutex
	attention State
}

// Option configures a Module.
type Option func(*Module)

// WithLogger sets the logger used for the per-node warn-once diagnostics.
// Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(m *Module) {
		m.log = log
	}
}

// New constructs a light module. Node writers are bound lazily on the first
// Open so that merely constructing a Module touches no hardware.
func New(opts ...Option) *Module {
	m := &Module{openNode: openNode}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = slog.Default()
	}
	return m
}

// Info returns the fixed module descriptor.
func (m *Module) Info() Info {
	return Info{
		Name:    "MSM8226 lights module",
		Author:  "lightkit authors",
		Version: "1.0",
	}
}

// Open returns a device bound to the named endpoint. Exactly "backlight",
// "notifications" and "attention" are recognized; anything else fails with an
// EINVAL-wrapped error before any shared state is initialized. Open is safe
// to call concurrently; the shared node writers are initialized exactly once
// no matter how many goroutines race here first.
func (m *Module) Open(name string) (*Device, error) {
	ep, err := ParseEndpoint(name)
	if err != nil {
		return nil, err
	}

	m.initOnce.Do(m.initNodes)

	d := &Device{module: m, endpoint: ep}
	switch ep {
	case EndpointBacklight:
		d.set = m.setBacklight
	case EndpointNotifications:
		d.set = m.setNotification
	case EndpointAttention:
		d.set = m.setAttention
	}
	return d, nil
}

func (m *Module) initNodes() {
	m.lcd = &nodeWriter{path: BacklightControlPath, open: m.openNode, log: m.log}
	m.rgb = &nodeWriter{path: RGBControlPath, open: m.openNode, log: m.log}
}

// setBacklight drives the LCD brightness node. It never consults the
// attention slot; the backlight is an independent physical sink.
func (m *Module) setBacklight(s State) error {
	brightness := BacklightBrightness(s)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lcd.writeInt(brightness)
}

// setNotification drives the RGB node with whatever state wins priority
// resolution against the current attention slot.
func (m *Module) setNotification(s State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.applyRGBLocked(s)
}

// setAttention stores the new attention state unconditionally (clearing
// attention is itself an event) and then applies exactly like a notification.
func (m *Module) setAttention(s State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attention = s
	return m.applyRGBLocked(s)
}

// resolveLocked picks the state that must drive the RGB LED: a lit attention
// state wins unconditionally, otherwise the candidate applies. Callers hold mu.
func (m *Module) resolveLocked(candidate State) State {
	if m.attention.IsLit() {
		return m.attention
	}
	return candidate
}

func (m *Module) applyRGBLocked(candidate State) error {
	level, onMS, offMS := Blink(m.resolveLocked(candidate))
	return m.rgb.writeString(encodeBlink(level, onMS, offMS))
}

// Device is a handle bound to one endpoint of a Module. All devices opened
// from the same Module share its lock and attention slot.
type Device struct {
	module   *Module
	endpoint Endpoint
	set      func(State) error
}

// Endpoint returns the endpoint this device was opened for.
func (d *Device) Endpoint() Endpoint {
	return d.endpoint
}

// SetLight applies a light state to this device's endpoint: one lock
// acquisition, one derivation, one best-effort write. The writer's error is
// returned unchanged; use Errno for the C-style result code.
func (d *Device) SetLight(s State) error {
	return d.set(s)
}

// Close releases the handle. The handle holds no OS resources, so Close is
// idempotent and safe on a nil device; it exists for host-contract symmetry
// and always succeeds.
func (d *Device) Close() error {
	return nil
}
