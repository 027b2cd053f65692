package panel

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/smazurov/lightkit/internal/events"
	"github.com/smazurov/lightkit/internal/scene"
	"github.com/smazurov/lightkit/pkg/lights"
)

var _ scene.Sink = (*Panel)(nil)

type fakeDevice struct {
	ep lights.Endpoint

	mu     sync.Mutex
	states []lights.State
	err    error
	closed int
}

func (d *fakeDevice) Endpoint() lights.Endpoint { return d.ep }

func (d *fakeDevice) SetLight(state lights.State) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.states = append(d.states, state)
	return nil
}

func (d *fakeDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed++
	return nil
}

func (d *fakeDevice) lastState(t *testing.T) lights.State {
	t.Helper()
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.states) == 0 {
		t.Fatal("device saw no writes")
	}
	return d.states[len(d.states)-1]
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPanel(bus *events.Bus) (*Panel, map[lights.Endpoint]*fakeDevice) {
	fakes := make(map[lights.Endpoint]*fakeDevice)
	devices := make(map[lights.Endpoint]device)
	for _, ep := range lights.Endpoints() {
		d := &fakeDevice{ep: ep}
		fakes[ep] = d
		devices[ep] = d
	}

	p := &Panel{
		bus:     bus,
		logger:  testLogger(),
		devices: devices,
	}
	return p, fakes
}

// waitFor polls cond until it holds or the deadline passes. Bus dispatch is
// asynchronous, so event-driven assertions need a grace period.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestApplyWritesToDevice(t *testing.T) {
	p, fakes := newTestPanel(nil)

	want := lights.State{Color: 0x0000FF00, Flash: lights.FlashTimed, FlashOnMS: 500, FlashOffMS: 1000}
	if err := p.Apply(lights.EndpointNotifications, want); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	if got := fakes[lights.EndpointNotifications].lastState(t); got != want {
		t.Errorf("device saw %+v, want %+v", got, want)
	}
	for _, ep := range []lights.Endpoint{lights.EndpointBacklight, lights.EndpointAttention} {
		fakes[ep].mu.Lock()
		n := len(fakes[ep].states)
		fakes[ep].mu.Unlock()
		if n != 0 {
			t.Errorf("%s device saw %d writes, want 0", ep, n)
		}
	}
}

func TestApplyPublishesLightApplied(t *testing.T) {
	bus := events.New()
	p, _ := newTestPanel(bus)

	var mu sync.Mutex
	var got []events.LightAppliedEvent
	unsub := bus.Subscribe(func(e events.LightAppliedEvent) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
	})
	defer unsub()

	if err := p.Apply(lights.EndpointBacklight, lights.State{Color: 0x00FFFFFF}); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if err := p.Apply(lights.EndpointNotifications, lights.State{Color: 0xAA00FF00}); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	})

	mu.Lock()
	defer mu.Unlock()
	if got[0].Endpoint != "backlight" || got[0].Brightness != 255 {
		t.Errorf("backlight event = %+v, want brightness 255", got[0])
	}
	if got[1].Endpoint != "notifications" || got[1].Brightness != 170 {
		t.Errorf("notifications event = %+v, want blink level 170", got[1])
	}
	if got[1].FlashMode != "none" || got[1].FlashOnMS != 0 || got[1].FlashOffMS != 0 {
		t.Errorf("notifications event = %+v, want steady output", got[1])
	}
	if got[0].Winner != "" {
		t.Errorf("backlight event winner = %q, want empty", got[0].Winner)
	}
	if got[1].Winner != "notifications" {
		t.Errorf("notifications event winner = %q, want %q", got[1].Winner, "notifications")
	}
}

func TestApplyReportsAttentionWinner(t *testing.T) {
	bus := events.New()
	p, _ := newTestPanel(bus)

	var mu sync.Mutex
	winners := make(map[int]string)
	var n int
	unsub := bus.Subscribe(func(e events.LightAppliedEvent) {
		mu.Lock()
		winners[n] = e.Winner
		n++
		mu.Unlock()
	})
	defer unsub()

	steps := []struct {
		endpoint lights.Endpoint
		state    lights.State
	}{
		{lights.EndpointAttention, lights.State{Color: 0x00FF0000}},
		{lights.EndpointNotifications, lights.State{Color: 0x0000FF00}},
		{lights.EndpointAttention, lights.State{Color: 0x00000000}},
		{lights.EndpointNotifications, lights.State{Color: 0x0000FF00}},
	}
	for _, s := range steps {
		if err := p.Apply(s.endpoint, s.state); err != nil {
			t.Fatalf("Apply(%s) error: %v", s.endpoint, err)
		}
	}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return n == len(steps)
	})

	mu.Lock()
	defer mu.Unlock()
	want := []string{"attention", "attention", "attention", "notifications"}
	for i, w := range want {
		if winners[i] != w {
			t.Errorf("event %d winner = %q, want %q", i, winners[i], w)
		}
	}
}

func TestApplyAttentionPublishesOverrideState(t *testing.T) {
	bus := events.New()
	p, _ := newTestPanel(bus)

	var mu sync.Mutex
	var got []events.AttentionChangedEvent
	unsub := bus.Subscribe(func(e events.AttentionChangedEvent) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
	})
	defer unsub()

	if err := p.Apply(lights.EndpointAttention, lights.State{Color: 0x00FF0000}); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if err := p.Apply(lights.EndpointAttention, lights.State{Color: 0x00000000}); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	})

	mu.Lock()
	defer mu.Unlock()
	if !got[0].Active || got[0].Color != 0x00FF0000 {
		t.Errorf("first attention event = %+v, want active red", got[0])
	}
	if got[1].Active {
		t.Errorf("second attention event = %+v, want inactive", got[1])
	}
}

func TestApplyNonAttentionSkipsOverrideEvent(t *testing.T) {
	bus := events.New()
	p, _ := newTestPanel(bus)

	var count int64
	var mu sync.Mutex
	unsub := bus.Subscribe(func(events.AttentionChangedEvent) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	defer unsub()

	if err := p.Apply(lights.EndpointNotifications, lights.State{Color: 0x00FF0000}); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if count != 0 {
		t.Errorf("notifications write published %d attention events", count)
	}
}

func TestApplyErrorPublishesFailure(t *testing.T) {
	bus := events.New()
	p, fakes := newTestPanel(bus)
	fakes[lights.EndpointBacklight].err = &os.PathError{
		Op:   "open",
		Path: lights.BacklightControlPath,
		Err:  syscall.ENOENT,
	}

	var mu sync.Mutex
	var got []events.LightWriteFailedEvent
	unsub := bus.Subscribe(func(e events.LightWriteFailedEvent) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
	})
	defer unsub()

	err := p.Apply(lights.EndpointBacklight, lights.State{Color: 0x00FFFFFF})
	if !errors.Is(err, syscall.ENOENT) {
		t.Fatalf("Apply() error = %v, want ENOENT", err)
	}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	})

	mu.Lock()
	defer mu.Unlock()
	if got[0].Endpoint != "backlight" {
		t.Errorf("failure event endpoint = %q, want %q", got[0].Endpoint, "backlight")
	}
	if got[0].Errno != -int(syscall.ENOENT) {
		t.Errorf("failure event errno = %d, want %d", got[0].Errno, -int(syscall.ENOENT))
	}
	if got[0].Path != lights.BacklightControlPath {
		t.Errorf("failure event path = %q, want %q", got[0].Path, lights.BacklightControlPath)
	}
}

func TestApplyUnknownEndpoint(t *testing.T) {
	p, _ := newTestPanel(nil)

	err := p.Apply(lights.Endpoint(99), lights.State{Color: 0x00FFFFFF})
	if !errors.Is(err, syscall.EINVAL) {
		t.Errorf("Apply() error = %v, want EINVAL", err)
	}
}

func TestCloseClosesAllDevices(t *testing.T) {
	p, fakes := newTestPanel(nil)

	if err := p.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	for ep, d := range fakes {
		d.mu.Lock()
		closed := d.closed
		d.mu.Unlock()
		if closed != 1 {
			t.Errorf("%s device closed %d times, want 1", ep, closed)
		}
	}
}

func TestNewOpensEveryEndpoint(t *testing.T) {
	m := lights.New(lights.WithLogger(testLogger()))

	p, err := New(m, nil, testLogger())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer p.Close()

	if got := len(p.devices); got != len(lights.Endpoints()) {
		t.Errorf("panel holds %d devices, want %d", got, len(lights.Endpoints()))
	}
}
