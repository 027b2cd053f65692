package lights

import (
	"errors"
	"sync"
	"syscall"
	"testing"
)

func newTestModule(fs *fakeNodes) *Module {
	m := New(WithLogger(discardLogger()))
	m.openNode = fs.open
	return m
}

func TestOpenRecognizedEndpoints(t *testing.T) {
	tests := []struct {
		name string
		want Endpoint
	}{
		{"backlight", EndpointBacklight},
		{"notifications", EndpointNotifications},
		{"attention", EndpointAttention},
	}

	m := newTestModule(&fakeNodes{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, err := m.Open(tt.name)
			if err != nil {
				t.Fatalf("Open(%q) failed: %v", tt.name, err)
			}
			if dev.Endpoint() != tt.want {
				t.Errorf("Endpoint() = %v, want %v", dev.Endpoint(), tt.want)
			}
		})
	}
}

func TestOpenUnknownEndpoint(t *testing.T) {
	names := []string{"", "power", "Backlight", "keyboard", "buttons"}

	m := newTestModule(&fakeNodes{})
	for _, name := range names {
		dev, err := m.Open(name)
		if !errors.Is(err, syscall.EINVAL) {
			t.Errorf("Open(%q): got %v, want EINVAL", name, err)
		}
		if dev != nil {
			t.Errorf("Open(%q) returned a device on failure", name)
		}
	}
}

func TestOpenTouchesNoHardware(t *testing.T) {
	fs := &fakeNodes{}
	m := newTestModule(fs)

	for _, name := range []string{"backlight", "notifications", "attention"} {
		if _, err := m.Open(name); err != nil {
			t.Fatalf("Open(%q) failed: %v", name, err)
		}
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if len(fs.writes) != 0 {
		t.Errorf("Open wrote to control nodes: %v", fs.writes)
	}
}

func TestBacklightWrite(t *testing.T) {
	tests := []struct {
		name  string
		color uint32
		want  string
	}{
		{"red", 0x00FF0000, "76\n"},
		{"white", 0x00FFFFFF, "255\n"},
		{"off", 0x00000000, "0\n"},
		{"alpha ignored", 0xFF808080, "128\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := &fakeNodes{}
			m := newTestModule(fs)
			dev, err := m.Open("backlight")
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}

			if err := dev.SetLight(State{Color: tt.color}); err != nil {
				t.Fatalf("SetLight failed: %v", err)
			}
			if got := fs.lastWrite(t, BacklightControlPath); got != tt.want {
				t.Errorf("brightness write = %q, want %q", got, tt.want)
			}
			if n := fs.countWrites(RGBControlPath); n != 0 {
				t.Errorf("backlight touched the RGB node %d times", n)
			}
		})
	}
}

func TestNotificationWrite(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  string
	}{
		{
			name:  "steady green",
			state: State{Color: 0x0000FF00},
			want:  "ff0000 0 0 1 1\n",
		},
		{
			name:  "timed blink",
			state: State{Color: 0x00FF0000, Flash: FlashTimed, FlashOnMS: 500, FlashOffMS: 1000},
			want:  "ff0000 500 1000 1 1\n",
		},
		{
			name:  "brightness override",
			state: State{Color: 0xAA00FF00},
			want:  "aa0000 0 0 1 1\n",
		},
		{
			name:  "off",
			state: State{},
			want:  "000000 0 0 1 1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := &fakeNodes{}
			m := newTestModule(fs)
			dev, err := m.Open("notifications")
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}

			if err := dev.SetLight(tt.state); err != nil {
				t.Fatalf("SetLight failed: %v", err)
			}
			if got := fs.lastWrite(t, RGBControlPath); got != tt.want {
				t.Errorf("control write = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAttentionOverridesNotifications(t *testing.T) {
	fs := &fakeNodes{}
	m := newTestModule(fs)

	notif, err := m.Open("notifications")
	if err != nil {
		t.Fatalf("Open(notifications) failed: %v", err)
	}
	attn, err := m.Open("attention")
	if err != nil {
		t.Fatalf("Open(attention) failed: %v", err)
	}

	// A dimmed blinking attention state is distinguishable on the wire from
	// the steady full-level notification that follows it.
	attention := State{Color: 0xAAFF0000, Flash: FlashTimed, FlashOnMS: 500, FlashOffMS: 1000}
	if err := attn.SetLight(attention); err != nil {
		t.Fatalf("SetLight(attention) failed: %v", err)
	}
	if got, want := fs.lastWrite(t, RGBControlPath), "aa0000 500 1000 1 1\n"; got != want {
		t.Fatalf("attention write = %q, want %q", got, want)
	}

	if err := notif.SetLight(State{Color: 0x0000FF00}); err != nil {
		t.Fatalf("SetLight(notifications) failed: %v", err)
	}
	if got, want := fs.lastWrite(t, RGBControlPath), "aa0000 500 1000 1 1\n"; got != want {
		t.Errorf("notification displaced lit attention: wrote %q, want %q", got, want)
	}
	if n := fs.countWrites(RGBControlPath); n != 2 {
		t.Errorf("control node written %d times, want 2 (every set writes)", n)
	}
}

func TestClearedAttentionLetsNotificationsThrough(t *testing.T) {
	fs := &fakeNodes{}
	m := newTestModule(fs)

	notif, _ := m.Open("notifications")
	attn, _ := m.Open("attention")

	attn.SetLight(State{Color: 0x00FF0000, Flash: FlashTimed, FlashOnMS: 500, FlashOffMS: 1000})

	if err := attn.SetLight(State{}); err != nil {
		t.Fatalf("clearing attention failed: %v", err)
	}
	if got, want := fs.lastWrite(t, RGBControlPath), "000000 0 0 1 1\n"; got != want {
		t.Errorf("clear wrote %q, want %q", got, want)
	}

	if err := notif.SetLight(State{Color: 0x0000FF00}); err != nil {
		t.Fatalf("SetLight(notifications) failed: %v", err)
	}
	if got, want := fs.lastWrite(t, RGBControlPath), "ff0000 0 0 1 1\n"; got != want {
		t.Errorf("notification after clear wrote %q, want %q", got, want)
	}
}

func TestBacklightIgnoresAttention(t *testing.T) {
	fs := &fakeNodes{}
	m := newTestModule(fs)

	backlight, _ := m.Open("backlight")
	attn, _ := m.Open("attention")

	attn.SetLight(State{Color: 0x00FF0000})
	rgbWrites := fs.countWrites(RGBControlPath)

	if err := backlight.SetLight(State{Color: 0x00808080}); err != nil {
		t.Fatalf("SetLight(backlight) failed: %v", err)
	}
	if got, want := fs.lastWrite(t, BacklightControlPath), "128\n"; got != want {
		t.Errorf("brightness write = %q, want %q", got, want)
	}
	if n := fs.countWrites(RGBControlPath); n != rgbWrites {
		t.Errorf("backlight set changed the RGB node (writes %d -> %d)", rgbWrites, n)
	}
}

func TestWriteErrorsSurface(t *testing.T) {
	openErr := syscall.ENOENT
	fs := &fakeNodes{openErr: map[string]error{
		BacklightControlPath: openErr,
		RGBControlPath:       openErr,
	}}
	m := newTestModule(fs)

	for _, name := range []string{"backlight", "notifications", "attention"} {
		dev, err := m.Open(name)
		if err != nil {
			t.Fatalf("Open(%q) failed: %v", name, err)
		}
		err = dev.SetLight(State{Color: 0x00FF0000})
		if !errors.Is(err, syscall.ENOENT) {
			t.Errorf("SetLight on %s: got %v, want ENOENT", name, err)
		}
		if got := Errno(err); got != -int(syscall.ENOENT) {
			t.Errorf("Errno on %s = %d, want %d", name, got, -int(syscall.ENOENT))
		}
	}
}

func TestAttentionStoredEvenWhenWriteFails(t *testing.T) {
	fs := &fakeNodes{openErr: map[string]error{RGBControlPath: syscall.EACCES}}
	m := newTestModule(fs)

	attn, _ := m.Open("attention")
	notif, _ := m.Open("notifications")

	if err := attn.SetLight(State{Color: 0x00FF0000}); !errors.Is(err, syscall.EACCES) {
		t.Fatalf("SetLight(attention): got %v, want EACCES", err)
	}

	// Heal the node. The remembered attention state must still win.
	fs.mu.Lock()
	delete(fs.openErr, RGBControlPath)
	fs.mu.Unlock()

	if err := notif.SetLight(State{Color: 0xAA00FF00}); err != nil {
		t.Fatalf("SetLight(notifications) failed: %v", err)
	}
	if got, want := fs.lastWrite(t, RGBControlPath), "ff0000 0 0 1 1\n"; got != want {
		t.Errorf("after failed attention set: wrote %q, want %q", got, want)
	}
}

func TestCloseIdempotent(t *testing.T) {
	m := newTestModule(&fakeNodes{})
	dev, err := m.Open("backlight")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := dev.Close(); err != nil {
		t.Errorf("first Close failed: %v", err)
	}
	if err := dev.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}

	var nilDev *Device
	if err := nilDev.Close(); err != nil {
		t.Errorf("nil Close failed: %v", err)
	}
}

func TestModuleInfo(t *testing.T) {
	info := New().Info()
	if info.Name != "MSM8226 lights module" {
		t.Errorf("Name = %q", info.Name)
	}
	if info.Author == "" || info.Version == "" {
		t.Errorf("incomplete info: %+v", info)
	}
}

func TestConcurrentSetLight(t *testing.T) {
	fs := &fakeNodes{}
	m := newTestModule(fs)

	devs := make([]*Device, 0, 3)
	for _, name := range []string{"backlight", "notifications", "attention"} {
		dev, err := m.Open(name)
		if err != nil {
			t.Fatalf("Open(%q) failed: %v", name, err)
		}
		devs = append(devs, dev)
	}

	const iterations = 20
	var wg sync.WaitGroup
	for _, dev := range devs {
		wg.Add(1)
		go func(d *Device) {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				if err := d.SetLight(State{Color: 0x00FF0000}); err != nil {
					t.Errorf("SetLight(%v) failed: %v", d.Endpoint(), err)
					return
				}
			}
		}(dev)
	}
	wg.Wait()

	if n := fs.countWrites(BacklightControlPath); n != iterations {
		t.Errorf("brightness writes = %d, want %d", n, iterations)
	}
	if n := fs.countWrites(RGBControlPath); n != 2*iterations {
		t.Errorf("control writes = %d, want %d", n, 2*iterations)
	}
}

func TestParseEndpointRoundTrip(t *testing.T) {
	for _, ep := range Endpoints() {
		got, err := ParseEndpoint(ep.String())
		if err != nil {
			t.Errorf("ParseEndpoint(%q) failed: %v", ep.String(), err)
			continue
		}
		if got != ep {
			t.Errorf("ParseEndpoint(%q) = %v, want %v", ep.String(), got, ep)
		}
	}
}
