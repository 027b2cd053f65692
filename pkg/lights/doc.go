// Package lights is a hardware abstraction shim for MSM8226-class boards
// that exposes three logical light endpoints over two sysfs control files.
//
// # Overview
//
// The kernel driver provides exactly two writable nodes:
//
//	/sys/class/leds/lcd-backlight/brightness  (decimal 0-255)
//	/sys/class/leds/rgb/control               (blink command line)
//
// On top of them the shim offers three endpoints: "backlight" drives the LCD
// brightness node, while "notifications" and "attention" share the single RGB
// LED. Attention is the high-priority channel: while its last-set state is
// lit, it drives the LED no matter what notifications request. Clearing
// attention (color 0) darkens the LED; the next notification write shows
// through again. No notification state is remembered across an override.
//
// # Usage
//
// Construct one Module per process and open a device per endpoint:
//
//	mod := lights.New(lights.WithLogger(logger))
//	dev, err := mod.Open("notifications")
//	if err != nil {
//		return err
//	}
//	defer dev.Close()
//
//	err = dev.SetLight(lights.State{
//		Color:      0x00FF0000, // red
//		Flash:      lights.FlashTimed,
//		FlashOnMS:  500,
//		FlashOffMS: 1000,
//	})
//
// All devices opened from the same Module share one lock and one attention
// slot; priority between notifications and attention only works across
// devices of the same Module.
//
// # Concurrency
//
// The shim is a passive library: it starts no goroutines and every call is a
// bounded sequence of lock, compute, one file write, unlock. Calls may arrive
// concurrently from any goroutine on any endpoint; a single Module-wide mutex
// totally orders them. A slow sysfs write blocks the caller and delays the
// other endpoints for its duration.
//
// # Errors
//
// Set operations perform a single best-effort write and return the OS error
// unchanged, with no retries; errors.Is reaches the underlying syscall.Errno.
// A persistently broken node is logged once per path and stays silent after
// that, while the error keeps being returned on every call. Errno converts a
// returned error to the negative errno convention of C HAL hosts.
package lights
