package lights

import (
	"fmt"
	"strconv"
	"strings"
)

// FlashMode selects how the RGB LED blinks.
type FlashMode uint8

// Flash modes understood by the RGB channel.
const (
	FlashNone FlashMode = iota
	FlashTimed
	FlashHardware
)

// String returns the lowercase name of the flash mode.
func (f FlashMode) String() string {
	switch f {
	case FlashNone:
		return "none"
	case FlashTimed:
		return "timed"
	case FlashHardware:
		return "hardware"
	default:
		return fmt.Sprintf("flash(%d)", uint8(f))
	}
}

// State is one complete light request. Callers own the value; the shim copies
// it and never retains a reference across calls.
type State struct {
	// Color packs the request as 0xAARRGGBB. The low 24 bits are the RGB
	// color; the top byte is an optional brightness override for the RGB
	// LED (0 means full brightness). The backlight ignores the top byte.
	Color uint32

	// Flash selects steady or blinking output on the RGB LED.
	Flash FlashMode

	// FlashOnMS and FlashOffMS are the blink durations in milliseconds.
	// They only matter when Flash is FlashTimed or FlashHardware.
	FlashOnMS  int
	FlashOffMS int
}

// IsLit reports whether any visible RGB component of the color is set. The
// alpha byte alone does not light the LED.
func (s State) IsLit() bool {
	return s.Color&0x00ffffff != 0
}

// BacklightBrightness converts the state's color to a perceptual brightness
// 0-255 for the LCD backlight, using fixed-point luma weights. The weights
// are part of the device contract and must not be "corrected".
func BacklightBrightness(s State) int {
	color := s.Color & 0x00ffffff
	r := (color >> 16) & 0xff
	g := (color >> 8) & 0xff
	b := color & 0xff
	return int((77*r + 150*g + 29*b) >> 8)
}

// Blink derives the RGB channel command from a state: a brightness level
// 0-255 plus blink on/off durations in milliseconds. An unlit state yields
// level 0. A lit state uses the alpha byte as the level when it is nonzero
// and full brightness otherwise. Durations pass through for FlashTimed and
// FlashHardware and are zeroed (steady) for FlashNone.
func Blink(s State) (level, onMS, offMS int) {
	switch s.Flash {
	case FlashTimed, FlashHardware:
		onMS = s.FlashOnMS
		offMS = s.FlashOffMS
	}

	if s.IsLit() {
		level = int(s.Color >> 24)
		if level == 0 {
			level = 255
		}
	}

	return level, onMS, offMS
}

// encodeBlink renders the control line the rgb node accepts. The driver reads
// the first token as a hex color whose red byte carries the brightness level;
// the literal 0000 keeps the unused green/blue bytes clear. The two trailing
// flags enable the ramp timings hard-coded in the kernel driver.
func encodeBlink(level, onMS, offMS int) string {
	return fmt.Sprintf("%02x0000 %d %d 1 1", level, onMS, offMS)
}

// ParseColor reads a color from a hex string. It accepts an optional "#" or
// "0x" prefix followed by exactly six (RRGGBB) or eight (AARRGGBB) hex
// digits. A six-digit color leaves the alpha byte zero, which the RGB
// channel treats as full brightness.
func ParseColor(s string) (uint32, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) == len(s) {
		h = strings.TrimPrefix(h, "0x")
		if len(h) == len(s) {
			h = strings.TrimPrefix(h, "0X")
		}
	}
	if len(h) != 6 && len(h) != 8 {
		return 0, fmt.Errorf("invalid color %q: want 6 or 8 hex digits", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return uint32(v), nil
}

// ParseFlashMode reads a flash mode from its name. The empty string means
// FlashNone.
func ParseFlashMode(s string) (FlashMode, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return FlashNone, nil
	case "timed":
		return FlashTimed, nil
	case "hardware":
		return FlashHardware, nil
	default:
		return FlashNone, fmt.Errorf("unknown flash mode %q", s)
	}
}
