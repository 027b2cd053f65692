// Package scene defines light scenes: named sequences of timed light states
// played back against the panel endpoints. Scenes are stored as TOML
// documents and validated before playback.
package scene

import (
	"fmt"

	"github.com/smazurov/lightkit/pkg/lights"
)

// Step is one entry in a scene. It applies a light state to an endpoint and
// holds it for HoldMS before the next step runs.
type Step struct {
	Endpoint   string `toml:"endpoint" json:"endpoint"`
	Color      string `toml:"color" json:"color"`
	Flash      string `toml:"flash,omitempty" json:"flash,omitempty"`
	FlashOnMS  int    `toml:"flash_on_ms,omitempty" json:"flash_on_ms,omitempty"`
	FlashOffMS int    `toml:"flash_off_ms,omitempty" json:"flash_off_ms,omitempty"`
	HoldMS     int    `toml:"hold_ms,omitempty" json:"hold_ms,omitempty"`
}

// State converts the step's string fields into a light state.
func (st Step) State() (lights.State, error) {
	color, err := lights.ParseColor(st.Color)
	if err != nil {
		return lights.State{}, err
	}

	flash, err := lights.ParseFlashMode(st.Flash)
	if err != nil {
		return lights.State{}, err
	}

	return lights.State{
		Color:      color,
		Flash:      flash,
		FlashOnMS:  st.FlashOnMS,
		FlashOffMS: st.FlashOffMS,
	}, nil
}

// Scene is a named, optionally looping sequence of steps.
type Scene struct {
	Version int    `toml:"version" json:"version"`
	Name    string `toml:"name" json:"name"`
	Loop    bool   `toml:"loop,omitempty" json:"loop,omitempty"`
	Steps   []Step `toml:"steps" json:"steps"`
}

// Validate checks every step and reports the first problem along with its
// step index. A scene with no steps is invalid.
func (sc Scene) Validate() error {
	if len(sc.Steps) == 0 {
		return fmt.Errorf("scene %q has no steps", sc.Name)
	}

	for i, st := range sc.Steps {
		if _, err := lights.ParseEndpoint(st.Endpoint); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		state, err := st.State()
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		if st.FlashOnMS < 0 || st.FlashOffMS < 0 {
			return fmt.Errorf("step %d: negative flash duration", i)
		}
		if state.Flash == lights.FlashTimed && st.FlashOnMS == 0 && st.FlashOffMS == 0 {
			return fmt.Errorf("step %d: timed flash with zero durations", i)
		}
		if st.HoldMS < 0 {
			return fmt.Errorf("step %d: negative hold duration", i)
		}
	}

	return nil
}
