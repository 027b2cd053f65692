package scene

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Store persists a single scene document.
type Store interface {
	// Load reads the scene from disk. A missing file is not an error; the
	// store keeps its current scene.
	Load() error
	// Save writes the scene to disk, creating parent directories as needed.
	Save() error
	// Scene returns the current scene.
	Scene() Scene
	// SetScene replaces the current scene and saves it.
	SetScene(sc Scene) error
	// Path returns the backing file path.
	Path() string
}

// tomlStore implements Store using TOML file storage.
type tomlStore struct {
	path  string
	scene *Scene
}

// NewTOML creates a TOML-backed scene store.
func NewTOML(path string) Store {
	if path == "" {
		path = "scene.toml"
	}

	return &tomlStore{
		path:  path,
		scene: &Scene{Version: 1},
	}
}

func (s *tomlStore) Load() error {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read scene file: %w", err)
	}

	if unmarshalErr := toml.Unmarshal(data, s.scene); unmarshalErr != nil {
		return fmt.Errorf("failed to parse scene file: %w", unmarshalErr)
	}

	if s.scene.Version == 0 {
		s.scene.Version = 1
	}

	return nil
}

func (s *tomlStore) Save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create scene directory: %w", err)
	}

	data, err := toml.Marshal(s.scene)
	if err != nil {
		return fmt.Errorf("failed to marshal scene: %w", err)
	}

	if writeErr := os.WriteFile(s.path, data, 0o644); writeErr != nil {
		return fmt.Errorf("failed to write scene file: %w", writeErr)
	}

	return nil
}

func (s *tomlStore) Scene() Scene {
	return *s.scene
}

func (s *tomlStore) SetScene(sc Scene) error {
	*s.scene = sc
	return s.Save()
}

func (s *tomlStore) Path() string {
	return s.path
}

// LoadFile reads and validates a scene document in one shot. Unlike
// Store.Load it treats a missing file as an error, so file watchers and the
// CLI surface bad paths instead of playing an empty scene.
func LoadFile(path string) (Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scene{}, fmt.Errorf("failed to read scene file: %w", err)
	}

	var sc Scene
	if err := toml.Unmarshal(data, &sc); err != nil {
		return Scene{}, fmt.Errorf("failed to parse scene file: %w", err)
	}
	if sc.Version == 0 {
		sc.Version = 1
	}

	if err := sc.Validate(); err != nil {
		return Scene{}, fmt.Errorf("invalid scene %s: %w", path, err)
	}

	return sc, nil
}
