// Package presets persists named zoom/pan/tilt positions in a flat JSON
// file keyed by preset id.
package presets

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
	"github.com/smazurov/camctl/internal/logging"
)

// DefaultRelPath is the presets file location under the XDG config home.
const DefaultRelPath = "elgato-camera-control/presets.json"

// ErrEmptyID is returned by Save for an empty preset id.
var ErrEmptyID = errors.New("preset id is empty")

// State is one stored camera position. The on-disk keys are capitalised;
// the API uses the lowercase spelling.
type State struct {
	Zoom int `json:"Zoom"`
	Pan  int `json:"Pan"`
	Tilt int `json:"Tilt"`
}

// DefaultPath resolves the presets file under the XDG config home,
// creating the parent directory.
func DefaultPath() (string, error) {
	return xdg.ConfigFile(DefaultRelPath)
}

// Store is a file-backed preset map. All methods are safe for concurrent
// use.
type Store struct {
	path   string
	logger logging.Logger

	mu      sync.RWMutex
	presets map[string]State
}

// NewStore reads path and returns a Store. A missing or unreadable file
// yields an empty store.
func NewStore(path string, logger logging.Logger) *Store {
	s := &Store{path: path, logger: logger, presets: make(map[string]State)}
	s.Reload()
	return s
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string { return s.path }

// Load returns the preset stored under id.
func (s *Store) Load(id string) (State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.presets[id]
	return st, ok
}

// All returns a copy of every stored preset.
func (s *Store) All() map[string]State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.presets)
}

// Save stores state under id and rewrites the file.
func (s *Store) Save(id string, state State) error {
	if id == "" {
		return ErrEmptyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := maps.Clone(s.presets)
	next[id] = state
	if err := writeFile(s.path, next); err != nil {
		return err
	}
	s.presets = next
	s.logger.Info("Preset saved", "id", id, "zoom", state.Zoom, "pan", state.Pan, "tilt", state.Tilt)
	return nil
}

// Reload re-reads the file and returns the number of presets loaded.
func (s *Store) Reload() int {
	presets, err := ReadFile(s.path)
	if err != nil {
		s.logger.Warn("Presets file unreadable, starting empty", "path", s.path, "error", err)
		presets = make(map[string]State)
	}
	s.Replace(presets)
	return len(presets)
}

// Replace swaps the in-memory presets without touching the file. It is the
// reload hook for a config.Watcher.
func (s *Store) Replace(presets map[string]State) {
	if presets == nil {
		presets = make(map[string]State)
	}
	s.mu.Lock()
	s.presets = presets
	s.mu.Unlock()
}

// ReadFile parses a presets file. A missing file is an empty map.
func ReadFile(path string) (map[string]State, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]State), nil
	}
	if err != nil {
		return nil, err
	}

	presets := make(map[string]State)
	if err := json.Unmarshal(data, &presets); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	// A literal null decodes to a nil map.
	if presets == nil {
		presets = make(map[string]State)
	}
	return presets, nil
}

// writeFile replaces path atomically via a temp file in the same directory.
func writeFile(path string, presets map[string]State) error {
	data, err := json.MarshalIndent(presets, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create presets dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".presets-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
