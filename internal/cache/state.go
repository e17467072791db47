package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// State is the persisted form of a cache entry.
type State[T any] struct {
	Value      T         `json:"value"`
	InsertedAt time.Time `json:"inserted_at"`
}

// LoadState reads a cache entry from a JSON file. Returns nil if the file doesn't exist.
func LoadState[T any](filePath string) (*State[T], error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cache state: %w", err)
	}
	var st State[T]
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode cache state: %w", err)
	}
	return &st, nil
}

// SaveState writes a cache entry to a JSON file, creating its directory.
func SaveState[T any](filePath string, st *State[T]) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cache dir: %w", err)
		}
	}
	return os.WriteFile(filePath, data, 0644)
}
