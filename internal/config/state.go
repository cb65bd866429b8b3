package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// State is what the client remembers between runs for one server.
type State struct {
	Server  string         `yaml:"server"`
	Session string         `yaml:"session,omitempty"`
	Config  map[string]any `yaml:"config,omitempty"`
}

func DefaultStatePath() string {
	dir, err := Dir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "state.yaml")
}

// LoadState returns an empty State when the file does not exist or belongs to a
// different server.
func LoadState(path, server string) (State, error) {
	state := State{Server: server}
	if path == "" {
		return state, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return state, nil
	}
	if err != nil {
		return state, fmt.Errorf("error reading state file: %w", err)
	}
	var stored State
	if err := yaml.Unmarshal(data, &stored); err != nil {
		return state, fmt.Errorf("error parsing state file: %w", err)
	}
	if stored.Server != server {
		return state, nil
	}
	return stored, nil
}

func SaveState(path string, state State) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("error creating state directory: %w", err)
	}
	data, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("error encoding state: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("error writing state file: %w", err)
	}
	return nil
}
