// Package config loads the interpreter's optional YAML settings file.
package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// Settings is the full set of knobs the interpreter reads from a config
// file. Everything has a sane default, so a missing file is not an error.
type Settings struct {
	SpacesPerIndentLevel int `yaml:"spacesPerIndentLevel"`
}

// Default returns the settings the interpreter uses when no config file is
// present or none of its fields are set.
func Default() Settings {
	return Settings{SpacesPerIndentLevel: 2}
}

// Load reads and parses path, falling back to Default for any field the
// file leaves unset. A missing file is not treated as an error: Load
// returns Default() unchanged.
func Load(path string) (Settings, error) {
	settings := Default()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return Settings{}, err
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return Settings{}, err
	}
	if settings.SpacesPerIndentLevel <= 0 {
		settings.SpacesPerIndentLevel = Default().SpacesPerIndentLevel
	}
	return settings, nil
}
